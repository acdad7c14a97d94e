package ember

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrShaderCompile reports that a preset-supplied shader failed to compile.
// The condition is non-fatal: the selector falls back to the built-in
// default shader and rendering continues.
var ErrShaderCompile = errors.New("shader compilation failed")

// defaultWarpShaderKey identifies the built-in warp shader in the cache.
// One compiled instance is shared by every mesh resolving from the same
// cache (one per rendering context).
const defaultWarpShaderKey = "ember/warp-default"

// defaultWarpShaderSrc samples the previous frame at the mesh-computed
// coordinate with the decay tint, applying the sampler address policy.
// The Repeat uniform selects between edge clamping and tiling.
const defaultWarpShaderSrc = `//kage:unit pixels

package main

var Repeat float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	origin := imageSrc0Origin()
	size := imageSrc0Size()
	p := src - origin
	if Repeat >= 0.5 {
		p = mod(p, size)
	} else {
		p = clamp(p, vec2(0), size-vec2(1))
	}
	return imageSrc0At(p+origin) * color
}
`

// ShaderCache is a resolve-by-key registry of compiled Kage shaders. The
// cache owns shader lifetime; holders keep only the key plus the generation
// they resolved at, and must re-resolve when the generation moves on (for
// example after a rendering context reset). Raw shader pointers must never
// be assumed valid across an Invalidate.
type ShaderCache struct {
	entries    map[string]*ebiten.Shader
	generation uint64
}

// NewShaderCache creates an empty shader cache.
func NewShaderCache() *ShaderCache {
	return &ShaderCache{entries: make(map[string]*ebiten.Shader)}
}

// Generation returns the cache's current generation. A holder whose stored
// generation differs must treat its reference as expired.
func (c *ShaderCache) Generation() uint64 {
	return c.generation
}

// Invalidate drops every compiled shader and advances the generation.
// Models a rendering context reset; outstanding references become stale and
// resolve again on next use.
func (c *ShaderCache) Invalidate() {
	c.entries = make(map[string]*ebiten.Shader)
	c.generation++
	logger.Debug("shader cache invalidated", "generation", c.generation)
}

// Resolve returns the compiled shader for key, compiling src on a miss.
// A stale or missing entry is an ordinary cache miss, never an error by
// itself; compilation failures are returned to the caller.
func (c *ShaderCache) Resolve(key string, src []byte) (*ebiten.Shader, error) {
	if s, ok := c.entries[key]; ok {
		return s, nil
	}
	s, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("compile shader %q: %w", key, err)
	}
	c.entries[key] = s
	return s, nil
}

// shaderHandle is a non-owning reference into a ShaderCache. Valid only
// while the stored generation matches the cache's.
type shaderHandle struct {
	shader     *ebiten.Shader
	generation uint64
}

func (h shaderHandle) valid(c *ShaderCache) bool {
	return h.shader != nil && h.generation == c.Generation()
}

// ShaderSelector chooses between a preset-supplied warp shader and the
// built-in default. The custom shader is compiled lazily on first use; a
// compilation failure is reported once via ErrShaderCompile and the
// selector permanently falls back to the default for that source. The
// selector also owns the sampler address policy consumed at draw time.
type ShaderSelector struct {
	cache   *ShaderCache
	address SamplerAddress

	customKey    string
	customSrc    []byte
	customFailed bool

	custom shaderHandle
	def    shaderHandle
}

// NewShaderSelector creates a selector resolving from the given cache with
// edge-clamp sampling.
func NewShaderSelector(cache *ShaderCache) *ShaderSelector {
	return &ShaderSelector{cache: cache}
}

// SetCustom installs a preset-supplied Kage warp shader source under the
// given cache key. Passing empty source clears the custom shader. A new
// source resets any previous compilation-failure state.
func (s *ShaderSelector) SetCustom(key string, src []byte) {
	s.customKey = key
	s.customSrc = src
	s.customFailed = false
	s.custom = shaderHandle{}
}

// Address returns the active sampler address policy.
func (s *ShaderSelector) Address() SamplerAddress {
	return s.address
}

// SetAddress sets the sampler address policy applied at draw submission.
func (s *ShaderSelector) SetAddress(a SamplerAddress) {
	s.address = a
}

// Active returns the shader to draw with. The custom shader wins when
// present and compilable; otherwise the shared default is used. The
// returned error is non-nil exactly once per failing custom source,
// carrying ErrShaderCompile for the caller's diagnostics; the returned
// shader is usable either way.
func (s *ShaderSelector) Active() (*ebiten.Shader, error) {
	if len(s.customSrc) > 0 && !s.customFailed {
		if s.custom.valid(s.cache) {
			return s.custom.shader, nil
		}
		compiled, err := s.cache.Resolve(s.customKey, s.customSrc)
		if err != nil {
			s.customFailed = true
			logger.Warn("custom warp shader rejected, using default",
				"key", s.customKey, "err", err)
			return s.defaultShader(), fmt.Errorf("%w: %v", ErrShaderCompile, err)
		}
		s.custom = shaderHandle{shader: compiled, generation: s.cache.Generation()}
		return compiled, nil
	}
	return s.defaultShader(), nil
}

// defaultShader lazily compiles and caches the built-in warp shader,
// re-resolving after a cache invalidation. The built-in source is known
// good; failure to compile it is a programming error.
func (s *ShaderSelector) defaultShader() *ebiten.Shader {
	if s.def.valid(s.cache) {
		return s.def.shader
	}
	compiled, err := s.cache.Resolve(defaultWarpShaderKey, []byte(defaultWarpShaderSrc))
	if err != nil {
		panic("ember: failed to compile default warp shader: " + err.Error())
	}
	s.def = shaderHandle{shader: compiled, generation: s.cache.Generation()}
	return s.def.shader
}
