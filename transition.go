package ember

import (
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// Compositor combines the outgoing and incoming presets' outputs into one
// frame. blend is the eased transition weight in [0, 1]: 0 must produce
// oldFrame exactly, 1 must produce newFrame exactly, and the output must
// vary continuously between them.
type Compositor interface {
	Composite(dst, oldFrame, newFrame *ebiten.Image, blend float64, seeds [4]uint32)
}

// TransitionOptions configures a PresetTransition. The zero value selects
// linear easing, the dissolve compositor, and system entropy.
type TransitionOptions struct {
	// Ease shapes the blend weight over time. Endpoints are preserved by
	// every gween ease function, so boundary equivalence is unaffected.
	Ease ease.TweenFunc
	// Compositor performs the actual blend. Nil selects a dissolve.
	Compositor Compositor
	// Entropy seeds the transition's four fixed random values. Nil selects
	// the process-wide source; tests pass a FixedEntropy.
	Entropy EntropySource
}

// PresetTransition coordinates the timed blend between an outgoing and an
// incoming preset during a preset switch. It is created the moment the
// switch is requested and consulted every frame until IsDone reports true,
// then discarded. The four random values drawn at construction stay fixed
// for the transition's lifetime, so randomized blend patterns hold steady
// across frames instead of flickering.
type PresetTransition struct {
	id              uuid.UUID
	durationSeconds float64
	startTime       float64
	seeds           [4]uint32

	easeFn     ease.TweenFunc
	compositor Compositor
}

// NewPresetTransition creates a transition starting at startTime (same
// monotonic clock domain as the frame times later passed in) and running
// for durationSeconds. A duration <= 0 is complete immediately.
func NewPresetTransition(durationSeconds, startTime float64, opts TransitionOptions) *PresetTransition {
	if opts.Ease == nil {
		opts.Ease = ease.Linear
	}
	if opts.Compositor == nil {
		opts.Compositor = NewDissolveCompositor()
	}
	if opts.Entropy == nil {
		opts.Entropy = systemEntropy
	}
	return &PresetTransition{
		id:              uuid.New(),
		durationSeconds: durationSeconds,
		startTime:       startTime,
		seeds:           transitionSeeds(opts.Entropy),
		easeFn:          opts.Ease,
		compositor:      opts.Compositor,
	}
}

// ID returns the transition's instance identity, used in diagnostics.
func (t *PresetTransition) ID() uuid.UUID {
	return t.id
}

// Seeds returns the four random values drawn at construction.
func (t *PresetTransition) Seeds() [4]uint32 {
	return t.seeds
}

// IsDone reports whether the transition has run its full duration at the
// given frame time. Transitions with a non-positive duration are done
// immediately. Pure; never mutates.
func (t *PresetTransition) IsDone(currentFrameTime float64) bool {
	return t.durationSeconds <= 0 || currentFrameTime-t.startTime >= t.durationSeconds
}

// Progress returns the normalized transition position in [0, 1], clamped at
// both ends and monotonic non-decreasing in currentFrameTime. A
// non-positive duration yields 1.0, matching IsDone's immediate completion,
// and is short-circuited before any division.
func (t *PresetTransition) Progress(currentFrameTime float64) float64 {
	if t.durationSeconds <= 0 {
		return 1.0
	}
	p := (currentFrameTime - t.startTime) / t.durationSeconds
	if p < 0 {
		return 0.0
	}
	if p > 1 {
		return 1.0
	}
	return p
}

// Draw renders one blended frame: both presets draw into their own outputs,
// then the compositor mixes them into dst by the eased progress. At
// progress 0 the result is the outgoing preset alone; at 1, the incoming
// preset alone.
func (t *PresetTransition) Draw(dst *ebiten.Image, oldPreset, newPreset Preset, ctx *RenderContext, audio AudioFrame, currentFrameTime float64) error {
	if err := oldPreset.Draw(ctx, audio, currentFrameTime); err != nil {
		return err
	}
	if err := newPreset.Draw(ctx, audio, currentFrameTime); err != nil {
		return err
	}

	progress := t.Progress(currentFrameTime)
	blend := float64(t.easeFn(float32(progress), 0, 1, 1))
	t.compositor.Composite(dst, oldPreset.Output(), newPreset.Output(), blend, t.seeds)
	return nil
}

// --- DissolveCompositor ---

// DissolveCompositor is the default blend: a linear mix
// out = old*(1-blend) + new*blend, computed with a copy pass followed by an
// additive pass. Endpoints reproduce either frame exactly.
type DissolveCompositor struct {
	op ebiten.DrawImageOptions
}

// NewDissolveCompositor creates the default dissolve blend.
func NewDissolveCompositor() *DissolveCompositor {
	return &DissolveCompositor{}
}

// Composite writes the weighted mix of both frames into dst.
func (c *DissolveCompositor) Composite(dst, oldFrame, newFrame *ebiten.Image, blend float64, _ [4]uint32) {
	w := float32(blend)

	c.op.GeoM.Reset()
	c.op.ColorScale.Reset()
	c.op.ColorScale.ScaleAlpha(1 - w)
	c.op.Blend = ebiten.BlendCopy
	dst.DrawImage(oldFrame, &c.op)

	if w <= 0 {
		return
	}
	c.op.ColorScale.Reset()
	c.op.ColorScale.ScaleAlpha(w)
	c.op.Blend = ebiten.BlendLighter
	dst.DrawImage(newFrame, &c.op)
}

// --- WipeCompositor ---

// wipeShaderKey identifies the wipe blend shader in the cache.
const wipeShaderKey = "ember/transition-wipe"

// wipeShaderSrc sweeps a soft-edged band across the screen. The band
// direction, edge softness, and ripple pattern come from the transition's
// fixed seeds, so the pattern is stable for the whole transition. The mask
// covers nothing at Progress 0 and everything at Progress 1.
const wipeShaderSrc = `//kage:unit pixels

package main

var Progress float
var Angle float
var Softness float
var Ripple float
var RippleAmp float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	a := imageSrc0At(src)
	b := imageSrc1At(src)

	p := (src - imageSrc0Origin()) / imageSrc0Size()
	dir := vec2(cos(Angle), sin(Angle))
	d := dot(p-vec2(0.5), dir) + 0.5
	d += sin((p.x+p.y)*Ripple*6.2831853) * RippleAmp
	d = clamp(d, 0.0, 1.0)

	t := Progress*(1.0+2.0*Softness) - Softness
	m := clamp((t-d+Softness)/(2.0*Softness), 0.0, 1.0)
	return mix(a, b, m)
}
`

// WipeCompositor blends with a seed-randomized directional wipe. Requires
// both frames to share dimensions (they do: presets render at the viewport
// size).
type WipeCompositor struct {
	cache    *ShaderCache
	handle   shaderHandle
	uniforms map[string]any
	op       ebiten.DrawRectShaderOptions
	fallback DissolveCompositor
}

// NewWipeCompositor creates a wipe compositor resolving its shader from the
// given cache.
func NewWipeCompositor(cache *ShaderCache) *WipeCompositor {
	return &WipeCompositor{
		cache:    cache,
		uniforms: make(map[string]any, 5),
	}
}

// Composite sweeps the incoming frame across the outgoing one. The four
// seed values fix the wipe direction, edge softness, and ripple pattern.
func (c *WipeCompositor) Composite(dst, oldFrame, newFrame *ebiten.Image, blend float64, seeds [4]uint32) {
	if !c.handle.valid(c.cache) {
		shader, err := c.cache.Resolve(wipeShaderKey, []byte(wipeShaderSrc))
		if err != nil {
			// The built-in source should always compile; degrade to a
			// dissolve rather than dropping the frame.
			logger.Warn("wipe shader unavailable, dissolving", "err", err)
			c.fallback.Composite(dst, oldFrame, newFrame, blend, seeds)
			return
		}
		c.handle = shaderHandle{shader: shader, generation: c.cache.Generation()}
	}

	const inv32 = 1.0 / float64(1<<32)
	c.uniforms["Progress"] = float32(blend)
	c.uniforms["Angle"] = float32(float64(seeds[0]) * inv32 * 2 * 3.14159265)
	c.uniforms["Softness"] = float32(0.05 + float64(seeds[1])*inv32*0.25)
	c.uniforms["Ripple"] = float32(1 + seeds[2]%6)
	c.uniforms["RippleAmp"] = float32(float64(seeds[3]) * inv32 * 0.04)

	bounds := oldFrame.Bounds()
	c.op.Images[0] = oldFrame
	c.op.Images[1] = newFrame
	c.op.Uniforms = c.uniforms
	c.op.Blend = ebiten.BlendCopy
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), c.handle.shader, &c.op)
}
