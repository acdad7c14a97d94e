package ember

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Renderer owns the active preset, at most one live transition, and the
// shared per-context resources (shader cache, draw backend). It drives the
// fixed per-frame order: ensure geometry, evaluate, recompute coordinates,
// select shader, submit. The transition's progress gates how two
// presets' outputs are combined during a switch.
//
// All methods must be called from a single goroutine; the renderer performs
// no internal locking.
type Renderer struct {
	cfg     Config
	shaders *ShaderCache
	backend DrawBackend

	active     Preset
	incoming   Preset
	transition *PresetTransition

	transitionOpts TransitionOptions

	op ebiten.DrawImageOptions
}

// NewRenderer creates a renderer for the given configuration, submitting
// through the standard Ebitengine backend.
func NewRenderer(cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shaders := NewShaderCache()
	easeFn, _ := cfg.easeFunc()

	var compositor Compositor
	if cfg.TransitionStyle == "wipe" {
		compositor = NewWipeCompositor(shaders)
	} else {
		compositor = NewDissolveCompositor()
	}

	return &Renderer{
		cfg:     cfg,
		shaders: shaders,
		backend: NewEbitenBackend(),
		transitionOpts: TransitionOptions{
			Ease:       easeFn,
			Compositor: compositor,
		},
	}, nil
}

// SetBackend replaces the draw backend. Used by tests to record
// submissions instead of touching the GPU.
func (r *Renderer) SetBackend(b DrawBackend) {
	r.backend = b
}

// SetEntropy replaces the entropy source used for new transitions.
func (r *Renderer) SetEntropy(src EntropySource) {
	r.transitionOpts.Entropy = src
}

// Shaders returns the renderer's shader cache. Hosts call Invalidate on it
// after a rendering context reset.
func (r *Renderer) Shaders() *ShaderCache {
	return r.shaders
}

// ActivePreset returns the preset currently being displayed (the outgoing
// one while a transition runs), or nil before the first switch.
func (r *Renderer) ActivePreset() Preset {
	return r.active
}

// Transitioning reports whether a preset blend is currently in flight.
func (r *Renderer) Transitioning() bool {
	return r.transition != nil
}

// SwitchPreset requests a switch to next at the given frame time. The first
// switch activates next immediately; later switches start a timed
// transition. A switch arriving mid-transition discards the running
// transition: the previously incoming preset becomes the outgoing one and
// a fresh transition starts from it.
func (r *Renderer) SwitchPreset(next Preset, currentFrameTime float64) {
	if r.active == nil {
		r.active = next
		logger.Info("preset activated", "preset", next.ID())
		return
	}

	if r.transition != nil {
		logger.Info("transition discarded by new switch",
			"transition", r.transition.ID(), "incoming", r.incoming.ID())
		r.active = r.incoming
	}

	r.incoming = next
	r.transition = NewPresetTransition(r.cfg.TransitionDuration, currentFrameTime, r.transitionOpts)
	logger.Info("transition started",
		"transition", r.transition.ID(),
		"from", r.active.ID(), "to", next.ID(),
		"duration", r.cfg.TransitionDuration)
}

// Draw renders one frame into screen at the given monotonic frame time.
// Frame times must be non-decreasing across calls for transition progress
// guarantees to hold.
func (r *Renderer) Draw(screen *ebiten.Image, audio AudioFrame, currentFrameTime float64) error {
	if r.active == nil {
		return nil
	}

	bounds := screen.Bounds()
	ctx := RenderContext{
		ViewportWidth:  bounds.Dx(),
		ViewportHeight: bounds.Dy(),
		Shaders:        r.shaders,
		Backend:        r.backend,
	}

	var stats frameStats
	var t0 time.Time
	if r.cfg.Debug {
		t0 = time.Now()
	}

	if r.transition != nil && r.transition.IsDone(currentFrameTime) {
		logger.Info("transition complete",
			"transition", r.transition.ID(), "preset", r.incoming.ID())
		r.active = r.incoming
		r.incoming = nil
		r.transition = nil
	}

	if r.transition != nil {
		if err := r.transition.Draw(screen, r.active, r.incoming, &ctx, audio, currentFrameTime); err != nil {
			return err
		}
	} else {
		if err := r.active.Draw(&ctx, audio, currentFrameTime); err != nil {
			return err
		}
		if out := r.active.Output(); out != nil {
			r.op.GeoM.Reset()
			r.op.ColorScale.Reset()
			r.op.Blend = ebiten.BlendCopy
			screen.DrawImage(out, &r.op)
		}
	}

	if r.cfg.Debug {
		stats.frameTime = time.Since(t0)
		stats.transition = r.transition != nil
		if wp, ok := r.active.(*WarpPreset); ok {
			stats.vertexCount = wp.Mesh().VertexCount()
		}
		stats.logFrame()
	}
	return nil
}
