package ember

import (
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
)

// RenderContext carries the per-frame collaborators and viewport handed to
// presets by the renderer. Presets hold no reference to it across frames.
type RenderContext struct {
	ViewportWidth  int
	ViewportHeight int

	// Shaders is the shared shader registry for this rendering context.
	Shaders *ShaderCache
	// Backend performs the actual draw submission.
	Backend DrawBackend
}

// Preset is one audio-reactive visualization. Draw renders a complete frame
// into the preset's own output image; Output returns the most recently
// completed frame for compositing.
type Preset interface {
	ID() uuid.UUID
	Draw(ctx *RenderContext, audio AudioFrame, frameTime float64) error
	Output() *ebiten.Image
}

// WarpPresetOptions configures a WarpPreset.
type WarpPresetOptions struct {
	// Mesh resolution in cells. Both must be positive.
	GridX, GridY int

	// Frame evaluates the per-frame scalars. Required.
	Frame FrameEvaluator
	// Vertex runs the preset's per-pixel code, once per mesh vertex.
	// Nil means every vertex shares the frame scalars.
	Vertex VertexEvaluator

	// WarpShader is an optional preset-supplied Kage source. Empty selects
	// the built-in default warp shader.
	WarpShader []byte
	// Sampler selects edge behavior for warp coordinates outside the frame.
	Sampler SamplerAddress
}

// WarpPreset renders the classic feedback effect: each frame the previous
// frame's image is resampled through the warp mesh, producing cumulative
// zoom/rotate/distort motion.
type WarpPreset struct {
	id   uuid.UUID
	opts WarpPresetOptions

	mesh     *WarpMesh
	buffers  *FrameBuffers
	selector *ShaderSelector

	compileErr error
	uniforms   map[string]any
}

// NewWarpPreset creates a warp preset. Buffers and shaders are allocated
// lazily on the first Draw, once the viewport is known.
func NewWarpPreset(opts WarpPresetOptions) *WarpPreset {
	return &WarpPreset{
		id:       uuid.New(),
		opts:     opts,
		mesh:     NewWarpMesh(),
		uniforms: make(map[string]any, 1),
	}
}

// ID returns the preset's instance identity, used in diagnostics.
func (p *WarpPreset) ID() uuid.UUID {
	return p.id
}

// Mesh exposes the preset's transformation mesh, mainly for tests and
// host-side inspection.
func (p *WarpPreset) Mesh() *WarpMesh {
	return p.mesh
}

// WarpShaderErr returns the sticky compilation error for a preset-supplied
// warp shader, or nil. The preset keeps rendering with the default shader
// when this is non-nil.
func (p *WarpPreset) WarpShaderErr() error {
	return p.compileErr
}

// Draw renders one frame: ensure geometry, evaluate scalars, recompute warp
// coordinates, resolve the shader, and submit the mesh sampling the
// previous frame into the current one. Returns an error only for
// configuration problems; degenerate evaluator output and shader fallback
// never fail the frame.
func (p *WarpPreset) Draw(ctx *RenderContext, audio AudioFrame, frameTime float64) error {
	if err := p.mesh.EnsureGeometry(p.opts.GridX, p.opts.GridY, ctx.ViewportWidth, ctx.ViewportHeight); err != nil {
		return err
	}

	if p.buffers == nil {
		p.buffers = NewFrameBuffers(ctx.ViewportWidth, ctx.ViewportHeight)
	} else {
		p.buffers.Resize(ctx.ViewportWidth, ctx.ViewportHeight)
	}

	if p.selector == nil {
		p.selector = NewShaderSelector(ctx.Shaders)
		p.selector.SetAddress(p.opts.Sampler)
		if len(p.opts.WarpShader) > 0 {
			p.selector.SetCustom("warp/"+p.id.String(), p.opts.WarpShader)
		}
	}

	frame := p.opts.Frame.EvalFrame(audio, frameTime)
	p.mesh.CalculateCoordinates(frame, p.opts.Vertex, frameTime)

	shader, err := p.selector.Active()
	if err != nil {
		// Already logged by the selector; keep the condition inspectable.
		p.compileErr = err
	}

	ctx.Backend.DrawMesh(p.buffers.Current(), p.buffers.Previous(), MeshDraw{
		Vertices: p.mesh.Vertices(),
		Indices:  p.mesh.Indices(),
		Shader:   shader,
		Uniforms: p.uniforms,
		Address:  p.selector.Address(),
	})
	p.buffers.Swap()
	return nil
}

// Output returns the most recently completed frame.
func (p *WarpPreset) Output() *ebiten.Image {
	if p.buffers == nil {
		return nil
	}
	return p.buffers.Previous()
}
