package ember

// FrameScalars holds the dynamic values evaluated once per frame by the
// external expression evaluator. They seed every mesh vertex; a vertex
// evaluator may then override them point by point.
type FrameScalars struct {
	Zoom    float64 // radial zoom amount; 1.0 is neutral, >1 grows the image
	ZoomExp float64 // zoom exponent; 1.0 is a pure linear zoom
	Rot     float64 // rotation in radians, applied about the per-vertex center
	Warp    float64 // warp strength; 0 disables the sinusoidal distortion

	// Effect center in normalized [0, 1] screen space.
	CX, CY float64
	// Constant translation applied after all other terms.
	DX, DY float64
	// Stretch factors about the effect center; 1.0 is neutral.
	SX, SY float64

	// Warp animation parameters.
	WarpAnimSpeed float64 // time multiplier for the warp oscillators; 1.0 is neutral
	WarpScale     float64 // spatial scale of the warp pattern; larger is coarser

	// Decay multiplier applied to the previous frame's color, in legacy
	// 8-bit semantics (wrapped through WrapColor at blit time).
	Decay float64
}

// VertexScalars holds the per-vertex overrides produced by a preset's
// per-pixel code. Each field mirrors its FrameScalars counterpart.
type VertexScalars struct {
	Zoom, ZoomExp, Rot, Warp float64
	CX, CY                   float64
	DX, DY                   float64
	SX, SY                   float64
}

// FrameEvaluator produces the per-frame scalar set. Implementations wrap
// the external expression engine; the mesh trusts the returned values and
// performs no validation, so malformed preset formulas surface as
// degenerate (but non-fatal) visual output.
type FrameEvaluator interface {
	EvalFrame(audio AudioFrame, frameTime float64) FrameScalars
}

// VertexEvaluator runs a preset's per-pixel code once per mesh vertex.
// The frame scalars are passed in as the starting values together with the
// vertex's static position, radius, and angle; the returned scalars replace
// the uniform ones for that vertex only.
type VertexEvaluator interface {
	EvalVertex(frame FrameScalars, x, y, rad, ang float32) VertexScalars
}

// uniformScalars converts frame scalars to the per-vertex representation.
// Used when the preset has no per-pixel code.
func uniformScalars(f FrameScalars) VertexScalars {
	return VertexScalars{
		Zoom: f.Zoom, ZoomExp: f.ZoomExp, Rot: f.Rot, Warp: f.Warp,
		CX: f.CX, CY: f.CY,
		DX: f.DX, DY: f.DY,
		SX: f.SX, SY: f.SY,
	}
}

// StaticEvaluator is a FrameEvaluator returning a fixed scalar set every
// frame. Useful for presets without per-frame code and for tests.
type StaticEvaluator struct {
	Scalars FrameScalars
}

// EvalFrame returns the fixed scalar set regardless of audio or time.
func (e StaticEvaluator) EvalFrame(AudioFrame, float64) FrameScalars {
	return e.Scalars
}

// NeutralScalars returns a scalar set that leaves the frame untouched:
// unit zoom, no rotation, no warp, centered, full decay.
func NeutralScalars() FrameScalars {
	return FrameScalars{
		Zoom: 1, ZoomExp: 1,
		CX: 0.5, CY: 0.5,
		SX: 1, SY: 1,
		WarpAnimSpeed: 1, WarpScale: 1,
		Decay: 1,
	}
}
