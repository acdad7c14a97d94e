package ember

import "github.com/hajimehoshi/ebiten/v2"

// Point is a 2D float32 pair used for per-vertex attribute buffers
// (center, distance, stretch) and texture coordinates.
type Point struct {
	X, Y float32
}

// AudioFrame carries the per-frame audio features consumed by preset
// formulas. The engine does not extract these itself; the host fills the
// struct from its own analysis chain and the values are passed through to
// the evaluators untouched.
type AudioFrame struct {
	// Instantaneous band levels, normalized so 1.0 is the rolling average.
	Bass, Mid, Treb float64
	// Time-attenuated band levels (slow-follow envelopes).
	BassAtt, MidAtt, TrebAtt float64
	// Overall loudness in [0, 1].
	Volume float64
}

// SamplerAddress selects how warp coordinates outside the source texture
// are resolved. The active policy is owned by the shader selector and
// applied at draw submission, not during coordinate computation.
type SamplerAddress uint8

const (
	// SamplerClamp clamps coordinates to the texture edge.
	SamplerClamp SamplerAddress = iota
	// SamplerRepeat wraps coordinates, tiling the texture.
	SamplerRepeat
)

// EbitenAddress returns the ebiten.Address corresponding to this policy.
func (a SamplerAddress) EbitenAddress() ebiten.Address {
	if a == SamplerRepeat {
		return ebiten.AddressRepeat
	}
	return ebiten.AddressClampToZero
}
