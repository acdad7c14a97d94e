package ember

import "github.com/chewxy/math32"

// colorWrapModulus is 256/255: one step past full intensity in the legacy
// 8-bit color convention, where 1.0 maps to 255 and 256 wraps to 0.
const colorWrapModulus = float32(256.0 / 255.0)

// WrapColor folds a color multiplier into [0, 256/255) with Euclidean
// wrapping, so negative inputs land in range instead of clamping. A decay
// of exactly 1.0 passes through unchanged (255 is in range; 256 is not).
func WrapColor(x float32) float32 {
	return math32.Mod(math32.Mod(x, colorWrapModulus)+colorWrapModulus, colorWrapModulus)
}
