package ember

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// FrameBuffers is the per-preset feedback pair: the warp mesh samples the
// previous frame's image while drawing into the current one, then the pair
// swaps. Both images always have identical dimensions.
type FrameBuffers struct {
	current  *ebiten.Image
	previous *ebiten.Image
	w, h     int
}

// NewFrameBuffers creates a feedback pair of the given size.
func NewFrameBuffers(w, h int) *FrameBuffers {
	b := &FrameBuffers{}
	b.Resize(w, h)
	return b
}

// Resize reallocates both images when the size changed. Contents are lost
// on reallocation; a size match is a no-op, so calling every frame is fine.
func (b *FrameBuffers) Resize(w, h int) {
	if w == b.w && h == b.h {
		return
	}
	if b.current != nil {
		b.current.Deallocate()
		b.previous.Deallocate()
	}
	b.current = ebiten.NewImage(w, h)
	b.previous = ebiten.NewImage(w, h)
	b.w, b.h = w, h
}

// Current returns this frame's render target.
func (b *FrameBuffers) Current() *ebiten.Image {
	return b.current
}

// Previous returns the last completed frame, the warp mesh's sampling
// source.
func (b *FrameBuffers) Previous() *ebiten.Image {
	return b.previous
}

// Size returns the buffer dimensions in pixels.
func (b *FrameBuffers) Size() (w, h int) {
	return b.w, b.h
}

// Swap exchanges current and previous. Call once per frame after the
// current image is fully drawn.
func (b *FrameBuffers) Swap() {
	b.current, b.previous = b.previous, b.current
}
