// Package ember renders audio-reactive visualization presets on
// [Ebitengine].
//
// A preset warps the previous frame's image through a deformable
// coordinate grid, the warp mesh, whose per-vertex zoom, rotation, and
// distortion scalars come from an external expression evaluator, producing
// the classic feedback-driven motion of music visualizers. When the host
// switches presets, a transition coordinator cross-fades the two presets'
// outputs over a timed window.
//
// The engine computes geometry on the CPU and submits finalized vertex
// buffers through a [DrawBackend]; it never issues graphics calls itself.
// All rendering runs single-threaded on the host's render loop:
//
//	renderer, err := ember.NewRenderer(ember.DefaultConfig())
//	if err != nil { ... }
//	renderer.SwitchPreset(preset, frameTime)
//	// each frame, inside ebiten's Draw:
//	renderer.Draw(screen, audio, frameTime)
//
// Frame times must come from a single monotonic clock.
//
// [Ebitengine]: https://ebitengine.org
package ember
