package ember

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

func fixedTransition(duration, start float64, opts TransitionOptions) *PresetTransition {
	if opts.Entropy == nil {
		opts.Entropy = FixedEntropy{A: 7, B: 13}
	}
	return NewPresetTransition(duration, start, opts)
}

func TestTransitionProgressAndDone(t *testing.T) {
	tr := fixedTransition(5.0, 10.0, TransitionOptions{})

	if p := tr.Progress(10.0); !approxEqual(p, 0.0, epsilon) {
		t.Errorf("Progress at start = %f, want 0", p)
	}
	if tr.IsDone(10.0) {
		t.Error("IsDone at start = true, want false")
	}

	if p := tr.Progress(12.5); !approxEqual(p, 0.5, epsilon) {
		t.Errorf("Progress at midpoint = %f, want 0.5", p)
	}
	if tr.IsDone(12.5) {
		t.Error("IsDone at midpoint = true, want false")
	}

	if p := tr.Progress(16.0); !approxEqual(p, 1.0, epsilon) {
		t.Errorf("Progress past end = %f, want 1", p)
	}
	if !tr.IsDone(16.0) {
		t.Error("IsDone past end = false, want true")
	}
	if !tr.IsDone(15.0) {
		t.Error("IsDone at exact end = false, want true")
	}
}

func TestTransitionProgressClampsBeforeStart(t *testing.T) {
	tr := fixedTransition(5.0, 10.0, TransitionOptions{})
	for _, now := range []float64{0, 5, 9.999} {
		if p := tr.Progress(now); p != 0 {
			t.Errorf("Progress(%f) = %f, want 0", now, p)
		}
	}
}

func TestTransitionZeroDurationDoneImmediately(t *testing.T) {
	for _, d := range []float64{0, -1, -0.001} {
		tr := fixedTransition(d, 10.0, TransitionOptions{})
		for _, now := range []float64{0, 10, 1e9} {
			if !tr.IsDone(now) {
				t.Errorf("duration %f: IsDone(%f) = false, want true", d, now)
			}
			if p := tr.Progress(now); p != 1.0 {
				t.Errorf("duration %f: Progress(%f) = %f, want 1", d, now, p)
			}
		}
	}
}

func TestTransitionProgressMonotonic(t *testing.T) {
	tr := fixedTransition(3.3, 100.0, TransitionOptions{})
	prev := -1.0
	for now := 95.0; now < 110; now += 0.17 {
		p := tr.Progress(now)
		if p < prev {
			t.Fatalf("Progress(%f) = %f decreased from %f", now, p, prev)
		}
		if p < 0 || p > 1 {
			t.Fatalf("Progress(%f) = %f outside [0, 1]", now, p)
		}
		prev = p
	}
}

func TestTransitionSeedsFixedAndDeterministic(t *testing.T) {
	a := fixedTransition(1, 0, TransitionOptions{Entropy: FixedEntropy{A: 42, B: 99}})
	b := fixedTransition(1, 0, TransitionOptions{Entropy: FixedEntropy{A: 42, B: 99}})
	if a.Seeds() != b.Seeds() {
		t.Errorf("same entropy produced different seeds: %v vs %v", a.Seeds(), b.Seeds())
	}

	c := fixedTransition(1, 0, TransitionOptions{Entropy: FixedEntropy{A: 43, B: 99}})
	if a.Seeds() == c.Seeds() {
		t.Error("different entropy produced identical seeds")
	}

	// Seeds are generated once at construction, never per frame.
	first := a.Seeds()
	a.Progress(0.5)
	a.IsDone(0.5)
	if a.Seeds() != first {
		t.Error("seeds changed after progress queries")
	}
}

// --- Draw boundary equivalence ---

// stubPreset satisfies Preset without touching the GPU.
type stubPreset struct {
	id    uuid.UUID
	draws int
}

func newStubPreset() *stubPreset {
	return &stubPreset{id: uuid.New()}
}

func (p *stubPreset) ID() uuid.UUID { return p.id }

func (p *stubPreset) Draw(*RenderContext, AudioFrame, float64) error {
	p.draws++
	return nil
}

func (p *stubPreset) Output() *ebiten.Image { return nil }

// recordingCompositor captures the blend weights passed to Composite.
type recordingCompositor struct {
	blends []float64
	seeds  [4]uint32
}

func (c *recordingCompositor) Composite(_, _, _ *ebiten.Image, blend float64, seeds [4]uint32) {
	c.blends = append(c.blends, blend)
	c.seeds = seeds
}

func TestTransitionDrawBlendEndpoints(t *testing.T) {
	rec := &recordingCompositor{}
	tr := fixedTransition(4.0, 20.0, TransitionOptions{Compositor: rec})
	old := newStubPreset()
	next := newStubPreset()
	ctx := &RenderContext{ViewportWidth: 64, ViewportHeight: 48}

	for _, now := range []float64{20.0, 22.0, 24.0, 30.0} {
		if err := tr.Draw(nil, old, next, ctx, AudioFrame{}, now); err != nil {
			t.Fatalf("Draw(%f): %v", now, err)
		}
	}

	if len(rec.blends) != 4 {
		t.Fatalf("Composite called %d times, want 4", len(rec.blends))
	}
	if rec.blends[0] != 0 {
		t.Errorf("blend at progress 0 = %f, want exactly 0", rec.blends[0])
	}
	if rec.blends[1] <= 0 || rec.blends[1] >= 1 {
		t.Errorf("blend at midpoint = %f, want in (0, 1)", rec.blends[1])
	}
	if rec.blends[2] != 1 {
		t.Errorf("blend at progress 1 = %f, want exactly 1", rec.blends[2])
	}
	if rec.blends[3] != 1 {
		t.Errorf("blend past end = %f, want 1", rec.blends[3])
	}
	if rec.seeds != tr.Seeds() {
		t.Error("compositor saw different seeds than the transition's")
	}

	if old.draws != 4 || next.draws != 4 {
		t.Errorf("preset draws = (%d, %d), want both presets drawn every frame", old.draws, next.draws)
	}
}

func TestTransitionDrawEasedBlendPreservesEndpoints(t *testing.T) {
	rec := &recordingCompositor{}
	tr := fixedTransition(2.0, 0.0, TransitionOptions{
		Compositor: rec,
		Ease:       ease.InOutCubic,
	})
	old := newStubPreset()
	next := newStubPreset()
	ctx := &RenderContext{ViewportWidth: 64, ViewportHeight: 48}

	for _, now := range []float64{0.0, 0.5, 1.0, 1.5, 2.0} {
		if err := tr.Draw(nil, old, next, ctx, AudioFrame{}, now); err != nil {
			t.Fatalf("Draw(%f): %v", now, err)
		}
	}

	if rec.blends[0] != 0 {
		t.Errorf("eased blend at progress 0 = %f, want 0", rec.blends[0])
	}
	if last := rec.blends[len(rec.blends)-1]; !approxEqual(last, 1, 1e-6) {
		t.Errorf("eased blend at progress 1 = %f, want 1", last)
	}
	// Eased weights still increase monotonically.
	for i := 1; i < len(rec.blends); i++ {
		if rec.blends[i] < rec.blends[i-1] {
			t.Fatalf("eased blend decreased: %v", rec.blends)
		}
	}
}
