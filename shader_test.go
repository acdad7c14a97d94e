package ember

import (
	"errors"
	"testing"
)

const passthroughShaderSrc = `//kage:unit pixels

package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	return imageSrc0At(src) * color
}
`

func TestShaderCacheResolveReturnsSameInstance(t *testing.T) {
	cache := NewShaderCache()

	first, err := cache.Resolve("test/pass", []byte(passthroughShaderSrc))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := cache.Resolve("test/pass", []byte(passthroughShaderSrc))
	if err != nil {
		t.Fatalf("Resolve again: %v", err)
	}
	if first != second {
		t.Error("same key resolved to different shader instances")
	}
}

func TestShaderCacheResolveBadSource(t *testing.T) {
	cache := NewShaderCache()

	if _, err := cache.Resolve("test/broken", []byte("not a shader")); err == nil {
		t.Fatal("expected compile error for invalid source")
	}
	if cache.Generation() != 0 {
		t.Error("failed compile must not advance the generation")
	}
}

func TestShaderCacheInvalidate(t *testing.T) {
	cache := NewShaderCache()

	first, err := cache.Resolve("test/pass", []byte(passthroughShaderSrc))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	gen := cache.Generation()

	cache.Invalidate()
	if cache.Generation() != gen+1 {
		t.Errorf("Generation = %d, want %d", cache.Generation(), gen+1)
	}

	second, err := cache.Resolve("test/pass", []byte(passthroughShaderSrc))
	if err != nil {
		t.Fatalf("Resolve after Invalidate: %v", err)
	}
	if second == first {
		t.Error("entry survived Invalidate")
	}
}

func TestShaderSelectorDefault(t *testing.T) {
	cache := NewShaderCache()
	sel := NewShaderSelector(cache)

	active, err := sel.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active == nil {
		t.Fatal("Active returned nil shader")
	}

	again, err := sel.Active()
	if err != nil {
		t.Fatalf("Active again: %v", err)
	}
	if again != active {
		t.Error("default shader not reused across calls")
	}
}

func TestShaderSelectorCustomWins(t *testing.T) {
	cache := NewShaderCache()
	sel := NewShaderSelector(cache)

	def, err := sel.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}

	sel.SetCustom("test/custom", []byte(passthroughShaderSrc))
	custom, err := sel.Active()
	if err != nil {
		t.Fatalf("Active with custom: %v", err)
	}
	if custom == def {
		t.Error("custom source did not replace the default shader")
	}
}

func TestShaderSelectorFallbackOnBadCustom(t *testing.T) {
	cache := NewShaderCache()
	sel := NewShaderSelector(cache)

	def, err := sel.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}

	sel.SetCustom("test/broken", []byte("not a shader"))

	active, err := sel.Active()
	if !errors.Is(err, ErrShaderCompile) {
		t.Fatalf("err = %v, want ErrShaderCompile", err)
	}
	if active != def {
		t.Error("failed custom shader must fall back to the default")
	}

	// The failure is reported once; later frames draw silently.
	active, err = sel.Active()
	if err != nil {
		t.Errorf("second Active after failure returned %v, want nil", err)
	}
	if active != def {
		t.Error("fallback not sticky for the failing source")
	}
}

func TestShaderSelectorSetCustomResetsFailure(t *testing.T) {
	cache := NewShaderCache()
	sel := NewShaderSelector(cache)

	sel.SetCustom("test/broken", []byte("not a shader"))
	if _, err := sel.Active(); !errors.Is(err, ErrShaderCompile) {
		t.Fatalf("err = %v, want ErrShaderCompile", err)
	}

	sel.SetCustom("test/custom", []byte(passthroughShaderSrc))
	active, err := sel.Active()
	if err != nil {
		t.Fatalf("Active with replacement source: %v", err)
	}
	def := sel.defaultShader()
	if active == def {
		t.Error("replacement custom source still falling back to default")
	}
}

func TestShaderSelectorReresolvesAfterInvalidate(t *testing.T) {
	cache := NewShaderCache()
	sel := NewShaderSelector(cache)
	sel.SetCustom("test/custom", []byte(passthroughShaderSrc))

	before, err := sel.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}

	cache.Invalidate()

	after, err := sel.Active()
	if err != nil {
		t.Fatalf("Active after Invalidate: %v", err)
	}
	if after == before {
		t.Error("selector kept a stale shader reference across Invalidate")
	}
}

func TestShaderSelectorAddress(t *testing.T) {
	sel := NewShaderSelector(NewShaderCache())
	if sel.Address() != SamplerClamp {
		t.Errorf("default address = %v, want SamplerClamp", sel.Address())
	}
	sel.SetAddress(SamplerRepeat)
	if sel.Address() != SamplerRepeat {
		t.Errorf("address = %v, want SamplerRepeat", sel.Address())
	}
}
