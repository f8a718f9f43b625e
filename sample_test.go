package textemboss

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

func TestSurfaceSamplerEmptyMesh(t *testing.T) {
	if _, err := newSurfaceSampler(model3d.NewMesh()); err == nil {
		t.Fatal("expected an error for a mesh with no surface area")
	}
}

func TestSurfaceSamplerOnSurface(t *testing.T) {
	box := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(2, 3, 4))
	sampler, err := newSurfaceSampler(box)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(42))
	min, max := box.Min(), box.Max()
	for i := 0; i < 200; i++ {
		p, n := sampler.Sample(rng)
		if p.X < min.X-1e-9 || p.Y < min.Y-1e-9 || p.Z < min.Z-1e-9 ||
			p.X > max.X+1e-9 || p.Y > max.Y+1e-9 || p.Z > max.Z+1e-9 {
			t.Fatalf("sample %v outside the box bounds", p)
		}
		if d := n.Norm(); d < 1-1e-5 || d > 1+1e-5 {
			t.Fatalf("normal not unit length: %g", d)
		}
	}
}

func TestFindPlacementAccepts(t *testing.T) {
	box := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(10, 10, 1))
	cfg := DefaultEmbedConfig(ModeEmboss, 5)
	cfg.Tries = 100
	rng := rand.New(rand.NewSource(7))

	placement, err := FindPlacement(box, 2, 1, cfg, rng)
	if err != nil {
		t.Fatal(err)
	}
	if placement.Scale <= minAcceptScale {
		t.Errorf("accepted placement has an unusable scale %g", placement.Scale)
	}
	if placement.Width <= 0 || placement.Height <= 0 {
		t.Errorf("accepted placement has empty extents %gx%g",
			placement.Width, placement.Height)
	}
}

func TestFindPlacementExhausted(t *testing.T) {
	// A target this small caps every candidate's patch radius so low that
	// a 20x20 footprint can never fit at a usable scale.
	tiny := 5e-5
	box := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(tiny, tiny, tiny))
	cfg := DefaultEmbedConfig(ModeEmboss, 5)
	cfg.Tries = 20
	rng := rand.New(rand.NewSource(7))

	_, err := FindPlacement(box, 20, 20, cfg, rng)
	if err == nil {
		t.Fatal("expected placement search to fail")
	}
	var exhausted *PlacementExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *PlacementExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Tries != cfg.Tries {
		t.Errorf("expected %d tries recorded, got %d", cfg.Tries, exhausted.Tries)
	}
}

func TestFindPlacementInvalidConfig(t *testing.T) {
	box := model3d.NewMeshRect(model3d.XYZ(0, 0, 0), model3d.XYZ(1, 1, 1))
	cfg := DefaultEmbedConfig(ModeEmboss, 5)
	cfg.Margin = 2
	if _, err := FindPlacement(box, 1, 1, cfg, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected a validation error for margin > 1")
	}
}
