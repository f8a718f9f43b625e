package textemboss

import (
	"math"
	"math/rand"
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

// flatPlane builds a square two-triangle patch in the z=0 plane.
func flatPlane(half float64) *model3d.Mesh {
	m := model3d.NewMesh()
	a := model3d.XYZ(-half, -half, 0)
	b := model3d.XYZ(half, -half, 0)
	c := model3d.XYZ(half, half, 0)
	d := model3d.XYZ(-half, half, 0)
	m.Add(&model3d.Triangle{a, b, c})
	m.Add(&model3d.Triangle{a, c, d})
	return m
}

func TestRandomTangentFrameOrthonormal(t *testing.T) {
	rng := rand.New(rand.NewSource(1337))
	for i := 0; i < 100; i++ {
		n := model3d.XYZ(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
		if n.Norm() < 1e-3 {
			continue
		}
		f := RandomTangentFrame(rng, model3d.XYZ(0, 0, 0), n)

		if math.Abs(f.T.Norm()-1) > 1e-5 || math.Abs(f.B.Norm()-1) > 1e-5 {
			t.Fatalf("basis not unit length: |T|=%g |B|=%g", f.T.Norm(), f.B.Norm())
		}
		if math.Abs(f.T.Dot(f.Normal)) > 1e-5 {
			t.Fatalf("T not tangent: dot=%g", f.T.Dot(f.Normal))
		}
		if math.Abs(f.B.Dot(f.Normal)) > 1e-5 {
			t.Fatalf("B not tangent: dot=%g", f.B.Dot(f.Normal))
		}
		if math.Abs(f.T.Dot(f.B)) > 1e-5 {
			t.Fatalf("T and B not orthogonal: dot=%g", f.T.Dot(f.B))
		}
		if f.T.Cross(f.B).Sub(f.Normal).Norm() > 1e-5 {
			t.Fatalf("basis not right-handed: TxB=%v, n=%v", f.T.Cross(f.B), f.Normal)
		}
	}
}

func TestFallbackTangentFrame(t *testing.T) {
	for _, n := range []model3d.Coord3D{
		model3d.XYZ(0, 0, 1),
		model3d.XYZ(1, 0, 0),
		model3d.XYZ(0, 1, 0),
		model3d.XYZ(0, 0, -1),
	} {
		f := fallbackTangentFrame(model3d.XYZ(1, 2, 3), n)
		if math.Abs(f.T.Dot(n)) > 1e-9 || math.Abs(f.B.Dot(n)) > 1e-9 {
			t.Errorf("fallback basis not tangent for n=%v", n)
		}
		if f.T.Cross(f.B).Sub(n).Norm() > 1e-9 {
			t.Errorf("fallback basis not right-handed for n=%v", n)
		}
	}
}

func TestProbeExtentFullOnLargePlane(t *testing.T) {
	collider := model3d.MeshToCollider(flatPlane(100))
	p := model3d.XYZ(0, 0, 0)
	n := model3d.XYZ(0, 0, 1)
	for _, steps := range []int{1, 7, 40} {
		got := ProbeExtent(collider, p, n, model3d.XYZ(1, 0, 0), 2.0, steps, 0.1)
		if math.Abs(got-2.0) > 1e-9 {
			t.Errorf("steps=%d: expected full radius 2, got %g", steps, got)
		}
	}
}

func TestProbeExtentStopsAtEdge(t *testing.T) {
	collider := model3d.MeshToCollider(flatPlane(1))
	p := model3d.XYZ(0, 0, 0)
	n := model3d.XYZ(0, 0, 1)
	steps := 40
	radius := 2.0
	got := ProbeExtent(collider, p, n, model3d.XYZ(1, 0, 0), radius, steps, 0.1)
	if got > 1+1e-9 {
		t.Errorf("probe extended past the surface edge: %g", got)
	}
	if got < 1-radius/float64(steps)-1e-9 {
		t.Errorf("probe stopped too early: %g", got)
	}
}

func TestPatchExtentOnLargePlane(t *testing.T) {
	collider := model3d.MeshToCollider(flatPlane(100))
	f := fallbackTangentFrame(model3d.XYZ(0, 0, 0), model3d.XYZ(0, 0, 1))
	w, h := f.PatchExtent(collider, 3.0, 20, 0.1)
	if math.Abs(w-6) > 1e-9 || math.Abs(h-6) > 1e-9 {
		t.Errorf("expected 6x6 patch on an open plane, got %gx%g", w, h)
	}
}
