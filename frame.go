package textemboss

import (
	"math"
	"math/rand"

	"github.com/unixpickle/model3d/model3d"
)

// tangentAttempts bounds the random search for a vector that is not
// parallel to the surface normal before falling back to a world axis.
const tangentAttempts = 20

// A TangentFrame is a local 2D coordinate basis anchored at a point on a
// surface. T and B span the tangent plane and Normal points away from the
// surface; the basis is right-handed, with T x B = Normal.
type TangentFrame struct {
	Point  model3d.Coord3D
	Normal model3d.Coord3D
	T      model3d.Coord3D
	B      model3d.Coord3D
}

// RandomTangentFrame constructs a tangent frame at the point p with the
// given surface normal. The tangent direction is chosen randomly from rng;
// if every random candidate is nearly parallel to the normal, a fixed
// world axis is used instead, so the function always succeeds.
func RandomTangentFrame(rng *rand.Rand, p, n model3d.Coord3D) TangentFrame {
	n = n.Normalize()
	for i := 0; i < tangentAttempts; i++ {
		v := model3d.XYZ(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
		v = v.Sub(n.Scale(v.Dot(n)))
		if v.Norm() > 1e-6 {
			t := v.Normalize()
			return TangentFrame{Point: p, Normal: n, T: t, B: n.Cross(t).Normalize()}
		}
	}
	return fallbackTangentFrame(p, n)
}

// fallbackTangentFrame deterministically derives a tangent frame from a
// world axis that is guaranteed not to be parallel to n.
func fallbackTangentFrame(p, n model3d.Coord3D) TangentFrame {
	axis := model3d.XYZ(1, 0, 0)
	if math.Abs(axis.Dot(n)) > 0.9 {
		axis = model3d.XYZ(0, 1, 0)
	}
	t := n.Cross(axis).Normalize()
	return TangentFrame{Point: p, Normal: n, T: t, B: n.Cross(t).Normalize()}
}

// ProbeExtent measures how far a flat patch can extend from p along the
// tangent direction dir before the surface curves away or ends.
//
// It marches steps equal sub-steps out to radius; at each sub-step a ray
// is cast from just above the tangent plane (offset by lift along n) back
// down along -n. The returned value is the distance of the last sub-step
// whose ray still hit the surface, or radius if every ray hit.
func ProbeExtent(collider model3d.Collider, p, n, dir model3d.Coord3D,
	radius float64, steps int, lift float64) float64 {
	if steps < 1 {
		steps = 1
	}
	stepSize := radius / float64(steps)
	down := n.Scale(-1)
	var best float64
	for i := 1; i <= steps; i++ {
		d := float64(i) * stepSize
		q := p.Add(dir.Scale(d))
		ray := &model3d.Ray{Origin: q.Add(n.Scale(lift)), Direction: down}
		if _, ok := collider.FirstRayCollision(ray); !ok {
			break
		}
		best = d
	}
	return best
}

// PatchExtent measures the full flat footprint available around the frame
// anchor: the width spans both directions along T, the height both
// directions along B.
func (f TangentFrame) PatchExtent(collider model3d.Collider,
	radius float64, steps int, lift float64) (width, height float64) {
	width = ProbeExtent(collider, f.Point, f.Normal, f.T, radius, steps, lift) +
		ProbeExtent(collider, f.Point, f.Normal, f.T.Scale(-1), radius, steps, lift)
	height = ProbeExtent(collider, f.Point, f.Normal, f.B, radius, steps, lift) +
		ProbeExtent(collider, f.Point, f.Normal, f.B.Scale(-1), radius, steps, lift)
	return
}
