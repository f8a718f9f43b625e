package textemboss

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// minAcceptScale is the smallest text scale a placement may be accepted
// at; anything smaller means the patch is effectively unusable.
const minAcceptScale = 1e-6

// A Placement is a candidate location for the text block: a tangent frame
// on the target surface, the flat extents measured there, and the scale
// that fits the text footprint into those extents with the configured
// margin.
type Placement struct {
	Frame  TangentFrame
	Width  float64
	Height float64
	Scale  float64
}

// surfaceSampler draws uniformly random points on a mesh surface,
// weighting each face by its area.
type surfaceSampler struct {
	tris     []*model3d.Triangle
	cumAreas []float64
	total    float64
}

func newSurfaceSampler(m *model3d.Mesh) (*surfaceSampler, error) {
	s := &surfaceSampler{}
	m.Iterate(func(t *model3d.Triangle) {
		area := t.Area()
		if area <= 0 {
			return
		}
		s.total += area
		s.tris = append(s.tris, t)
		s.cumAreas = append(s.cumAreas, s.total)
	})
	if s.total <= 0 {
		return nil, errors.New("mesh has no surface area to sample")
	}
	return s, nil
}

// Sample returns a uniformly random surface point and the unit normal of
// the face it lies on.
func (s *surfaceSampler) Sample(rng *rand.Rand) (point, normal model3d.Coord3D) {
	idx := sort.SearchFloat64s(s.cumAreas, rng.Float64()*s.total)
	if idx >= len(s.tris) {
		idx = len(s.tris) - 1
	}
	t := s.tris[idx]

	u, v := rng.Float64(), rng.Float64()
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	point = t[0].Add(t[1].Sub(t[0]).Scale(u)).Add(t[2].Sub(t[0]).Scale(v))
	normal = t.Normal()
	return
}

// sampleCandidate draws one random surface point, measures the available
// patch around it, and applies the fit test for a text footprint of
// w2d x h2d. It reports false when the candidate cannot host the text.
func sampleCandidate(sampler *surfaceSampler, collider model3d.Collider,
	rng *rand.Rand, w2d, h2d, radius float64, steps int,
	lift, margin float64) (Placement, bool) {
	p, n := sampler.Sample(rng)
	frame := RandomTangentFrame(rng, p, n)
	width, height := frame.PatchExtent(collider, radius, steps, lift)

	scale := margin * math.Min(width/w2d, height/h2d)
	cand := Placement{Frame: frame, Width: width, Height: height, Scale: scale}
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= minAcceptScale {
		return cand, false
	}
	return cand, true
}

// FindPlacement searches the target surface for a patch that can host a
// text footprint of w2d x h2d, using up to cfg.Tries random candidates.
// The first candidate that passes the fit test wins. If the budget is
// exhausted a *PlacementExhaustedError is returned, never a degraded
// placement.
func FindPlacement(target *model3d.Mesh, w2d, h2d float64,
	cfg EmbedConfig, rng *rand.Rand) (Placement, error) {
	if err := cfg.Validate(); err != nil {
		return Placement{}, err
	}
	sampler, err := newSurfaceSampler(target)
	if err != nil {
		return Placement{}, err
	}
	collider := model3d.MeshToCollider(target)

	minDim := MinExtent(target)
	radius := cfg.PatchRadiusPercent / 100 * minDim
	lift := cfg.LiftPercent / 100 * minDim

	var lastW, lastH float64
	for i := 0; i < cfg.Tries; i++ {
		cand, ok := sampleCandidate(sampler, collider, rng, w2d, h2d,
			radius, cfg.RaySteps, lift, cfg.Margin)
		lastW, lastH = cand.Width, cand.Height
		if ok {
			return cand, nil
		}
	}
	return Placement{}, &PlacementExhaustedError{
		Tries:      cfg.Tries,
		LastWidth:  lastW,
		LastHeight: lastH,
	}
}
