package textemboss

import (
	"math"
	"sort"

	"github.com/unixpickle/model3d/model3d"
)

// degenerateArea is the face area below which a triangle is discarded.
const degenerateArea = 1e-12

// CleanMesh returns a copy of m with duplicate and degenerate faces
// removed. Two faces are duplicates if they reference the same three
// vertex positions, regardless of vertex order. The operation is
// idempotent.
func CleanMesh(m *model3d.Mesh) *model3d.Mesh {
	res := model3d.NewMesh()
	seen := map[[9]float64]bool{}
	m.Iterate(func(t *model3d.Triangle) {
		if t.Area() <= degenerateArea {
			return
		}
		key := faceKey(t)
		if seen[key] {
			return
		}
		seen[key] = true
		res.Add(&model3d.Triangle{t[0], t[1], t[2]})
	})
	return res
}

// faceKey flattens a triangle's vertices into an order-insensitive key.
func faceKey(t *model3d.Triangle) [9]float64 {
	verts := [3]model3d.Coord3D{t[0], t[1], t[2]}
	sort.Slice(verts[:], func(i, j int) bool {
		a, b := verts[i], verts[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	var key [9]float64
	for i, v := range verts {
		key[i*3] = v.X
		key[i*3+1] = v.Y
		key[i*3+2] = v.Z
	}
	return key
}

// MinExtent returns the smallest dimension of m's axis-aligned bounding
// box. Percentage-based configuration values are resolved against this so
// that they are independent of the target's absolute scale.
func MinExtent(m *model3d.Mesh) float64 {
	size := m.Max().Sub(m.Min())
	return math.Min(size.X, math.Min(size.Y, size.Z))
}

// paritySolid treats a possibly non-manifold mesh as a solid by counting
// distinct ray crossings, merging crossings through nearly duplicate
// surfaces into one boundary.
type paritySolid struct {
	model3d.Collider
}

func (p *paritySolid) Contains(c model3d.Coord3D) bool {
	if !model3d.InBounds(p, c) {
		return false
	}
	var crossings []float64
	p.Collider.RayCollisions(&model3d.Ray{
		Origin:    c,
		Direction: model3d.XYZ(-0.40475415, 0.86174632, -0.30588783),
	}, func(rc model3d.RayCollision) {
		crossings = append(crossings, rc.Scale)
	})
	if len(crossings) == 0 {
		return false
	}
	sort.Float64s(crossings)
	epsilon := p.Max().Sub(p.Min()).Norm() * 1e-8
	numUnique := 0
	lastScale := math.Inf(-1)
	for _, s := range crossings {
		if s-lastScale > epsilon {
			numUnique++
		}
		lastScale = s
	}
	return numUnique%2 == 1
}

// VoxelSolidify converts a possibly non-manifold or self-intersecting mesh
// into a conservative watertight approximation: the mesh interior is
// sampled on a voxel grid at the given pitch, and each filled voxel is
// reconstructed as an axis-aligned box, emitting only the faces that do
// not touch another filled voxel. The result is blocky and is intended as
// a combination-safe last resort, not a faithful surface.
func VoxelSolidify(m *model3d.Mesh, pitch float64) *model3d.Mesh {
	solid := &paritySolid{Collider: model3d.MeshToCollider(m)}

	// Pad the grid by one voxel on every side so that boundary cells are
	// never clipped.
	origin := m.Min().Sub(model3d.XYZ(pitch, pitch, pitch))
	size := m.Max().Sub(origin).Add(model3d.XYZ(pitch, pitch, pitch))
	nx := int(math.Ceil(size.X/pitch)) + 1
	ny := int(math.Ceil(size.Y/pitch)) + 1
	nz := int(math.Ceil(size.Z/pitch)) + 1

	filled := make([]bool, nx*ny*nz)
	cell := func(x, y, z int) bool {
		if x < 0 || y < 0 || z < 0 || x >= nx || y >= ny || z >= nz {
			return false
		}
		return filled[(x*ny+y)*nz+z]
	}
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				center := origin.Add(model3d.XYZ(
					(float64(x)+0.5)*pitch,
					(float64(y)+0.5)*pitch,
					(float64(z)+0.5)*pitch,
				))
				filled[(x*ny+y)*nz+z] = solid.Contains(center)
			}
		}
	}

	boxes := model3d.NewMesh()
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				if !cell(x, y, z) {
					continue
				}
				min := origin.Add(model3d.XYZ(
					float64(x)*pitch, float64(y)*pitch, float64(z)*pitch))
				max := min.Add(model3d.XYZ(pitch, pitch, pitch))
				if !cell(x-1, y, z) {
					addVoxelFace(boxes, min, max, 0, false)
				}
				if !cell(x+1, y, z) {
					addVoxelFace(boxes, min, max, 0, true)
				}
				if !cell(x, y-1, z) {
					addVoxelFace(boxes, min, max, 1, false)
				}
				if !cell(x, y+1, z) {
					addVoxelFace(boxes, min, max, 1, true)
				}
				if !cell(x, y, z-1) {
					addVoxelFace(boxes, min, max, 2, false)
				}
				if !cell(x, y, z+1) {
					addVoxelFace(boxes, min, max, 2, true)
				}
			}
		}
	}
	return CleanMesh(boxes)
}

// addVoxelFace emits the two triangles of one box face, wound so that the
// face normal points away from the voxel along the given axis.
func addVoxelFace(m *model3d.Mesh, min, max model3d.Coord3D, axis int, positive bool) {
	// Corner positions of the face quad, counter-clockwise when seen from
	// outside the voxel.
	var a, b, c, d model3d.Coord3D
	switch axis {
	case 0:
		if positive {
			a = model3d.XYZ(max.X, min.Y, min.Z)
			b = model3d.XYZ(max.X, max.Y, min.Z)
			c = model3d.XYZ(max.X, max.Y, max.Z)
			d = model3d.XYZ(max.X, min.Y, max.Z)
		} else {
			a = model3d.XYZ(min.X, min.Y, min.Z)
			b = model3d.XYZ(min.X, min.Y, max.Z)
			c = model3d.XYZ(min.X, max.Y, max.Z)
			d = model3d.XYZ(min.X, max.Y, min.Z)
		}
	case 1:
		if positive {
			a = model3d.XYZ(min.X, max.Y, min.Z)
			b = model3d.XYZ(min.X, max.Y, max.Z)
			c = model3d.XYZ(max.X, max.Y, max.Z)
			d = model3d.XYZ(max.X, max.Y, min.Z)
		} else {
			a = model3d.XYZ(min.X, min.Y, min.Z)
			b = model3d.XYZ(max.X, min.Y, min.Z)
			c = model3d.XYZ(max.X, min.Y, max.Z)
			d = model3d.XYZ(min.X, min.Y, max.Z)
		}
	default:
		if positive {
			a = model3d.XYZ(min.X, min.Y, max.Z)
			b = model3d.XYZ(max.X, min.Y, max.Z)
			c = model3d.XYZ(max.X, max.Y, max.Z)
			d = model3d.XYZ(min.X, max.Y, max.Z)
		} else {
			a = model3d.XYZ(min.X, min.Y, min.Z)
			b = model3d.XYZ(min.X, max.Y, min.Z)
			c = model3d.XYZ(max.X, max.Y, min.Z)
			d = model3d.XYZ(max.X, min.Y, min.Z)
		}
	}
	m.Add(&model3d.Triangle{a, b, c})
	m.Add(&model3d.Triangle{a, c, d})
}
