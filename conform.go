package textemboss

import "github.com/unixpickle/model3d/model3d"

// ConformToSurface warps a flat text solid onto the target surface.
//
// The tool mesh is given in local coordinates: X/Y are its planar
// footprint and Z encodes extrusion depth. Each vertex is placed on the
// tangent plane through the frame anchor, projected down onto the target
// surface by a ray cast from lift above the plane, and finally offset
// along the normal by its depth coordinate (outward for emboss, inward
// for engrave). When a projection ray misses, which can happen at the very
// edge of the measured patch, the tangent-plane point itself is used so
// that no vertex becomes invalid.
func ConformToSurface(tool *model3d.Mesh, collider model3d.Collider,
	frame TangentFrame, lift float64, mode Mode) *model3d.Mesh {
	sign := 1.0
	if mode == ModeEngrave {
		sign = -1.0
	}
	down := frame.Normal.Scale(-1)
	warped := tool.MapCoords(func(c model3d.Coord3D) model3d.Coord3D {
		base := frame.Point.Add(frame.T.Scale(c.X)).Add(frame.B.Scale(c.Y))
		origin := base.Add(frame.Normal.Scale(lift))
		surface := base
		if rc, ok := collider.FirstRayCollision(&model3d.Ray{
			Origin:    origin,
			Direction: down,
		}); ok {
			surface = origin.Add(down.Scale(rc.Scale))
		}
		return surface.Add(frame.Normal.Scale(sign * c.Z))
	})
	return CleanMesh(warped)
}
