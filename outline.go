package textemboss

import (
	"github.com/golang/freetype/truetype"
	"github.com/unixpickle/model3d/model2d"
)

// A contour is one closed glyph outline as a flattened polyline.
type contour []model2d.Coord

// glyphContours converts a loaded glyph's TrueType points into flattened
// closed polylines. penX is the glyph's pen position in font units; scale
// maps font units to model units.
func glyphContours(gb *truetype.GlyphBuf, penX, scale float64, segs int) []contour {
	pts := gb.Points
	var out []contour
	start := 0
	for _, end := range gb.Ends {
		contourPts := pts[start:end]
		start = end
		if len(contourPts) == 0 {
			continue
		}
		if poly := flattenContour(contourPts, penX, scale, segs); len(poly) >= 3 {
			out = append(out, poly)
		}
	}
	return out
}

// flattenContour walks one TrueType contour, expanding the implied
// quadratic curve segments: off-curve points are quadratic controls, and
// two consecutive off-curve points imply an on-curve point at their
// midpoint, including across the wrap-around.
func flattenContour(pts []truetype.Point, penX, scale float64, segs int) contour {
	if len(pts) == 0 {
		return nil
	}

	toCoord := func(p truetype.Point) model2d.Coord {
		return model2d.Coord{
			X: (float64(p.X)/64.0 + penX) * scale,
			Y: (float64(p.Y) / 64.0) * scale,
		}
	}
	onCurve := func(p truetype.Point) bool { return p.Flags&0x01 != 0 }

	n := len(pts)

	// Choose the starting anchor point.
	var start model2d.Coord
	startIdx := 0
	if onCurve(pts[0]) {
		start = toCoord(pts[0])
	} else if onCurve(pts[n-1]) {
		start = toCoord(pts[n-1])
		startIdx = n - 1
	} else {
		start = toCoord(pts[n-1]).Mid(toCoord(pts[0]))
	}

	poly := make(contour, 0, n*segs+4)
	poly = append(poly, start)

	prevOn := start
	var haveCtrl bool
	var ctrl model2d.Coord

	i := (startIdx + 1) % n
	for steps := 0; steps < n; steps++ {
		p := pts[i]
		i = (i + 1) % n

		if onCurve(p) {
			on := toCoord(p)
			if haveCtrl {
				poly = append(poly, flattenQuad(prevOn, ctrl, on, segs)...)
				haveCtrl = false
			} else {
				poly = append(poly, on)
			}
			prevOn = on
			continue
		}

		c := toCoord(p)
		if haveCtrl {
			implied := ctrl.Mid(c)
			poly = append(poly, flattenQuad(prevOn, ctrl, implied, segs)...)
			prevOn = implied
		}
		ctrl = c
		haveCtrl = true
	}

	// Close back to the anchor.
	if haveCtrl {
		poly = append(poly, flattenQuad(prevOn, ctrl, start, segs)...)
	} else if poly[len(poly)-1] != start {
		poly = append(poly, start)
	}
	if poly[len(poly)-1] != poly[0] {
		poly = append(poly, poly[0])
	}

	if len(poly) < 4 {
		return nil
	}
	return poly
}

func flattenQuad(p0, p1, p2 model2d.Coord, segs int) []model2d.Coord {
	out := make([]model2d.Coord, 0, segs)
	for i := 1; i <= segs; i++ {
		t := float64(i) / float64(segs)
		u := 1 - t
		out = append(out, p0.Scale(u*u).Add(p1.Scale(2*u*t)).Add(p2.Scale(t*t)))
	}
	return out
}

// contoursMesh collects closed contours into a 2D segment mesh whose
// even-odd interior is the glyph area.
func contoursMesh(contours []contour) *model2d.Mesh {
	mesh := model2d.NewMesh()
	for _, c := range contours {
		if len(c) < 2 {
			continue
		}
		for i := 1; i < len(c); i++ {
			mesh.Add(&model2d.Segment{c[i-1], c[i]})
		}
		if c[0] != c[len(c)-1] {
			mesh.Add(&model2d.Segment{c[len(c)-1], c[0]})
		}
	}
	return mesh
}
