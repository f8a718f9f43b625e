package textemboss

import (
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// A TextMesher renders a string into a flat extruded solid: centered in
// X/Y, Z in [0, extrudeDepth], with its Y extent normalized to
// targetHeight. Implementations must fail with a descriptive error when
// the text yields no usable glyph area.
type TextMesher interface {
	TextMesh(text string, extrudeDepth, targetHeight float64) (*model3d.Mesh, error)
}

// FontMesher renders text through a parsed TrueType font: glyph outlines
// are flattened to polylines, the even-odd interior is retraced on a
// marching-squares grid (which yields a manifold profile even when glyph
// outlines overlap), and the profile is extruded along Z.
type FontMesher struct {
	Font *ParsedFont

	// CurveSegs is the number of flattening segments per quadratic curve.
	// Zero means 16.
	CurveSegs int

	// Resolution is the number of retrace grid cells across the text
	// height. Zero means 200.
	Resolution int

	// Kerning enables pair kerning during layout.
	Kerning bool

	// Spacing multiplies glyph advances. Zero means 1.
	Spacing float64
}

var _ TextMesher = (*FontMesher)(nil)

// referenceSize is the outline height the glyphs are initially scaled to.
// The final mesh is renormalized, so this only anchors tolerances.
const referenceSize = 10.0

func (f *FontMesher) TextMesh(text string, extrudeDepth, targetHeight float64) (*model3d.Mesh, error) {
	if extrudeDepth <= 0 {
		return nil, errors.Errorf("extrude depth must be > 0, got %g", extrudeDepth)
	}
	if targetHeight <= 0 {
		return nil, errors.Errorf("target height must be > 0, got %g", targetHeight)
	}
	if f.Font == nil || f.Font.ttf == nil {
		return nil, errors.New("no font configured")
	}
	segs := f.CurveSegs
	if segs <= 0 {
		segs = 16
	}
	resolution := f.Resolution
	if resolution <= 0 {
		resolution = 200
	}
	spacing := f.Spacing
	if spacing == 0 {
		spacing = 1
	}
	if spacing < 0 {
		return nil, errors.Errorf("spacing must be >= 0, got %g", spacing)
	}

	contours := f.outlines(text, segs, spacing)
	if len(contours) == 0 {
		return nil, errors.Errorf("text %q produced no glyph outlines; check the font", text)
	}
	solid := contoursMesh(contours).Solid()

	size := solid.Max().Sub(solid.Min())
	if size.X < 1e-9 || size.Y < 1e-9 {
		return nil, errors.Errorf("text %q has a near-zero footprint", text)
	}
	delta := size.Y / float64(resolution)
	profile := model2d.MarchingSquaresSearch(solid, delta, 8)
	if profile.NumSegments() == 0 {
		return nil, errors.Errorf("text %q has no usable glyph area at the retrace resolution", text)
	}

	mesh := model3d.ProfileMesh(profile, 0, extrudeDepth)

	// Center the footprint and rest the solid on Z=0.
	min, max := mesh.Min(), mesh.Max()
	mesh = mesh.Translate(model3d.XYZ(
		-(min.X+max.X)/2, -(min.Y+max.Y)/2, -min.Z))

	// Normalize the Y extent without disturbing the extrusion depth.
	sXY := targetHeight / (max.Y - min.Y)
	mesh = mesh.MapCoords(func(c model3d.Coord3D) model3d.Coord3D {
		return model3d.XYZ(c.X*sXY, c.Y*sXY, c.Z)
	})
	return CleanMesh(mesh), nil
}

// outlines lays out the string and flattens every glyph's contours,
// scaled so the font ascent maps to referenceSize.
func (f *FontMesher) outlines(text string, segs int, spacing float64) []contour {
	scale := referenceSize / f.Font.ascentOrFallback()

	// Load glyphs at 64 units per font unit so coordinates come out in
	// font units; the float scale is applied during flattening.
	fixedScale := fixed.Int26_6(int32(f.Font.unitsPerEm() * 64))

	glyphs, _ := shapeText(f.Font, text, f.Kerning, spacing)
	var out []contour
	var gb truetype.GlyphBuf
	for _, g := range glyphs {
		gb = truetype.GlyphBuf{}
		if err := gb.Load(f.Font.ttf, fixedScale, g.index, xfont.HintingNone); err != nil {
			continue
		}
		out = append(out, glyphContours(&gb, g.penX, scale, segs)...)
	}
	return out
}
