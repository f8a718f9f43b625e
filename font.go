package textemboss

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/go-text/typesetting/di"
	gotextfont "github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/shaping"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/math/fixed"
)

var kernFeatureTag = ot.MustNewTag("kern")

// ParsedFont holds parsed TrueType data plus the state needed for glyph
// layout: the typographic ascent used for scaling, and a shaping face when
// the font could be loaded for HarfBuzz shaping.
type ParsedFont struct {
	ttf    *truetype.Font
	ascent float64
	shaped *gotextfont.Face
}

// ParseTTF parses a TTF/OTF (TrueType outlines) font file.
func ParseTTF(data []byte) (*ParsedFont, error) {
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse font")
	}
	res := &ParsedFont{ttf: ttf}
	if asc, ok := parseTypoAscender(data); ok && asc > 0 {
		res.ascent = asc
	}
	if face, err := gotextfont.ParseTTF(bytes.NewReader(data)); err == nil {
		res.shaped = face
	}
	return res, nil
}

// LoadFont reads and parses a font file from disk.
func LoadFont(path string) (*ParsedFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read font %s", path)
	}
	return ParseTTF(data)
}

// unitsPerEm returns the font's design grid resolution.
func (p *ParsedFont) unitsPerEm() float64 {
	return float64(p.ttf.FUnitsPerEm())
}

// ascentOrFallback returns the typographic ascent in font units, falling
// back to the font's bounding box and finally the em size.
func (p *ParsedFont) ascentOrFallback() float64 {
	if p.ascent > 0 {
		return p.ascent
	}
	bounds := p.ttf.Bounds(fixed.Int26_6(p.ttf.FUnitsPerEm()))
	if asc := float64(bounds.Max.Y); asc > 0 {
		return asc
	}
	return p.unitsPerEm()
}

// A positionedGlyph is one glyph of a shaped run, with its pen position in
// font units.
type positionedGlyph struct {
	index truetype.Index
	penX  float64
}

// shapeText lays out the string as positioned glyph indices, preferring
// HarfBuzz shaping when the face supports it and falling back to a simple
// advance-plus-kerning walk. It also returns the total layout advance in
// font units.
func shapeText(p *ParsedFont, s string, kerning bool, spacing float64) ([]positionedGlyph, float64) {
	if glyphs, advance, ok := shapeWithHarfBuzz(p, s, kerning, spacing); ok {
		return glyphs, advance
	}

	fixedScale := fixed.Int26_6(int32(p.unitsPerEm() * 64))
	var glyphs []positionedGlyph
	penX := 0.0
	var prev truetype.Index
	hasPrev := false
	for _, r := range s {
		idx := p.ttf.Index(r)
		if kerning && hasPrev {
			k := p.ttf.Kern(fixedScale, prev, idx)
			penX += (float64(k) / 64.0) * spacing
		}
		glyphs = append(glyphs, positionedGlyph{index: idx, penX: penX})
		adv := p.ttf.HMetric(fixedScale, idx).AdvanceWidth
		penX += (float64(adv) / 64.0) * spacing
		prev, hasPrev = idx, true
	}
	return glyphs, penX
}

func shapeWithHarfBuzz(p *ParsedFont, s string, kerning bool, spacing float64) ([]positionedGlyph, float64, bool) {
	if p.shaped == nil {
		return nil, 0, false
	}
	runes := []rune(s)
	if len(runes) == 0 {
		return nil, 0, true
	}

	var features []shaping.FontFeature
	if !kerning {
		features = append(features, shaping.FontFeature{Tag: kernFeatureTag, Value: 0})
	}
	shaper := shaping.HarfbuzzShaper{}
	out := shaper.Shape(shaping.Input{
		Text:         runes,
		RunStart:     0,
		RunEnd:       len(runes),
		Direction:    di.DirectionLTR,
		Face:         p.shaped,
		FontFeatures: features,
		Size:         fixed.I(int(p.ttf.FUnitsPerEm())),
	})

	glyphs := make([]positionedGlyph, 0, len(out.Glyphs))
	penX := 0.0
	for _, g := range out.Glyphs {
		xOffset := float64(out.ToFontUnit(g.XOffset))
		glyphs = append(glyphs, positionedGlyph{
			index: truetype.Index(g.GlyphID),
			penX:  penX + xOffset,
		})
		penX += float64(out.ToFontUnit(g.XAdvance)) * spacing
	}
	return glyphs, penX, true
}

// parseTypoAscender extracts sTypoAscender from the OS/2 table, which
// matches how common CAD text tools interpret a size parameter.
func parseTypoAscender(data []byte) (float64, bool) {
	const (
		tableDirOffset = 12
		recordSize     = 16
		typoAscOffset  = 68
	)
	if len(data) < tableDirOffset {
		return 0, false
	}
	numTables := int(binary.BigEndian.Uint16(data[4:6]))
	if len(data) < tableDirOffset+numTables*recordSize {
		return 0, false
	}
	for i := 0; i < numTables; i++ {
		recOff := tableDirOffset + i*recordSize
		if string(data[recOff:recOff+4]) != "OS/2" {
			continue
		}
		tableOffset := int(binary.BigEndian.Uint32(data[recOff+8 : recOff+12]))
		tableLen := int(binary.BigEndian.Uint32(data[recOff+12 : recOff+16]))
		if tableOffset < 0 || tableLen < typoAscOffset+2 || tableOffset+tableLen > len(data) {
			return 0, false
		}
		raw := int16(binary.BigEndian.Uint16(data[tableOffset+typoAscOffset : tableOffset+typoAscOffset+2]))
		return float64(raw), raw > 0
	}
	return 0, false
}
