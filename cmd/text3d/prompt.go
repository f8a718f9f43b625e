package main

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/unixpickle/textemboss"
)

// The prompt grammar mirrors the CLI's chat-style input: text inside
// quotes becomes the 3D text, everything outside the quotes is option
// tokens (mode, depth, target file, color, thickness).

var (
	quoteRE  = regexp.MustCompile(`"(.+?)"|“(.+?)”|'(.+?)'`)
	depthRE  = regexp.MustCompile(`(?i)(?:ลึก|depth)\s*([0-9]+(?:\.[0-9]+)?)\s*%`)
	rgbRE    = regexp.MustCompile(`(?i)rgb\s*[:=]?\s*\(?\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)?`)
	hexRE    = regexp.MustCompile(`#?([0-9a-fA-F]{6})\b`)
	thickRE  = regexp.MustCompile(`(?i)(?:หนา|ความหนา|thickness|thick)\s*([0-9]+(?:\.[0-9]+)?)`)
	unsafeRE = regexp.MustCompile(`[^0-9a-zA-Zก-๙一-龯ぁ-んァ-ンー]+`)
)

var namedColors = map[string][4]float64{
	"สีแดง":    {0.86, 0.12, 0.12, 1},
	"สีเขียว":  {0.12, 0.78, 0.31, 1},
	"สีน้ำเงิน": {0, 0.31, 1, 1},
	"สีฟ้า":    {0.31, 0.67, 1, 1},
	"สีดำ":     {0.08, 0.08, 0.08, 1},
	"สีขาว":    {0.94, 0.94, 0.94, 1},
	"สีเหลือง": {1, 0.86, 0.24, 1},
}

type promptOptions struct {
	Mode         *textemboss.Mode
	DepthPercent float64
	Target       string
	Color        [4]float64
	ExtrudeDepth float64
	TargetHeight float64
}

// parsePrompt splits a prompt into the quoted text and the remaining
// option tokens. Without quotes the whole prompt is the text.
func parsePrompt(prompt string) (text, attrs string) {
	m := quoteRE.FindStringSubmatchIndex(prompt)
	if m == nil {
		return strings.TrimSpace(prompt), ""
	}
	for i := 1; i < 4; i++ {
		if m[2*i] >= 0 {
			text = prompt[m[2*i]:m[2*i+1]]
			break
		}
	}
	attrs = strings.Join(strings.Fields(prompt[:m[0]]+" "+prompt[m[1]:]), " ")
	return strings.TrimSpace(text), attrs
}

func parseOptions(attrs string) promptOptions {
	opts := promptOptions{
		Color:        [4]float64{0.78, 0.78, 0.78, 1},
		ExtrudeDepth: 2,
		TargetHeight: 1,
	}
	if attrs == "" {
		return opts
	}
	low := strings.ToLower(attrs)

	if strings.Contains(attrs, "นูน") || strings.Contains(low, "emboss") {
		mode := textemboss.ModeEmboss
		opts.Mode = &mode
	}
	if strings.Contains(attrs, "จม") || strings.Contains(low, "engrave") {
		mode := textemboss.ModeEngrave
		opts.Mode = &mode
	}

	if m := depthRE.FindStringSubmatch(attrs); m != nil {
		opts.DepthPercent, _ = strconv.ParseFloat(m[1], 64)
	}

	// The target is the last token naming a mesh file.
	tokens := strings.Fields(attrs)
	for i := len(tokens) - 1; i >= 0; i-- {
		t := strings.ToLower(tokens[i])
		if strings.Contains(t, ".glb") || strings.Contains(t, ".gltf") || strings.Contains(t, ".stl") {
			opts.Target = strings.Trim(tokens[i], `"`)
			break
		}
	}

	if m := rgbRE.FindStringSubmatch(attrs); m != nil {
		for i := 0; i < 3; i++ {
			v, _ := strconv.Atoi(m[i+1])
			opts.Color[i] = float64(clamp255(v)) / 255
		}
	} else if m := hexRE.FindStringSubmatch(attrs); m != nil {
		for i := 0; i < 3; i++ {
			v, _ := strconv.ParseInt(m[1][i*2:i*2+2], 16, 32)
			opts.Color[i] = float64(v) / 255
		}
	} else {
		for name, rgba := range namedColors {
			if strings.Contains(attrs, name) {
				opts.Color = rgba
				break
			}
		}
	}

	if m := thickRE.FindStringSubmatch(attrs); m != nil {
		opts.ExtrudeDepth, _ = strconv.ParseFloat(m[1], 64)
	}
	return opts
}

func clamp255(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// safeName reduces text to a short filename-safe token, keeping Thai and
// CJK characters.
func safeName(text string) string {
	s := strings.Trim(unsafeRE.ReplaceAllString(text, "_"), "_")
	if s == "" {
		return "text"
	}
	runes := []rune(s)
	if len(runes) > 32 {
		s = string(runes[:32])
	}
	return s
}
