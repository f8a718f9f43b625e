package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// A FontResolver picks a font file for a piece of text by scanning font
// directories and preferring files whose names suggest coverage of the
// scripts the text uses.
type FontResolver struct {
	Dirs []string
}

// DefaultFontDirs returns the project-local font directory plus the
// platform's system font locations.
func DefaultFontDirs() []string {
	dirs := []string{filepath.Join("assets", "fonts")}
	switch runtime.GOOS {
	case "windows":
		dirs = append(dirs, `C:\Windows\Fonts`)
	case "darwin":
		dirs = append(dirs, "/Library/Fonts", "/System/Library/Fonts")
	default:
		dirs = append(dirs, "/usr/share/fonts", "/usr/local/share/fonts")
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".fonts"),
			filepath.Join(home, ".local", "share", "fonts"))
	}
	return dirs
}

// script keyword preferences, checked against lowercased file names.
var (
	thaiHints = []string{"sarabun", "leelaw", "angsana", "thai"}
	cjkHints  = []string{"cjk", "jp", "gothic", "meiryo", "mincho", "noto"}
)

// Resolve returns the path of a usable .ttf/.otf file for the text, or an
// error when no candidate exists in any configured directory.
func (r *FontResolver) Resolve(text string) (string, error) {
	hasThai, hasCJK := scriptsOf(text)

	var hints []string
	if hasThai {
		hints = append(hints, thaiHints...)
	}
	if hasCJK {
		hints = append(hints, cjkHints...)
	}

	var fallback string
	for _, dir := range r.Dirs {
		var hinted string
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".ttf" && ext != ".otf" {
				return nil
			}
			if fallback == "" {
				fallback = path
			}
			name := strings.ToLower(d.Name())
			for _, h := range hints {
				if strings.Contains(name, h) {
					hinted = path
					return fs.SkipAll
				}
			}
			return nil
		})
		if hinted != "" {
			return hinted, nil
		}
	}
	if fallback != "" {
		// No script-specific font found; the first one may still cover
		// the text, and the mesher will fail loudly if it does not.
		return fallback, nil
	}
	return "", errors.Errorf("no font found in %v", r.Dirs)
}

func scriptsOf(text string) (hasThai, hasCJK bool) {
	for _, r := range text {
		switch {
		case r >= 0x0E00 && r <= 0x0E7F:
			hasThai = true
		case (r >= 0x3040 && r <= 0x30FF) || (r >= 0x4E00 && r <= 0x9FFF):
			hasCJK = true
		}
	}
	return
}
