// Command text3d renders a text prompt into a 3D solid, optionally
// embedding it into the surface of an existing model.
//
// Usage:
//
//	text3d [flags] "HELLO" emboss depth 3% model.glb
//	text3d [flags] "สวัสดี" สีเหลือง หนา 8
//
// Text inside quotes becomes the 3D text; tokens outside the quotes are
// options (emboss/engrave, depth N%, a .glb/.stl target, a color, a
// thickness). Without a target the text is exported as a standalone GLB.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/textemboss"
)

// fileConfig is the optional TOML configuration file.
type fileConfig struct {
	Blender  string                 `toml:"blender"`
	FontDirs []string               `toml:"font_dirs"`
	OutDir   string                 `toml:"out_dir"`
	Embed    textemboss.EmbedConfig `toml:"embed"`
}

func main() {
	fontPath := flag.String("font", "", "path to a TTF/OTF font (default: auto-detect)")
	fontDir := flag.String("font-dir", "", "extra font directory to search first")
	configPath := flag.String("config", "", "path to a TOML config file")
	outDir := flag.String("out", "outputs", "output directory")
	blenderExe := flag.String("blender", "", "path to the Blender executable (default: $TEXT3D_BLENDER_EXE)")
	engineName := flag.String("engine", "blender", "boolean engine: blender or marching")
	seed := flag.Int64("seed", 0, "random seed for reproducible placement (0 = random)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "text3d",
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	prompt := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(prompt) == "" {
		fmt.Fprintln(os.Stderr, `Usage: text3d [flags] "TEXT" [options...]`)
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(2)
	}

	text, attrs := parsePrompt(prompt)
	if text == "" {
		logger.Fatal("prompt contains no text")
	}
	opts := parseOptions(attrs)
	logger.Debug("parsed prompt", "text", text, "attrs", attrs)

	// Defaults first, so a config file only has to name the keys it
	// overrides. Mode and depth always come from the prompt.
	cfg := fileConfig{
		OutDir: *outDir,
		Embed:  textemboss.DefaultEmbedConfig(textemboss.ModeEmboss, 1),
	}
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			logger.Fatal("read config", "error", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			logger.Fatal("parse config", "error", err)
		}
	}

	// Font resolution: explicit flag, then configured directories.
	if *fontPath == "" {
		dirs := cfg.FontDirs
		if *fontDir != "" {
			dirs = append([]string{*fontDir}, dirs...)
		}
		dirs = append(dirs, DefaultFontDirs()...)
		resolver := &FontResolver{Dirs: dirs}
		resolved, err := resolver.Resolve(text)
		if err != nil {
			logger.Fatal("resolve font", "error", err)
		}
		*fontPath = resolved
	}
	logger.Info("using font", "path", *fontPath)

	font, err := textemboss.LoadFont(*fontPath)
	if err != nil {
		logger.Fatal("load font", "error", err)
	}
	mesher := &textemboss.FontMesher{Font: font, Kerning: true}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}

	if opts.Target != "" && opts.Mode != nil && opts.DepthPercent > 0 {
		embed(logger, mesher, rng, text, opts, cfg, *blenderExe, *engineName)
		return
	}

	// Standalone text solid.
	mesh, err := mesher.TextMesh(text, opts.ExtrudeDepth, opts.TargetHeight)
	if err != nil {
		logger.Fatal("generate text mesh", "error", err)
	}
	dir := filepath.Join(cfg.OutDir, "meshes")
	essentials.Must(os.MkdirAll(dir, 0o755))
	outPath := filepath.Join(dir, fmt.Sprintf("text_%s_%s.glb",
		safeName(text), time.Now().Format("20060102_150405")))
	essentials.Must(textemboss.SaveGLB(outPath, mesh, &opts.Color))
	logger.Info("wrote standalone text", "path", outPath)
}

func embed(logger *log.Logger, mesher textemboss.TextMesher, rng *rand.Rand,
	text string, opts promptOptions, cfg fileConfig, blenderExe, engineName string) {
	embedCfg := cfg.Embed
	embedCfg.Mode = *opts.Mode
	embedCfg.DepthPercent = opts.DepthPercent

	var engine textemboss.BooleanEngine
	switch engineName {
	case "marching":
		engine = &textemboss.MarchingEngine{}
	case "blender":
		exe := blenderExe
		if exe == "" {
			exe = cfg.Blender
		}
		if exe == "" {
			exe = os.Getenv("TEXT3D_BLENDER_EXE")
		}
		if exe == "" {
			logger.Fatal("no Blender executable configured; set -blender, the config file, or $TEXT3D_BLENDER_EXE")
		}
		engine = &textemboss.BlenderEngine{Exe: exe, Timeout: embedCfg.CombineTimeout}
	default:
		logger.Fatal("unknown engine", "engine", engineName)
	}

	target, err := textemboss.LoadMeshFile(opts.Target)
	if err != nil {
		logger.Fatal("load target mesh", "error", err)
	}

	embedder := &textemboss.Embedder{Engine: engine, Logger: logger, Rand: rng}
	res, err := embedder.EmbedText(context.Background(), target, mesher, text, embedCfg)
	if err != nil {
		logger.Fatal("embedding failed", "error", err)
	}

	dir := filepath.Join(cfg.OutDir, "engrave_emboss")
	essentials.Must(os.MkdirAll(dir, 0o755))
	stem := strings.TrimSuffix(filepath.Base(opts.Target), filepath.Ext(opts.Target))
	outPath := filepath.Join(dir, fmt.Sprintf("%s_%s_%gpct_%s.glb",
		stem, res.Mode, res.DepthPercent, safeName(text)))
	essentials.Must(textemboss.SaveGLB(outPath, res.Mesh, &opts.Color))
	logger.Info("wrote embedded result", "path", outPath, "attempts", res.Attempts)
}
