package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	"eq-wld-decoder/internal/archive"
	"eq-wld-decoder/internal/config"
	"eq-wld-decoder/internal/logging"
	"eq-wld-decoder/internal/mesh"
	"eq-wld-decoder/internal/texture"
	"eq-wld-decoder/internal/wld"
)

func writeWebP(outPath string, img image.Image) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("WebP encode: %w", err)
	}
	return f.Close()
}

func main() {
	configFile := flag.String("config", "", "Path to a .json or .toml config file")
	archiveDir := flag.String("archive", "", "Directory holding the extracted archive (default: auto-detect)")
	wldName := flag.String("wld", "", "WLD file inside the archive (default: first .wld)")
	outputDir := flag.String("output", "", "Output directory (default: <archive>/wld-export)")
	level := flag.String("log", "", "Log level: debug, info, warn, error")
	noMask := flag.Bool("nomask", false, "Keep the key colour of masked materials opaque")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			logging.Fatal("loading config: %v", err)
		}
	}
	cfg.Resolve(config.Flags{ArchiveDir: *archiveDir, WLD: *wldName, OutputDir: *outputDir, LogLevel: *level})
	if err := cfg.Validate(); err != nil {
		logging.Fatal("%v", err)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		logging.Fatal("%v", err)
	}

	src, err := archive.OpenDir(cfg.ArchiveDir)
	if err != nil {
		logging.Fatal("%v", err)
	}
	data, err := src.Get(cfg.WLD)
	if err != nil {
		logging.Fatal("%v", err)
	}
	d, err := wld.Parse(data)
	if err != nil {
		logging.Fatal("%s: %v", cfg.WLD, err)
	}

	materials, errs := mesh.AllMaterials(d)
	for _, err := range errs {
		logging.Warn("%v", err)
	}

	cache := texture.NewCache(src)
	fmt.Printf("Textures: %d indexed, %d materials\n", cache.Index().Len(), len(materials))

	outDir := filepath.Join(cfg.OutputDir, "textures")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		logging.Fatal("%v", err)
	}

	written := make(map[string]bool)
	errors := 0
	for _, m := range materials {
		masked := m.Masked() && !*noMask
		for _, name := range m.Textures {
			stem := strings.TrimSuffix(name, path.Ext(name))
			if masked {
				stem += "_masked"
			}
			if written[stem] {
				continue
			}
			written[stem] = true

			tex, err := cache.Resolve(name)
			if err != nil {
				logging.Warn("%s: %v", m.Name, err)
				errors++
				continue
			}
			img := tex.Image
			if masked {
				img = tex.Masked()
			}
			if err := writeWebP(filepath.Join(outDir, stem+".webp"), img); err != nil {
				logging.Error("%s: %v", stem, err)
				errors++
				continue
			}
			logging.Debug("%s -> %s.webp (%s)", name, stem, tex.Format)
		}
	}

	fmt.Printf("Written: %d, errors: %d\n", len(written)-errors, errors)
	if errors > 0 {
		os.Exit(1)
	}
}
