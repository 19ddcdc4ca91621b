package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"eq-wld-decoder/internal/actor"
	"eq-wld-decoder/internal/animation"
	"eq-wld-decoder/internal/archive"
	"eq-wld-decoder/internal/batch"
	"eq-wld-decoder/internal/config"
	"eq-wld-decoder/internal/logging"
	"eq-wld-decoder/internal/skeleton"
	"eq-wld-decoder/internal/wld"
)

func main() {
	configFile := flag.String("config", "", "Path to a .json or .toml config file")
	archiveDir := flag.String("archive", "", "Directory holding the extracted archive (default: auto-detect)")
	wldName := flag.String("wld", "", "WLD file inside the archive (default: first .wld)")
	outputDir := flag.String("output", "", "Output directory for manifest.json (default: <archive>/wld-export)")
	naming := flag.String("naming", "", "Bone naming: prefix or replace (default: by document version)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	level := flag.String("log", "", "Log level: debug, info, warn, error")
	kindsOnly := flag.Bool("kinds", false, "Print the fragment histogram and exit")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			logging.Fatal("loading config: %v", err)
		}
	}

	cfg.Resolve(config.Flags{
		ArchiveDir: *archiveDir,
		WLD:        *wldName,
		OutputDir:  *outputDir,
		Naming:     *naming,
		Workers:    *workers,
		LogLevel:   *level,
	})
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

	fmt.Printf("%s: %s, %d fragments, %d strings\n", cfg.WLD, d.Version(), d.Len(), d.Header().StringCount)
	kinds := d.Kinds()
	for _, k := range d.SortedKinds() {
		fmt.Printf("  %#04x %-24s %6d\n", uint32(k), k, kinds[k])
	}
	if *kindsOnly {
		return
	}

	var skelOpts []skeleton.Option
	if cfg.Naming != "" {
		n, err := skeleton.ParseNaming(cfg.Naming)
		if err != nil {
			logging.Fatal("%v", err)
		}
		skelOpts = append(skelOpts, skeleton.WithNaming(n))
	}

	items := batch.Items(d)
	fmt.Printf("Items: %d, Workers: %d\n", len(items), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		Doc:       d,
		Skeleton:  skelOpts,
		Animation: []animation.Option{animation.WithDefaultDelay(cfg.FrameDelay())},
		Workers:   cfg.Workers,
		Progress:  2 * time.Second,
	}, items)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.3fs\n", elapsed.Seconds())

	success, warned := 0, 0
	var failed []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed = append(failed, r)
		}
		if len(r.Warnings) > 0 {
			warned++
		}
		for _, w := range r.Warnings {
			logging.Debug("%s", w)
		}
	}
	fmt.Printf("Decoded: %d/%d (%d with warnings)\n", success, len(items), warned)

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := min(len(failed), 20)
		for _, r := range failed[:limit] {
			fmt.Printf("  [%d] %s %s: %s\n", r.Index, r.Kind, r.Name, r.Error)
		}
		if len(failed) > limit {
			fmt.Printf("  ... and %d more\n", len(failed)-limit)
		}
	}

	insts, errs := actor.AllInstances(d)
	for _, err := range errs {
		logging.Warn("%v", err)
	}
	if len(insts) > 0 {
		unresolved := 0
		for _, inst := range insts {
			if inst.Def == 0 {
				unresolved++
			}
		}
		fmt.Printf("Actors placed: %d (%d defined elsewhere)\n", len(insts), unresolved)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logging.Fatal("%v", err)
	}
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		logging.Error("writing manifest: %v", err)
		os.Exit(1)
	}
	fmt.Printf("Manifest: %s\n", manifestPath)
}
