package batch

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"eq-wld-decoder/internal/actor"
	"eq-wld-decoder/internal/animation"
	"eq-wld-decoder/internal/logging"
	"eq-wld-decoder/internal/mesh"
	"eq-wld-decoder/internal/skeleton"
	"eq-wld-decoder/internal/wld"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Doc       *wld.Document
	Skeleton  []skeleton.Option
	Animation []animation.Option
	Workers   int

	// Progress is the interval between progress lines, 0 for none.
	Progress time.Duration
}

// Item is one fragment to decode.
type Item struct {
	Kind  wld.Kind
	Index int
	Name  string
}

// Items lists every mesh, material, skeleton and actor definition of d in
// document order.
func Items(d *wld.Document) []Item {
	var items []Item
	for i, f := range d.Fragments() {
		switch k := f.Kind(); k {
		case wld.KindDmSpriteDef, wld.KindDmSpriteDef2, wld.KindMaterialDef,
			wld.KindHierarchicalSpriteDef, wld.KindActorDef:
			items = append(items, Item{Kind: k, Index: i, Name: d.Name(i)})
		}
	}
	return items
}

// Result holds the outcome of decoding one item. Exactly one of the
// decoded values is set when Success is true.
type Result struct {
	Item
	Success  bool
	Error    string
	Warnings []string

	Mesh       *mesh.Mesh
	Material   *mesh.Material
	Skeleton   *skeleton.Skeleton
	Animations *animation.Set
	Actor      *actor.Def
}

// Run decodes all items using a worker pool. Results are in item order.
func Run(cfg Config, items []Item) []Result {
	total := len(items)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	if cfg.Progress > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Progress)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						logging.Info("[%d/%d] %.1f items/sec", p, total, rate)
					}
				}
			}
		}()
	}

	workers := max(cfg.Workers, 1)
	itemChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range itemChan {
				results[idx] = processItem(cfg, items[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range items {
		itemChan <- i
	}
	close(itemChan)

	wg.Wait()
	close(done)

	return results
}

func processItem(cfg Config, item Item) Result {
	r := Result{Item: item}
	var (
		warnings []*wld.Warning
		err      error
	)
	switch item.Kind {
	case wld.KindDmSpriteDef, wld.KindDmSpriteDef2:
		r.Mesh, err = mesh.Decode(cfg.Doc, item.Index)
		if err == nil {
			warnings = r.Mesh.Warnings
		}
	case wld.KindMaterialDef:
		r.Material, err = mesh.DecodeMaterial(cfg.Doc, item.Index)
	case wld.KindHierarchicalSpriteDef:
		r.Skeleton, err = skeleton.Build(cfg.Doc, item.Index, cfg.Skeleton...)
		if err != nil {
			break
		}
		warnings = slices.Clone(r.Skeleton.Warnings)
		r.Animations, err = animation.Synthesize(cfg.Doc, r.Skeleton, cfg.Animation...)
		if err == nil {
			warnings = append(warnings, r.Animations.Warnings...)
		}
	case wld.KindActorDef:
		r.Actor, err = actor.DecodeDef(cfg.Doc, item.Index)
		if err == nil {
			warnings = r.Actor.Warnings
		}
	default:
		err = fmt.Errorf("batch: %s fragments are not decoded", item.Kind)
	}

	for _, w := range warnings {
		r.Warnings = append(r.Warnings, w.Error())
	}
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Success = true
	return r
}
