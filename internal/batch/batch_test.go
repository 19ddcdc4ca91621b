package batch_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"eq-wld-decoder/internal/batch"
	"eq-wld-decoder/internal/wld"
	"eq-wld-decoder/internal/wld/wldtest"
)

func document(t *testing.T) *wld.Document {
	b := wldtest.New()
	box := b.Add("BOX_DMSPRITEDEF", &wld.DmSpriteDef2{
		Positions: [][3]int16{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	})

	bm := b.Add("WALL_BM", &wld.BmInfo{Files: []string{"WALL.BMP"}})
	sdef := b.Add("WALL_SPRITEDEF", &wld.SimpleSpriteDef{Frames: []wld.Ref[*wld.BmInfo]{wld.IndexRef[*wld.BmInfo](bm)}})
	ss := b.Add("", &wld.SimpleSprite{Sprite: wld.IndexRef[*wld.SimpleSpriteDef](sdef)})
	b.Add("WALL_MDF", &wld.MaterialDef{RenderMethod: 1, Sprite: wld.IndexRef[*wld.SimpleSprite](ss)})
	b.Add("BROKEN_MDF", &wld.MaterialDef{RenderMethod: 1, Sprite: wld.IndexRef[*wld.SimpleSprite](999)})

	td := b.Add("BAT_TRACKDEF", &wld.TrackDef{Frames: []wld.FrameTransform{{RotateDenominator: 1}}})
	tr := b.Add("BAT_TRACK", &wld.Track{Def: wld.IndexRef[*wld.TrackDef](td)})
	b.Add("F01BAT_TRACK", &wld.Track{Def: wld.IndexRef[*wld.TrackDef](td)})
	b.Add("BAT_HS_DEF", &wld.HierarchicalSpriteDef{Dags: []wld.Dag{
		{Name: b.Name("BAT_DAG"), Track: wld.FragmentRef(tr)},
	}})

	sprite := b.Add("", &wld.DmSprite{Sprite: wld.FragmentRef(box)})
	b.Add("BOX_ACTORDEF", &wld.ActorDef{Fragments: []wld.FragmentRef{wld.FragmentRef(sprite)}})
	return b.Document(t)
}

func TestRun(t *testing.T) {
	d := document(t)
	items := batch.Items(d)
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	want := []string{"BOX_DMSPRITEDEF", "WALL_MDF", "BROKEN_MDF", "BAT_HS_DEF", "BOX_ACTORDEF"}
	if !slices.Equal(names, want) {
		t.Fatalf("Items:\nhave %v\nwant %v", names, want)
	}

	results := batch.Run(batch.Config{Doc: d, Workers: 3, Progress: time.Hour}, items)
	if len(results) != len(items) {
		t.Fatalf("Run:\nhave %d results\nwant %d", len(results), len(items))
	}
	for i, r := range results {
		if r.Item != items[i] {
			t.Fatalf("results[%d].Item:\nhave %+v\nwant %+v", i, r.Item, items[i])
		}
		if r.Success == (r.Name == "BROKEN_MDF") {
			t.Fatalf("results[%d] %s:\nhave Success=%v %q", i, r.Name, r.Success, r.Error)
		}
	}
	if results[0].Mesh == nil || len(results[0].Mesh.Positions) != 3 {
		t.Fatalf("mesh result:\nhave %+v", results[0])
	}
	if results[1].Material == nil || results[1].Material.Texture() != "wall.bmp" {
		t.Fatalf("material result:\nhave %+v", results[1])
	}
	if !strings.Contains(results[2].Error, wld.ErrBrokenReference.Error()) {
		t.Fatalf("broken material:\nhave %q\nwant %v", results[2].Error, wld.ErrBrokenReference)
	}
	if a := results[3].Animations; a == nil || !slices.Equal(a.Names(), []string{"REST", "F01"}) {
		t.Fatalf("skeleton result:\nhave %+v", results[3])
	}
	if results[4].Actor == nil || len(results[4].Actor.Meshes) != 1 {
		t.Fatalf("actor result:\nhave %+v", results[4])
	}
}

func TestWriteManifest(t *testing.T) {
	d := document(t)
	results := batch.Run(batch.Config{Doc: d, Workers: 1}, batch.Items(d))
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := batch.WriteManifest(path, results); err != nil {
		t.Fatalf("WriteManifest:\nhave %v\nwant nil", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []batch.ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("manifest:\nhave %v\nwant valid JSON", err)
	}
	if len(entries) != 5 {
		t.Fatalf("manifest:\nhave %d entries\nwant 5", len(entries))
	}
	if e := entries[0]; e.Kind != "DmSpriteDef2" || e.Vertices != 3 || !e.OK {
		t.Fatalf("entries[0]:\nhave %+v", e)
	}
	if e := entries[3]; e.Bones != 1 || !slices.Equal(e.Animations, []string{"REST", "F01"}) {
		t.Fatalf("entries[3]:\nhave %+v", e)
	}
	if e := entries[2]; e.OK || e.Error == "" {
		t.Fatalf("entries[2]:\nhave %+v\nwant the error", e)
	}
}

func TestRunKeepsSkeletonWarnings(t *testing.T) {
	b := wldtest.New()
	var dags []wld.Dag
	for _, name := range []string{"A", "B", "C", "D"} {
		td := b.Add(name+"_TRACKDEF", &wld.TrackDef{Frames: []wld.FrameTransform{{RotateDenominator: 1}}})
		tr := b.Add(name+"_TRACK", &wld.Track{Def: wld.IndexRef[*wld.TrackDef](td)})
		// No sub_dags: B, C and D are orphans.
		dags = append(dags, wld.Dag{Name: b.Name(name + "_DAG"), Track: wld.FragmentRef(tr)})
	}
	b.Add("Z01A_TRACK", &wld.Track{Def: wld.IndexRef[*wld.TrackDef](999)})
	b.Add("X_HS_DEF", &wld.HierarchicalSpriteDef{Dags: dags})
	d := b.Document(t)

	results := batch.Run(batch.Config{Doc: d, Workers: 1}, batch.Items(d))
	r := results[0]
	if !r.Success || len(r.Warnings) != 4 {
		t.Fatalf("Result:\nhave %v %v\nwant success with 4 warnings", r.Success, r.Warnings)
	}
	sk := r.Skeleton.Warnings
	if len(sk) != 3 {
		t.Fatalf("Skeleton.Warnings:\nhave %v\nwant 3", sk)
	}
	for k, w := range sk[len(sk):cap(sk)] {
		if w != nil {
			t.Fatalf("Skeleton.Warnings spare slot %d:\nhave %v\nwant nil", k, w)
		}
	}
}
