package actor_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"eq-wld-decoder/internal/actor"
	"eq-wld-decoder/internal/wld"
	"eq-wld-decoder/internal/wld/wldtest"
)

func TestDecodeDef(t *testing.T) {
	b := wldtest.New()
	mesh := b.Add("TREE_DMSPRITEDEF", &wld.DmSpriteDef2{})
	sprite := b.Add("", &wld.DmSprite{Sprite: wld.FragmentRef(mesh)})
	skel := b.Add("BAT_HS_DEF", &wld.HierarchicalSpriteDef{})
	hs := b.Add("", &wld.HierarchicalSprite{Sprite: wld.IndexRef[*wld.HierarchicalSpriteDef](skel)})
	light := b.Add("", &wld.Light{})
	i := b.Add("TREE_ACTORDEF", &wld.ActorDef{
		Callback:  b.Name("SPRITECALLBACK"),
		Actions:   []wld.Action{{LODs: []float32{1e30}}},
		Fragments: []wld.FragmentRef{wld.FragmentRef(sprite), wld.FragmentRef(hs), wld.FragmentRef(light), 99},
	})
	d := b.Document(t)

	def, err := actor.DecodeDef(d, i)
	if err != nil {
		t.Fatalf("DecodeDef:\nhave %v\nwant nil", err)
	}
	if def.Name != "TREE_ACTORDEF" || def.Callback != "SPRITECALLBACK" {
		t.Fatalf("Def:\nhave %q %q\nwant TREE_ACTORDEF SPRITECALLBACK", def.Name, def.Callback)
	}
	if !slices.Equal(def.Meshes, []int{mesh}) || !slices.Equal(def.Skeletons, []int{skel}) {
		t.Fatalf("Def links:\nhave %v %v\nwant [%d] [%d]", def.Meshes, def.Skeletons, mesh, skel)
	}
	if len(def.Actions) != 1 || def.Actions[0].LODs[0] != 1e30 {
		t.Fatalf("Def.Actions:\nhave %+v", def.Actions)
	}
	if len(def.Warnings) != 1 || !errors.Is(def.Warnings[0], wld.ErrDataIntegrity) {
		t.Fatalf("Def.Warnings:\nhave %v\nwant one for the dangling reference", def.Warnings)
	}
}

func TestDecodeInstance(t *testing.T) {
	b := wldtest.New()
	def := b.Add("TREE_ACTORDEF", &wld.ActorDef{})
	colors := b.Add("", &wld.DmRGBTrackDef{Colors: []uint32{0xff0000ff, 0xff00ff00}})
	track := b.Add("", &wld.DmRGBTrack{Def: wld.IndexRef[*wld.DmRGBTrackDef](colors)})
	placed := b.Add("", &wld.Actor{
		ActorDef:       b.Name("TREE_ACTORDEF"),
		Location:       &wld.Location{X: 1, Y: 2, Z: 3, RotateX: 4, RotateY: 5, RotateZ: 6},
		ScaleFactor:    wldtest.F32(0.5),
		BoundingRadius: wldtest.F32(10),
		VertexColors:   wld.IndexRef[*wld.DmRGBTrack](track),
	})
	bare := b.Add("", &wld.Actor{ActorDef: b.Name("ELSEWHERE_ACTORDEF")})
	broken := b.Add("", &wld.Actor{VertexColors: wld.IndexRef[*wld.DmRGBTrack](def)})
	d := b.Document(t)

	inst, err := actor.DecodeInstance(d, placed)
	if err != nil {
		t.Fatalf("DecodeInstance:\nhave %v\nwant nil", err)
	}
	if inst.ActorDef != "TREE_ACTORDEF" || inst.Def != def {
		t.Fatalf("Instance.ActorDef:\nhave %q %d\nwant TREE_ACTORDEF %d", inst.ActorDef, inst.Def, def)
	}
	if inst.Position != (mgl32.Vec3{1, 2, 3}) || inst.Rotation != (mgl32.Vec3{4, 5, 6}) {
		t.Fatalf("Instance placement:\nhave %v %v\nwant [1 2 3] [4 5 6]", inst.Position, inst.Rotation)
	}
	if inst.Scale != 0.5 || inst.BoundingRadius != 10 || len(inst.VertexColors) != 2 {
		t.Fatalf("Instance:\nhave %v %v %v", inst.Scale, inst.BoundingRadius, inst.VertexColors)
	}

	inst, err = actor.DecodeInstance(d, bare)
	if err != nil || inst.Def != 0 || inst.Scale != 1 || inst.VertexColors != nil {
		t.Fatalf("DecodeInstance(bare):\nhave %+v, %v", inst, err)
	}

	if _, err := actor.DecodeInstance(d, broken); !errors.Is(err, wld.ErrBrokenReference) {
		t.Fatalf("DecodeInstance(broken):\nhave %v\nwant %v", err, wld.ErrBrokenReference)
	}
	insts, errs := actor.AllInstances(d)
	if len(insts) != 2 || len(errs) != 1 {
		t.Fatalf("AllInstances:\nhave %d, %d errors\nwant 2, 1", len(insts), len(errs))
	}
}
