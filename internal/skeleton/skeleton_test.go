package skeleton_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"eq-wld-decoder/internal/mesh"
	"eq-wld-decoder/internal/skeleton"
	"eq-wld-decoder/internal/wld"
	"eq-wld-decoder/internal/wld/wldtest"
)

// restTrack adds a one-frame TrackDef and its Track and returns the Track.
func restTrack(b *wldtest.Builder, name string, f wld.FrameTransform) wld.FragmentRef {
	def := b.Add(name+"DEF", &wld.TrackDef{Frames: []wld.FrameTransform{f}})
	return wld.FragmentRef(b.Add(name, &wld.Track{Def: wld.IndexRef[*wld.TrackDef](def)}))
}

type dag struct {
	name     string
	children []uint32
}

func build(t *testing.T, b *wldtest.Builder, name string, dags []dag) (*wld.Document, int) {
	t.Helper()
	def := &wld.HierarchicalSpriteDef{}
	for _, d := range dags {
		def.Dags = append(def.Dags, wld.Dag{
			Name:    b.Name(d.name),
			Track:   restTrack(b, d.name+"_TRACK", wld.FrameTransform{RotateDenominator: 1, ShiftDenominator: 1}),
			SubDags: d.children,
		})
	}
	i := b.Add(name, def)
	return b.Document(t), i
}

func parents(s *skeleton.Skeleton) []int {
	out := make([]int, len(s.Bones))
	for i, b := range s.Bones {
		out[i] = b.Parent
	}
	return out
}

func TestBuildTree(t *testing.T) {
	d, i := build(t, wldtest.New(), "HUM_HS_DEF", []dag{
		{"HUM_DAG", []uint32{1, 3}},
		{"HUMPE_DAG", []uint32{2}},
		{"HUMCH_DAG", nil},
		{"HUMBI_L_DAG", nil},
	})
	s, err := skeleton.Build(d, i)
	if err != nil {
		t.Fatalf("Build:\nhave %v\nwant nil", err)
	}
	if s.Tag != "HUM" || s.Naming != skeleton.PrefixNaming {
		t.Fatalf("Skeleton:\nhave %q %v\nwant HUM prefix", s.Tag, s.Naming)
	}
	if want := []int{-1, 0, 1, 0}; !slices.Equal(parents(s), want) {
		t.Fatalf("parents:\nhave %v\nwant %v", parents(s), want)
	}
	var names []string
	for _, b := range s.Bones {
		names = append(names, b.Name)
	}
	if want := []string{"ROOT", "PE", "CH", "BI_L"}; !slices.Equal(names, want) {
		t.Fatalf("names:\nhave %q\nwant %q", names, want)
	}
	if !slices.Equal(s.Bones[0].Children, []int{1, 3}) {
		t.Fatalf("Bone(0).Children:\nhave %v\nwant [1 3]", s.Bones[0].Children)
	}
	if b, ok := s.Bone("CH"); !ok || b.FullName != "HUMCH_DAG" || b.RestName != "HUMCH_DAG_TRACK" {
		t.Fatalf("Bone(CH):\nhave %+v", b)
	}
	if len(s.Warnings) != 0 {
		t.Fatalf("Skeleton.Warnings:\nhave %v\nwant none", s.Warnings)
	}
}

func TestBuildRepairs(t *testing.T) {
	for _, tc := range []struct {
		name     string
		dags     []dag
		parents  []int
		warnings int
	}{
		{
			"two parents, last wins",
			[]dag{{"A", []uint32{1, 2}}, {"B", []uint32{2}}, {"C", nil}},
			[]int{-1, 0, 1}, 1,
		},
		{
			"self parent",
			[]dag{{"A", []uint32{1}}, {"B", []uint32{1}}},
			[]int{-1, 0}, 1,
		},
		{
			"root as child",
			[]dag{{"A", []uint32{1}}, {"B", []uint32{0}}},
			[]int{-1, 0}, 1,
		},
		{
			"orphan",
			[]dag{{"A", nil}, {"B", nil}},
			[]int{-1, 0}, 1,
		},
		{
			"cycle",
			[]dag{{"A", nil}, {"B", []uint32{2}}, {"C", []uint32{1}}},
			[]int{-1, 0, 1}, 1,
		},
		{
			"branch into cycle",
			[]dag{{"A", nil}, {"B", nil}, {"C", []uint32{1, 3}}, {"D", []uint32{2}}},
			[]int{-1, 2, 0, 2}, 1,
		},
	} {
		d, i := build(t, wldtest.New(), "X_HS_DEF", tc.dags)
		s, err := skeleton.Build(d, i)
		if err != nil {
			t.Fatalf("%s: Build:\nhave %v\nwant nil", tc.name, err)
		}
		if !slices.Equal(parents(s), tc.parents) {
			t.Fatalf("%s: parents:\nhave %v\nwant %v", tc.name, parents(s), tc.parents)
		}
		if len(s.Warnings) != tc.warnings {
			t.Fatalf("%s: Skeleton.Warnings:\nhave %v\nwant %d", tc.name, s.Warnings, tc.warnings)
		}
		for _, w := range s.Warnings {
			if !errors.Is(w, wld.ErrDataIntegrity) {
				t.Fatalf("%s: warning %v is not %v", tc.name, w, wld.ErrDataIntegrity)
			}
		}
		assertTree(t, s)
	}
}

// assertTree checks that bone 0 is the only root and that every bone
// reaches it.
func assertTree(t *testing.T, s *skeleton.Skeleton) {
	t.Helper()
	roots := 0
	for i, b := range s.Bones {
		if b.Parent == -1 {
			roots++
			continue
		}
		if b.Parent == i || b.Parent >= len(s.Bones) {
			t.Fatalf("bone %d: bad parent %d", i, b.Parent)
		}
		j, steps := i, 0
		for j != 0 && steps <= len(s.Bones) {
			j = s.Bones[j].Parent
			steps++
		}
		if j != 0 {
			t.Fatalf("bone %d does not reach the root", i)
		}
	}
	if roots != 1 || s.Bones[0].Parent != -1 {
		t.Fatalf("roots:\nhave %d\nwant 1 at bone 0", roots)
	}
}

func TestBuildErrors(t *testing.T) {
	d, i := build(t, wldtest.New(), "X_HS_DEF", []dag{{"A", []uint32{5}}})
	if _, err := skeleton.Build(d, i); !errors.Is(err, wld.ErrBrokenReference) {
		t.Fatalf("Build(child out of range):\nhave %v\nwant %v", err, wld.ErrBrokenReference)
	}

	b := wldtest.New()
	material := b.Add("", &wld.MaterialDef{})
	noTrack := b.Add("", &wld.HierarchicalSpriteDef{Dags: []wld.Dag{{Name: b.Name("A")}}})
	wrongTrack := b.Add("", &wld.HierarchicalSpriteDef{Dags: []wld.Dag{{Name: b.Name("A"), Track: wld.FragmentRef(material)}}})
	empty := b.Add("", &wld.HierarchicalSpriteDef{})
	d = b.Document(t)
	for _, i := range []int{noTrack, wrongTrack, empty} {
		if _, err := skeleton.Build(d, i); !errors.Is(err, wld.ErrBrokenReference) {
			t.Fatalf("Build(%d):\nhave %v\nwant %v", i, err, wld.ErrBrokenReference)
		}
	}
	if _, err := skeleton.Build(d, material); !errors.Is(err, wld.ErrTypeMismatch) {
		t.Fatalf("Build(material):\nhave %v\nwant %v", err, wld.ErrTypeMismatch)
	}
}

func TestRestPose(t *testing.T) {
	b := wldtest.New()
	zeroShift := restTrack(b, "A_TRACK", wld.FrameTransform{
		RotateDenominator: 16384, ShiftX: 7, ShiftY: -3, ShiftZ: 99,
	})
	halfTurn := restTrack(b, "B_TRACK", wld.FrameTransform{
		RotateX: 128, ShiftX: 10, ShiftY: 20, ShiftZ: -30, ShiftDenominator: 10,
	})
	legacyDef := b.Add("C_TRACKDEF", &wld.TrackDef{LegacyFrames: []wld.LegacyFrameTransform{
		{RotateW: 2, ShiftX: 3, ShiftDenominator: 2},
	}})
	emptyDef := b.Add("D_TRACKDEF", &wld.TrackDef{})
	i := b.Add("X_HS_DEF", &wld.HierarchicalSpriteDef{Dags: []wld.Dag{
		{Name: b.Name("A"), Track: zeroShift, SubDags: []uint32{1, 2, 3}},
		{Name: b.Name("B"), Track: halfTurn},
		{Name: b.Name("C"), Track: wld.FragmentRef(legacyDef)},
		{Name: b.Name("D"), Track: wld.FragmentRef(emptyDef)},
	}})
	s, err := skeleton.Build(b.Document(t), i)
	if err != nil {
		t.Fatal(err)
	}

	for k, want := range []skeleton.Transform{
		{Translation: mgl32.Vec3{}, Rotation: mgl32.QuatIdent()},
		{Translation: mgl32.Vec3{1, 2, -3}, Rotation: mgl32.Quat{V: mgl32.Vec3{1, 0, 0}}},
		{Translation: mgl32.Vec3{1.5, 0, 0}, Rotation: mgl32.QuatIdent()},
		skeleton.Identity,
	} {
		if have := s.Bones[k].Rest; have != want {
			t.Fatalf("Bone(%d).Rest:\nhave %+v\nwant %+v", k, have, want)
		}
	}
	if s.Bones[2].RestTrack != 0 || s.Bones[2].RestDef != legacyDef || s.Bones[2].RestName != "C_TRACKDEF" {
		t.Fatalf("Bone(2) rest track:\nhave %d %d %q\nwant 0 %d C_TRACKDEF", s.Bones[2].RestTrack, s.Bones[2].RestDef, s.Bones[2].RestName, legacyDef)
	}
	if len(s.Warnings) != 1 {
		t.Fatalf("Skeleton.Warnings:\nhave %v\nwant the empty track warning", s.Warnings)
	}
}

func TestDecodeFrameZeroShift(t *testing.T) {
	for _, f := range []wld.FrameTransform{
		{ShiftX: 1, ShiftY: 2, ShiftZ: 3},
		{ShiftX: -32768, ShiftY: 32767, ShiftZ: 0, RotateDenominator: 5},
	} {
		if have := skeleton.DecodeFrame(f).Translation; have != (mgl32.Vec3{}) {
			t.Fatalf("DecodeFrame(%+v).Translation:\nhave %v\nwant [0 0 0]", f, have)
		}
	}
	if have := skeleton.DecodeFrame(wld.FrameTransform{}).Rotation; have != mgl32.QuatIdent() {
		t.Fatalf("DecodeFrame(zero).Rotation:\nhave %v\nwant identity", have)
	}
}

func TestNaming(t *testing.T) {
	for _, tc := range []struct {
		naming skeleton.Naming
		tag    string
		dag    string
		want   string
	}{
		{skeleton.PrefixNaming, "HUM", "HUM_DAG", "ROOT"},
		{skeleton.PrefixNaming, "HUM", "HUMBI_L_DAG", "BI_L"},
		{skeleton.PrefixNaming, "ELF", "ELFHUM_DAG", "HUM"},
		{skeleton.PrefixNaming, "HUM", "XHUM_DAG", "XHUM"},
		{skeleton.ReplaceNaming, "HUM", "XHUM_DAG", "X"},
		{skeleton.ReplaceNaming, "HUM", "HUM_DAG", "ROOT"},
		{skeleton.ReplaceNaming, "", "BODY_DAG", "BODY"},
		{skeleton.ReplaceNaming, "HUM", "HUMHE_DAGHUM", "HE"},
	} {
		if have := tc.naming.BoneName(tc.tag, tc.dag); have != tc.want {
			t.Fatalf("%v.BoneName(%q, %q):\nhave %q\nwant %q", tc.naming, tc.tag, tc.dag, have, tc.want)
		}
	}

	if have := skeleton.Tag("ELF_HS_DEF"); have != "ELF" {
		t.Fatalf("Tag:\nhave %q\nwant ELF", have)
	}
	if skeleton.NamingFor(wld.VersionOld) != skeleton.ReplaceNaming || skeleton.NamingFor(wld.VersionNew) != skeleton.PrefixNaming {
		t.Fatal("NamingFor: wrong rule per version")
	}
	for _, n := range []skeleton.Naming{skeleton.PrefixNaming, skeleton.ReplaceNaming} {
		if have, err := skeleton.ParseNaming(n.String()); err != nil || have != n {
			t.Fatalf("ParseNaming(%q):\nhave %v, %v\nwant %v, nil", n, have, err, n)
		}
	}
	if _, err := skeleton.ParseNaming("suffix"); err == nil {
		t.Fatal("ParseNaming(suffix): want error")
	}
}

func TestBuildWithNaming(t *testing.T) {
	b := wldtest.New()
	b.Version = wld.VersionOld
	d, i := build(t, b, "HUM_HS_DEF", []dag{{"HUM_DAG", []uint32{1}}, {"XHUM_DAG", nil}})

	s, err := skeleton.Build(d, i)
	if err != nil || s.Naming != skeleton.ReplaceNaming || s.Bones[1].Name != "X" {
		t.Fatalf("Build(old version):\nhave %v %q, %v\nwant replace X, nil", s.Naming, s.Bones[1].Name, err)
	}
	s, err = skeleton.Build(d, i, skeleton.WithNaming(skeleton.PrefixNaming))
	if err != nil || s.Bones[1].Name != "XHUM" {
		t.Fatalf("Build(WithNaming(prefix)):\nhave %q, %v\nwant XHUM, nil", s.Bones[1].Name, err)
	}
}

func TestWorldTransformsAndPose(t *testing.T) {
	b := wldtest.New()
	root := restTrack(b, "R_TRACK", wld.FrameTransform{RotateDenominator: 1, ShiftX: 1, ShiftDenominator: 1})
	child := restTrack(b, "C_TRACK", wld.FrameTransform{RotateDenominator: 1, ShiftY: 2, ShiftDenominator: 1})
	meshDef := b.Add("BODY_DMSPRITEDEF", &wld.DmSpriteDef2{
		Positions:  [][3]int16{{0, 0, 0}, {0, 0, 1}},
		SkinGroups: []wld.Run{{Count: 1, Index: 0}, {Count: 1, Index: 1}},
	})
	sprite := b.Add("", &wld.DmSprite{Sprite: wld.FragmentRef(meshDef)})
	other := b.Add("", &wld.GlobalAmbientLightDef{})
	// Child before parent in the DAG array.
	i := b.Add("X_HS_DEF", &wld.HierarchicalSpriteDef{
		Dags: []wld.Dag{
			{Name: b.Name("R"), Track: root, SubDags: []uint32{2}},
			{Name: b.Name("C"), Track: child, Attachment: wld.FragmentRef(meshDef)},
			{Name: b.Name("M"), Track: root, SubDags: []uint32{1}},
		},
		DmSprites: []wld.FragmentRef{wld.FragmentRef(sprite), wld.FragmentRef(other)},
	})
	d := b.Document(t)

	s, err := skeleton.Build(d, i)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(s.Meshes, []int{meshDef}) || s.Bones[1].Attachment != meshDef {
		t.Fatalf("Skeleton.Meshes:\nhave %v %d\nwant [%d] %d", s.Meshes, s.Bones[1].Attachment, meshDef, meshDef)
	}

	worlds := s.WorldTransforms()
	want := []mgl32.Vec3{{1, 0, 0}, {2, 2, 0}, {2, 0, 0}}
	for k, w := range want {
		if have := worlds[k].Col(3).Vec3(); !have.ApproxEqual(w) {
			t.Fatalf("WorldTransforms()[%d] translation:\nhave %v\nwant %v", k, have, w)
		}
	}

	m, err := mesh.Decode(d, meshDef)
	if err != nil {
		t.Fatal(err)
	}
	posed := s.Pose(m)
	if !posed[0].ApproxEqual(mgl32.Vec3{1, 0, 0}) || !posed[1].ApproxEqual(mgl32.Vec3{2, 2, 1}) {
		t.Fatalf("Pose:\nhave %v\nwant [[1 0 0] [2 2 1]]", posed)
	}
}
