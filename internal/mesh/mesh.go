// Package mesh decodes both WLD mesh layouts into one canonical form and
// resolves their materials.
package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"eq-wld-decoder/internal/wld"
)

// Layout identifies which raw mesh layout a Mesh was decoded from.
type Layout int

const (
	LayoutQuantized Layout = iota // DmSpriteDef2
	LayoutFloat                   // DmSpriteDef
)

func (l Layout) String() string {
	if l == LayoutFloat {
		return "float"
	}
	return "quantized"
}

// Face is one triangle of vertex indices.
type Face struct {
	Vertices [3]uint16
	Passable bool
}

// MaterialGroup is a contiguous run of faces [Start, Start+Count) sharing
// one material.
type MaterialGroup struct {
	Start    int
	Count    int
	Slot     int // position in the mesh's material palette
	Material int // MaterialDef fragment index
}

// Mesh is the canonical decoded mesh. Positions, normals and uvs are in
// the source axis convention.
type Mesh struct {
	Index  int
	Name   string
	Layout Layout
	Flags  uint32

	Center    mgl32.Vec3
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Colors    []uint32

	// Bones and Weights hold one entry per vertex for skinned meshes and
	// are nil for meshes without skin assignments.
	Bones   []uint16
	Weights []float32

	Faces          []Face
	MaterialGroups []MaterialGroup

	// Palette lists the MaterialDef fragment indices of the mesh's material
	// palette, or nil when the mesh has none.
	Palette []int

	Warnings []*wld.Warning
}

// Indices returns the faces as a flat list of vertex indices.
func (m *Mesh) Indices() []uint32 {
	out := make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		out = append(out, uint32(f.Vertices[0]), uint32(f.Vertices[1]), uint32(f.Vertices[2]))
	}
	return out
}

// GroupIndices returns the flat vertex indices of group g.
func (m *Mesh) GroupIndices(g MaterialGroup) []uint32 {
	out := make([]uint32, 0, g.Count*3)
	for _, f := range m.Faces[g.Start : g.Start+g.Count] {
		out = append(out, uint32(f.Vertices[0]), uint32(f.Vertices[1]), uint32(f.Vertices[2]))
	}
	return out
}

// CollisionFaces returns the faces that are not passable.
func (m *Mesh) CollisionFaces() []Face {
	var out []Face
	for _, f := range m.Faces {
		if !f.Passable {
			out = append(out, f)
		}
	}
	return out
}

// Skinned reports whether the mesh carries skin assignments.
func (m *Mesh) Skinned() bool { return m.Bones != nil }

// Decode decodes the mesh at fragment index. index may name a
// DmSpriteDef2, a DmSpriteDef, or a DmSprite pointing at either.
func Decode(d *wld.Document, index int) (*Mesh, error) {
	f, err := d.Get(index)
	if err != nil {
		return nil, err
	}
	if s, ok := f.(*wld.DmSprite); ok {
		target, err := d.Locate(s.Sprite, wld.KindDmSpriteDef2)
		if err != nil {
			return nil, d.Errorf(index, wld.ErrBrokenReference, "mesh reference: %v", err)
		}
		index = target
		f, _ = d.Get(index)
	}

	m := &Mesh{Index: index, Name: d.Name(index)}
	var (
		faces    []wld.Face
		skin     []wld.Run
		groups   []wld.Run
		material wld.Ref[*wld.MaterialPalette]
	)
	switch f := f.(type) {
	case *wld.DmSpriteDef2:
		m.Layout = LayoutQuantized
		m.Flags = f.Flags
		if f.Scale >= 32 {
			m.Warnings = append(m.Warnings, d.Warnf(index, "position scale %d exceeds 31", f.Scale))
		}
		decodeQuantized(m, f)
		faces, skin, groups, material = f.Faces, f.SkinGroups, f.MaterialGroups, f.MaterialList
	case *wld.DmSpriteDef:
		m.Layout = LayoutFloat
		m.Flags = f.Flags
		decodeFloat(m, f)
		faces, skin, groups, material = f.Faces, f.SkinGroups, f.MaterialGroups, f.MaterialList
	default:
		return nil, &wld.FragmentError{
			Index: index, Name: m.Name, Want: wld.KindDmSpriteDef2, Have: f.Kind(), Err: wld.ErrTypeMismatch,
		}
	}

	m.Faces = make([]Face, len(faces))
	for i, face := range faces {
		m.Faces[i] = Face{Vertices: face.Vertices, Passable: face.Flags&wld.FacePassable != 0}
	}
	m.expandSkin(d, skin)

	if !material.IsZero() {
		if m.Palette, err = resolvePalette(d, index, material); err != nil {
			return nil, err
		}
	}
	if err := m.partition(d, groups); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeQuantized(m *Mesh, f *wld.DmSpriteDef2) {
	scale := float32(math.Ldexp(1, -int(f.Scale)))
	m.Center = mgl32.Vec3(f.Center)
	m.Positions = make([]mgl32.Vec3, len(f.Positions))
	for i, p := range f.Positions {
		m.Positions[i] = mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}.Mul(scale)
	}
	m.Normals = make([]mgl32.Vec3, len(f.Normals))
	for i, n := range f.Normals {
		m.Normals[i] = mgl32.Vec3{float32(n[0]) / 127, float32(n[1]) / 127, float32(n[2]) / 127}
	}
	m.UVs = make([]mgl32.Vec2, len(f.UVs))
	for i, uv := range f.UVs {
		m.UVs[i] = mgl32.Vec2{float32(uv[0]) / 256, float32(uv[1]) / 256}
	}
	m.Colors = f.Colors
}

func decodeFloat(m *Mesh, f *wld.DmSpriteDef) {
	m.Center = mgl32.Vec3(f.Center)
	m.Positions = make([]mgl32.Vec3, len(f.Vertices))
	for i, p := range f.Vertices {
		m.Positions[i] = mgl32.Vec3(p)
	}
	m.Normals = make([]mgl32.Vec3, len(f.Normals))
	for i, n := range f.Normals {
		m.Normals[i] = mgl32.Vec3(n)
	}
	m.UVs = make([]mgl32.Vec2, len(f.UVs))
	for i, uv := range f.UVs {
		m.UVs[i] = mgl32.Vec2(uv)
	}
	m.Colors = f.Colors
}

// expandSkin turns (vertex count, bone) runs into one bone per vertex.
func (m *Mesh) expandSkin(d *wld.Document, runs []wld.Run) {
	if len(runs) == 0 {
		return
	}
	n := len(m.Positions)
	bones := make([]uint16, 0, n)
	for _, r := range runs {
		for range r.Count {
			bones = append(bones, r.Index)
		}
	}
	if len(bones) != n {
		m.Warnings = append(m.Warnings, d.Warnf(m.Index, "skin runs cover %d of %d vertices", len(bones), n))
		if len(bones) > n {
			bones = bones[:n]
		} else {
			bones = append(bones, make([]uint16, n-len(bones))...)
		}
	}
	m.Bones = bones
	m.Weights = make([]float32, n)
	for i := range m.Weights {
		m.Weights[i] = 1
	}
}

func resolvePalette(d *wld.Document, index int, ref wld.Ref[*wld.MaterialPalette]) ([]int, error) {
	p, pi, err := wld.ResolveIndex(d, ref)
	if err != nil {
		return nil, d.Errorf(index, wld.ErrBrokenReference, "material palette: %v", err)
	}
	out := make([]int, len(p.Materials))
	for i, mr := range p.Materials {
		_, mi, err := wld.ResolveIndex(d, mr)
		if err != nil {
			return nil, d.Errorf(pi, wld.ErrBrokenReference, "material %d: %v", i, err)
		}
		out[i] = mi
	}
	return out, nil
}

// partition walks the (face count, palette slot) runs with a running
// cursor. Runs past the last face are truncated and a warning is recorded.
func (m *Mesh) partition(d *wld.Document, runs []wld.Run) error {
	if len(runs) == 0 {
		return nil
	}
	if m.Palette == nil {
		return d.Errorf(m.Index, wld.ErrBrokenReference, "%d material groups without a material palette", len(runs))
	}
	total := len(m.Faces)
	cursor := 0
	m.MaterialGroups = make([]MaterialGroup, 0, len(runs))
	for i, r := range runs {
		slot := int(r.Index)
		if slot >= len(m.Palette) {
			return d.Errorf(m.Index, wld.ErrBrokenReference, "material group %d: slot %d outside palette of %d", i, slot, len(m.Palette))
		}
		count := int(r.Count)
		if cursor+count > total {
			m.Warnings = append(m.Warnings, d.Warnf(m.Index, "material group %d overruns %d faces by %d", i, total, cursor+count-total))
			count = total - cursor
			if count == 0 {
				break
			}
		}
		m.MaterialGroups = append(m.MaterialGroups, MaterialGroup{Start: cursor, Count: count, Slot: slot, Material: m.Palette[slot]})
		cursor += count
	}
	if cursor < total {
		m.Warnings = append(m.Warnings, d.Warnf(m.Index, "material groups cover %d of %d faces", cursor, total))
	}
	return nil
}

// All decodes every mesh of d in document order. Meshes that fail are
// reported in errs and left out of the result.
func All(d *wld.Document) (meshes []*Mesh, errs []error) {
	for i, f := range d.Fragments() {
		switch f.(type) {
		case *wld.DmSpriteDef, *wld.DmSpriteDef2:
		default:
			continue
		}
		m, err := Decode(d, i)
		if err != nil {
			errs = append(errs, fmt.Errorf("mesh: %w", err))
			continue
		}
		meshes = append(meshes, m)
	}
	return meshes, errs
}
