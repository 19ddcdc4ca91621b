// Package skeleton rebuilds bone hierarchies from HierarchicalSpriteDef
// fragments.
package skeleton

import (
	"fmt"

	"eq-wld-decoder/internal/wld"
)

// Bone is the derived view of one DAG.
type Bone struct {
	Index    int
	Parent   int // -1 for the root
	Children []int
	FullName string
	Name     string
	Rest     Transform

	// Attachment is the fragment index of the DAG's mesh or sprite, or 0.
	Attachment int

	// RestTrack is the Track fragment index of the rest pose, or 0 when the
	// DAG points at its TrackDef directly. RestDef is the TrackDef index.
	RestTrack int
	RestDef   int
	// RestName names the rest track: the Track's own name, or its
	// TrackDef's name when the Track is unnamed.
	RestName string
}

// Skeleton is a rooted bone tree. Bone 0 is the root.
type Skeleton struct {
	Index  int
	Name   string
	Tag    string
	Naming Naming
	Bones  []Bone

	// Meshes lists the mesh fragment indices skinned to this skeleton.
	Meshes []int

	Warnings []*wld.Warning
}

// Bone returns the bone with generic name name.
func (s *Skeleton) Bone(name string) (*Bone, bool) {
	for i := range s.Bones {
		if s.Bones[i].Name == name {
			return &s.Bones[i], true
		}
	}
	return nil, false
}

type options struct {
	naming Naming
}

// Option configures Build.
type Option func(*options)

// WithNaming overrides the version-derived naming rule.
func WithNaming(n Naming) Option {
	return func(o *options) {
		o.naming = n
	}
}

// Build builds the skeleton defined at fragment index, which may be a
// HierarchicalSpriteDef or a HierarchicalSprite pointing at one.
func Build(d *wld.Document, index int, opts ...Option) (*Skeleton, error) {
	o := options{naming: NamingFor(d.Version())}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := d.Get(index)
	if err != nil {
		return nil, err
	}
	if hs, ok := f.(*wld.HierarchicalSprite); ok {
		_, target, err := wld.ResolveIndex(d, hs.Sprite)
		if err != nil {
			return nil, d.Errorf(index, wld.ErrBrokenReference, "skeleton reference: %v", err)
		}
		index = target
	}
	def, err := wld.At[*wld.HierarchicalSpriteDef](d, index)
	if err != nil {
		return nil, err
	}
	if len(def.Dags) == 0 {
		return nil, d.Errorf(index, wld.ErrBrokenReference, "skeleton has no dags")
	}

	name := d.Name(index)
	s := &Skeleton{Index: index, Name: name, Tag: Tag(name), Naming: o.naming}
	s.Bones = make([]Bone, len(def.Dags))
	for i, dag := range def.Dags {
		full, err := d.String(dag.Name)
		if err != nil {
			return nil, d.Errorf(index, wld.ErrInvalidStringRef, "dag %d name: %v", i, err)
		}
		b := &s.Bones[i]
		b.Index = i
		b.Parent = -1
		b.FullName = full
		b.Name = o.naming.BoneName(s.Tag, full)
		if err := s.restPose(d, b, dag.Track); err != nil {
			return nil, err
		}
		if !dag.Attachment.IsZero() {
			if b.Attachment, err = d.Locate(dag.Attachment, 0); err != nil {
				s.Warnings = append(s.Warnings, d.Warnf(index, "dag %d attachment: %v", i, err))
			}
		}
	}
	if err := s.link(d, def.Dags); err != nil {
		return nil, err
	}
	s.Meshes = s.meshes(d, def.DmSprites)
	return s, nil
}

// RestTrack resolves a DAG track reference to its Track (0 when the
// reference names a TrackDef directly), its TrackDef, and the rest track
// name.
func RestTrack(d *wld.Document, ref wld.FragmentRef) (track, def int, name string, err error) {
	i, err := d.Locate(ref, wld.KindTrack)
	if err != nil {
		return 0, 0, "", err
	}
	f, _ := d.Get(i)
	switch f := f.(type) {
	case *wld.TrackDef:
		return 0, i, d.Name(i), nil
	case *wld.Track:
		_, di, err := wld.ResolveIndex(d, f.Def)
		if err != nil {
			return 0, 0, "", err
		}
		name := d.Name(i)
		if name == "" {
			name = d.Name(di)
		}
		return i, di, name, nil
	default:
		return 0, 0, "", &wld.FragmentError{Index: i, Name: d.Name(i), Want: wld.KindTrack, Have: f.Kind(), Err: wld.ErrTypeMismatch}
	}
}

func (s *Skeleton) restPose(d *wld.Document, b *Bone, ref wld.FragmentRef) error {
	track, def, name, err := RestTrack(d, ref)
	if err != nil {
		return d.Errorf(s.Index, wld.ErrBrokenReference, "dag %d rest track: %v", b.Index, err)
	}
	b.RestTrack, b.RestDef, b.RestName = track, def, name
	td, _ := wld.At[*wld.TrackDef](d, def)
	if td.Len() == 0 {
		s.Warnings = append(s.Warnings, d.Warnf(def, "empty rest track for dag %d", b.Index))
		b.Rest = Identity
		return nil
	}
	if td.Flags&wld.TrackDefQuantized != 0 {
		b.Rest = DecodeFrame(td.Frames[0])
	} else {
		b.Rest = DecodeLegacyFrame(td.LegacyFrames[0])
	}
	return nil
}

// link assigns parents from the sub_dag lists. Bone 0 stays the only root:
// self links and links to the root are ignored, orphans and cycles are
// reattached to the root, and a bone listed by two parents keeps the last.
// A cycle is broken once, at the first of its members reached; bones that
// only hang off a cycle keep their parent.
// Each repair records a warning.
func (s *Skeleton) link(d *wld.Document, dags []wld.Dag) error {
	n := len(s.Bones)
	warn := func(format string, args ...any) {
		s.Warnings = append(s.Warnings, d.Warnf(s.Index, format, args...))
	}
	for i, dag := range dags {
		for _, c := range dag.SubDags {
			switch child := int(c); {
			case c >= uint32(n):
				return d.Errorf(s.Index, wld.ErrBrokenReference, "dag %d: child %d outside %d dags", i, c, n)
			case child == i:
				warn("dag %d lists itself as a child", i)
			case child == 0:
				warn("dag %d lists the root as a child", i)
			default:
				if p := s.Bones[child].Parent; p != -1 && p != i {
					warn("dag %d has parents %d and %d; keeping %d", child, p, i, i)
				}
				s.Bones[child].Parent = i
			}
		}
	}

	for i := 1; i < n; i++ {
		if s.Bones[i].Parent == -1 {
			warn("dag %d has no parent; attaching to root", i)
			s.Bones[i].Parent = 0
		}
	}
	// 0: unvisited, 1: on the current walk, 2: reaches the root.
	state := make([]uint8, n)
	state[0] = 2
	for i := 1; i < n; i++ {
		var walk []int
		j := i
		for state[j] == 0 {
			state[j] = 1
			walk = append(walk, j)
			j = s.Bones[j].Parent
		}
		if state[j] == 1 {
			warn("dag %d is part of a cycle; attaching to root", j)
			s.Bones[j].Parent = 0
		}
		for _, k := range walk {
			state[k] = 2
		}
	}

	for i := 1; i < n; i++ {
		p := s.Bones[i].Parent
		s.Bones[p].Children = append(s.Bones[p].Children, i)
	}
	return nil
}

// meshes resolves the skeleton's DmSprite list to mesh definitions,
// skipping anything that is not a mesh.
func (s *Skeleton) meshes(d *wld.Document, refs []wld.FragmentRef) []int {
	var out []int
	for k, ref := range refs {
		i, err := d.Locate(ref, wld.KindDmSprite)
		if err == nil {
			f, _ := d.Get(i)
			if ds, ok := f.(*wld.DmSprite); ok {
				i, err = d.Locate(ds.Sprite, wld.KindDmSpriteDef2)
			}
		}
		if err != nil {
			s.Warnings = append(s.Warnings, d.Warnf(s.Index, "mesh %d: %v", k, err))
			continue
		}
		switch f, _ := d.Get(i); f.(type) {
		case *wld.DmSpriteDef, *wld.DmSpriteDef2:
			out = append(out, i)
		}
	}
	return out
}

// All builds every skeleton of d in document order. Skeletons that fail
// are reported in errs and left out of the result.
func All(d *wld.Document, opts ...Option) (skeletons []*Skeleton, errs []error) {
	for i := range wld.All[*wld.HierarchicalSpriteDef](d) {
		s, err := Build(d, i, opts...)
		if err != nil {
			errs = append(errs, fmt.Errorf("skeleton: %w", err))
			continue
		}
		skeletons = append(skeletons, s)
	}
	return skeletons, errs
}
