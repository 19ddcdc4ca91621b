// Package actor decodes actor definitions and their placed instances.
package actor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"eq-wld-decoder/internal/wld"
)

// Def is a decoded ActorDef.
type Def struct {
	Index    int
	Name     string
	Callback string

	// Meshes and Skeletons list the mesh definitions and skeleton
	// definitions the actor is built from.
	Meshes    []int
	Skeletons []int

	Actions  []wld.Action
	Warnings []*wld.Warning
}

// DecodeDef decodes the ActorDef at fragment index.
func DecodeDef(d *wld.Document, index int) (*Def, error) {
	f, err := wld.At[*wld.ActorDef](d, index)
	if err != nil {
		return nil, err
	}
	callback, err := d.String(f.Callback)
	if err != nil {
		return nil, d.Errorf(index, wld.ErrInvalidStringRef, "callback: %v", err)
	}
	def := &Def{Index: index, Name: d.Name(index), Callback: callback, Actions: f.Actions}
	for k, ref := range f.Fragments {
		if err := def.link(d, ref); err != nil {
			def.Warnings = append(def.Warnings, d.Warnf(index, "fragment %d: %v", k, err))
		}
	}
	return def, nil
}

// link follows one ActorDef fragment reference. Sprites other than meshes
// and skeletons are ignored.
func (def *Def) link(d *wld.Document, ref wld.FragmentRef) error {
	i, err := d.Locate(ref, 0)
	if err != nil {
		return err
	}
	f, _ := d.Get(i)
	switch f := f.(type) {
	case *wld.DmSprite:
		mi, err := d.Locate(f.Sprite, wld.KindDmSpriteDef2)
		if err != nil {
			return err
		}
		switch m, _ := d.Get(mi); m.(type) {
		case *wld.DmSpriteDef, *wld.DmSpriteDef2:
			def.Meshes = append(def.Meshes, mi)
		}
	case *wld.DmSpriteDef, *wld.DmSpriteDef2:
		def.Meshes = append(def.Meshes, i)
	case *wld.HierarchicalSprite:
		_, si, err := wld.ResolveIndex(d, f.Sprite)
		if err != nil {
			return err
		}
		def.Skeletons = append(def.Skeletons, si)
	case *wld.HierarchicalSpriteDef:
		def.Skeletons = append(def.Skeletons, i)
	}
	return nil
}

// Instance is a decoded Actor placement. Position and rotation are the
// raw values in the source axis convention.
type Instance struct {
	Index    int
	Name     string
	ActorDef string

	// Def is the fragment index of the named ActorDef, or 0 when the
	// document does not define it (definitions may live in another file).
	Def int

	Position       mgl32.Vec3
	Rotation       mgl32.Vec3 // x, y, z
	Scale          float32
	BoundingRadius float32
	VertexColors   []uint32
}

// DecodeInstance decodes the Actor at fragment index.
func DecodeInstance(d *wld.Document, index int) (*Instance, error) {
	f, err := wld.At[*wld.Actor](d, index)
	if err != nil {
		return nil, err
	}
	defName, err := d.String(f.ActorDef)
	if err != nil {
		return nil, d.Errorf(index, wld.ErrInvalidStringRef, "actor definition name: %v", err)
	}
	inst := &Instance{Index: index, Name: d.Name(index), ActorDef: defName, Scale: 1}
	for _, i := range d.Lookup(defName) {
		if _, err := wld.At[*wld.ActorDef](d, i); err == nil {
			inst.Def = i
			break
		}
	}
	if l := f.Location; l != nil {
		inst.Position = mgl32.Vec3{l.X, l.Y, l.Z}
		inst.Rotation = mgl32.Vec3{l.RotateX, l.RotateY, l.RotateZ}
	}
	if f.ScaleFactor != nil {
		inst.Scale = *f.ScaleFactor
	}
	if f.BoundingRadius != nil {
		inst.BoundingRadius = *f.BoundingRadius
	}
	if !f.VertexColors.IsZero() {
		track, ti, err := wld.ResolveIndex(d, f.VertexColors)
		if err != nil {
			return nil, d.Errorf(index, wld.ErrBrokenReference, "vertex colors: %v", err)
		}
		def, err := wld.Resolve(d, track.Def)
		if err != nil {
			return nil, d.Errorf(ti, wld.ErrBrokenReference, "vertex color definition: %v", err)
		}
		inst.VertexColors = def.Colors
	}
	return inst, nil
}

// AllDefs decodes every ActorDef of d in document order.
func AllDefs(d *wld.Document) (defs []*Def, errs []error) {
	for i := range wld.All[*wld.ActorDef](d) {
		def, err := DecodeDef(d, i)
		if err != nil {
			errs = append(errs, fmt.Errorf("actor: %w", err))
			continue
		}
		defs = append(defs, def)
	}
	return defs, errs
}

// AllInstances decodes every Actor of d in document order.
func AllInstances(d *wld.Document) (insts []*Instance, errs []error) {
	for i := range wld.All[*wld.Actor](d) {
		inst, err := DecodeInstance(d, i)
		if err != nil {
			errs = append(errs, fmt.Errorf("actor: %w", err))
			continue
		}
		insts = append(insts, inst)
	}
	return insts, errs
}
