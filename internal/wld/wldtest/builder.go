// Package wldtest builds WLD documents in memory for tests.
package wldtest

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"eq-wld-decoder/internal/crypto"
	"eq-wld-decoder/internal/wld"
)

// Builder accumulates fragments and serializes them as a WLD document.
// Optional-field flag bits are set from the presence of the field, so
// callers only fill in the data.
type Builder struct {
	Version wld.Version

	strings  []byte
	interned map[string]wld.StringRef
	records  [][]byte
}

// New returns a Builder for a new-format document.
func New() *Builder {
	return &Builder{
		Version: wld.VersionNew,
		// Offset 0 is never addressable.
		strings:  []byte{0},
		interned: make(map[string]wld.StringRef),
	}
}

// Name interns s and returns its string reference. The empty string is the
// null reference.
func (b *Builder) Name(s string) wld.StringRef {
	if s == "" {
		return 0
	}
	if ref, ok := b.interned[s]; ok {
		return ref
	}
	ref := wld.StringRef(-int32(len(b.strings)))
	b.strings = append(b.strings, s...)
	b.strings = append(b.strings, 0)
	b.interned[s] = ref
	return ref
}

// NameRef is Name as a fragment reference.
func (b *Builder) NameRef(s string) wld.FragmentRef {
	return wld.FragmentRef(b.Name(s))
}

// Next returns the index the next added fragment will get.
func (b *Builder) Next() int { return len(b.records) + 1 }

// Add appends f under name and returns its 1-based index. The name stored
// in f itself is ignored.
func (b *Builder) Add(name string, f wld.Fragment) int {
	e := &enc{}
	e.i32(int32(b.Name(name)))
	b.encode(e, f)
	return b.AddRaw(f.Kind(), e.buf)
}

// AddRaw appends a record with a body taken verbatim, name reference
// included.
func (b *Builder) AddRaw(kind wld.Kind, body []byte) int {
	rec := binary.LittleEndian.AppendUint32(nil, uint32(len(body)))
	rec = binary.LittleEndian.AppendUint32(rec, uint32(kind))
	b.records = append(b.records, append(rec, body...))
	return len(b.records)
}

// Bytes serializes the document.
func (b *Builder) Bytes() []byte {
	e := &enc{}
	e.u32(wld.Magic)
	e.u32(uint32(b.Version))
	e.u32(uint32(len(b.records)))
	e.u32(0)
	e.u32(0)
	e.u32(uint32(len(b.strings)))
	e.u32(uint32(len(b.interned)))
	e.buf = append(e.buf, crypto.DecodeHash(b.strings)...)
	for _, rec := range b.records {
		e.buf = append(e.buf, rec...)
	}
	return e.buf
}

// Document parses Bytes and fails tb on error.
func (b *Builder) Document(tb testing.TB) *wld.Document {
	tb.Helper()
	d, err := wld.Parse(b.Bytes())
	if err != nil {
		tb.Fatalf("wldtest: parse: %v", err)
	}
	return d
}

func flag(flags uint32, bit uint32, on bool) uint32 {
	if on {
		return flags | bit
	}
	return flags &^ bit
}

func (b *Builder) encode(e *enc, f wld.Fragment) {
	switch f := f.(type) {
	case *wld.BmInfo:
		e.u32(uint32(len(f.Files) - 1))
		for _, name := range f.Files {
			raw := crypto.DecodeHash(append([]byte(name), 0))
			e.u16(uint16(len(raw)))
			e.buf = append(e.buf, raw...)
		}
	case *wld.SimpleSpriteDef:
		flags := flag(f.Flags, wld.SimpleSpriteHasCurrentFrame, f.CurrentFrame != nil)
		flags = flag(flags, wld.SimpleSpriteHasSleep, f.Sleep != nil)
		e.u32(flags)
		e.u32(uint32(len(f.Frames)))
		e.opt(f.CurrentFrame)
		e.opt(f.Sleep)
		for _, r := range f.Frames {
			e.i32(int32(r))
		}
	case *wld.SimpleSprite:
		e.i32(int32(f.Sprite))
		e.u32(f.Flags)
	case *wld.HierarchicalSpriteDef:
		flags := flag(f.Flags, wld.HierarchicalHasCenter, f.Center != nil)
		flags = flag(flags, wld.HierarchicalHasRadius, f.BoundingRadius != nil)
		flags = flag(flags, wld.HierarchicalHasSkins, len(f.DmSprites) > 0)
		e.u32(flags)
		e.u32(uint32(len(f.Dags)))
		e.i32(int32(f.CollisionVolume))
		if f.Center != nil {
			e.vec3(*f.Center)
		}
		if f.BoundingRadius != nil {
			e.f32(*f.BoundingRadius)
		}
		for _, d := range f.Dags {
			e.i32(int32(d.Name))
			e.u32(d.Flags)
			e.i32(int32(d.Track))
			e.i32(int32(d.Attachment))
			e.u32(uint32(len(d.SubDags)))
			for _, c := range d.SubDags {
				e.u32(c)
			}
		}
		if len(f.DmSprites) > 0 {
			e.u32(uint32(len(f.DmSprites)))
			for _, r := range f.DmSprites {
				e.i32(int32(r))
			}
			for i := range f.DmSprites {
				var link uint32
				if i < len(f.LinkSkins) {
					link = f.LinkSkins[i]
				}
				e.u32(link)
			}
		}
	case *wld.HierarchicalSprite:
		e.i32(int32(f.Sprite))
		e.u32(f.Flags)
	case *wld.TrackDef:
		quantized := f.Flags&wld.TrackDefQuantized != 0 || f.LegacyFrames == nil
		e.u32(flag(f.Flags, wld.TrackDefQuantized, quantized))
		if quantized {
			e.u32(uint32(len(f.Frames)))
			for _, t := range f.Frames {
				for _, v := range [8]int16{t.RotateDenominator, t.RotateX, t.RotateY, t.RotateZ, t.ShiftX, t.ShiftY, t.ShiftZ, t.ShiftDenominator} {
					e.u16(uint16(v))
				}
			}
			return
		}
		e.u32(uint32(len(f.LegacyFrames)))
		for _, t := range f.LegacyFrames {
			for _, v := range [8]float32{t.RotateW, t.RotateX, t.RotateY, t.RotateZ, t.ShiftX, t.ShiftY, t.ShiftZ, t.ShiftDenominator} {
				e.f32(v)
			}
		}
	case *wld.Track:
		e.i32(int32(f.Def))
		e.u32(flag(f.Flags, wld.TrackHasSleep, f.Sleep != nil))
		e.opt(f.Sleep)
	case *wld.ActorDef:
		flags := flag(f.Flags, wld.ActorDefHasCurrentAction, f.CurrentAction != nil)
		flags = flag(flags, wld.ActorDefHasLocation, f.Location != nil)
		e.u32(flags)
		e.i32(int32(f.Callback))
		e.u32(uint32(len(f.Actions)))
		e.u32(uint32(len(f.Fragments)))
		e.i32(int32(f.Bounds))
		e.opt(f.CurrentAction)
		if f.Location != nil {
			for _, v := range f.Location {
				e.f32(v)
			}
		}
		for _, a := range f.Actions {
			e.u32(uint32(len(a.LODs)))
			e.u32(a.Unknown)
			for _, v := range a.LODs {
				e.f32(v)
			}
		}
		for _, r := range f.Fragments {
			e.i32(int32(r))
		}
		e.u32(f.Unknown)
	case *wld.Actor:
		flags := flag(f.Flags, wld.ActorHasCurrentAction, f.CurrentAction != nil)
		flags = flag(flags, wld.ActorHasLocation, f.Location != nil)
		flags = flag(flags, wld.ActorHasRadius, f.BoundingRadius != nil)
		flags = flag(flags, wld.ActorHasScale, f.ScaleFactor != nil)
		e.i32(int32(f.ActorDef))
		e.u32(flags)
		e.i32(int32(f.Sphere))
		e.opt(f.CurrentAction)
		if l := f.Location; l != nil {
			for _, v := range [6]float32{l.X, l.Y, l.Z, l.RotateZ, l.RotateY, l.RotateX} {
				e.f32(v)
			}
			e.u32(l.Unknown)
		}
		if f.BoundingRadius != nil {
			e.f32(*f.BoundingRadius)
		}
		if f.ScaleFactor != nil {
			e.f32(*f.ScaleFactor)
		}
		e.i32(int32(f.VertexColors))
	case *wld.LightDef:
		flags := flag(f.Flags, wld.LightDefHasCurrentFrame, f.CurrentFrame != nil)
		flags = flag(flags, wld.LightDefHasSleep, f.Sleep != nil)
		flags = flag(flags, wld.LightDefHasLevels, f.Levels != nil)
		flags = flag(flags, wld.LightDefHasColors, f.Colors != nil)
		e.u32(flags)
		e.u32(uint32(max(len(f.Levels), len(f.Colors))))
		e.opt(f.CurrentFrame)
		e.opt(f.Sleep)
		for _, v := range f.Levels {
			e.f32(v)
		}
		for _, c := range f.Colors {
			e.vec3(c)
		}
	case *wld.Light:
		e.i32(int32(f.Def))
		e.u32(f.Flags)
	case *wld.PointLight:
		e.i32(int32(f.Light))
		e.u32(f.Flags)
		e.vec3(f.Position)
		e.f32(f.Radius)
	case *wld.AmbientLight:
		e.i32(int32(f.Light))
		e.u32(f.Flags)
		e.u32(uint32(len(f.Regions)))
		for _, r := range f.Regions {
			e.u32(r)
		}
	case *wld.DmSpriteDef:
		e.u32(f.Flags)
		for _, n := range []int{len(f.Vertices), len(f.UVs), len(f.Normals), len(f.Colors), len(f.Faces)} {
			e.u32(uint32(n))
		}
		e.u16(uint16(len(f.SkinGroups)))
		e.u16(uint16(len(f.MaterialGroups)))
		e.i32(int32(f.MaterialList))
		e.vec3(f.Center)
		for _, v := range f.Vertices {
			e.vec3(v)
		}
		for _, uv := range f.UVs {
			e.f32(uv[0])
			e.f32(uv[1])
		}
		for _, n := range f.Normals {
			e.vec3(n)
		}
		e.u32s(f.Colors)
		e.faces(f.Faces)
		e.runs(f.SkinGroups)
		e.runs(f.MaterialGroups)
	case *wld.DmSprite:
		e.i32(int32(f.Sprite))
		e.u32(f.Params)
	case *wld.MaterialDef:
		e.u32(flag(f.Flags, wld.MaterialHasPair, f.Pair != nil))
		e.u32(uint32(f.RenderMethod))
		e.u32(f.RGBPen)
		e.f32(f.Brightness)
		e.f32(f.ScaledAmbient)
		e.i32(int32(f.Sprite))
		if f.Pair != nil {
			e.u32(f.Pair[0])
			e.u32(f.Pair[1])
		}
	case *wld.MaterialPalette:
		e.u32(f.Flags)
		e.u32(uint32(len(f.Materials)))
		for _, r := range f.Materials {
			e.i32(int32(r))
		}
	case *wld.DmRGBTrackDef:
		e.u32(f.Data1)
		e.u32(uint32(len(f.Colors)))
		e.u32(f.Data2)
		e.u32(f.Data3)
		e.u32s(f.Colors)
	case *wld.DmRGBTrack:
		e.i32(int32(f.Def))
		e.u32(f.Flags)
	case *wld.GlobalAmbientLightDef:
		e.u32(f.Color)
	case *wld.DmSpriteDef2:
		e.u32(f.Flags)
		e.i32(int32(f.MaterialList))
		e.i32(int32(f.Animation))
		e.i32(int32(f.Fragment3))
		e.i32(int32(f.Fragment4))
		e.vec3(f.Center)
		for _, v := range f.Params2 {
			e.u32(v)
		}
		e.f32(f.MaxDistance)
		e.vec3(f.Min)
		e.vec3(f.Max)
		for _, n := range []int{
			len(f.Positions), len(f.UVs), len(f.Normals), len(f.Colors), len(f.Faces),
			len(f.SkinGroups), len(f.MaterialGroups), len(f.VertexMaterialGroups), len(f.MeshOps),
		} {
			e.u16(uint16(n))
		}
		e.u16(f.Scale)
		for _, p := range f.Positions {
			e.u16(uint16(p[0]))
			e.u16(uint16(p[1]))
			e.u16(uint16(p[2]))
		}
		for _, uv := range f.UVs {
			e.u16(uint16(uv[0]))
			e.u16(uint16(uv[1]))
		}
		for _, n := range f.Normals {
			e.buf = append(e.buf, byte(n[0]), byte(n[1]), byte(n[2]))
		}
		e.u32s(f.Colors)
		e.faces(f.Faces)
		e.runs(f.SkinGroups)
		e.runs(f.MaterialGroups)
		e.runs(f.VertexMaterialGroups)
		for _, op := range f.MeshOps {
			e.u16(op.Index1)
			e.u16(op.Index2)
			e.f32(op.Offset)
			e.buf = append(e.buf, op.Param1, op.Type)
			e.u16(op.Unknown)
		}
	case *wld.Opaque:
		e.buf = append(e.buf, f.Body...)
	default:
		panic(fmt.Sprintf("wldtest: cannot encode %T", f))
	}
}

type enc struct {
	buf []byte
}

func (e *enc) u16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *enc) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *enc) i32(v int32)  { e.u32(uint32(v)) }
func (e *enc) f32(v float32) {
	e.u32(math.Float32bits(v))
}

func (e *enc) vec3(v [3]float32) {
	e.f32(v[0])
	e.f32(v[1])
	e.f32(v[2])
}

func (e *enc) opt(v *uint32) {
	if v != nil {
		e.u32(*v)
	}
}

func (e *enc) u32s(vs []uint32) {
	for _, v := range vs {
		e.u32(v)
	}
}

func (e *enc) faces(fs []wld.Face) {
	for _, f := range fs {
		e.u16(f.Flags)
		for _, v := range f.Vertices {
			e.u16(v)
		}
	}
}

func (e *enc) runs(rs []wld.Run) {
	for _, r := range rs {
		e.u16(r.Count)
		e.u16(r.Index)
	}
}

// U32 returns a pointer to v, for optional fields.
func U32(v uint32) *uint32 { return &v }

// F32 returns a pointer to v, for optional fields.
func F32(v float32) *float32 { return &v }
