package wld

// Fragment is one typed record of a document. The set of implementations is
// closed: use a type switch over the pointer types below.
type Fragment interface {
	Kind() Kind
	NameRef() StringRef
	fragment()
}

type header struct {
	Name StringRef
}

func (h *header) NameRef() StringRef { return h.Name }
func (*header) fragment()            {}

// Run is a (count, index) pair. Meshes use runs for skin assignments
// (vertex count, bone) and material groups (face count, palette slot).
type Run struct {
	Count uint16
	Index uint16
}

// Face is one triangle. Flag 0x10 marks a passable (non-colliding) face.
type Face struct {
	Flags    uint16
	Vertices [3]uint16
}

// FacePassable is the Face flag of faces without collision.
const FacePassable = 0x10

// BmInfo lists bitmap filenames (0x03).
type BmInfo struct {
	header
	Files []string
}

// SimpleSpriteDef is a texture with one or more frames (0x04).
type SimpleSpriteDef struct {
	header
	Flags        uint32
	CurrentFrame *uint32
	Sleep        *uint32 // milliseconds between frames
	Frames       []Ref[*BmInfo]
}

const (
	SimpleSpriteHasCurrentFrame = 0x04
	SimpleSpriteHasSleep        = 0x08
)

// SimpleSprite points a material at a SimpleSpriteDef (0x05).
type SimpleSprite struct {
	header
	Sprite Ref[*SimpleSpriteDef]
	Flags  uint32
}

// Dag is one joint of a HierarchicalSpriteDef. Track points at the joint's
// rest Track, or directly at a TrackDef in some revisions.
type Dag struct {
	Name       StringRef
	Flags      uint32
	Track      FragmentRef
	Attachment FragmentRef
	SubDags    []uint32
}

// HierarchicalSpriteDef is a skeleton (0x10).
type HierarchicalSpriteDef struct {
	header
	Flags           uint32
	CollisionVolume FragmentRef
	Center          *[3]float32
	BoundingRadius  *float32
	Dags            []Dag
	DmSprites       []FragmentRef
	LinkSkins       []uint32
}

const (
	HierarchicalHasCenter = 0x001
	HierarchicalHasRadius = 0x002
	HierarchicalHasSkins  = 0x200
)

// HierarchicalSprite references a skeleton (0x11).
type HierarchicalSprite struct {
	header
	Sprite Ref[*HierarchicalSpriteDef]
	Flags  uint32
}

// FrameTransform is one quantized keyframe.
type FrameTransform struct {
	RotateDenominator int16
	RotateX           int16
	RotateY           int16
	RotateZ           int16
	ShiftX            int16
	ShiftY            int16
	ShiftZ            int16
	ShiftDenominator  int16
}

// LegacyFrameTransform is one keyframe in the float layout. Fields mirror
// FrameTransform.
type LegacyFrameTransform struct {
	RotateW          float32
	RotateX          float32
	RotateY          float32
	RotateZ          float32
	ShiftX           float32
	ShiftY           float32
	ShiftZ           float32
	ShiftDenominator float32
}

// TrackDef holds keyframe data (0x12). Exactly one of Frames and
// LegacyFrames is used, depending on TrackDefQuantized.
type TrackDef struct {
	header
	Flags        uint32
	Frames       []FrameTransform
	LegacyFrames []LegacyFrameTransform
}

const TrackDefQuantized = 0x08

// Len returns the number of keyframes.
func (t *TrackDef) Len() int {
	if t.Flags&TrackDefQuantized != 0 {
		return len(t.Frames)
	}
	return len(t.LegacyFrames)
}

// Track is a named pointer to a TrackDef (0x13).
type Track struct {
	header
	Def   Ref[*TrackDef]
	Flags uint32
	Sleep *uint32 // milliseconds per frame
}

const TrackHasSleep = 0x01

// Action is one action slot of an ActorDef.
type Action struct {
	Unknown uint32
	LODs    []float32
}

// ActorDef is an actor definition (0x14).
type ActorDef struct {
	header
	Flags         uint32
	Callback      StringRef
	Bounds        FragmentRef
	CurrentAction *uint32
	Location      *[6]float32
	Actions       []Action
	Fragments     []FragmentRef
	Unknown       uint32
}

const (
	ActorDefHasCurrentAction = 0x01
	ActorDefHasLocation      = 0x02
)

// Location places an actor instance.
type Location struct {
	X, Y, Z                   float32
	RotateZ, RotateY, RotateX float32
	Unknown                   uint32
}

// Actor is a placed actor instance (0x15). ActorDef is a string reference
// to the definition's name.
type Actor struct {
	header
	ActorDef       StringRef
	Flags          uint32
	Sphere         FragmentRef
	CurrentAction  *uint32
	Location       *Location
	BoundingRadius *float32
	ScaleFactor    *float32
	VertexColors   Ref[*DmRGBTrack]
}

const (
	ActorHasCurrentAction = 0x01
	ActorHasLocation      = 0x02
	ActorHasRadius        = 0x04
	ActorHasScale         = 0x08
)

// LightDef is a light source definition (0x1B).
type LightDef struct {
	header
	Flags        uint32
	CurrentFrame *uint32
	Sleep        *uint32
	Levels       []float32
	Colors       [][3]float32
}

const (
	LightDefHasCurrentFrame = 0x01
	LightDefHasSleep        = 0x02
	LightDefHasLevels       = 0x04
	LightDefHasColors       = 0x10
)

// Light references a LightDef (0x1C).
type Light struct {
	header
	Def   Ref[*LightDef]
	Flags uint32
}

// PointLight places a light (0x28).
type PointLight struct {
	header
	Light    Ref[*Light]
	Flags    uint32
	Position [3]float32
	Radius   float32
}

// AmbientLight applies a light to regions (0x2A).
type AmbientLight struct {
	header
	Light   Ref[*Light]
	Flags   uint32
	Regions []uint32
}

// DmSpriteDef is the older mesh layout with float positions (0x2C).
type DmSpriteDef struct {
	header
	Flags          uint32
	MaterialList   Ref[*MaterialPalette]
	Center         [3]float32
	Vertices       [][3]float32
	UVs            [][2]float32
	Normals        [][3]float32
	Colors         []uint32
	Faces          []Face
	SkinGroups     []Run
	MaterialGroups []Run
}

// DmSprite references a mesh, either layout (0x2D).
type DmSprite struct {
	header
	Sprite FragmentRef
	Params uint32
}

// RenderMethod is the MaterialDef render method code.
type RenderMethod uint32

// UserDefined reports whether the high bit selects a user-defined shader.
func (m RenderMethod) UserDefined() bool { return m&0x80000000 != 0 }

// MaterialType returns the shader classification of a user-defined method
// and 0 otherwise.
func (m RenderMethod) MaterialType() uint32 {
	if !m.UserDefined() {
		return 0
	}
	return uint32(m) &^ 0x80000000
}

// MaterialDef is a material (0x30).
type MaterialDef struct {
	header
	Flags         uint32
	RenderMethod  RenderMethod
	RGBPen        uint32
	Brightness    float32
	ScaledAmbient float32
	Sprite        Ref[*SimpleSprite]
	Pair          *[2]uint32
}

const MaterialHasPair = 0x02

// MaterialPalette lists the materials a mesh indexes into (0x31).
type MaterialPalette struct {
	header
	Flags     uint32
	Materials []Ref[*MaterialDef]
}

// DmRGBTrackDef holds per-vertex colours for an actor instance (0x32).
type DmRGBTrackDef struct {
	header
	Data1, Data2, Data3 uint32
	Colors              []uint32
}

// DmRGBTrack references a DmRGBTrackDef (0x33).
type DmRGBTrack struct {
	header
	Def   Ref[*DmRGBTrackDef]
	Flags uint32
}

// GlobalAmbientLightDef is the zone ambient colour (0x35).
type GlobalAmbientLightDef struct {
	header
	Color uint32
}

// MeshOp is one DmSpriteDef2 mesh operation entry.
type MeshOp struct {
	Index1  uint16
	Index2  uint16
	Offset  float32
	Param1  uint8
	Type    uint8
	Unknown uint16
}

// DmSpriteDef2 is the quantized mesh layout (0x36).
type DmSpriteDef2 struct {
	header
	Flags                uint32
	MaterialList         Ref[*MaterialPalette]
	Animation            FragmentRef
	Fragment3            FragmentRef
	Fragment4            FragmentRef
	Center               [3]float32
	Params2              [3]uint32
	MaxDistance          float32
	Min, Max             [3]float32
	Scale                uint16
	Positions            [][3]int16
	UVs                  [][2]int16
	Normals              [][3]int8
	Colors               []uint32
	Faces                []Face
	SkinGroups           []Run
	MaterialGroups       []Run
	VertexMaterialGroups []Run
	MeshOps              []MeshOp
}

// Opaque is any fragment whose body this package does not decode.
type Opaque struct {
	header
	kind Kind
	Body []byte // body after the name reference
}

// NewOpaque returns an Opaque fragment of kind k.
func NewOpaque(k Kind, name StringRef, body []byte) *Opaque {
	return &Opaque{header: header{Name: name}, kind: k, Body: body}
}

func (*BmInfo) Kind() Kind                { return KindBmInfo }
func (*SimpleSpriteDef) Kind() Kind       { return KindSimpleSpriteDef }
func (*SimpleSprite) Kind() Kind          { return KindSimpleSprite }
func (*HierarchicalSpriteDef) Kind() Kind { return KindHierarchicalSpriteDef }
func (*HierarchicalSprite) Kind() Kind    { return KindHierarchicalSprite }
func (*TrackDef) Kind() Kind              { return KindTrackDef }
func (*Track) Kind() Kind                 { return KindTrack }
func (*ActorDef) Kind() Kind              { return KindActorDef }
func (*Actor) Kind() Kind                 { return KindActor }
func (*LightDef) Kind() Kind              { return KindLightDef }
func (*Light) Kind() Kind                 { return KindLight }
func (*PointLight) Kind() Kind            { return KindPointLight }
func (*AmbientLight) Kind() Kind          { return KindAmbientLight }
func (*DmSpriteDef) Kind() Kind           { return KindDmSpriteDef }
func (*DmSprite) Kind() Kind              { return KindDmSprite }
func (*MaterialDef) Kind() Kind           { return KindMaterialDef }
func (*MaterialPalette) Kind() Kind       { return KindMaterialPalette }
func (*DmRGBTrackDef) Kind() Kind         { return KindDmRGBTrackDef }
func (*DmRGBTrack) Kind() Kind            { return KindDmRGBTrack }
func (*GlobalAmbientLightDef) Kind() Kind { return KindGlobalAmbientLightDef }
func (*DmSpriteDef2) Kind() Kind          { return KindDmSpriteDef2 }

func (f *Opaque) Kind() Kind {
	if f == nil {
		return 0
	}
	return f.kind
}
