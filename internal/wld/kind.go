package wld

import "fmt"

// Kind is the fragment type id stored in every fragment record.
type Kind uint32

const (
	KindDefaultPaletteFile    Kind = 0x01
	KindUserData              Kind = 0x02
	KindBmInfo                Kind = 0x03
	KindSimpleSpriteDef       Kind = 0x04
	KindSimpleSprite          Kind = 0x05
	KindSprite2DDef           Kind = 0x06
	KindSprite2D              Kind = 0x07
	KindSprite3DDef           Kind = 0x08
	KindSprite3D              Kind = 0x09
	KindSprite4DDef           Kind = 0x0A
	KindSprite4D              Kind = 0x0B
	KindParticleSpriteDef     Kind = 0x0C
	KindParticleSprite        Kind = 0x0D
	KindCompositeSpriteDef    Kind = 0x0E
	KindCompositeSprite       Kind = 0x0F
	KindHierarchicalSpriteDef Kind = 0x10
	KindHierarchicalSprite    Kind = 0x11
	KindTrackDef              Kind = 0x12
	KindTrack                 Kind = 0x13
	KindActorDef              Kind = 0x14
	KindActor                 Kind = 0x15
	KindSphere                Kind = 0x16
	KindPolyhedronDef         Kind = 0x17
	KindPolyhedron            Kind = 0x18
	KindSphereListDef         Kind = 0x19
	KindSphereList            Kind = 0x1A
	KindLightDef              Kind = 0x1B
	KindLight                 Kind = 0x1C
	KindPointLightOld         Kind = 0x1D
	KindSoundDef              Kind = 0x1F
	KindSound                 Kind = 0x20
	KindWorldTree             Kind = 0x21
	KindRegion                Kind = 0x22
	KindActiveGeoRegion       Kind = 0x23
	KindSkyRegion             Kind = 0x24
	KindDirectionalLightOld   Kind = 0x25
	KindBlitSpriteDef         Kind = 0x26
	KindBlitSprite            Kind = 0x27
	KindPointLight            Kind = 0x28
	KindZone                  Kind = 0x29
	KindAmbientLight          Kind = 0x2A
	KindDirectionalLight      Kind = 0x2B
	KindDmSpriteDef           Kind = 0x2C
	KindDmSprite              Kind = 0x2D
	KindDmTrackDef            Kind = 0x2E
	KindDmTrack               Kind = 0x2F
	KindMaterialDef           Kind = 0x30
	KindMaterialPalette       Kind = 0x31
	KindDmRGBTrackDef         Kind = 0x32
	KindDmRGBTrack            Kind = 0x33
	KindParticleCloudDef      Kind = 0x34
	KindGlobalAmbientLightDef Kind = 0x35
	KindDmSpriteDef2          Kind = 0x36
	KindDmTrackDef2           Kind = 0x37
)

var kindNames = map[Kind]string{
	KindDefaultPaletteFile:    "DefaultPaletteFile",
	KindUserData:              "UserData",
	KindBmInfo:                "BmInfo",
	KindSimpleSpriteDef:       "SimpleSpriteDef",
	KindSimpleSprite:          "SimpleSprite",
	KindSprite2DDef:           "Sprite2DDef",
	KindSprite2D:              "Sprite2D",
	KindSprite3DDef:           "Sprite3DDef",
	KindSprite3D:              "Sprite3D",
	KindSprite4DDef:           "Sprite4DDef",
	KindSprite4D:              "Sprite4D",
	KindParticleSpriteDef:     "ParticleSpriteDef",
	KindParticleSprite:        "ParticleSprite",
	KindCompositeSpriteDef:    "CompositeSpriteDef",
	KindCompositeSprite:       "CompositeSprite",
	KindHierarchicalSpriteDef: "HierarchicalSpriteDef",
	KindHierarchicalSprite:    "HierarchicalSprite",
	KindTrackDef:              "TrackDef",
	KindTrack:                 "Track",
	KindActorDef:              "ActorDef",
	KindActor:                 "Actor",
	KindSphere:                "Sphere",
	KindPolyhedronDef:         "PolyhedronDef",
	KindPolyhedron:            "Polyhedron",
	KindSphereListDef:         "SphereListDef",
	KindSphereList:            "SphereList",
	KindLightDef:              "LightDef",
	KindLight:                 "Light",
	KindPointLightOld:         "PointLightOld",
	KindSoundDef:              "SoundDef",
	KindSound:                 "Sound",
	KindWorldTree:             "WorldTree",
	KindRegion:                "Region",
	KindActiveGeoRegion:       "ActiveGeoRegion",
	KindSkyRegion:             "SkyRegion",
	KindDirectionalLightOld:   "DirectionalLightOld",
	KindBlitSpriteDef:         "BlitSpriteDef",
	KindBlitSprite:            "BlitSprite",
	KindPointLight:            "PointLight",
	KindZone:                  "Zone",
	KindAmbientLight:          "AmbientLight",
	KindDirectionalLight:      "DirectionalLight",
	KindDmSpriteDef:           "DmSpriteDef",
	KindDmSprite:              "DmSprite",
	KindDmTrackDef:            "DmTrackDef",
	KindDmTrack:               "DmTrack",
	KindMaterialDef:           "MaterialDef",
	KindMaterialPalette:       "MaterialPalette",
	KindDmRGBTrackDef:         "DmRGBTrackDef",
	KindDmRGBTrack:            "DmRGBTrack",
	KindParticleCloudDef:      "ParticleCloudDef",
	KindGlobalAmbientLightDef: "GlobalAmbientLightDef",
	KindDmSpriteDef2:          "DmSpriteDef2",
	KindDmTrackDef2:           "DmTrackDef2",
}

// String returns the fragment kind name, or "Kind(0xNN)" for unknown ids.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%#02x)", uint32(k))
}

// Known reports whether k is one of the kind ids listed above.
func (k Kind) Known() bool {
	_, ok := kindNames[k]
	return ok
}

// Version is the document format revision from the header.
type Version uint32

const (
	VersionOld Version = 0x00015500
	VersionNew Version = 0x1000C800
)

func (v Version) String() string {
	switch v {
	case VersionOld:
		return "old"
	case VersionNew:
		return "new"
	default:
		return fmt.Sprintf("Version(%#08x)", uint32(v))
	}
}
