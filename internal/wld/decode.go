package wld

type decodeFunc func(r *reader, h header) Fragment

var decoders = map[Kind]decodeFunc{
	KindBmInfo:                decodeBmInfo,
	KindSimpleSpriteDef:       decodeSimpleSpriteDef,
	KindSimpleSprite:          decodeSimpleSprite,
	KindHierarchicalSpriteDef: decodeHierarchicalSpriteDef,
	KindHierarchicalSprite:    decodeHierarchicalSprite,
	KindTrackDef:              decodeTrackDef,
	KindTrack:                 decodeTrack,
	KindActorDef:              decodeActorDef,
	KindActor:                 decodeActor,
	KindLightDef:              decodeLightDef,
	KindLight:                 decodeLight,
	KindPointLight:            decodePointLight,
	KindAmbientLight:          decodeAmbientLight,
	KindDmSpriteDef:           decodeDmSpriteDef,
	KindDmSprite:              decodeDmSprite,
	KindMaterialDef:           decodeMaterialDef,
	KindMaterialPalette:       decodeMaterialPalette,
	KindDmRGBTrackDef:         decodeDmRGBTrackDef,
	KindDmRGBTrack:            decodeDmRGBTrack,
	KindGlobalAmbientLightDef: decodeGlobalAmbientLightDef,
	KindDmSpriteDef2:          decodeDmSpriteDef2,
}

// decodeFragment decodes one fragment body. Unknown kinds become Opaque.
func decodeFragment(k Kind, body []byte) (Fragment, error) {
	r := &reader{data: body}
	h := header{Name: StringRef(r.readI32())}
	dec, ok := decoders[k]
	if !ok {
		if r.err != nil {
			// Bodies too short for a name are legal for opaque kinds.
			return NewOpaque(k, 0, body), nil
		}
		return NewOpaque(k, h.Name, body[4:]), nil
	}
	f := dec(r, h)
	if r.err != nil {
		return nil, r.err
	}
	return f, nil
}

func readTyped[T Fragment](r *reader, n int) []Ref[T] {
	refs := make([]Ref[T], n)
	for i := range refs {
		refs[i] = Ref[T](r.readI32())
	}
	return refs
}

func decodeBmInfo(r *reader, h header) Fragment {
	f := &BmInfo{header: h}
	n := r.readU32() + 1
	// Every entry carries at least its u16 length.
	f.Files = make([]string, r.count(n, 2))
	for i := range f.Files {
		size := int(r.readU16())
		f.Files[i] = decodeFileName(r.readBytes(size))
	}
	return f
}

func decodeSimpleSpriteDef(r *reader, h header) Fragment {
	f := &SimpleSpriteDef{header: h, Flags: r.readU32()}
	n := r.readU32()
	f.CurrentFrame = optU32(r, f.Flags&SimpleSpriteHasCurrentFrame != 0)
	f.Sleep = optU32(r, f.Flags&SimpleSpriteHasSleep != 0)
	f.Frames = readTyped[*BmInfo](r, r.count(n, 4))
	return f
}

func decodeSimpleSprite(r *reader, h header) Fragment {
	return &SimpleSprite{header: h, Sprite: Ref[*SimpleSpriteDef](r.readI32()), Flags: r.readU32()}
}

func decodeHierarchicalSpriteDef(r *reader, h header) Fragment {
	f := &HierarchicalSpriteDef{header: h, Flags: r.readU32()}
	n := r.readU32()
	f.CollisionVolume = r.readRef()
	if f.Flags&HierarchicalHasCenter != 0 {
		c := r.readVec3()
		f.Center = &c
	}
	f.BoundingRadius = optF32(r, f.Flags&HierarchicalHasRadius != 0)
	// A dag is at least 20 bytes.
	f.Dags = make([]Dag, r.count(n, 20))
	for i := range f.Dags {
		d := &f.Dags[i]
		d.Name = StringRef(r.readI32())
		d.Flags = r.readU32()
		d.Track = r.readRef()
		d.Attachment = r.readRef()
		d.SubDags = r.readU32s(r.count(r.readU32(), 4))
	}
	if f.Flags&HierarchicalHasSkins != 0 {
		m := r.count(r.readU32(), 8)
		f.DmSprites = r.readRefs(m)
		f.LinkSkins = r.readU32s(m)
	}
	return f
}

func decodeHierarchicalSprite(r *reader, h header) Fragment {
	return &HierarchicalSprite{header: h, Sprite: Ref[*HierarchicalSpriteDef](r.readI32()), Flags: r.readU32()}
}

func decodeTrackDef(r *reader, h header) Fragment {
	f := &TrackDef{header: h, Flags: r.readU32()}
	n := r.readU32()
	if f.Flags&TrackDefQuantized != 0 {
		f.Frames = make([]FrameTransform, r.count(n, 16))
		for i := range f.Frames {
			f.Frames[i] = FrameTransform{
				RotateDenominator: r.readI16(),
				RotateX:           r.readI16(),
				RotateY:           r.readI16(),
				RotateZ:           r.readI16(),
				ShiftX:            r.readI16(),
				ShiftY:            r.readI16(),
				ShiftZ:            r.readI16(),
				ShiftDenominator:  r.readI16(),
			}
		}
		return f
	}
	f.LegacyFrames = make([]LegacyFrameTransform, r.count(n, 32))
	for i := range f.LegacyFrames {
		f.LegacyFrames[i] = LegacyFrameTransform{
			RotateW:          r.readF32(),
			RotateX:          r.readF32(),
			RotateY:          r.readF32(),
			RotateZ:          r.readF32(),
			ShiftX:           r.readF32(),
			ShiftY:           r.readF32(),
			ShiftZ:           r.readF32(),
			ShiftDenominator: r.readF32(),
		}
	}
	return f
}

func decodeTrack(r *reader, h header) Fragment {
	f := &Track{header: h, Def: Ref[*TrackDef](r.readI32()), Flags: r.readU32()}
	f.Sleep = optU32(r, f.Flags&TrackHasSleep != 0)
	return f
}

func decodeActorDef(r *reader, h header) Fragment {
	f := &ActorDef{header: h, Flags: r.readU32(), Callback: StringRef(r.readI32())}
	actions := r.readU32()
	refs := r.readU32()
	f.Bounds = r.readRef()
	f.CurrentAction = optU32(r, f.Flags&ActorDefHasCurrentAction != 0)
	if f.Flags&ActorDefHasLocation != 0 {
		var loc [6]float32
		for i := range loc {
			loc[i] = r.readF32()
		}
		f.Location = &loc
	}
	f.Actions = make([]Action, r.count(actions, 8))
	for i := range f.Actions {
		lods := r.readU32()
		f.Actions[i].Unknown = r.readU32()
		f.Actions[i].LODs = make([]float32, r.count(lods, 4))
		for j := range f.Actions[i].LODs {
			f.Actions[i].LODs[j] = r.readF32()
		}
	}
	f.Fragments = r.readRefs(r.count(refs, 4))
	f.Unknown = r.readU32()
	return f
}

func decodeActor(r *reader, h header) Fragment {
	f := &Actor{header: h, ActorDef: StringRef(r.readI32()), Flags: r.readU32(), Sphere: r.readRef()}
	f.CurrentAction = optU32(r, f.Flags&ActorHasCurrentAction != 0)
	if f.Flags&ActorHasLocation != 0 {
		f.Location = &Location{
			X:       r.readF32(),
			Y:       r.readF32(),
			Z:       r.readF32(),
			RotateZ: r.readF32(),
			RotateY: r.readF32(),
			RotateX: r.readF32(),
			Unknown: r.readU32(),
		}
	}
	f.BoundingRadius = optF32(r, f.Flags&ActorHasRadius != 0)
	f.ScaleFactor = optF32(r, f.Flags&ActorHasScale != 0)
	f.VertexColors = Ref[*DmRGBTrack](r.readI32())
	return f
}

func decodeLightDef(r *reader, h header) Fragment {
	f := &LightDef{header: h, Flags: r.readU32()}
	n := r.readU32()
	f.CurrentFrame = optU32(r, f.Flags&LightDefHasCurrentFrame != 0)
	f.Sleep = optU32(r, f.Flags&LightDefHasSleep != 0)
	if f.Flags&LightDefHasLevels != 0 {
		f.Levels = make([]float32, r.count(n, 4))
		for i := range f.Levels {
			f.Levels[i] = r.readF32()
		}
	}
	if f.Flags&LightDefHasColors != 0 {
		f.Colors = make([][3]float32, r.count(n, 12))
		for i := range f.Colors {
			f.Colors[i] = r.readVec3()
		}
	}
	return f
}

func decodeLight(r *reader, h header) Fragment {
	return &Light{header: h, Def: Ref[*LightDef](r.readI32()), Flags: r.readU32()}
}

func decodePointLight(r *reader, h header) Fragment {
	return &PointLight{
		header:   h,
		Light:    Ref[*Light](r.readI32()),
		Flags:    r.readU32(),
		Position: r.readVec3(),
		Radius:   r.readF32(),
	}
}

func decodeAmbientLight(r *reader, h header) Fragment {
	f := &AmbientLight{header: h, Light: Ref[*Light](r.readI32()), Flags: r.readU32()}
	f.Regions = r.readU32s(r.count(r.readU32(), 4))
	return f
}

func decodeDmSpriteDef(r *reader, h header) Fragment {
	f := &DmSpriteDef{header: h, Flags: r.readU32()}
	nv, nuv, nn, nc, nf := r.readU32(), r.readU32(), r.readU32(), r.readU32(), r.readU32()
	ns, ng := uint32(r.readU16()), uint32(r.readU16())
	f.MaterialList = Ref[*MaterialPalette](r.readI32())
	f.Center = r.readVec3()

	f.Vertices = make([][3]float32, r.count(nv, 12))
	for i := range f.Vertices {
		f.Vertices[i] = r.readVec3()
	}
	f.UVs = make([][2]float32, r.count(nuv, 8))
	for i := range f.UVs {
		f.UVs[i] = [2]float32{r.readF32(), r.readF32()}
	}
	f.Normals = make([][3]float32, r.count(nn, 12))
	for i := range f.Normals {
		f.Normals[i] = r.readVec3()
	}
	f.Colors = r.readU32s(r.count(nc, 4))
	f.Faces = r.readFaces(r.count(nf, 8))
	f.SkinGroups = r.readRuns(r.count(ns, 4))
	f.MaterialGroups = r.readRuns(r.count(ng, 4))
	return f
}

func decodeDmSprite(r *reader, h header) Fragment {
	return &DmSprite{header: h, Sprite: r.readRef(), Params: r.readU32()}
}

func decodeMaterialDef(r *reader, h header) Fragment {
	f := &MaterialDef{
		header:        h,
		Flags:         r.readU32(),
		RenderMethod:  RenderMethod(r.readU32()),
		RGBPen:        r.readU32(),
		Brightness:    r.readF32(),
		ScaledAmbient: r.readF32(),
		Sprite:        Ref[*SimpleSprite](r.readI32()),
	}
	if f.Flags&MaterialHasPair != 0 {
		f.Pair = &[2]uint32{r.readU32(), r.readU32()}
	}
	return f
}

func decodeMaterialPalette(r *reader, h header) Fragment {
	f := &MaterialPalette{header: h, Flags: r.readU32()}
	f.Materials = readTyped[*MaterialDef](r, r.count(r.readU32(), 4))
	return f
}

func decodeDmRGBTrackDef(r *reader, h header) Fragment {
	f := &DmRGBTrackDef{header: h, Data1: r.readU32()}
	n := r.readU32()
	f.Data2 = r.readU32()
	f.Data3 = r.readU32()
	f.Colors = r.readU32s(r.count(n, 4))
	return f
}

func decodeDmRGBTrack(r *reader, h header) Fragment {
	return &DmRGBTrack{header: h, Def: Ref[*DmRGBTrackDef](r.readI32()), Flags: r.readU32()}
}

func decodeGlobalAmbientLightDef(r *reader, h header) Fragment {
	return &GlobalAmbientLightDef{header: h, Color: r.readU32()}
}

func decodeDmSpriteDef2(r *reader, h header) Fragment {
	f := &DmSpriteDef2{
		header:       h,
		Flags:        r.readU32(),
		MaterialList: Ref[*MaterialPalette](r.readI32()),
		Animation:    r.readRef(),
		Fragment3:    r.readRef(),
		Fragment4:    r.readRef(),
		Center:       r.readVec3(),
		Params2:      [3]uint32{r.readU32(), r.readU32(), r.readU32()},
		MaxDistance:  r.readF32(),
		Min:          r.readVec3(),
		Max:          r.readVec3(),
	}
	var counts [9]uint32
	for i := range counts {
		counts[i] = uint32(r.readU16())
	}
	f.Scale = r.readU16()

	f.Positions = make([][3]int16, r.count(counts[0], 6))
	for i := range f.Positions {
		f.Positions[i] = [3]int16{r.readI16(), r.readI16(), r.readI16()}
	}
	f.UVs = make([][2]int16, r.count(counts[1], 4))
	for i := range f.UVs {
		f.UVs[i] = [2]int16{r.readI16(), r.readI16()}
	}
	f.Normals = make([][3]int8, r.count(counts[2], 3))
	for i := range f.Normals {
		f.Normals[i] = [3]int8{r.readI8(), r.readI8(), r.readI8()}
	}
	f.Colors = r.readU32s(r.count(counts[3], 4))
	f.Faces = r.readFaces(r.count(counts[4], 8))
	f.SkinGroups = r.readRuns(r.count(counts[5], 4))
	f.MaterialGroups = r.readRuns(r.count(counts[6], 4))
	f.VertexMaterialGroups = r.readRuns(r.count(counts[7], 4))
	f.MeshOps = make([]MeshOp, r.count(counts[8], 12))
	for i := range f.MeshOps {
		f.MeshOps[i] = MeshOp{
			Index1:  r.readU16(),
			Index2:  r.readU16(),
			Offset:  r.readF32(),
			Param1:  r.readU8(),
			Type:    r.readU8(),
			Unknown: r.readU16(),
		}
	}
	return f
}
