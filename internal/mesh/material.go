package mesh

import (
	"fmt"
	"strings"
	"time"

	"eq-wld-decoder/internal/wld"
)

// Material is a decoded MaterialDef with its texture chain flattened.
type Material struct {
	Index        int
	Name         string
	Flags        uint32
	RenderMethod wld.RenderMethod

	// Visible is false for collision-only materials (render method 0).
	Visible bool
	// ShaderType is the user-defined material type, or 0.
	ShaderType uint32

	// Textures lists lower-cased bitmap filenames in frame order. Animated
	// textures have more than one.
	Textures []string
	// Delay is the time between texture frames, or 0 when not animated.
	Delay time.Duration

	Brightness    float32
	ScaledAmbient float32
}

// Texture returns the first texture filename or "".
func (m *Material) Texture() string {
	if len(m.Textures) == 0 {
		return ""
	}
	return m.Textures[0]
}

// Animated reports whether the material cycles through several textures.
func (m *Material) Animated() bool { return len(m.Textures) > 1 }

// Masked reports whether the material's shader treats the first palette
// colour of its bitmaps as transparent.
func (m *Material) Masked() bool {
	switch m.ShaderType {
	case 0x07, 0x13:
		return true
	}
	return false
}

// DecodeMaterial decodes the MaterialDef at fragment index and walks its
// SimpleSprite → SimpleSpriteDef → BmInfo chain.
func DecodeMaterial(d *wld.Document, index int) (*Material, error) {
	def, err := wld.At[*wld.MaterialDef](d, index)
	if err != nil {
		return nil, err
	}
	m := &Material{
		Index:         index,
		Name:          d.Name(index),
		Flags:         def.Flags,
		RenderMethod:  def.RenderMethod,
		Visible:       def.RenderMethod != 0,
		ShaderType:    def.RenderMethod.MaterialType(),
		Brightness:    def.Brightness,
		ScaledAmbient: def.ScaledAmbient,
	}
	if def.Sprite.IsZero() && !m.Visible {
		return m, nil
	}

	sprite, si, err := wld.ResolveIndex(d, def.Sprite)
	if err != nil {
		return nil, d.Errorf(index, wld.ErrBrokenReference, "simple sprite: %v", err)
	}
	sdef, sdi, err := wld.ResolveIndex(d, sprite.Sprite)
	if err != nil {
		return nil, d.Errorf(si, wld.ErrBrokenReference, "simple sprite definition: %v", err)
	}
	if sdef.Sleep != nil {
		m.Delay = time.Duration(*sdef.Sleep) * time.Millisecond
	}
	for i, ref := range sdef.Frames {
		bm, err := wld.Resolve(d, ref)
		if err != nil {
			return nil, d.Errorf(sdi, wld.ErrBrokenReference, "frame %d: %v", i, err)
		}
		for _, name := range bm.Files {
			m.Textures = append(m.Textures, strings.ToLower(name))
		}
	}
	return m, nil
}

// AllMaterials decodes every MaterialDef of d in document order. Materials
// that fail are reported in errs and left out of the result.
func AllMaterials(d *wld.Document) (materials []*Material, errs []error) {
	for i := range wld.All[*wld.MaterialDef](d) {
		m, err := DecodeMaterial(d, i)
		if err != nil {
			errs = append(errs, fmt.Errorf("mesh: material: %w", err))
			continue
		}
		materials = append(materials, m)
	}
	return materials, errs
}
