package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path"
	"slices"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

const tgaFooterSize = 26

// Texture is a decoded bitmap.
type Texture struct {
	Name   string
	Format string
	Image  *image.NRGBA

	// Key is the first palette colour of a paletted bitmap, which masked
	// materials draw as transparent. Keyed is false for true-colour images.
	Key   color.NRGBA
	Keyed bool
}

// Decode decodes a BMP or TGA payload, chosen by the extension of name.
// TGA has no signature, so other names fall back to sniffing.
func Decode(name string, data []byte) (*Texture, error) {
	var (
		img    image.Image
		format string
		err    error
	)
	switch path.Ext(name) {
	case ".bmp":
		img, err = bmp.Decode(bytes.NewReader(data))
		format = "bmp"
	case ".tga":
		// The decoder always seeks back over a 26-byte footer.
		if len(data) < tgaFooterSize {
			data = append(slices.Clip(data), make([]byte, tgaFooterSize-len(data))...)
		}
		img, err = tga.Decode(bytes.NewReader(data))
		format = "tga"
	default:
		img, format, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", name, err)
	}
	t := &Texture{Name: name, Format: format, Image: toNRGBA(img)}
	if p, ok := img.(*image.Paletted); ok && len(p.Palette) > 0 {
		t.Key = color.NRGBAModel.Convert(p.Palette[0]).(color.NRGBA)
		t.Keyed = true
	}
	return t, nil
}

// Masked returns a copy of the image with every pixel matching Key made
// fully transparent. Unkeyed textures are returned unchanged.
func (t *Texture) Masked() *image.NRGBA {
	if !t.Keyed {
		return t.Image
	}
	dst := image.NewNRGBA(t.Image.Bounds())
	copy(dst.Pix, t.Image.Pix)
	key := t.Key
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		if dst.Pix[i] == key.R && dst.Pix[i+1] == key.G && dst.Pix[i+2] == key.B {
			dst.Pix[i+3] = 0
		}
	}
	return dst
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.Gray, *image.RGBA:
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := dst.PixOffset(x-b.Min.X, y-b.Min.Y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
