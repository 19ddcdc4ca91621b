package skeleton

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"eq-wld-decoder/internal/wld"
)

// Transform is one decoded keyframe in the source axis convention.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
}

// Identity is the transform with no offset and no rotation.
var Identity = Transform{Rotation: mgl32.QuatIdent()}

// Mat4 returns the local matrix translate * rotate.
func (t Transform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).Mul4(t.Rotation.Mat4())
}

// DecodeFrame decodes a quantized keyframe. A zero shift denominator
// encodes "no offset"; a zero rotation decodes to identity.
func DecodeFrame(f wld.FrameTransform) Transform {
	var t Transform
	if den := float32(f.ShiftDenominator); den != 0 {
		t.Translation = mgl32.Vec3{float32(f.ShiftX) / den, float32(f.ShiftY) / den, float32(f.ShiftZ) / den}
	}
	t.Rotation = rotation(float32(f.RotateDenominator), float32(f.RotateX), float32(f.RotateY), float32(f.RotateZ))
	return t
}

// DecodeLegacyFrame decodes a keyframe of the float layout the same way.
func DecodeLegacyFrame(f wld.LegacyFrameTransform) Transform {
	var t Transform
	if den := f.ShiftDenominator; den != 0 {
		t.Translation = mgl32.Vec3{f.ShiftX / den, f.ShiftY / den, f.ShiftZ / den}
	}
	t.Rotation = rotation(f.RotateW, f.RotateX, f.RotateY, f.RotateZ)
	return t
}

func rotation(w, x, y, z float32) mgl32.Quat {
	q := mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
	l := q.Len()
	if l == 0 || math.IsNaN(float64(l)) || math.IsInf(float64(l), 0) {
		return mgl32.QuatIdent()
	}
	return q.Scale(1 / l)
}

// Frames decodes every keyframe of td.
func Frames(td *wld.TrackDef) []Transform {
	out := make([]Transform, 0, td.Len())
	if td.Flags&wld.TrackDefQuantized != 0 {
		for _, f := range td.Frames {
			out = append(out, DecodeFrame(f))
		}
		return out
	}
	for _, f := range td.LegacyFrames {
		out = append(out, DecodeLegacyFrame(f))
	}
	return out
}
