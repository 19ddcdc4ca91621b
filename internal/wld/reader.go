package wld

import (
	"encoding/binary"
	"fmt"
	"math"
)

// reader is a little-endian cursor. The first short read sets err; every
// later read returns zero values, so decoders check err once at the end.
type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = fmt.Errorf("need %d bytes at offset %d, have %d", n, r.off, len(r.data)-r.off)
		r.off = len(r.data)
		return false
	}
	return true
}

// count validates that n elements of size bytes each are still available,
// so callers never allocate from an untrusted count.
func (r *reader) count(n uint32, size int) int {
	if !r.need(int(n) * size) {
		return 0
	}
	return int(n)
}

func (r *reader) readBytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) readU8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *reader) readI8() int8 { return int8(r.readU8()) }

func (r *reader) readU16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *reader) readI16() int16 { return int16(r.readU16()) }

func (r *reader) readU32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) readI32() int32 { return int32(r.readU32()) }

func (r *reader) readF32() float32 { return math.Float32frombits(r.readU32()) }

func (r *reader) readVec3() [3]float32 {
	return [3]float32{r.readF32(), r.readF32(), r.readF32()}
}

func (r *reader) readRef() FragmentRef { return FragmentRef(r.readI32()) }

func (r *reader) readRun() Run {
	return Run{Count: r.readU16(), Index: r.readU16()}
}

func (r *reader) readRuns(n int) []Run {
	runs := make([]Run, n)
	for i := range runs {
		runs[i] = r.readRun()
	}
	return runs
}

func (r *reader) readFaces(n int) []Face {
	faces := make([]Face, n)
	for i := range faces {
		faces[i].Flags = r.readU16()
		faces[i].Vertices = [3]uint16{r.readU16(), r.readU16(), r.readU16()}
	}
	return faces
}

func (r *reader) readU32s(n int) []uint32 {
	vs := make([]uint32, n)
	for i := range vs {
		vs[i] = r.readU32()
	}
	return vs
}

func (r *reader) readRefs(n int) []FragmentRef {
	vs := make([]FragmentRef, n)
	for i := range vs {
		vs[i] = r.readRef()
	}
	return vs
}

func optU32(r *reader, present bool) *uint32 {
	if !present {
		return nil
	}
	v := r.readU32()
	return &v
}

func optF32(r *reader, present bool) *float32 {
	if !present {
		return nil
	}
	v := r.readF32()
	return &v
}
