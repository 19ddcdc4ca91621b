// Package wld decodes WLD documents into an immutable, typed fragment store
// and resolves the index and name references between fragments.
package wld

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"eq-wld-decoder/internal/crypto"
)

// Magic is the first word of every WLD document.
const Magic = 0x54503D02

// HeaderSize is the size in bytes of the fixed document header.
const HeaderSize = 28

// Header is the fixed document header.
type Header struct {
	Magic          uint32
	Version        Version
	FragmentCount  uint32
	RegionCount    uint32
	MaxObjectBytes uint32
	StringHashSize uint32
	StringCount    uint32
}

// Document is a decoded WLD document. It is never modified after Parse
// returns and is safe for concurrent use.
type Document struct {
	header    Header
	strings   StringTable
	fragments []Fragment
	names     map[string][]int
}

// Parse decodes a whole document. Any structural problem aborts the decode
// with an error wrapping ErrMalformedInput; no partial Document is returned.
func Parse(data []byte) (*Document, error) {
	r := &reader{data: data}
	h := Header{
		Magic:          r.readU32(),
		Version:        Version(r.readU32()),
		FragmentCount:  r.readU32(),
		RegionCount:    r.readU32(),
		MaxObjectBytes: r.readU32(),
		StringHashSize: r.readU32(),
		StringCount:    r.readU32(),
	}
	if r.err != nil {
		return nil, malformed("header: %v", r.err)
	}
	if h.Magic != Magic {
		return nil, malformed("bad magic %#08x", h.Magic)
	}
	if h.Version != VersionOld && h.Version != VersionNew {
		return nil, malformed("unsupported version %#08x", uint32(h.Version))
	}

	hash := r.readBytes(int(h.StringHashSize))
	if r.err != nil {
		return nil, malformed("string hash: %v", r.err)
	}

	d := &Document{
		header:  h,
		strings: StringTable{raw: crypto.DecodeHash(hash)},
		// A record header alone is 8 bytes.
		fragments: make([]Fragment, 0, r.count(h.FragmentCount, 8)),
		names:     make(map[string][]int),
	}
	if r.err != nil {
		return nil, malformed("fragment count %d exceeds input: %v", h.FragmentCount, r.err)
	}

	for i := 1; i <= int(h.FragmentCount); i++ {
		size := r.readU32()
		kind := Kind(r.readU32())
		body := r.readBytes(int(size))
		if r.err != nil {
			return nil, &FragmentError{Index: i, Have: kind, Detail: "truncated record", Err: ErrMalformedInput}
		}
		f, err := decodeFragment(kind, body)
		if err != nil {
			return nil, &FragmentError{Index: i, Have: kind, Detail: err.Error(), Err: ErrMalformedInput}
		}
		d.fragments = append(d.fragments, f)
		if name, err := d.strings.Get(f.NameRef()); err == nil && name != "" {
			d.names[name] = append(d.names[name], i)
		}
	}
	return d, nil
}

// Header returns the document header.
func (d *Document) Header() Header { return d.header }

// Version returns the format revision.
func (d *Document) Version() Version { return d.header.Version }

// Len returns the number of fragments.
func (d *Document) Len() int { return len(d.fragments) }

// Strings returns the string table.
func (d *Document) Strings() StringTable { return d.strings }

// Get returns the fragment at 1-based index i.
func (d *Document) Get(i int) (Fragment, error) {
	if i < 1 || i > len(d.fragments) {
		return nil, &FragmentError{Index: i, Detail: fmt.Sprintf("count %d", len(d.fragments)), Err: ErrOutOfRange}
	}
	return d.fragments[i-1], nil
}

// String resolves a string reference. See StringTable.Get.
func (d *Document) String(ref StringRef) (string, error) {
	return d.strings.Get(ref)
}

// Name returns the name of fragment i, or "" when it has none or i is not a
// valid index.
func (d *Document) Name(i int) string {
	f, err := d.Get(i)
	if err != nil {
		return ""
	}
	name, _ := d.strings.Get(f.NameRef())
	return name
}

// Lookup returns the indices of every fragment named name, in order.
func (d *Document) Lookup(name string) []int {
	return slices.Clone(d.names[name])
}

// Fragments yields every fragment with its 1-based index.
func (d *Document) Fragments() iter.Seq2[int, Fragment] {
	return func(yield func(int, Fragment) bool) {
		for i, f := range d.fragments {
			if !yield(i+1, f) {
				return
			}
		}
	}
}

// Kinds counts fragments per kind.
func (d *Document) Kinds() map[Kind]int {
	counts := make(map[Kind]int)
	for _, f := range d.fragments {
		counts[f.Kind()]++
	}
	return counts
}

// SortedKinds returns the kinds present in d in ascending id order.
func (d *Document) SortedKinds() []Kind {
	return slices.Sorted(maps.Keys(d.Kinds()))
}

// All yields, in document order, every fragment of type T with its index.
// The sequence may be ranged over any number of times.
func All[T Fragment](d *Document) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, f := range d.fragments {
			t, ok := f.(T)
			if !ok {
				continue
			}
			if !yield(i+1, t) {
				return
			}
		}
	}
}

// kindOf returns the kind of T without needing a value.
func kindOf[T Fragment]() Kind {
	var zero T
	if any(zero) == nil {
		// T is Fragment itself.
		return 0
	}
	return zero.Kind()
}

// Locate turns a reference of either form into a 1-based index. Name
// references pick the first fragment of that name whose kind is want, or
// the first of that name at all when want is 0.
func (d *Document) Locate(ref FragmentRef, want Kind) (int, error) {
	if i, ok := ref.Index(); ok {
		if _, err := d.Get(i); err != nil {
			return 0, err
		}
		return i, nil
	}
	sref, ok := ref.Name()
	if !ok {
		return 0, &FragmentError{Want: want, Detail: "null reference", Err: ErrOutOfRange}
	}
	name, err := d.strings.Get(sref)
	if err != nil {
		return 0, &FragmentError{Want: want, Detail: err.Error(), Err: ErrInvalidStringRef}
	}
	candidates := d.names[name]
	if len(candidates) == 0 {
		return 0, &FragmentError{Name: name, Want: want, Detail: "no fragment with this name", Err: ErrBrokenReference}
	}
	if want == 0 {
		return candidates[0], nil
	}
	for _, i := range candidates {
		if d.fragments[i-1].Kind() == want {
			return i, nil
		}
	}
	return candidates[0], nil
}

// ResolveIndex resolves ref and returns the fragment with its index.
func ResolveIndex[T Fragment](d *Document, ref Ref[T]) (T, int, error) {
	var zero T
	want := kindOf[T]()
	i, err := d.Locate(ref.Untyped(), want)
	if err != nil {
		return zero, 0, err
	}
	f := d.fragments[i-1]
	t, ok := f.(T)
	if !ok {
		return zero, i, &FragmentError{Index: i, Name: d.Name(i), Want: want, Have: f.Kind(), Err: ErrTypeMismatch}
	}
	return t, i, nil
}

// Resolve resolves ref to a fragment of type T. It fails with
// ErrOutOfRange for a bad index, ErrBrokenReference for an unknown name and
// ErrTypeMismatch when the target is of another kind.
func Resolve[T Fragment](d *Document, ref Ref[T]) (T, error) {
	t, _, err := ResolveIndex(d, ref)
	return t, err
}

// At returns fragment i as a T.
func At[T Fragment](d *Document, i int) (T, error) {
	return Resolve(d, IndexRef[T](i))
}
