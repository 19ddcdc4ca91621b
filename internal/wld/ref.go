package wld

// StringRef is a reference into the string table. Negative values are byte
// offsets (negated); zero and positive values mean "no name".
type StringRef int32

// Offset returns the byte offset of r and whether r names anything.
func (r StringRef) Offset() (int, bool) {
	if r >= 0 {
		return 0, false
	}
	return -int(r), true
}

// FragmentRef is an untyped fragment reference: a 1-based index when
// positive, a name when negative, absent when zero.
type FragmentRef int32

// Index returns the 1-based fragment index if r is an index reference.
func (r FragmentRef) Index() (int, bool) {
	if r <= 0 {
		return 0, false
	}
	return int(r), true
}

// Name returns the string reference if r is a name reference.
func (r FragmentRef) Name() (StringRef, bool) {
	if r >= 0 {
		return 0, false
	}
	return StringRef(r), true
}

// IsZero reports whether r is absent.
func (r FragmentRef) IsZero() bool { return r == 0 }

// Ref is a FragmentRef that is expected to resolve to a fragment of type T.
// Both the index and the name form are carried in the same value; see
// Resolve.
type Ref[T Fragment] int32

// Index returns the 1-based fragment index if r is an index reference.
func (r Ref[T]) Index() (int, bool) { return FragmentRef(r).Index() }

// Name returns the string reference if r is a name reference.
func (r Ref[T]) Name() (StringRef, bool) { return FragmentRef(r).Name() }

// IsZero reports whether r is absent.
func (r Ref[T]) IsZero() bool { return r == 0 }

// Untyped drops the expected type.
func (r Ref[T]) Untyped() FragmentRef { return FragmentRef(r) }

// RefTo types an untyped reference.
func RefTo[T Fragment](r FragmentRef) Ref[T] { return Ref[T](r) }

// IndexRef returns an index reference to fragment i.
func IndexRef[T Fragment](i int) Ref[T] { return Ref[T](int32(i)) }
