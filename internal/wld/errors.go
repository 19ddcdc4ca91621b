package wld

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package and by the decoders
// built on it wraps exactly one of these.
var (
	ErrMalformedInput   = errors.New("malformed input")
	ErrOutOfRange       = errors.New("fragment index out of range")
	ErrInvalidStringRef = errors.New("invalid string reference")
	ErrTypeMismatch     = errors.New("fragment type mismatch")
	ErrBrokenReference  = errors.New("broken reference")
	ErrDataIntegrity    = errors.New("data integrity")
)

// FragmentError identifies the fragment a hard error is about.
// Index is 1-based; 0 means the error is not tied to one fragment.
// Want and Have are zero when the error is not a kind mismatch.
type FragmentError struct {
	Index  int
	Name   string
	Want   Kind
	Have   Kind
	Detail string
	Err    error
}

func (e *FragmentError) Error() string {
	var b strings.Builder
	b.WriteString("wld: ")
	if e.Index != 0 {
		fmt.Fprintf(&b, "fragment %d", e.Index)
		if e.Name != "" {
			fmt.Fprintf(&b, " %q", e.Name)
		}
		if e.Have != 0 {
			fmt.Fprintf(&b, " (%s)", e.Have)
		}
		b.WriteString(": ")
	}
	if e.Want != 0 {
		fmt.Fprintf(&b, "want %s: ", e.Want)
	}
	if e.Detail != "" {
		b.WriteString(e.Detail)
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *FragmentError) Unwrap() error { return e.Err }

// Warning is a recoverable anomaly. Decoders keep going with a best-effort
// result and collect warnings next to it.
type Warning struct {
	Index  int
	Name   string
	Detail string
}

func (w *Warning) Error() string {
	if w.Name != "" {
		return fmt.Sprintf("wld: fragment %d %q: %s: %v", w.Index, w.Name, w.Detail, ErrDataIntegrity)
	}
	return fmt.Sprintf("wld: fragment %d: %s: %v", w.Index, w.Detail, ErrDataIntegrity)
}

func (w *Warning) Unwrap() error { return ErrDataIntegrity }

// Warnf builds a Warning for fragment index of d.
func (d *Document) Warnf(index int, format string, args ...any) *Warning {
	return &Warning{Index: index, Name: d.Name(index), Detail: fmt.Sprintf(format, args...)}
}

// Errorf builds a FragmentError for fragment index of d wrapping kind.
func (d *Document) Errorf(index int, kind error, format string, args ...any) *FragmentError {
	e := &FragmentError{Index: index, Name: d.Name(index), Detail: fmt.Sprintf(format, args...), Err: kind}
	if f, err := d.Get(index); err == nil {
		e.Have = f.Kind()
	}
	return e
}

func malformed(format string, args ...any) error {
	return &FragmentError{Detail: fmt.Sprintf(format, args...), Err: ErrMalformedInput}
}
