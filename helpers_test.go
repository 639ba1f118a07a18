package codablejson

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/codablejson/errors"
)

func isKind(err error, kind errors.Kind) bool {
	for err != nil {
		if e, ok := err.(*errors.Error); ok && e.Kind == kind {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

func newCoder(t *testing.T, opts ...Option) *Coder {
	t.Helper()
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func roundTrip(t *testing.T, c *Coder, v any) any {
	t.Helper()
	w, err := c.Encode(v)
	if err != nil {
		t.Fatalf("Encode(%v): %v", v, err)
	}
	out, err := c.Decode(w)
	if err != nil {
		t.Fatalf("Decode(%v): %v", w, err)
	}
	return out
}
