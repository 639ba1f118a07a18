package codablejson

import (
	"strconv"
	"strings"

	"github.com/wippyai/codablejson/errors"
	"github.com/wippyai/codablejson/wire"
)

// Path locates a node in a wire tree. Record segments are wire keys (still
// escaped), array segments are decoded indices, and "$$Name" segments mark
// the step from a tag into its payload.
type Path []string

// Append returns p extended by seg without sharing p's spare capacity.
func (p Path) Append(seg string) Path {
	return append(p[:len(p):len(p)], seg)
}

// Index appends an array index.
func (p Path) Index(i int) Path {
	return p.Append(strconv.Itoa(i))
}

func (p Path) String() string {
	return "/" + strings.Join(p, "/")
}

// Segments walks a Path for readers, skipping tag-key segments.
type Segments struct {
	path Path
	pos  int
}

// NewSegments starts a walk over p.
func NewSegments(p Path) *Segments {
	return &Segments{path: p}
}

// Next returns the next non-tag segment.
func (s *Segments) Next() (string, bool) {
	for s.pos < len(s.path) {
		seg := s.path[s.pos]
		s.pos++
		if wire.IsTagKey(seg) {
			continue
		}
		return seg, true
	}
	return "", false
}

// Done reports whether no non-tag segments remain.
func (s *Segments) Done() bool {
	for i := s.pos; i < len(s.path); i++ {
		if !wire.IsTagKey(s.path[i]) {
			return false
		}
	}
	return true
}

// Walked returns the part of the path consumed so far.
func (s *Segments) Walked() Path {
	return s.path[:s.pos]
}

// Index consumes the next segment as an index into a sequence of length n.
func (s *Segments) Index(n int) (int, error) {
	seg, ok := s.Next()
	if !ok {
		return 0, errors.InvalidData(errors.PhasePatch, s.Walked(), "path ends inside a container")
	}
	i, err := strconv.Atoi(seg)
	if err != nil {
		return 0, errors.InvalidData(errors.PhasePatch, s.Walked(), "segment "+strconv.Quote(seg)+" is not an index")
	}
	if i < 0 || i >= n {
		return 0, errors.OutOfBounds(errors.PhasePatch, s.Walked(), i, n)
	}
	return i, nil
}

// Key consumes the next segment as a record key and unescapes it.
func (s *Segments) Key() (string, error) {
	seg, ok := s.Next()
	if !ok {
		return "", errors.InvalidData(errors.PhasePatch, s.Walked(), "path ends inside a container")
	}
	return wire.RecordKeys.Unescape(seg), nil
}

// Accessor reads and writes one slot inside a decoded container.
type Accessor struct {
	Get func() any
	Set func(any) error
}

// Reader consumes the segments that address a slot inside container and
// returns an accessor for it.
type Reader func(container any, segs *Segments) (Accessor, error)

// SliceAccessor addresses s[i].
func SliceAccessor(s []any, i int) Accessor {
	return Accessor{
		Get: func() any { return s[i] },
		Set: func(v any) error {
			s[i] = v
			return nil
		},
	}
}

// RecordAccessor addresses m[key].
func RecordAccessor(m map[string]any, key string) Accessor {
	return Accessor{
		Get: func() any { return m[key] },
		Set: func(v any) error {
			m[key] = v
			return nil
		},
	}
}

// DefaultReader reads plain arrays by index and plain records by key.
func DefaultReader(container any, segs *Segments) (Accessor, error) {
	switch c := container.(type) {
	case []any:
		i, err := segs.Index(len(c))
		if err != nil {
			return Accessor{}, err
		}
		return SliceAccessor(c, i), nil
	case map[string]any:
		key, err := segs.Key()
		if err != nil {
			return Accessor{}, err
		}
		return RecordAccessor(c, key), nil
	default:
		return Accessor{}, errors.New(errors.PhasePatch, errors.KindUnsupported).
			Path(segs.Walked()...).
			GoType(typeName(container)).
			Detail("no reader for container").
			Build()
	}
}
