package codablejson

import (
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/codablejson/errors"
	"github.com/wippyai/codablejson/wire"
)

// DecodeContext is handed to descriptor decoders. It is only valid for the
// duration of the call that received it.
type DecodeContext struct {
	logger  *zap.Logger
	path    Path
	options DecodeOptions
}

// Path returns the wire path of the tag being decoded.
func (c *DecodeContext) Path() Path {
	return c.path
}

// Logger returns the logger for the current decode call.
func (c *DecodeContext) Logger() *zap.Logger {
	return c.logger
}

// Strict reports whether unresolved references are errors.
func (c *DecodeContext) Strict() bool {
	return c.options.StrictReferences
}

// External returns the value supplied for an external reference key.
func (c *DecodeContext) External(key string) (any, bool) {
	v, ok := c.options.External[key]
	return v, ok
}

type pendingRef struct {
	placeholder *UnresolvedRef
	path        Path
	id          int
}

// decoder rebuilds a value graph in one pass and then patches the
// positions of references whose target was not finished when they were
// reached.
type decoder struct {
	snap     *registrySnapshot
	resolved map[int]any
	pending  []pendingRef
	ctx      DecodeContext
}

func decode(snap *registrySnapshot, log *zap.Logger, w any, opts DecodeOptions) (any, error) {
	if opts.Logger != nil {
		log = opts.Logger
	}
	d := &decoder{
		snap:     snap,
		resolved: make(map[int]any),
		ctx:      DecodeContext{logger: log, options: opts},
	}

	root, err := d.value(w, nil, false)
	if err != nil {
		return nil, err
	}
	return d.patch(root)
}

func (d *decoder) value(w any, path Path, inArray bool) (any, error) {
	switch x := w.(type) {
	case string:
		return decodeString(x, inArray), nil
	case []any:
		return d.array(x, path)
	case map[string]any:
		if tag, ok := wire.ParseTag(x); ok {
			if tag.IsRef() {
				return d.ref(tag, path)
			}
			if t, ok := d.snap.byName[tag.Name]; ok {
				return d.tagged(t, tag, path)
			}
		}
		return d.record(x, path)
	default:
		return w, nil
	}
}

func decodeString(s string, inArray bool) any {
	switch s {
	case wire.UndefinedString:
		return Undefined
	case wire.NaNString:
		return math.NaN()
	case wire.NegativeZeroString:
		return math.Copysign(0, -1)
	case wire.InfinityString:
		return math.Inf(1)
	case wire.NegativeInfinityString:
		return math.Inf(-1)
	case wire.EmptyString:
		if inArray {
			return Hole
		}
		return s
	}
	return wire.Strings.Unescape(s)
}

func (d *decoder) array(w []any, path Path) (any, error) {
	id, start := -1, 0
	if len(w) > 0 {
		if s, ok := w[0].(string); ok {
			if n, ok := wire.ArrayID(s); ok {
				id, start = n, 1
			}
		}
	}

	out := make([]any, len(w)-start)
	for i := range out {
		elem := w[i+start]
		if i == 0 {
			if s, ok := elem.(string); ok {
				elem = wire.ArrayIDs.Unescape(s)
			}
		}
		v, err := d.value(elem, path.Index(i), true)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	if id >= 0 {
		d.resolved[id] = out
	}
	return out, nil
}

func (d *decoder) record(w map[string]any, path Path) (any, error) {
	// Walk keys in the encoder's order, which sorts the unescaped names,
	// so a shared node is reached at the position it was written in full.
	type field struct{ raw, key string }
	fields := make([]field, 0, len(w))
	for k := range w {
		if k != wire.IDKey {
			fields = append(fields, field{raw: k, key: wire.RecordKeys.Unescape(k)})
		}
	}
	slices.SortFunc(fields, func(a, b field) int {
		return strings.Compare(a.key, b.key)
	})

	out := make(map[string]any, len(fields))
	for _, f := range fields {
		// The path holds the escaped key so that a raw "$$Name" key of
		// an unknown tag is not mistaken for a tag segment.
		v, err := d.value(w[f.raw], path.Append(wire.RecordKeys.Escape(f.key)), false)
		if err != nil {
			return nil, err
		}
		out[f.key] = v
	}

	if id := wire.RecordID(w); id >= 0 {
		d.resolved[id] = out
	}
	return out, nil
}

func (d *decoder) ref(tag wire.Tag, path Path) (any, error) {
	id, ok := wire.ID(tag.Payload)
	if !ok {
		return nil, errors.InvalidData(errors.PhaseDecode, path, "reference id is not a non-negative integer")
	}
	if v, ok := d.resolved[id]; ok {
		return v, nil
	}

	p := &UnresolvedRef{ID: id}
	d.pending = append(d.pending, pendingRef{placeholder: p, path: path, id: id})
	return p, nil
}

func (d *decoder) tagged(t *Type, tag wire.Tag, path Path) (any, error) {
	payload := tag.Payload
	if !t.Flat {
		var err error
		payload, err = d.value(payload, path.Append(tag.Key()), false)
		if err != nil {
			return nil, err
		}
	}

	d.ctx.path = path
	v, err := t.Decode(payload, &d.ctx)
	if err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(path...).
			Tag(t.Name).
			Cause(err).
			Build()
	}

	if tag.ID >= 0 {
		d.resolved[tag.ID] = v
	}
	return v, nil
}

func (d *decoder) patch(root any) (any, error) {
	for _, p := range d.pending {
		target, ok := d.resolved[p.id]
		if !ok {
			if d.ctx.options.StrictReferences {
				return nil, errors.UnresolvedReference(p.path, p.id)
			}
			d.ctx.logger.Warn("unresolved reference",
				zap.Int("id", p.id),
				zap.Stringer("path", p.path))
			continue
		}

		var err error
		root, err = d.set(root, p.path, target)
		if err != nil {
			return nil, err
		}
	}
	return root, nil
}

// set writes target at path inside root and returns the possibly replaced
// root.
func (d *decoder) set(root any, path Path, target any) (any, error) {
	segs := NewSegments(path)
	if segs.Done() {
		return target, nil
	}

	current := root
	for {
		acc, err := d.reader(current)(current, segs)
		if err != nil {
			return nil, err
		}
		if segs.Done() {
			return root, acc.Set(target)
		}
		current = acc.Get()
	}
}

func (d *decoder) reader(container any) Reader {
	if t := d.snap.match(container); t != nil && t.Reader != nil {
		return t.Reader
	}
	return DefaultReader
}
