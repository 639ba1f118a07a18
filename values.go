package codablejson

import (
	"strconv"
	"sync"
)

type undefinedValue struct{}

func (undefinedValue) String() string { return "undefined" }

type holeValue struct{}

func (holeValue) String() string { return "<empty>" }

var (
	// Undefined is an explicitly absent value. It survives a round trip as
	// itself, unlike nil which stands for null.
	Undefined any = undefinedValue{}

	// Hole marks a gap in a sparse array: a position that exists but holds
	// no value. Outside an array it encodes like Undefined.
	Hole any = holeValue{}
)

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// IsHole reports whether v is Hole.
func IsHole(v any) bool {
	_, ok := v.(holeValue)
	return ok
}

// Symbol is a unique atom. Symbols created with SymbolFor are interned by
// key for the life of the process. Only the key is encoded, so a symbol
// from NewSymbol decodes to the interned symbol for its key.
type Symbol struct {
	key string
}

var symbols sync.Map // key -> *Symbol

// SymbolFor returns the process-wide symbol for key, creating it once.
func SymbolFor(key string) *Symbol {
	if s, ok := symbols.Load(key); ok {
		return s.(*Symbol)
	}
	s, _ := symbols.LoadOrStore(key, &Symbol{key: key})
	return s.(*Symbol)
}

// NewSymbol returns a symbol distinct from every other symbol.
func NewSymbol(key string) *Symbol {
	return &Symbol{key: key}
}

// Key returns the symbol's registry key.
func (s *Symbol) Key() string {
	return s.key
}

func (s *Symbol) String() string {
	return "Symbol(" + s.key + ")"
}

// UnresolvedRef is left in the decoded output where a reference alias
// named an id that no node in the document carries.
type UnresolvedRef struct {
	ID int
}

func (r *UnresolvedRef) String() string {
	return "<unresolved ref " + strconv.Itoa(r.ID) + ">"
}

// ExternalRef stands in for a value that is not serialized. Only Key goes
// on the wire; decoding looks the key up in the external references passed
// with WithExternalReferences.
type ExternalRef struct {
	Value any
	Key   string
}

// External wraps value so that only key is encoded.
func External(key string, value any) *ExternalRef {
	return &ExternalRef{Key: key, Value: value}
}
