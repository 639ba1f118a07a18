package codablejson

import (
	"cmp"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/codablejson/errors"
)

// Registry holds the descriptors a Coder knows, ordered by descending
// priority. Writes are serialized; reads use an immutable snapshot and
// never block.
type Registry struct {
	snap   atomic.Pointer[registrySnapshot]
	logger *zap.Logger
	order  []*Type // insertion order
	mu     sync.Mutex
	frozen atomic.Bool
}

type registrySnapshot struct {
	byName   map[string]*Type
	byGoType map[reflect.Type][]*Type
	types    []*Type
}

var emptySnapshot = &registrySnapshot{
	byName:   map[string]*Type{},
	byGoType: map[reflect.Type][]*Type{},
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.snap.Store(emptySnapshot)
	return r
}

func (r *Registry) log() *zap.Logger {
	if r.logger != nil {
		return r.logger
	}
	return Logger()
}

// Register adds t and, recursively, its dependencies. Registering the
// same descriptor twice is a no-op; a different descriptor under a taken
// name is a conflict.
func (r *Registry) Register(t *Type) error {
	if t == nil {
		return errors.InvalidInput(errors.PhaseRegister, "nil type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return errors.Frozen(t.Name)
	}

	cur := r.snap.Load()
	byName := make(map[string]*Type, len(cur.byName)+1)
	for k, v := range cur.byName {
		byName[k] = v
	}
	order := r.order

	var add func(t *Type) error
	add = func(t *Type) error {
		if existing, ok := byName[t.Name]; ok {
			if existing == t {
				return nil
			}
			return errors.NameConflict(t.Name)
		}
		if err := t.validate(); err != nil {
			return err
		}
		// Insert before walking dependencies so cycles terminate.
		byName[t.Name] = t
		order = append(order, t)
		for _, dep := range t.Dependencies {
			if dep == nil {
				continue
			}
			if err := add(dep); err != nil {
				return err
			}
		}
		return nil
	}
	if err := add(t); err != nil {
		return err
	}

	added := len(order) - len(r.order)
	if added == 0 {
		return nil
	}
	r.order = order
	r.snap.Store(buildSnapshot(byName, order))
	r.log().Debug("registered codable type",
		zap.String("name", t.Name),
		zap.Int("priority", t.Priority),
		zap.Int("added", added))
	return nil
}

func buildSnapshot(byName map[string]*Type, order []*Type) *registrySnapshot {
	types := slices.Clone(order)
	slices.SortStableFunc(types, func(a, b *Type) int {
		return cmp.Compare(b.Priority, a.Priority)
	})

	byGoType := make(map[reflect.Type][]*Type)
	for _, t := range types {
		for _, gt := range t.GoTypes {
			byGoType[gt] = append(byGoType[gt], t)
		}
	}
	return &registrySnapshot{byName: byName, byGoType: byGoType, types: types}
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.snap.Load().byName[name]
	return t, ok
}

// Match returns the highest-priority descriptor whose predicate accepts v,
// or nil.
func (r *Registry) Match(v any) *Type {
	return r.snap.Load().match(v)
}

func (s *registrySnapshot) match(v any) *Type {
	if v == nil || len(s.types) == 0 {
		return nil
	}
	if candidates, ok := s.byGoType[reflect.TypeOf(v)]; ok {
		for _, t := range candidates {
			if t.Match(v) {
				return t
			}
		}
	}
	for _, t := range s.types {
		if t.Match(v) {
			return t
		}
	}
	return nil
}

// Types returns the descriptors in match order.
func (r *Registry) Types() []*Type {
	return slices.Clone(r.snap.Load().types)
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.snap.Load().types)
}

// Freeze makes every later Register call fail.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether the registry rejects registration.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}
