package codablejson

import (
	"iter"
	"reflect"
	"slices"

	"github.com/wippyai/codablejson/internal/identity"
)

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   any
	Value any
}

// Map is an insertion-ordered map with keys of any kind. Keys compare by
// value when comparable and by identity otherwise; NaN equals NaN.
type Map struct {
	index   map[any]int
	entries []MapEntry

	// Set while a decoded map may still hold pending references: the
	// entry each wire entry landed in, or -1 when a later entry with an
	// equal key replaced it. Replaced entries are kept in dropped.
	wirePos []int
	dropped map[int]MapEntry
}

// NewMap creates a map holding entries in order.
func NewMap(entries ...MapEntry) *Map {
	m := &Map{}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

func (m *Map) find(key any) int {
	if k, ok := identity.Comparable(key); ok {
		if i, ok := m.index[k]; ok {
			return i
		}
		return -1
	}
	for i, e := range m.entries {
		if reflect.DeepEqual(e.Key, key) {
			return i
		}
	}
	return -1
}

func (m *Map) reindex() {
	m.index = make(map[any]int, len(m.entries))
	for i, e := range m.entries {
		if k, ok := identity.Comparable(e.Key); ok {
			m.index[k] = i
		}
	}
}

// Set stores value under key, keeping the position of an existing key.
func (m *Map) Set(key, value any) {
	if i := m.find(key); i >= 0 {
		m.entries[i].Value = value
		return
	}
	if m.index == nil {
		m.index = make(map[any]int)
	}
	if k, ok := identity.Comparable(key); ok {
		m.index[k] = len(m.entries)
	}
	m.entries = append(m.entries, MapEntry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m *Map) Get(key any) (any, bool) {
	if i := m.find(key); i >= 0 {
		return m.entries[i].Value, true
	}
	return nil, false
}

// Has reports whether key is present.
func (m *Map) Has(key any) bool {
	return m.find(key) >= 0
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key any) bool {
	i := m.find(key)
	if i < 0 {
		return false
	}
	m.entries = slices.Delete(m.entries, i, i+1)
	m.wirePos, m.dropped = nil, nil
	m.reindex()
	return true
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the entries in insertion order.
func (m *Map) Entries() []MapEntry {
	return slices.Clone(m.entries)
}

// All iterates entries in insertion order.
func (m *Map) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for _, e := range m.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// setKeyAt replaces the key at position i. When the new key equals the
// key of another entry the two collapse: the earlier position is kept and
// the later value wins.
func (m *Map) setKeyAt(i int, key any) {
	j := m.find(key)
	if j < 0 || j == i {
		m.entries[i].Key = key
		m.reindex()
		return
	}

	first, last := min(i, j), max(i, j)
	m.drop(first)
	m.entries[first] = MapEntry{Key: key, Value: m.entries[last].Value}
	m.entries = slices.Delete(m.entries, last, last+1)
	for n, p := range m.wirePos {
		switch {
		case p == last:
			m.wirePos[n] = first
		case p > last:
			m.wirePos[n] = p - 1
		}
	}
	m.reindex()
}

// drop moves the wire entries landing at position i to the dropped list.
func (m *Map) drop(i int) {
	for n, p := range m.wirePos {
		if p == i {
			if m.dropped == nil {
				m.dropped = make(map[int]MapEntry)
			}
			m.wirePos[n] = -1
			m.dropped[n] = m.entries[i]
		}
	}
}

// Set is an insertion-ordered set with the same equality as Map keys.
type Set struct {
	index map[any]int
	items []any

	// Set while a decoded set may still hold pending references: the
	// member position each wire element landed in.
	wirePos []int
}

// NewSet creates a set of values in order, dropping duplicates.
func NewSet(values ...any) *Set {
	s := &Set{}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func (s *Set) find(v any) int {
	if k, ok := identity.Comparable(v); ok {
		if i, ok := s.index[k]; ok {
			return i
		}
		return -1
	}
	for i, item := range s.items {
		if reflect.DeepEqual(item, v) {
			return i
		}
	}
	return -1
}

func (s *Set) reindex() {
	s.index = make(map[any]int, len(s.items))
	for i, item := range s.items {
		if k, ok := identity.Comparable(item); ok {
			s.index[k] = i
		}
	}
}

// Add inserts v if absent and reports whether it was added.
func (s *Set) Add(v any) bool {
	if s.find(v) >= 0 {
		return false
	}
	if s.index == nil {
		s.index = make(map[any]int)
	}
	if k, ok := identity.Comparable(v); ok {
		s.index[k] = len(s.items)
	}
	s.items = append(s.items, v)
	return true
}

// Has reports whether v is a member.
func (s *Set) Has(v any) bool {
	return s.find(v) >= 0
}

// Delete removes v and reports whether it was present.
func (s *Set) Delete(v any) bool {
	i := s.find(v)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.wirePos = nil
	s.reindex()
	return true
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.items)
}

// Values returns a copy of the members in insertion order.
func (s *Set) Values() []any {
	return slices.Clone(s.items)
}

// All iterates members in insertion order.
func (s *Set) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range s.items {
			if !yield(v) {
				return
			}
		}
	}
}

// setAt replaces the member at position i. A value that is already a
// member elsewhere removes position i instead.
func (s *Set) setAt(i int, v any) {
	j := s.find(v)
	if j < 0 || j == i {
		s.items[i] = v
		s.reindex()
		return
	}

	s.items = slices.Delete(s.items, i, i+1)
	if j > i {
		j--
	}
	for n, p := range s.wirePos {
		switch {
		case p == i:
			s.wirePos[n] = j
		case p > i:
			s.wirePos[n] = p - 1
		}
	}
	s.reindex()
}
