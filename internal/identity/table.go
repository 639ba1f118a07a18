package identity

// Handle is an opaque reference to a slot in a Table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Slot holds per-identity bookkeeping for one encode call.
type Slot struct {
	// Payload is a cached descriptor payload, when Cached is set.
	Payload any
	// Output is the wire node emitted for this identity, if any.
	Output any
	// Ordinal is the first-visit order, starting at 0.
	Ordinal int
	// ID is the reference id, or -1 while the identity is seen once.
	ID      int
	Visits  int
	Cached  bool
	Emitted bool
}

// Table is an arena of Slots addressed by identity Key.
// It is not safe for concurrent use.
type Table struct {
	slots []Slot
	index map[Key]Handle
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		slots: make([]Slot, 0, 64),
		index: make(map[Key]Handle, 64),
	}
}

// Visit records a visit to key and returns its handle and whether this is
// the first visit.
func (t *Table) Visit(key Key) (Handle, bool) {
	if h, ok := t.index[key]; ok {
		t.slots[h-1].Visits++
		return h, false
	}

	t.slots = append(t.slots, Slot{Ordinal: len(t.slots), ID: -1, Visits: 1})
	h := Handle(len(t.slots))
	t.index[key] = h
	return h, true
}

// Lookup returns the handle for key without recording a visit.
func (t *Table) Lookup(key Key) (Handle, bool) {
	h, ok := t.index[key]
	return h, ok
}

// Slot returns the slot for h, or nil for an invalid handle.
func (t *Table) Slot(h Handle) *Slot {
	if h == 0 || int(h) > len(t.slots) {
		return nil
	}
	return &t.slots[h-1]
}

// AssignIDs gives every slot visited more than once a reference id in
// first-visit order, starting at base. It returns the next free id.
func (t *Table) AssignIDs(base int) int {
	next := base
	for i := range t.slots {
		if t.slots[i].Visits > 1 {
			t.slots[i].ID = next
			next++
		}
	}
	return next
}

// Len returns the number of tracked identities.
func (t *Table) Len() int {
	return len(t.slots)
}

// Reset clears the table for reuse.
func (t *Table) Reset() {
	for i := range t.slots {
		t.slots[i] = Slot{}
	}
	t.slots = t.slots[:0]
	clear(t.index)
}
