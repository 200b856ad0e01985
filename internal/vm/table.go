package vm

const tableMaxLoad = 0.75

// Table is an open-addressing hash table specialized for interned
// string keys: hashing uses the string's precomputed hash and key
// comparison is pointer identity. Deletions leave tombstones so linear
// probing can continue past them.
type Table struct {
	count   int // live entries plus tombstones
	entries []tableEntry
}

// A tombstone is a nil key with a true value; an empty slot is a nil
// key with a nil value.
type tableEntry struct {
	key   *ObjString
	value Value
}

func (e *tableEntry) isTombstone() bool {
	return e.key == nil && e.value.Kind == VKBool && e.value.B
}

// Get looks up key. The second result reports presence.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if t.count == 0 {
		return Value{}, false
	}
	entry := t.findEntry(t.entries, key)
	if entry.key == nil {
		return Value{}, false
	}
	return entry.value, true
}

// Set inserts or updates key. Returns true if the key was new.
func (t *Table) Set(key *ObjString, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}
	entry := t.findEntry(t.entries, key)
	isNew := entry.key == nil
	if isNew && !entry.isTombstone() {
		t.count++
	}
	entry.key = key
	entry.value = value
	return isNew
}

// Delete removes key, leaving a tombstone. Returns false if absent.
func (t *Table) Delete(key *ObjString) bool {
	if t.count == 0 {
		return false
	}
	entry := t.findEntry(t.entries, key)
	if entry.key == nil {
		return false
	}
	entry.key = nil
	entry.value = BoolValue(true)
	return true
}

// AddAll copies every entry of src into t. Used by class inheritance.
func (t *Table) AddAll(src *Table) {
	for i := range src.entries {
		e := &src.entries[i]
		if e.key != nil {
			t.Set(e.key, e.value)
		}
	}
}

// FindString locates an interned string by content and hash without
// allocating. It is the one lookup keyed by bytes rather than identity.
func (t *Table) FindString(s string, hash uint32) *ObjString {
	if t.count == 0 {
		return nil
	}
	idx := int(hash) & (len(t.entries) - 1)
	for {
		entry := &t.entries[idx]
		if entry.key == nil {
			if !entry.isTombstone() {
				return nil
			}
		} else if entry.key.Hash == hash && entry.key.S == s {
			return entry.key
		}
		idx = (idx + 1) & (len(t.entries) - 1)
	}
}

// Len reports the number of live entries.
func (t *Table) Len() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].key != nil {
			n++
		}
	}
	return n
}

// findEntry returns the slot for key: its current entry, the first
// tombstone passed, or the empty slot that ends the probe.
func (t *Table) findEntry(entries []tableEntry, key *ObjString) *tableEntry {
	idx := int(key.Hash) & (len(entries) - 1)
	var tombstone *tableEntry
	for {
		entry := &entries[idx]
		if entry.key == nil {
			if !entry.isTombstone() {
				if tombstone != nil {
					return tombstone
				}
				return entry
			}
			if tombstone == nil {
				tombstone = entry
			}
		} else if entry.key == key {
			return entry
		}
		idx = (idx + 1) & (len(entries) - 1)
	}
}

// adjustCapacity rebuilds the entry array, dropping tombstones.
func (t *Table) adjustCapacity(capacity int) {
	entries := make([]tableEntry, capacity)
	t.count = 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.key == nil {
			continue
		}
		dest := t.findEntry(entries, e.key)
		dest.key = e.key
		dest.value = e.value
		t.count++
	}
	t.entries = entries
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}

// hashString is FNV-1a over the string's bytes.
func hashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}
