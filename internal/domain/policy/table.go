package policy

import (
	"errors"
	"fmt"
)

// ErrPolicyMiss is returned when no record matches a (mode, app) pair.
var ErrPolicyMiss = errors.New("no policy for mode")

type key struct {
	mode string
	app  int32
}

// Table is the immutable set of policy records.
type Table struct {
	entries     []Entry
	index       map[key]int
	fingerprint string
}

// New builds a table from records in file order. When the same (mode, app)
// appears twice the first record wins.
func New(entries []Entry) *Table {
	t := &Table{
		entries: make([]Entry, len(entries)),
		index:   make(map[key]int, len(entries)),
	}
	copy(t.entries, entries)
	t.fingerprint = Fingerprint(t.entries)

	for i, e := range t.entries {
		k := key{mode: e.Mode, app: e.App}
		if _, exists := t.index[k]; !exists {
			t.index[k] = i
		}
	}
	return t
}

// Lookup returns the record for (mode, app) or an error wrapping ErrPolicyMiss.
func (t *Table) Lookup(mode string, app int32) (Entry, error) {
	if t != nil {
		if i, ok := t.index[key{mode: mode, app: app}]; ok {
			return t.entries[i], nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q for app %d", ErrPolicyMiss, mode, app)
}

// Entries returns a copy of all records in file order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Fingerprint identifies the records the table was built from.
func (t *Table) Fingerprint() string {
	if t == nil {
		return ""
	}
	return t.fingerprint
}

// Len returns the number of records, duplicates included.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Duplicates lists the records shadowed by an earlier record with the same key.
func Duplicates(entries []Entry) []Entry {
	seen := make(map[key]bool, len(entries))
	var dups []Entry
	for _, e := range entries {
		k := key{mode: e.Mode, app: e.App}
		if seen[k] {
			dups = append(dups, e)
			continue
		}
		seen[k] = true
	}
	return dups
}
