package history

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Table holds the latest history snapshot and derives filtered, sorted views
// from it without ever modifying the snapshot.
type Table struct {
	mu       sync.RWMutex
	snapshot []Record
	loaded   bool
	filter   string
	sort     Sort
}

// NewTable creates an empty, not-yet-loaded table sorted newest first.
func NewTable() *Table {
	return &Table{
		sort: Sort{Key: KeyCreatedAt, Dir: Desc},
	}
}

// SetSnapshot replaces the snapshot. The slice is copied.
func (t *Table) SetSnapshot(records []Record) {
	snap := make([]Record, len(records))
	copy(snap, records)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot = snap
	t.loaded = true
}

// Snapshot returns a copy of the current snapshot.
func (t *Table) Snapshot() []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Record, len(t.snapshot))
	copy(out, t.snapshot)
	return out
}

// SetFilter sets the search term.
func (t *Table) SetFilter(term string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter = term
}

// SetSort sets the column and direction explicitly.
func (t *Table) SetSort(key Key, dir Direction) error {
	if !key.Valid() {
		return fmt.Errorf("unknown sort column %q", key)
	}
	if dir != Asc && dir != Desc {
		return fmt.Errorf("unknown sort direction %q", dir)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sort = Sort{Key: key, Dir: dir}
	return nil
}

// ToggleSort behaves like clicking a column header: the active column flips
// direction, any other column becomes active in ascending order.
func (t *Table) ToggleSort(key Key) (Sort, error) {
	if !key.Valid() {
		return Sort{}, fmt.Errorf("unknown sort column %q", key)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sort.Key == key {
		if t.sort.Dir == Asc {
			t.sort.Dir = Desc
		} else {
			t.sort.Dir = Asc
		}
	} else {
		t.sort = Sort{Key: key, Dir: Asc}
	}
	return t.sort, nil
}

// CurrentSort returns the active sort.
func (t *Table) CurrentSort() Sort {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sort
}

// View computes the filtered, sorted rows. It is pure with respect to
// (snapshot, filter, sort).
func (t *Table) View() View {
	t.mu.RLock()
	snap, loaded, filter, s := t.snapshot, t.loaded, t.filter, t.sort
	t.mu.RUnlock()

	v := View{Filter: filter, Sort: s}
	if !loaded {
		v.State = NotLoaded
		return v
	}

	// a Caser is stateful, so each view gets its own
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(filter))
	rows := make([]Record, 0, len(snap))
	for _, r := range snap {
		if term == "" || strings.Contains(fold.String(r.Label), term) || strings.Contains(fold.String(r.Source), term) {
			rows = append(rows, r)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(rows[i], rows[j], s.Key)
		if s.Dir == Desc {
			return c > 0
		}
		return c < 0
	})

	if len(rows) == 0 {
		v.State = Empty
		return v
	}
	v.State = Rows
	v.Rows = rows
	return v
}

func compare(a, b Record, key Key) int {
	switch key {
	case KeyPos:
		return compareFloat(a.Pos, b.Pos)
	case KeyNeu:
		return compareFloat(a.Neu, b.Neu)
	case KeyNeg:
		return compareFloat(a.Neg, b.Neg)
	case KeyCompound:
		return compareFloat(a.Compound, b.Compound)
	case KeySource:
		return strings.Compare(a.Source, b.Source)
	case KeyLabel:
		return strings.Compare(a.Label, b.Label)
	case KeyTextSnippet:
		return strings.Compare(a.TextSnippet, b.TextSnippet)
	default:
		// a missing created_at decodes to "" and sorts first ascending
		return strings.Compare(a.CreatedAt, b.CreatedAt)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
