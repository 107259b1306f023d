package table

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/samthor/rowreorder/rank"
)

// Row is a row held by Memory.
type Row struct {
	ID    string
	Cells []any
	Attrs map[string]string
}

// Memory is an in-memory Table.
// Rows are displayed in the order of the current sort keys, a page at a time.
type Memory struct {
	lock     sync.Mutex
	rows     []*Row
	byID     map[string]*Row
	sorting  []SortKey
	noSort   bool
	start    int
	pageSize int
	display  []string
	draws    int

	hookLock sync.Mutex
	nextHook int
	pre      map[int]DrawFunc
	post     map[int]DrawFunc
}

// NewMemory builds a Memory sorted by the given column.
// A pageSize of zero or less displays all rows on one page.
func NewMemory(pageSize int, sortColumn int, rows ...Row) (*Memory, error) {
	m := &Memory{
		byID:     map[string]*Row{},
		sorting:  []SortKey{{Column: sortColumn}},
		pageSize: pageSize,
		pre:      map[int]DrawFunc{},
		post:     map[int]DrawFunc{},
	}

	for _, r := range rows {
		if r.ID == "" {
			return nil, ErrMissingRowID
		} else if _, ok := m.byID[r.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRow, r.ID)
		}
		row := &Row{ID: r.ID, Cells: slices.Clone(r.Cells), Attrs: maps.Clone(r.Attrs)}
		m.rows = append(m.rows, row)
		m.byID[r.ID] = row
	}

	m.display = m.computeDisplay()
	return m, nil
}

// IDs returns all row IDs in the order they were added.
func (m *Memory) IDs() []string {
	m.lock.Lock()
	defer m.lock.Unlock()

	out := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r.ID)
	}
	return out
}

// Cell returns the raw value of a cell, or ErrNoRow or ErrNoColumn.
func (m *Memory) Cell(id string, column int) (any, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	r, err := m.cellRow(id, column)
	if err != nil {
		return nil, err
	}
	return r.Cells[column], nil
}

// SetCell replaces a cell. The display is unchanged until the next Redraw.
func (m *Memory) SetCell(id string, column int, v any) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	r, err := m.cellRow(id, column)
	if err != nil {
		return err
	}
	r.Cells[column] = v
	return nil
}

// cellRow must be called under lock.
func (m *Memory) cellRow(id string, column int) (*Row, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoRow, id)
	} else if column < 0 || column >= len(r.Cells) {
		return nil, fmt.Errorf("%w: %d", ErrNoColumn, column)
	}
	return r, nil
}

// Attr returns a row attribute. Unknown rows have no attributes.
func (m *Memory) Attr(id, name string) (string, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	r, ok := m.byID[id]
	if !ok {
		return "", false
	}
	v, ok := r.Attrs[name]
	return v, ok
}

// Sorting returns a copy of the current sort keys.
func (m *Memory) Sorting() []SortKey {
	m.lock.Lock()
	defer m.lock.Unlock()
	return slices.Clone(m.sorting)
}

// DisableSorting makes later calls to Sort fail with ErrSortDisabled.
func (m *Memory) DisableSorting() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.noSort = true
}

// Sort changes the sort keys and redraws from the first page.
func (m *Memory) Sort(keys ...SortKey) error {
	m.lock.Lock()
	if m.noSort {
		m.lock.Unlock()
		return ErrSortDisabled
	}
	m.sorting = slices.Clone(keys)
	m.lock.Unlock()

	m.Redraw(false)
	return nil
}

// SetPage moves the display to start at the given row offset and redraws.
func (m *Memory) SetPage(start int) {
	m.lock.Lock()
	m.start = max(start, 0)
	m.lock.Unlock()

	m.Redraw(true)
}

// Page returns the IDs of the rows as last drawn.
func (m *Memory) Page() []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return slices.Clone(m.display)
}

// PageStart returns the current page offset.
func (m *Memory) PageStart() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.start
}

// Draws returns the number of completed draws.
func (m *Memory) Draws() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.draws
}

// Redraw recomputes the display, running pre-draw hooks before and draw hooks after.
// Hooks are called without any lock held.
func (m *Memory) Redraw(preservePage bool) {
	m.lock.Lock()
	if !preservePage {
		m.start = 0
	}
	state := m.drawState()
	m.lock.Unlock()

	for _, fn := range m.hooks(m.pre) {
		fn(state)
	}

	m.lock.Lock()
	m.display = m.computeDisplay()
	m.draws++
	state = m.drawState()
	m.lock.Unlock()

	for _, fn := range m.hooks(m.post) {
		fn(state)
	}
}

// drawState must be called under lock.
func (m *Memory) drawState() DrawState {
	return DrawState{
		Sorting:   slices.Clone(m.sorting),
		PageStart: m.start,
		PageSize:  m.pageSize,
	}
}

// computeDisplay must be called under lock.
func (m *Memory) computeDisplay() []string {
	type keyed struct {
		row  *Row
		keys []cellKey
	}
	sorted := make([]keyed, 0, len(m.rows))
	for _, r := range m.rows {
		k := keyed{row: r, keys: make([]cellKey, 0, len(m.sorting))}
		for _, s := range m.sorting {
			k.keys = append(k.keys, keyOf(cellAt(r, s.Column)))
		}
		sorted = append(sorted, k)
	}

	slices.SortStableFunc(sorted, func(a, b keyed) int {
		for i, k := range m.sorting {
			c := a.keys[i].compare(b.keys[i])
			if k.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	if m.start >= len(sorted) {
		m.start = 0
	}
	end := len(sorted)
	if m.pageSize > 0 {
		end = min(m.start+m.pageSize, end)
	}

	out := make([]string, 0, end-m.start)
	for _, k := range sorted[m.start:end] {
		out = append(out, k.row.ID)
	}
	return out
}

func cellAt(r *Row, column int) any {
	if column < 0 || column >= len(r.Cells) {
		return nil
	}
	return r.Cells[column]
}

// cellKey is how a cell sorts: numbers (including ranks held as text or markup) before everything else.
type cellKey struct {
	numeric bool
	n       int
	text    string
}

func keyOf(v any) cellKey {
	if n, err := rank.Markup(v); err == nil {
		return cellKey{numeric: true, n: n}
	}
	return cellKey{text: fmt.Sprint(v)}
}

func (k cellKey) compare(other cellKey) int {
	switch {
	case k.numeric && other.numeric:
		return cmp.Compare(k.n, other.n)
	case k.numeric:
		return -1
	case other.numeric:
		return +1
	}
	return cmp.Compare(k.text, other.text)
}

// OnPreDraw registers fn to run before each draw.
func (m *Memory) OnPreDraw(fn DrawFunc) (remove func()) {
	return m.register(m.pre, fn)
}

func (m *Memory) OnDraw(fn DrawFunc) (remove func()) {
	return m.register(m.post, fn)
}

func (m *Memory) register(target map[int]DrawFunc, fn DrawFunc) (remove func()) {
	m.hookLock.Lock()
	defer m.hookLock.Unlock()

	id := m.nextHook
	m.nextHook++
	target[id] = fn

	return func() {
		m.hookLock.Lock()
		defer m.hookLock.Unlock()
		delete(target, id)
	}
}

// hooks returns the registered hooks in registration order.
func (m *Memory) hooks(target map[int]DrawFunc) []DrawFunc {
	m.hookLock.Lock()
	defer m.hookLock.Unlock()

	out := make([]DrawFunc, 0, len(target))
	for _, id := range slices.Sorted(maps.Keys(target)) {
		out = append(out, target[id])
	}
	return out
}
