package remote

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/samthor/rowreorder/order"
)

// Store is an authoritative ranked list which accepts moves.
// If grouped, each group key (and the set of ungrouped records) is its own ordering domain.
type Store struct {
	grouped bool

	lock    sync.Mutex
	records map[string]*order.Record
}

// NewStore builds a Store over the given records.
// Every domain must already be contiguous.
func NewStore(grouped bool, records ...order.Record) (*Store, error) {
	s := &Store{
		grouped: grouped,
		records: make(map[string]*order.Record, len(records)),
	}

	for _, r := range records {
		if r.ID == "" {
			return nil, order.ErrMissingIdentifier
		} else if _, ok := s.records[r.ID]; ok {
			return nil, fmt.Errorf("duplicate record: %q", r.ID)
		}
		s.records[r.ID] = &r
	}

	for _, r := range records {
		if err := order.Contiguous(s.domainOf(&r)); err != nil {
			return nil, fmt.Errorf("domain of %q: %w", r.ID, err)
		}
	}

	return s, nil
}

// domainOf must be called under lock (or during construction).
func (s *Store) domainOf(target *order.Record) (out []order.Record) {
	for _, r := range s.records {
		if !s.grouped || (r.HasGroup == target.HasGroup && r.Group == target.Group) {
			out = append(out, *r)
		}
	}
	slices.SortFunc(out, func(a, b order.Record) int { return cmp.Compare(a.Position, b.Position) })
	return out
}

// Apply performs a move, returning the resulting rank writes.
// The move must agree with the stored state: its From and Group must match, and To must lie within the domain.
func (s *Store) Apply(req Request) ([]order.Update, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	r, ok := s.records[req.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecord, req.ID)
	}
	if r.Position != req.From {
		return nil, fmt.Errorf("%w: %q is at %d, not %d", ErrConflict, req.ID, r.Position, req.From)
	}
	if s.grouped && r.Group != req.Group {
		return nil, fmt.Errorf("%w: %q is in group %q, not %q", ErrConflict, req.ID, r.Group, req.Group)
	}

	expected := order.Down
	if req.To < req.From {
		expected = order.Up
	}
	if req.Direction != expected {
		return nil, fmt.Errorf("%w: direction %q for %d->%d", ErrInvalidMove, req.Direction, req.From, req.To)
	}

	domain := s.domainOf(r)
	low, high := domain[0].Position, domain[len(domain)-1].Position
	if req.To < low || req.To > high {
		return nil, fmt.Errorf("%w: %d outside [%d,%d]", ErrInvalidMove, req.To, low, high)
	}

	updates := order.Shift(domain, req.Move())
	for _, u := range updates {
		s.records[u.ID].Position = u.Position
	}
	return updates, nil
}

// Records returns the domain containing the given record, ordered by rank.
func (s *Store) Records(id string) ([]order.Record, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return s.domainOf(r), true
}
