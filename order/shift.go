package order

import (
	"fmt"
	"slices"
)

// Shift computes the new rank of every record affected by the given move.
// The records must already be restricted to the move's domain (see Domain).
//
// Records ranked within [min(Current,New), max(Current,New)] are returned in input order: the moved record takes New and
// every other one steps once towards the gap it left. This is not idempotent and must be applied once per MoveState.
func Shift(records []Record, m MoveState) (out []Update) {
	if !m.Determined() {
		return nil
	}

	start, end := m.Current, m.New
	if start > end {
		start, end = end, start
	}

	for _, r := range records {
		if r.Position < start || r.Position > end {
			continue
		}

		u := Update{ID: r.ID}
		switch {
		case r.ID == m.ID:
			u.Position = m.New
		case m.Direction == Up:
			u.Position = r.Position + 1
		default:
			u.Position = r.Position - 1
		}
		out = append(out, u)
	}
	return out
}

// Apply returns a copy of records with the updates written over them.
func Apply(records []Record, updates []Update) []Record {
	byID := make(map[string]int, len(updates))
	for _, u := range updates {
		byID[u.ID] = u.Position
	}

	out := slices.Clone(records)
	for i := range out {
		if p, ok := byID[out[i].ID]; ok {
			out[i].Position = p
		}
	}
	return out
}

// Contiguous checks that the ranks of records form a gapless run with no duplicates.
// An empty domain is contiguous.
func Contiguous(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	ranks := make([]int, 0, len(records))
	for _, r := range records {
		ranks = append(ranks, r.Position)
	}
	slices.Sort(ranks)

	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1]+1 {
			return fmt.Errorf("ranks not contiguous: %d follows %d", ranks[i], ranks[i-1])
		}
	}
	return nil
}
