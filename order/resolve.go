package order

import (
	"fmt"
	"slices"
)

// RankFunc reads the currently stored rank of a record.
type RankFunc func(id string) (int, error)

// Resolve determines where the record id was dropped.
// The siblings are the records of its domain in their post-drop visual order, including id itself.
//
// The neighbor before the dropped record wins; its rank is bumped by one if it sits below the old rank, since the
// moved record vacates a slot underneath it. Otherwise the neighbor after is used, less one if it sits above.
// If there is no neighbor, the returned MoveState is Undetermined along with ErrUndeterminable.
func Resolve(id string, siblings []string, rankOf RankFunc) (m MoveState, err error) {
	m = MoveState{ID: id, New: Undetermined}
	if id == "" {
		return m, ErrMissingIdentifier
	}

	at := slices.Index(siblings, id)
	if at == -1 {
		return m, fmt.Errorf("%w: %q is not among its siblings", ErrUndeterminable, id)
	}

	m.Current, err = rankOf(id)
	if err != nil {
		return m, err
	}

	if at > 0 {
		prev, err := rankOf(siblings[at-1])
		if err != nil {
			return m, err
		}
		m.New = prev
		if prev < m.Current {
			m.New++
		}
	} else if at+1 < len(siblings) {
		next, err := rankOf(siblings[at+1])
		if err != nil {
			return m, err
		}
		m.New = next
		if next > m.Current {
			m.New--
		}
	}

	if m.New < m.Current {
		m.Direction = Up
	} else {
		m.Direction = Down
	}

	if !m.Determined() {
		return m, ErrUndeterminable
	}
	return m, nil
}
