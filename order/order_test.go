package order

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func ranked(ids ...string) (records []Record) {
	for i, id := range ids {
		records = append(records, Record{ID: id, Position: i + 1})
	}
	return records
}

func rankFor(records []Record) RankFunc {
	return func(id string) (int, error) {
		for _, r := range records {
			if r.ID == id {
				return r.Position, nil
			}
		}
		return 0, fmt.Errorf("unknown: %v", id)
	}
}

func positions(records []Record) map[string]int {
	out := map[string]int{}
	for _, r := range records {
		out[r.ID] = r.Position
	}
	return out
}

func TestResolveUp(t *testing.T) {
	records := ranked("a", "b", "c", "d", "e")

	// e dragged to sit after a
	m, err := Resolve("e", []string{"a", "e", "b", "c", "d"}, rankFor(records))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	expected := MoveState{ID: "e", Current: 5, New: 2, Direction: Up}
	if m != expected {
		t.Errorf("got %+v, expected %+v", m, expected)
	}
}

func TestResolveDown(t *testing.T) {
	records := ranked("a", "b", "c", "d", "e")

	m, err := Resolve("b", []string{"a", "c", "d", "e", "b"}, rankFor(records))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	expected := MoveState{ID: "b", Current: 2, New: 5, Direction: Down}
	if m != expected {
		t.Errorf("got %+v, expected %+v", m, expected)
	}
}

func TestResolveToTop(t *testing.T) {
	records := ranked("a", "b", "c")

	// no previous sibling, so next is used and not adjusted (it's below us)
	m, err := Resolve("c", []string{"c", "a", "b"}, rankFor(records))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	expected := MoveState{ID: "c", Current: 3, New: 1, Direction: Up}
	if m != expected {
		t.Errorf("got %+v, expected %+v", m, expected)
	}

	// dropped where it was
	m, err = Resolve("a", []string{"a", "b", "c"}, rankFor(records))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.New != 1 || m.Direction != Down {
		t.Errorf("expected no-op move, got %+v", m)
	}
}

func TestResolveSingle(t *testing.T) {
	records := ranked("only")

	m, err := Resolve("only", []string{"only"}, rankFor(records))
	if !errors.Is(err, ErrUndeterminable) {
		t.Errorf("expected ErrUndeterminable, was: %v", err)
	}
	if m.Determined() {
		t.Errorf("expected undetermined state, was: %+v", m)
	}

	_, err = Resolve("missing", []string{"only"}, rankFor(records))
	if !errors.Is(err, ErrUndeterminable) {
		t.Errorf("expected ErrUndeterminable for absent id, was: %v", err)
	}

	_, err = Resolve("", []string{"only"}, rankFor(records))
	if err != ErrMissingIdentifier {
		t.Errorf("expected ErrMissingIdentifier, was: %v", err)
	}
}

func TestResolveRankError(t *testing.T) {
	expectedErr := errors.New("lol")
	_, err := Resolve("a", []string{"b", "a"}, func(id string) (int, error) {
		if id == "b" {
			return 0, expectedErr
		}
		return 2, nil
	})
	if err != expectedErr {
		t.Errorf("expected rank err to pass through, was: %v", err)
	}
}

func TestShiftUp(t *testing.T) {
	records := ranked("a", "b", "c", "d", "e", "f")

	updates := Shift(records, MoveState{ID: "e", Current: 5, New: 2, Direction: Up})
	expected := []Update{{"b", 3}, {"c", 4}, {"d", 5}, {"e", 2}}
	if !reflect.DeepEqual(updates, expected) {
		t.Errorf("got %+v, expected %+v", updates, expected)
	}

	after := Apply(records, updates)
	if err := Contiguous(after); err != nil {
		t.Errorf("expected contiguous, was: %v", err)
	}
	p := positions(after)
	if p["a"] != 1 || p["f"] != 6 {
		t.Errorf("records outside range should not move: %+v", p)
	}
}

func TestShiftDown(t *testing.T) {
	records := ranked("a", "b", "c", "d", "e", "f")

	updates := Shift(records, MoveState{ID: "b", Current: 2, New: 5, Direction: Down})
	expected := []Update{{"b", 5}, {"c", 2}, {"d", 3}, {"e", 4}}
	if !reflect.DeepEqual(updates, expected) {
		t.Errorf("got %+v, expected %+v", updates, expected)
	}
	if err := Contiguous(Apply(records, updates)); err != nil {
		t.Errorf("expected contiguous, was: %v", err)
	}
}

func TestShiftUndetermined(t *testing.T) {
	records := ranked("a", "b")
	updates := Shift(records, MoveState{ID: "a", Current: 1, New: Undetermined, Direction: Up})
	if updates != nil {
		t.Errorf("undetermined move must not produce updates, got: %+v", updates)
	}
}

func TestShiftContiguity(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	records := ranked(ids...)

	for from := range ids {
		for to := range ids {
			if from == to {
				continue
			}

			visual := make([]string, 0, len(ids))
			for i, id := range ids {
				if i != from {
					visual = append(visual, id)
				}
			}
			visual = append(visual[:to], append([]string{ids[from]}, visual[to:]...)...)

			m, err := Resolve(ids[from], visual, rankFor(records))
			if err != nil {
				t.Fatalf("resolve %d->%d: %v", from, to, err)
			}
			if m.New != to+1 {
				t.Errorf("move %d->%d resolved to rank %d", from, to, m.New)
			}

			after := Apply(records, Shift(records, m))
			if err := Contiguous(after); err != nil {
				t.Errorf("move %d->%d: %v", from, to, err)
			}

			// ranks must now match the visual order
			p := positions(after)
			for i, id := range visual {
				if p[id] != i+1 {
					t.Errorf("move %d->%d: %v has rank %d, expected %d", from, to, id, p[id], i+1)
				}
			}
		}
	}
}

func TestDomain(t *testing.T) {
	records := []Record{
		{ID: "a1", Position: 1, Group: "a", HasGroup: true},
		{ID: "b1", Position: 1, Group: "b", HasGroup: true},
		{ID: "a2", Position: 2, Group: "a", HasGroup: true},
		{ID: "x", Position: 1},
		{ID: "b2", Position: 2, Group: "b", HasGroup: true},
	}

	a := Domain(records, "a")
	if len(a) != 2 || a[0].ID != "a1" || a[1].ID != "a2" {
		t.Errorf("bad domain for a: %+v", a)
	}
	if len(Domain(records, "")) != 0 {
		t.Errorf("ungrouped records should never match")
	}

	visual := []string{"b1", "a2", "x", "a1", "b2"}
	siblings := Siblings(visual, func(id string) bool { return id[0] == 'a' })
	if !reflect.DeepEqual(siblings, []string{"a2", "a1"}) {
		t.Errorf("bad siblings: %v", siblings)
	}

	// a2 moved above a1: only the a group reshuffles
	m, err := Resolve("a2", siblings, rankFor(a))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	after := Apply(records, Shift(a, m))
	p := positions(after)
	if p["a1"] != 2 || p["a2"] != 1 || p["b1"] != 1 || p["b2"] != 2 || p["x"] != 1 {
		t.Errorf("unexpected positions: %+v", p)
	}
}

func TestContiguous(t *testing.T) {
	if err := Contiguous(nil); err != nil {
		t.Errorf("empty should be contiguous: %v", err)
	}
	if err := Contiguous([]Record{{Position: 3}, {Position: 1}, {Position: 2}}); err != nil {
		t.Errorf("expected contiguous: %v", err)
	}
	if err := Contiguous([]Record{{Position: 1}, {Position: 1}}); err == nil {
		t.Errorf("duplicates should fail")
	}
	if err := Contiguous([]Record{{Position: 1}, {Position: 3}}); err == nil {
		t.Errorf("gaps should fail")
	}
}
