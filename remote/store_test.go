package remote

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/samthor/rowreorder/order"
)

func testRecords(groups ...string) (records []order.Record) {
	for _, g := range groups {
		for i := range 4 {
			records = append(records, order.Record{
				ID:       fmt.Sprintf("%s%d", g, i+1),
				Position: i + 1,
				Group:    g,
				HasGroup: true,
			})
		}
	}
	return records
}

func rankOf(t *testing.T, s *Store, id string) int {
	domain, ok := s.Records(id)
	if !ok {
		t.Fatalf("no record: %v", id)
	}
	for _, r := range domain {
		if r.ID == id {
			return r.Position
		}
	}
	panic("should find self in domain")
}

func TestStoreApply(t *testing.T) {
	s, err := NewStore(true, testRecords("a", "b")...)
	if err != nil {
		t.Fatalf("couldn't build store: %v", err)
	}

	updates, err := s.Apply(Request{ID: "a4", From: 4, To: 1, Direction: order.Up, Group: "a"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(updates) != 4 {
		t.Errorf("expected all of group a to move, got: %+v", updates)
	}

	domain, _ := s.Records("a1")
	if err := order.Contiguous(domain); err != nil {
		t.Errorf("store lost contiguity: %v", err)
	}
	if rankOf(t, s, "a4") != 1 || rankOf(t, s, "a1") != 2 {
		t.Errorf("unexpected ranks: %+v", domain)
	}
	if rankOf(t, s, "b1") != 1 || rankOf(t, s, "b4") != 4 {
		t.Errorf("group b should be untouched")
	}
}

func TestStoreApplyInPlace(t *testing.T) {
	s, _ := NewStore(true, testRecords("a")...)

	updates, err := s.Apply(Request{ID: "a2", From: 2, To: 2, Direction: order.Down, Group: "a"})
	if err != nil {
		t.Fatalf("in-place move should be accepted: %v", err)
	}
	if len(updates) != 1 || updates[0] != (order.Update{ID: "a2", Position: 2}) {
		t.Errorf("expected only the moved record, got: %+v", updates)
	}
	if rankOf(t, s, "a1") != 1 || rankOf(t, s, "a3") != 3 {
		t.Errorf("nothing else should move")
	}
}

func TestStoreReject(t *testing.T) {
	s, err := NewStore(true, testRecords("a", "b")...)
	if err != nil {
		t.Fatalf("couldn't build store: %v", err)
	}

	cases := []struct {
		req      Request
		expected error
	}{
		{Request{ID: "zz", From: 1, To: 2, Direction: order.Down, Group: "a"}, ErrUnknownRecord},
		{Request{ID: "a2", From: 3, To: 1, Direction: order.Up, Group: "a"}, ErrConflict},
		{Request{ID: "a2", From: 2, To: 1, Direction: order.Up, Group: "b"}, ErrConflict},
		{Request{ID: "a2", From: 2, To: 1, Direction: order.Down, Group: "a"}, ErrInvalidMove},
		{Request{ID: "a2", From: 2, To: 9, Direction: order.Down, Group: "a"}, ErrInvalidMove},
	}
	for _, c := range cases {
		_, err := s.Apply(c.req)
		if !errors.Is(err, c.expected) {
			t.Errorf("Apply(%+v): expected %v, was: %v", c.req, c.expected, err)
		}
	}

	if rankOf(t, s, "a2") != 2 {
		t.Errorf("rejected moves must not change ranks")
	}
}

func TestStoreUngrouped(t *testing.T) {
	s, err := NewStore(false, testRecords("a")...)
	if err != nil {
		t.Fatalf("couldn't build store: %v", err)
	}

	// group is ignored when not grouped
	_, err = s.Apply(Request{ID: "a1", From: 1, To: 3, Direction: order.Down, Group: "whatever"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rankOf(t, s, "a1") != 3 || rankOf(t, s, "a3") != 2 {
		t.Errorf("unexpected ranks after move")
	}
}

func TestNewStoreInvalid(t *testing.T) {
	_, err := NewStore(false, order.Record{ID: "a", Position: 1}, order.Record{ID: "b", Position: 3})
	if err == nil {
		t.Errorf("expected gap to be rejected")
	}

	_, err = NewStore(false, order.Record{ID: "a", Position: 1}, order.Record{ID: "a", Position: 2})
	if err == nil {
		t.Errorf("expected duplicate to be rejected")
	}

	// two groups each starting at 1 are fine when grouped, not when flat
	if _, err := NewStore(true, testRecords("a", "b")...); err != nil {
		t.Errorf("unexpected err: %v", err)
	}
	if _, err := NewStore(false, testRecords("a", "b")...); err == nil {
		t.Errorf("expected duplicate ranks to be rejected")
	}
}

func TestRequestValues(t *testing.T) {
	req := NewRequest(order.MoveState{ID: "x", Current: 5, New: 2, Direction: order.Up}, "g")
	v := req.Values()
	if v.Get("from") != "5" || v.Get("to") != "2" || v.Get("direction") != "up" || v.Get("group") != "g" {
		t.Errorf("unexpected form values: %v", v)
	}

	back, err := ParseValues(v)
	if err != nil || back != req {
		t.Errorf("got %+v err=%v, expected %+v", back, err, req)
	}

	_, err = ParseValues(url.Values{"id": {"x"}, "from": {"one"}, "to": {"2"}})
	if !errors.Is(err, ErrInvalidMove) {
		t.Errorf("expected ErrInvalidMove, was: %v", err)
	}
	_, err = ParseValues(url.Values{})
	if !errors.Is(err, ErrInvalidMove) {
		t.Errorf("expected ErrInvalidMove for missing id, was: %v", err)
	}
}
