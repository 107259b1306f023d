// Package rank reads and writes the rank stored in a row's index column.
// Cells may hold ranks as plain values or wrapped, e.g., inside markup; a Decoder extracts the number.
package rank

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotRank = errors.New("cell does not hold a rank")
)

// Decoder extracts a rank from a raw cell value.
type Decoder func(raw any) (int, error)

// Encoder builds the raw cell value to store for a rank.
type Encoder func(rank int) any

// Cells is the part of the table which stores cell values.
type Cells interface {
	Cell(id string, column int) (any, error)
	SetCell(id string, column int, v any) error
}

// Plain decodes integers, and strings or [fmt.Stringer] values holding a base-10 integer.
func Plain(raw any) (int, error) {
	switch x := raw.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case float64:
		if x == float64(int(x)) {
			return int(x), nil
		}
	case string:
		return parse(x)
	case []byte:
		return parse(string(x))
	case fmt.Stringer:
		return parse(x.String())
	}
	return 0, fmt.Errorf("%w: %T", ErrNotRank, raw)
}

// PlainEncode stores the rank as an int.
func PlainEncode(rank int) any {
	return rank
}

func parse(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotRank, s)
	}
	return v, nil
}

// Accessor reads and writes ranks in a single column.
type Accessor struct {
	Cells  Cells
	Column int

	// Decode defaults to Plain.
	Decode Decoder

	// Encode defaults to PlainEncode.
	Encode Encoder
}

// Get returns the decoded rank of the given row.
func (a *Accessor) Get(id string) (int, error) {
	raw, err := a.Cells.Cell(id, a.Column)
	if err != nil {
		return 0, err
	}

	decode := a.Decode
	if decode == nil {
		decode = Plain
	}
	r, err := decode(raw)
	if err != nil {
		return 0, fmt.Errorf("row %q: %w", id, err)
	}
	return r, nil
}

// Set stores the given rank for the row.
// This does not redraw anything.
func (a *Accessor) Set(id string, r int) error {
	encode := a.Encode
	if encode == nil {
		encode = PlainEncode
	}
	return a.Cells.SetCell(id, a.Column, encode(r))
}
