// Package tiers implements threshold-based rarity resolution. A tier table is an
// ordered list of named brackets; a uniform roll against the table selects the
// first bracket whose threshold covers the roll. Luck shrinks the roll ceiling,
// which concentrates probability mass in the low-threshold (rare) rows.
package tiers

import (
	"errors"
	"fmt"
	"math"
)

// MaxRollValue is the unscaled upper bound for tier rolls. A roll of 1 against an
// unshrunk table lands in the rarest bracket.
const MaxRollValue = 100000

// ErrEmptyTable is returned when constructing a table with no rows.
var ErrEmptyTable = errors.New("tier table has no rows")

// Row is a single rarity bracket. Threshold is cumulative: a row covers rolls in
// (previous row's threshold, Threshold]. Stats carries the bracket's named stat
// multipliers for the table's domain.
type Row[T any] struct {
	Name      string
	Threshold int
	Stats     T
}

// Table is an immutable ordered tier table. Rows are sorted ascending by
// threshold with the rarest bracket first. Safe for concurrent readers.
type Table[T any] struct {
	rows []Row[T]
}

// NewTable validates and constructs a tier table. Thresholds must be strictly
// increasing and positive, and the final row's threshold must equal MaxRollValue
// so that every roll in range resolves without hitting the fallback path.
func NewTable[T any](rows []Row[T]) (*Table[T], error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	prev := 0
	for i, row := range rows {
		if row.Name == "" {
			return nil, fmt.Errorf("tier row %d has no name", i)
		}
		if row.Threshold <= prev {
			return nil, fmt.Errorf("tier row %q: threshold %d not greater than previous %d", row.Name, row.Threshold, prev)
		}
		prev = row.Threshold
	}

	if rows[len(rows)-1].Threshold != MaxRollValue {
		return nil, fmt.Errorf("final tier row %q: threshold %d must equal %d", rows[len(rows)-1].Name, prev, MaxRollValue)
	}

	copied := make([]Row[T], len(rows))
	copy(copied, rows)
	return &Table[T]{rows: copied}, nil
}

// Result describes the bracket a roll resolved to.
type Result[T any] struct {
	Name string
	// Rank is the row index from the top of the table (0 = rarest).
	Rank int
	// RankFromBottom is the row index from the bottom (0 = most common).
	RankFromBottom int
	// RollRangeStart and RollRangeEnd are the inclusive roll bounds of the bracket.
	RollRangeStart int
	RollRangeEnd   int
	Stats          T
}

// RollCeiling returns the effective upper bound for a roll at the given luck
// multiplier. Multipliers below 1 are clamped to 1 so luck can never widen the
// range past MaxRollValue.
func RollCeiling(luckMultiplier float64) int {
	if luckMultiplier < 1 {
		luckMultiplier = 1
	}
	ceiling := int(math.Floor(MaxRollValue / luckMultiplier))
	if ceiling < 1 {
		ceiling = 1
	}
	return ceiling
}

// Resolve maps a roll to its bracket. The caller draws roll uniformly from
// [1, RollCeiling(luckMultiplier)]. A roll beyond every threshold falls back to
// the last (most common) row; with a valid table and an in-range roll that path
// is unreachable.
func (t *Table[T]) Resolve(roll int) Result[T] {
	prev := 0
	for i, row := range t.rows {
		if roll > prev && roll <= row.Threshold {
			return t.result(i, prev)
		}
		prev = row.Threshold
	}
	// Fallback: out-of-range roll resolves to the most common bracket.
	last := len(t.rows) - 1
	lower := 0
	if last > 0 {
		lower = t.rows[last-1].Threshold
	}
	return t.result(last, lower)
}

func (t *Table[T]) result(index, lowerBound int) Result[T] {
	row := t.rows[index]
	return Result[T]{
		Name:           row.Name,
		Rank:           index,
		RankFromBottom: len(t.rows) - 1 - index,
		RollRangeStart: lowerBound + 1,
		RollRangeEnd:   row.Threshold,
		Stats:          row.Stats,
	}
}

// Odds returns how unlikely the bracket was at the given roll ceiling, as a
// "1 in N" figure. Width is clamped to the ceiling so brackets wider than the
// shrunk range never report odds below 1.
func (r Result[T]) Odds(ceiling int) float64 {
	width := r.RollRangeEnd - r.RollRangeStart + 1
	if width > ceiling {
		width = ceiling
	}
	if width < 1 {
		width = 1
	}
	return float64(ceiling) / float64(width)
}

// RoundOdds applies the display rounding rule for combined odds: one decimal
// place below 1000, whole numbers at or above.
func RoundOdds(odds float64) float64 {
	if odds < 1000 {
		return math.Round(odds*10) / 10
	}
	return math.Round(odds)
}

// Len returns the number of rows in the table.
func (t *Table[T]) Len() int {
	return len(t.rows)
}

// RowAt returns the row at the given index. Used by catalog validation and tests.
func (t *Table[T]) RowAt(index int) Row[T] {
	return t.rows[index]
}
