package model

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// PriceTable is a time-indexed set of float64 columns.
// The index is strictly increasing and every column has one value per index entry.
// Slices returned by Index and Column are shared and must not be modified;
// SetColumn always installs a new slice.
type PriceTable struct {
	index   []time.Time
	columns map[string][]float64
	order   []string
}

// NewPriceTable creates an empty table over index.
func NewPriceTable(index []time.Time) (*PriceTable, error) {
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return nil, fmt.Errorf("index not strictly increasing at row %d (%s after %s)",
				i, index[i].Format(time.RFC3339), index[i-1].Format(time.RFC3339))
		}
	}
	return &PriceTable{
		index:   slices.Clone(index),
		columns: make(map[string][]float64),
	}, nil
}

// Len returns the number of rows.
func (t *PriceTable) Len() int { return len(t.index) }

// Index returns the time index.
func (t *PriceTable) Index() []time.Time { return t.index }

// Columns returns column names in insertion order.
func (t *PriceTable) Columns() []string { return slices.Clone(t.order) }

// Has reports whether the named column exists. The empty name never exists.
func (t *PriceTable) Has(name string) bool {
	if name == "" {
		return false
	}
	_, ok := t.columns[name]
	return ok
}

// Column returns the named column.
func (t *PriceTable) Column(name string) ([]float64, bool) {
	v, ok := t.columns[name]
	return v, ok
}

// SetColumn adds or replaces a column. Replacing keeps the column's position.
func (t *PriceTable) SetColumn(name string, values []float64) error {
	if name == "" {
		return fmt.Errorf("column name is empty")
	}
	if len(values) != len(t.index) {
		return fmt.Errorf("column %q has %d values, index has %d", name, len(values), len(t.index))
	}
	if _, ok := t.columns[name]; !ok {
		t.order = append(t.order, name)
	}
	t.columns[name] = slices.Clone(values)
	return nil
}

// Copy returns an independent copy of the table.
func (t *PriceTable) Copy() *PriceTable {
	c := &PriceTable{
		index:   slices.Clone(t.index),
		columns: make(map[string][]float64, len(t.columns)),
		order:   slices.Clone(t.order),
	}
	for k, v := range t.columns {
		c.columns[k] = slices.Clone(v)
	}
	return c
}

// Join returns a copy of t with other's columns left-joined on the index.
// Rows of t missing from other get NaN. Columns already in t are kept.
func (t *PriceTable) Join(other *PriceTable) *PriceTable {
	out := t.Copy()
	pos := make(map[int64]int, other.Len())
	for i, ts := range other.index {
		pos[ts.UnixNano()] = i
	}
	for _, name := range other.order {
		if out.Has(name) {
			continue
		}
		src := other.columns[name]
		values := make([]float64, len(out.index))
		for i, ts := range out.index {
			if j, ok := pos[ts.UnixNano()]; ok {
				values[i] = src[j]
			} else {
				values[i] = math.NaN()
			}
		}
		out.columns[name] = values
		out.order = append(out.order, name)
	}
	return out
}
