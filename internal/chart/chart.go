// Package chart holds a price table, its resolved column mapping and the
// indicators attached to it.
package chart

import (
	"fmt"
	"slices"
	"time"

	"QuantChart/internal/indicator"
	"QuantChart/internal/model"
	"QuantChart/internal/source"
)

// Chart is a price table plus indicator registries. It is not safe for
// concurrent use.
type Chart struct {
	table   *model.PriceTable
	cols    source.Mapping
	colsSet bool

	Ticker string
	Start  time.Time
	End    time.Time

	provider indicator.Provider

	indIndex  []time.Time
	indValues map[string][]float64
	primary   registry
	secondary registry
}

// Option configures a Chart in New.
type Option func(*Chart) error

// WithSource resolves the column mapping from a preset name, a Mapping or a
// full slot map. Without it the process default preset is used.
func WithSource(src any) Option {
	return func(c *Chart) error {
		m, err := source.Resolve(src)
		if err != nil {
			return err
		}
		c.cols = m
		c.colsSet = true
		return nil
	}
}

// WithTicker sets the ticker used as the default figure title.
func WithTicker(ticker string) Option {
	return func(c *Chart) error {
		c.Ticker = ticker
		return nil
	}
}

// WithRange overrides the date range, which defaults to the first and last index entries.
func WithRange(start, end time.Time) Option {
	return func(c *Chart) error {
		if !start.IsZero() && !end.IsZero() && end.Before(start) {
			return fmt.Errorf("%w: range end %s is before start %s",
				model.ErrConfiguration, end.Format(time.DateOnly), start.Format(time.DateOnly))
		}
		c.Start, c.End = start, end
		return nil
	}
}

// WithProvider sets the indicator provider used by AddStudy.
func WithProvider(p indicator.Provider) Option {
	return func(c *Chart) error {
		c.provider = p
		return nil
	}
}

// New wraps table in a Chart.
func New(table *model.PriceTable, opts ...Option) (*Chart, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil price table", model.ErrInsufficientData)
	}
	c := &Chart{
		table:     table,
		provider:  indicator.Default(),
		indIndex:  slices.Clone(table.Index()),
		indValues: make(map[string][]float64),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if !c.colsSet {
		m, err := source.Default()
		if err != nil {
			return nil, err
		}
		c.cols = m
	}
	if idx := table.Index(); len(idx) > 0 {
		if c.Start.IsZero() {
			c.Start = idx[0]
		}
		if c.End.IsZero() {
			c.End = idx[len(idx)-1]
		}
	}
	return c, nil
}

// Table returns the price table.
func (c *Chart) Table() *model.PriceTable { return c.table }

// Columns returns the resolved column mapping.
func (c *Chart) Columns() source.Mapping { return c.cols }

// Len returns the number of rows.
func (c *Chart) Len() int { return c.table.Len() }

// Frame returns the price table joined with every attached indicator.
func (c *Chart) Frame() *model.PriceTable {
	ind, _ := model.NewPriceTable(c.indIndex)
	for _, e := range c.Primary() {
		_ = ind.SetColumn(e.Name, e.Values)
	}
	for _, e := range c.Secondary() {
		_ = ind.SetColumn(e.Name, e.Values)
	}
	return c.table.Join(ind)
}

// column returns the column for a canonical slot name, or nil.
func (c *Chart) column(name string) []float64 {
	if name == "" {
		return nil
	}
	v, _ := c.table.Column(name)
	return v
}

// Open returns the open column, or nil.
func (c *Chart) Open() []float64 { return c.column(c.cols.Open) }

// High returns the high column, or nil.
func (c *Chart) High() []float64 { return c.column(c.cols.High) }

// Low returns the low column, or nil.
func (c *Chart) Low() []float64 { return c.column(c.cols.Low) }

// Close returns the close column, or nil.
func (c *Chart) Close() []float64 { return c.column(c.cols.Close) }

// Volume returns the volume column, or nil.
func (c *Chart) Volume() []float64 { return c.column(c.cols.Volume) }

func (c *Chart) HasOpen() bool          { return c.table.Has(c.cols.Open) }
func (c *Chart) HasHigh() bool          { return c.table.Has(c.cols.High) }
func (c *Chart) HasLow() bool           { return c.table.Has(c.cols.Low) }
func (c *Chart) HasClose() bool         { return c.table.Has(c.cols.Close) }
func (c *Chart) HasAdjustedOpen() bool  { return c.table.Has(c.cols.AdjustedOpen) }
func (c *Chart) HasAdjustedHigh() bool  { return c.table.Has(c.cols.AdjustedHigh) }
func (c *Chart) HasAdjustedLow() bool   { return c.table.Has(c.cols.AdjustedLow) }
func (c *Chart) HasAdjustedClose() bool { return c.table.Has(c.cols.AdjustedClose) }
func (c *Chart) HasVolume() bool        { return c.table.Has(c.cols.Volume) }
func (c *Chart) HasDividend() bool      { return c.table.Has(c.cols.Dividend) }

// HasOHLC reports whether open, high, low and close are all present.
func (c *Chart) HasOHLC() bool {
	return c.HasOpen() && c.HasHigh() && c.HasLow() && c.HasClose()
}

// HasOHLCV reports whether OHLC and volume are all present.
func (c *Chart) HasOHLCV() bool {
	return c.HasOHLC() && c.HasVolume()
}
