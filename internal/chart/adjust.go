package chart

import (
	"fmt"
	"math"

	"QuantChart/internal/indicator"
	"QuantChart/internal/model"
)

// Adjust restates open, high, low and close for splits and dividends by
// dividing each by close/adjusted-close. It needs full OHLC and an adjusted
// close. In place it rewrites the receiver's table and returns nil;
// otherwise it returns a new Chart over an adjusted copy and leaves the
// receiver untouched. A zero adjusted close yields NaN for that row.
func (c *Chart) Adjust(inPlace bool) (*Chart, error) {
	if !c.HasOHLC() || !c.HasAdjustedClose() {
		return nil, fmt.Errorf("%w: adjusting OHLC needs open, high, low, close and adjusted close", model.ErrInsufficientData)
	}
	cols := []string{c.cols.Open, c.cols.High, c.cols.Low, c.cols.Close}
	return c.rescale(cols, inPlace)
}

// AdjustVolume restates volume by dividing it by close/adjusted-close.
// It needs close, volume and adjusted close. See Adjust for inPlace.
func (c *Chart) AdjustVolume(inPlace bool) (*Chart, error) {
	if !c.HasClose() || !c.HasVolume() || !c.HasAdjustedClose() {
		return nil, fmt.Errorf("%w: adjusting volume needs close, volume and adjusted close", model.ErrInsufficientData)
	}
	return c.rescale([]string{c.cols.Volume}, inPlace)
}

func (c *Chart) ratio() []float64 {
	closes := c.column(c.cols.Close)
	adj := c.column(c.cols.AdjustedClose)
	out := make([]float64, len(closes))
	for i := range closes {
		if adj[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = closes[i] / adj[i]
	}
	return out
}

func (c *Chart) rescale(cols []string, inPlace bool) (*Chart, error) {
	ratio := c.ratio()
	target := c.table
	if !inPlace {
		target = c.table.Copy()
	}
	for _, name := range cols {
		src, _ := c.table.Column(name)
		values := make([]float64, len(src))
		for i, v := range src {
			values[i] = v / ratio[i]
		}
		if err := target.SetColumn(name, values); err != nil {
			return nil, err
		}
	}
	if inPlace {
		return nil, nil
	}
	return c.derive(target), nil
}

// derive returns a Chart over table with the receiver's mapping, identity
// and provider but no indicators.
func (c *Chart) derive(table *model.PriceTable) *Chart {
	return &Chart{
		table:     table,
		cols:      c.cols,
		colsSet:   true,
		Ticker:    c.Ticker,
		Start:     c.Start,
		End:       c.End,
		provider:  c.provider,
		indIndex:  c.indIndex,
		indValues: make(map[string][]float64),
	}
}

// input collects the mapped price columns for an indicator provider.
func (c *Chart) input() indicator.Input {
	return indicator.Input{
		Index:  c.table.Index(),
		Open:   c.Open(),
		High:   c.High(),
		Low:    c.Low(),
		Close:  c.Close(),
		Volume: c.Volume(),
	}
}
