package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// BarColumns names the table columns a bar's fields are written to.
// An empty name skips that field.
type BarColumns struct {
	Open     string
	High     string
	Low      string
	Close    string
	AdjClose string
	Volume   string
}

// TableFromBars builds a PriceTable from chronologically sorted bars.
func TableFromBars(bars []OHLCV, cols BarColumns) (*PriceTable, error) {
	index := make([]time.Time, len(bars))
	for i, b := range bars {
		index[i] = b.Time
	}
	t, err := NewPriceTable(index)
	if err != nil {
		return nil, err
	}

	fields := []struct {
		name string
		get  func(OHLCV) float64
	}{
		{cols.Open, func(b OHLCV) float64 { return b.Open }},
		{cols.High, func(b OHLCV) float64 { return b.High }},
		{cols.Low, func(b OHLCV) float64 { return b.Low }},
		{cols.Close, func(b OHLCV) float64 { return b.Close }},
		{cols.AdjClose, func(b OHLCV) float64 { return b.AdjClose }},
		{cols.Volume, func(b OHLCV) float64 { return b.Volume }},
	}
	for _, f := range fields {
		if f.name == "" {
			continue
		}
		values := make([]float64, len(bars))
		for i, b := range bars {
			values[i] = f.get(b)
		}
		if err := t.SetColumn(f.name, values); err != nil {
			return nil, err
		}
	}
	return t, nil
}
