package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"QuantChart/internal/model"
	"QuantChart/internal/source"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price      float64
	DailyData  []model.OHLCV
	WeeklyData []model.OHLCV
	// Now anchors generated bars; zero means time.Now.
	Now time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.anchor(), m.Price, days, 1), nil
}

func (m *MockFetcher) FetchWeeklyBars(_ context.Context, _ string, weeks int) ([]model.OHLCV, error) {
	if m.WeeklyData != nil {
		return m.WeeklyData, nil
	}
	return generateMockBars(m.anchor(), m.Price, weeks, 7), nil
}

func (m *MockFetcher) anchor() time.Time {
	if m.Now.IsZero() {
		return time.Now().UTC().Truncate(24 * time.Hour)
	}
	return m.Now
}

// generateMockBars builds count bars ending at end, spaced stepDays apart,
// drifting around basePrice. The adjusted close trails close by 1%.
func generateMockBars(end time.Time, basePrice float64, count, stepDays int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:     end.AddDate(0, 0, -(count-1-i)*stepDays),
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p * 0.99,
			Volume:   1000000,
		}
	}
	return bars
}

// Interval selects the bar size a Collector fetches.
type Interval string

const (
	Daily  Interval = "daily"
	Weekly Interval = "weekly"
)

// Dataset is a collected price table plus the source preset naming its columns.
type Dataset struct {
	Symbol string
	Source string
	Table  *model.PriceTable
}

// Collector fetches bars and shapes them into a price table.
type Collector struct {
	Fetcher  Fetcher
	Symbol   string
	Bars     int
	Interval Interval
}

// NewCollector creates a Collector fetching the last bars daily bars of symbol.
func NewCollector(fetcher Fetcher, symbol string, bars int) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Bars: bars, Interval: Daily}
}

// Collect fetches bars and returns them as a table whose column names
// follow the fetcher's source preset.
func (c *Collector) Collect(ctx context.Context) (*Dataset, error) {
	mapping, err := source.Lookup(c.Fetcher.Name())
	if err != nil {
		return nil, fmt.Errorf("fetcher %s: %w", c.Fetcher.Name(), err)
	}

	var bars []model.OHLCV
	switch c.Interval {
	case Weekly:
		bars, err = c.Fetcher.FetchWeeklyBars(ctx, c.Symbol, c.Bars)
	case Daily, "":
		bars, err = c.Fetcher.FetchDailyBars(ctx, c.Symbol, c.Bars)
	default:
		return nil, fmt.Errorf("%w: unknown interval %q", model.ErrConfiguration, c.Interval)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s bars: %w", c.Interval, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", model.ErrInsufficientData, c.Symbol)
	}

	bars = dedupe(bars)
	table, err := model.TableFromBars(bars, mapping.BarColumns())
	if err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	slog.Debug("bars collected", "symbol", c.Symbol, "source", c.Fetcher.Name(), "bars", table.Len())
	return &Dataset{Symbol: c.Symbol, Source: c.Fetcher.Name(), Table: table}, nil
}

// dedupe drops bars that do not advance the clock; of equal timestamps the
// last bar wins. bars must be sorted.
func dedupe(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if n := len(out); n > 0 && !b.Time.After(out[n-1].Time) {
			if b.Time.Equal(out[n-1].Time) {
				out[n-1] = b
			}
			continue
		}
		out = append(out, b)
	}
	return out
}
