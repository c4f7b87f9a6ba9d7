package collector

import (
	"context"

	"QuantChart/internal/model"
)

// Fetcher defines the interface for fetching market data. Name must match
// a source preset so collected tables use that vendor's column names.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	FetchWeeklyBars(ctx context.Context, symbol string, weeks int) ([]model.OHLCV, error)
	Name() string
}
