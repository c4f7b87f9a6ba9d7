package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"QuantChart/internal/chart"
	"QuantChart/internal/collector"
	"QuantChart/internal/figure"
	"QuantChart/internal/notifier"
	"QuantChart/internal/render"
)

// Study is an indicator attached to every rendered chart.
type Study struct {
	Name   string
	Params []int
}

// Notifier delivers formatted reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// RenderJob collects bars, builds a chart and hands the assembled figure
// to the presenter.
type RenderJob struct {
	Collector *collector.Collector
	Assembler *figure.Assembler
	Presenter *render.Presenter
	// Notifier may be nil.
	Notifier Notifier

	Studies      []Study
	Adjust       bool
	AdjustVolume bool
	Options      map[string]any

	now func() time.Time
}

// Run executes the job once.
func (j *RenderJob) Run(ctx context.Context) (*render.Result, error) {
	ds, err := j.Collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	c, err := chart.New(ds.Table, chart.WithSource(ds.Source), chart.WithTicker(ds.Symbol))
	if err != nil {
		return nil, fmt.Errorf("build chart: %w", err)
	}

	// volume first: Adjust rewrites close, which the volume ratio reads
	if j.AdjustVolume {
		if _, err := c.AdjustVolume(true); err != nil {
			return nil, fmt.Errorf("adjust volume: %w", err)
		}
	}
	if j.Adjust {
		if _, err := c.Adjust(true); err != nil {
			return nil, fmt.Errorf("adjust: %w", err)
		}
	}
	for _, s := range j.Studies {
		if err := c.AddStudy(s.Name, s.Params...); err != nil {
			return nil, fmt.Errorf("study %s: %w", s.Name, err)
		}
	}

	fig, err := j.Assembler.AssembleMap(c, j.Options)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	kind := ""
	if len(fig.Traces) > 0 {
		kind = fig.Traces[0].Type
	}
	res, err := j.Presenter.Plot(ctx, fig, render.PlotOptions{Ticker: ds.Symbol, Kind: kind, Rows: c.Len()})
	if err != nil {
		return nil, err
	}

	if j.Notifier != nil {
		report := notifier.FormatRenderReport(notifier.RenderReport{
			Symbol:     ds.Symbol,
			Time:       j.clock(),
			Mode:       string(res.Mode),
			Handle:     res.Handle,
			Rows:       c.Len(),
			LastClose:  last(c.Close()),
			LastVolume: last(c.Volume()),
			Warnings:   fig.Warnings,
		})
		if err := j.Notifier.SendWithRetry(ctx, report, 3); err != nil {
			slog.Error("send render report", "error", err)
		}
	}
	return res, nil
}

func (j *RenderJob) clock() time.Time {
	if j.now != nil {
		return j.now()
	}
	return time.Now()
}

func last(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	return v[len(v)-1]
}
