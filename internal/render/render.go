// Package render hands assembled figures to a rendering backend.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"QuantChart/internal/figure"
	"QuantChart/internal/model"
	"QuantChart/internal/recorder"
)

// Renderer draws or publishes a figure under an identifier and returns a
// handle to the result (a file path or a URL).
type Renderer interface {
	Render(ctx context.Context, fig *figure.Figure, id string) (string, error)
}

// Mode names the path a figure took.
type Mode string

const (
	Offline Mode = "offline"
	Online  Mode = "online"
)

// idPrefix starts every generated identifier.
const idPrefix = "QuantChart"

// PlotOptions are per-call settings for Presenter.Plot.
type PlotOptions struct {
	// Filename identifies the plot. Empty means a timestamp-based name.
	Filename string
	// Online forces the online (true) or offline (false) path. Nil defers
	// to the presenter's OfflineMode.
	Online *bool

	// Ticker, Kind and Rows are only recorded.
	Ticker string
	Kind   string
	Rows   int
}

// Result is what Plot produced.
type Result struct {
	ID     string
	Handle string
	Mode   Mode
}

// Presenter chooses between an offline and an online renderer.
type Presenter struct {
	Offline     Renderer
	Online      Renderer
	OfflineMode bool
	Recorder    recorder.Recorder

	now func() time.Time
}

// NewPresenter returns a Presenter. rec may be nil.
func NewPresenter(offline, online Renderer, offlineMode bool, rec recorder.Recorder) *Presenter {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Presenter{Offline: offline, Online: online, OfflineMode: offlineMode, Recorder: rec, now: time.Now}
}

// NewID returns the identifier used when a plot has no filename. Two calls
// within the same second return the same identifier.
func NewID(t time.Time) string {
	return idPrefix + " " + t.Format(time.DateTime)
}

// Plot renders fig offline when the presenter is in offline mode and the
// call does not force online; otherwise it is sent to the online renderer.
// There is no retry; a backend failure is returned as is.
func (p *Presenter) Plot(ctx context.Context, fig *figure.Figure, opts PlotOptions) (*Result, error) {
	if fig == nil {
		return nil, fmt.Errorf("%w: nil figure", model.ErrInsufficientData)
	}
	id := opts.Filename
	if id == "" {
		now := time.Now
		if p.now != nil {
			now = p.now
		}
		id = NewID(now())
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: filename is blank", model.ErrConfiguration)
	}

	mode, r := Online, p.Online
	if p.OfflineMode && (opts.Online == nil || !*opts.Online) {
		mode, r = Offline, p.Offline
	}
	if r == nil {
		return nil, fmt.Errorf("%w: no %s renderer configured", model.ErrConfiguration, mode)
	}

	handle, err := r.Render(ctx, fig, id)
	if err != nil {
		return nil, fmt.Errorf("%s render: %w", mode, err)
	}
	slog.Info("figure rendered", "id", id, "mode", mode, "handle", handle)

	if p.Recorder != nil {
		evt := &recorder.RenderEvent{
			Ticker:   opts.Ticker,
			Kind:     opts.Kind,
			Mode:     string(mode),
			Handle:   handle,
			Traces:   len(fig.Traces),
			Rows:     opts.Rows,
			Warnings: len(fig.Warnings),
		}
		evt.LastClose, evt.LastVolume = lastValues(fig)
		if err := p.Recorder.RecordRender(evt); err != nil {
			slog.Warn("record render failed", "id", id, "error", err)
		}
	}
	return &Result{ID: id, Handle: handle, Mode: mode}, nil
}

// lastValues returns the final close of the main trace and the final
// volume bar, or NaN when absent.
func lastValues(fig *figure.Figure) (closePrice, volume float64) {
	closePrice, volume = math.NaN(), math.NaN()
	for i, tr := range fig.Traces {
		if i == 0 {
			if src := mainSeries(tr); len(src) > 0 {
				closePrice = src[len(src)-1]
			}
			continue
		}
		if tr.Type == figure.KindBar && len(tr.Y) > 0 {
			volume = tr.Y[len(tr.Y)-1]
		}
	}
	return closePrice, volume
}

// mainSeries is the close column of an ohlc trace or the y column otherwise.
func mainSeries(tr figure.TraceSpec) figure.Values {
	if len(tr.Close) > 0 {
		return tr.Close
	}
	return tr.Y
}
