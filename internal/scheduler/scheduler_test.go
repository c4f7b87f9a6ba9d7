package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"QuantChart/internal/collector"
	"QuantChart/internal/figure"
	"QuantChart/internal/model"
	"QuantChart/internal/recorder"
	"QuantChart/internal/render"
	"QuantChart/internal/theme"
)

type fakeRenderer struct {
	fig *figure.Figure
	ids []string
}

func (f *fakeRenderer) Render(_ context.Context, fig *figure.Figure, id string) (string, error) {
	f.fig = fig
	f.ids = append(f.ids, id)
	return "out/" + id + ".html", nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, text)
	return nil
}

type memRecorder struct {
	recorder.NoopRecorder
	events []recorder.RenderEvent
}

func (m *memRecorder) RecordRender(evt *recorder.RenderEvent) error {
	evt.Time = time.Date(2024, 3, 29, 12, 0, 0, 0, time.UTC)
	m.events = append([]recorder.RenderEvent{*evt}, m.events...)
	return nil
}

func (m *memRecorder) Recent(limit int) ([]recorder.RenderEvent, error) {
	return m.events[:min(limit, len(m.events))], nil
}

func newJob(fetcher collector.Fetcher) (*RenderJob, *fakeRenderer, *fakeNotifier, *memRecorder) {
	r := &fakeRenderer{}
	n := &fakeNotifier{}
	rec := &memRecorder{}
	job := &RenderJob{
		Collector: collector.NewCollector(fetcher, "SPX", 30),
		Assembler: figure.NewAssembler(theme.New("")),
		Presenter: render.NewPresenter(r, nil, true, rec),
		Notifier:  n,
		Studies:   []Study{{Name: "SMA", Params: []int{3}}, {Name: "RSI", Params: []int{5}}},
		Options:   map[string]any{"type": "candlestick"},
		now:       func() time.Time { return time.Date(2024, 3, 29, 12, 0, 0, 0, time.UTC) },
	}
	return job, r, n, rec
}

func mock() *collector.MockFetcher {
	return &collector.MockFetcher{Price: 100, Now: time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)}
}

func TestRenderJob_Run(t *testing.T) {
	job, r, n, rec := newJob(mock())
	res, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Mode != render.Offline {
		t.Errorf("expected offline mode, got %s", res.Mode)
	}
	// candlestick, SMA, volume, RSI
	if len(r.fig.Traces) != 4 {
		t.Fatalf("expected 4 traces, got %d", len(r.fig.Traces))
	}
	if r.fig.Layout.Title != "SPX" {
		t.Errorf("expected title SPX, got %q", r.fig.Layout.Title)
	}
	if len(rec.events) != 1 || rec.events[0].Rows != 30 || rec.events[0].Kind != "candlestick" {
		t.Errorf("unexpected recorded events %+v", rec.events)
	}
	if len(n.msgs) != 1 || !strings.Contains(n.msgs[0], "Last close: 101.40") {
		t.Errorf("unexpected report %v", n.msgs)
	}
}

func TestRenderJob_Adjusts(t *testing.T) {
	job, _, n, _ := newJob(mock())
	job.Adjust = true
	job.AdjustVolume = true
	if _, err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	// adjusted close trails close by 1%, so volume shrinks by the same ratio
	for _, want := range []string{"Last close: 100.39", "Last volume: 990,000"} {
		if !strings.Contains(n.msgs[0], want) {
			t.Errorf("expected %q in report:\n%s", want, n.msgs[0])
		}
	}
}

func TestRenderJob_AdjustWithoutAdjustedClose(t *testing.T) {
	bars := []model.OHLCV{
		{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 1, Close: 2, Volume: 5},
		{Time: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Open: 2, High: 3, Low: 1, Close: 3, Volume: 6},
	}
	job, _, _, _ := newJob(&vsLike{bars: bars})
	job.Studies = nil
	job.Adjust = true
	_, err := job.Run(context.Background())
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

// vsLike serves bars under the vstrader preset, which has no adjusted close.
type vsLike struct{ bars []model.OHLCV }

func (v *vsLike) Name() string { return "vstrader" }
func (v *vsLike) FetchDailyBars(context.Context, string, int) ([]model.OHLCV, error) {
	return v.bars, nil
}
func (v *vsLike) FetchWeeklyBars(context.Context, string, int) ([]model.OHLCV, error) {
	return v.bars, nil
}

func TestRenderJob_UnknownStudy(t *testing.T) {
	job, _, _, _ := newJob(mock())
	job.Studies = []Study{{Name: "VWAP"}}
	_, err := job.Run(context.Background())
	if !errors.Is(err, model.ErrUnsupportedOption) {
		t.Errorf("expected ErrUnsupportedOption, got %v", err)
	}
}

func TestRenderJob_BadOptions(t *testing.T) {
	job, _, _, _ := newJob(mock())
	job.Options = map[string]any{"colour": "red"}
	_, err := job.Run(context.Background())
	if !errors.Is(err, model.ErrUnsupportedOption) {
		t.Errorf("expected ErrUnsupportedOption, got %v", err)
	}
}

func TestScheduler_Register(t *testing.T) {
	job, _, _, _ := newJob(mock())
	s := NewScheduler(context.Background(), job, nil)
	if err := s.Register("not a cron"); err == nil {
		t.Error("expected invalid cron spec to fail")
	}
	if err := s.Register("0 0 22 * * 1-5"); err != nil {
		t.Errorf("expected valid spec, got %v", err)
	}
	if len(s.Cron.Entries()) != 1 {
		t.Errorf("expected 1 entry, got %d", len(s.Cron.Entries()))
	}
}

func TestScheduler_Commands(t *testing.T) {
	job, r, n, rec := newJob(mock())
	s := NewScheduler(context.Background(), job, rec)

	if reply := s.HandleCommand(context.Background(), "/chart"); reply != "" {
		t.Errorf("expected empty reply after report, got %q", reply)
	}
	if len(r.ids) != 1 || len(n.msgs) != 1 {
		t.Fatalf("expected one render and one report, got %d and %d", len(r.ids), len(n.msgs))
	}

	reply := s.HandleCommand(context.Background(), "/history")
	if !strings.Contains(reply, "SPX candlestick") {
		t.Errorf("unexpected history reply:\n%s", reply)
	}
	if reply := s.HandleCommand(context.Background(), "hello"); !strings.Contains(reply, "/chart") {
		t.Errorf("expected help, got %q", reply)
	}
}

func TestScheduler_RenderTaskReportsFailure(t *testing.T) {
	job, _, n, _ := newJob(&collector.MockFetcher{DailyData: []model.OHLCV{}})
	s := NewScheduler(context.Background(), job, nil)
	s.renderTask()
	if len(n.msgs) != 1 || !strings.Contains(n.msgs[0], "Chart for SPX failed") {
		t.Errorf("expected failure report, got %v", n.msgs)
	}
}
