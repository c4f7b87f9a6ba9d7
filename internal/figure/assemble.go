package figure

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"QuantChart/internal/chart"
	"QuantChart/internal/model"
)

// Geometry kinds of the main trace.
const (
	KindOHLC            = "ohlc"
	KindCandlestick     = "candlestick"
	KindLine            = "line"
	KindLineThin        = "line_thin"
	KindLineThick       = "line_thick"
	KindLineDashed      = "line_dashed"
	KindLineDashedThin  = "line_dashed_thin"
	KindLineDashedThick = "line_dashed_thick"
	KindArea            = "area"
	KindAreaDashed      = "area_dashed"
	KindAreaDashedThin  = "area_dashed_thin"
	KindAreaDashedThick = "area_dashed_thick"
	KindAreaThreshold   = "area_threshold"
	KindScatter         = "scatter"

	// KindBar is the volume skeleton. It is not a main-trace kind.
	KindBar = "bar"
)

var kinds = []string{
	KindOHLC, KindCandlestick,
	KindLine, KindLineThin, KindLineThick,
	KindLineDashed, KindLineDashedThin, KindLineDashedThick,
	KindArea, KindAreaDashed, KindAreaDashedThin, KindAreaDashedThick, KindAreaThreshold,
	KindScatter,
}

// Kinds returns the accepted main-trace kinds.
func Kinds() []string { return slices.Clone(kinds) }

// IsOHLCKind reports whether kind draws open/high/low/close bars.
func IsOHLCKind(kind string) bool {
	return kind == KindOHLC || kind == KindCandlestick
}

func isArea(kind string) bool { return strings.HasPrefix(kind, "area") }

// Stacked axis domains, top to bottom, keyed by the number of stacked series.
var stackedDomains = map[int][][]float64{
	1: {{0.30, 1.0}, {0.0, 0.25}},
	2: {{0.5, 1.0}, {0.25, 0.45}, {0.0, 0.20}},
}

const (
	legendShift     = 0.03
	volumeLabelDrop = 0.01
)

// Assembler turns a chart into a Figure using the themes of a TemplateProvider.
type Assembler struct {
	Templates TemplateProvider
}

// NewAssembler returns an Assembler reading themes from tp.
func NewAssembler(tp TemplateProvider) *Assembler {
	return &Assembler{Templates: tp}
}

// resolved holds Options after defaulting and validation.
type resolved struct {
	kind     string
	volume   bool
	title    string
	subtitle bool
}

func (a *Assembler) resolve(c *chart.Chart, opts Options) (resolved, error) {
	var r resolved
	if c == nil || c.Len() == 0 {
		return r, fmt.Errorf("%w: chart has no rows", model.ErrInsufficientData)
	}

	r.kind = opts.Kind
	if r.kind == "" {
		switch {
		case c.HasOHLC():
			r.kind = KindCandlestick
		case c.HasClose():
			r.kind = KindLine
		default:
			return r, fmt.Errorf("%w: chart has neither OHLC nor close data", model.ErrInsufficientData)
		}
	}
	if !slices.Contains(kinds, r.kind) {
		return r, fmt.Errorf("%w: invalid chart type %q", model.ErrUnsupportedOption, r.kind)
	}
	if IsOHLCKind(r.kind) {
		if !c.HasOHLC() {
			return r, fmt.Errorf("%w: %s needs OHLC data", model.ErrInsufficientData, r.kind)
		}
	} else if !c.HasClose() {
		return r, fmt.Errorf("%w: %s needs close data", model.ErrInsufficientData, r.kind)
	}

	r.volume = c.HasVolume()
	if opts.Volume != nil {
		r.volume = *opts.Volume
	}
	if r.volume && !c.HasVolume() {
		return r, fmt.Errorf("%w: volume requested but chart has no volume data", model.ErrInsufficientData)
	}

	r.title = c.Ticker
	if opts.Title != nil {
		r.title = *opts.Title
	}
	r.subtitle = true
	if opts.Subtitle != nil {
		r.subtitle = *opts.Subtitle
	}

	if opts.HoverMode != "" && !opts.HoverMode.Valid() {
		return r, fmt.Errorf("%w: invalid hovermode %q", model.ErrUnsupportedOption, opts.HoverMode)
	}
	if opts.Layout != nil && opts.Layout.HoverMode != "" && !opts.Layout.HoverMode.Valid() {
		return r, fmt.Errorf("%w: invalid layout hovermode %q", model.ErrUnsupportedOption, opts.Layout.HoverMode)
	}
	return r, nil
}

// Assemble builds a new Figure from c. It never modifies c and returns a
// fresh Figure on every call.
func (a *Assembler) Assemble(c *chart.Chart, opts Options) (*Figure, error) {
	r, err := a.resolve(c, opts)
	if err != nil {
		return nil, err
	}
	if opts.Legend == nil && opts.LegendSpec == nil {
		opts.Legend = ptr(true)
	}

	tmpl, err := a.Templates.Template(opts.Theme, opts.overrides(r.title))
	if err != nil {
		return nil, fmt.Errorf("resolve theme: %w", err)
	}
	b := &builder{chart: c, tmpl: tmpl, opts: r, layout: tmpl.Layout.Clone()}

	if err := b.mainTrace(); err != nil {
		return nil, err
	}
	for _, e := range c.Primary() {
		if err := b.indicatorTrace(e, "y1"); err != nil {
			return nil, err
		}
	}
	delta := 0
	if r.volume {
		delta = 1
		if err := b.volumeTrace(); err != nil {
			return nil, err
		}
	}
	secondary := c.Secondary()
	for i, e := range secondary {
		if err := b.indicatorTrace(e, fmt.Sprintf("y%d", i+delta+2)); err != nil {
			return nil, err
		}
	}

	b.axes(len(secondary) + delta)
	if b.layout.Title == "" && b.layout.Margin != nil {
		b.layout.Margin.T = b.layout.Margin.B
	}
	if err := b.subtitle(); err != nil {
		return nil, err
	}

	return &Figure{Traces: b.traces, Layout: b.layout, Warnings: b.warnings}, nil
}

// AssembleMap parses a loose option map with ParseOptions and assembles.
func (a *Assembler) AssembleMap(c *chart.Chart, raw map[string]any) (*Figure, error) {
	opts, err := ParseOptions(raw)
	if err != nil {
		return nil, err
	}
	return a.Assemble(c, opts)
}

type builder struct {
	chart    *chart.Chart
	tmpl     *Template
	opts     resolved
	layout   LayoutSpec
	traces   []TraceSpec
	warnings []string
}

func (b *builder) color(key string) (string, error) { return b.tmpl.Color(key) }

func (b *builder) mainTrace() error {
	c := b.chart
	kind := b.opts.kind
	tr, err := b.tmpl.Trace(kind)
	if err != nil {
		return err
	}
	tr.X = slices.Clone(c.Table().Index())
	tr.Name = b.opts.title
	tr.YAxis = "y1"
	tr.ShowLegend = ptr(false)

	switch {
	case kind == KindCandlestick:
		tr.Open, tr.High, tr.Low, tr.Close = ohlc(c)
		inc, dec, border, err := b.colors3("increasing", "decreasing", "border")
		if err != nil {
			return err
		}
		up, down := direction(&tr.Increasing), direction(&tr.Decreasing)
		up.FillColor, up.Line.Color = inc, Solid(border)
		down.FillColor, down.Line.Color = dec, Solid(border)
	case kind == KindOHLC:
		tr.Open, tr.High, tr.Low, tr.Close = ohlc(c)
		inc, dec, _, err := b.colors3("increasing", "decreasing", "")
		if err != nil {
			return err
		}
		direction(&tr.Increasing).Line.Color = Solid(inc)
		direction(&tr.Decreasing).Line.Color = Solid(dec)
	case kind == KindScatter:
		tr.Y = slices.Clone(Values(c.Close()))
		primary, err := b.color("primary")
		if err != nil {
			return err
		}
		tr.marker().Color = Solid(primary)
	default:
		tr.Y = slices.Clone(Values(c.Close()))
		primary, err := b.color("primary")
		if err != nil {
			return err
		}
		tr.line().Color = Solid(primary)
	}
	b.traces = append(b.traces, tr)
	return nil
}

func ohlc(c *chart.Chart) (open, high, low, closes Values) {
	return slices.Clone(Values(c.Open())), slices.Clone(Values(c.High())),
		slices.Clone(Values(c.Low())), slices.Clone(Values(c.Close()))
}

// colors3 looks up up to three palette keys; an empty key yields "".
func (b *builder) colors3(k1, k2, k3 string) (string, string, string, error) {
	var out [3]string
	for i, k := range []string{k1, k2, k3} {
		if k == "" {
			continue
		}
		c, err := b.color(k)
		if err != nil {
			return "", "", "", err
		}
		out[i] = c
	}
	return out[0], out[1], out[2], nil
}

func (b *builder) indicatorTrace(e chart.Entry, axis string) error {
	tr, err := b.tmpl.Trace(e.Style.Kind)
	if err != nil {
		return fmt.Errorf("indicator %q: %w", e.Name, err)
	}
	tr.X = slices.Clone(b.chart.IndicatorIndex())
	tr.Y = slices.Clone(Values(e.Values))
	tr.Name = e.Name
	tr.YAxis = axis

	lineColor, err := b.color(e.Style.Color)
	if err != nil {
		return fmt.Errorf("indicator %q: %w", e.Name, err)
	}
	tr.line().Color = Solid(lineColor)
	if isArea(e.Style.Kind) && e.Style.FillColor != "" {
		fill, err := b.color(e.Style.FillColor)
		if err != nil {
			return fmt.Errorf("indicator %q: %w", e.Name, err)
		}
		tr.FillColor = fill
	}
	b.traces = append(b.traces, tr)
	return nil
}

func (b *builder) volumeTrace() error {
	c := b.chart
	tr, err := b.tmpl.Trace(KindBar)
	if err != nil {
		return err
	}
	tr.X = slices.Clone(c.Table().Index())
	tr.Y = slices.Clone(Values(c.Volume()))
	tr.Name = "Volume"
	tr.YAxis = "y2"
	tr.ShowLegend = ptr(false)

	var paint Paint
	if IsOHLCKind(b.opts.kind) && c.HasOpen() && c.HasClose() {
		inc, dec, _, err := b.colors3("increasing", "decreasing", "")
		if err != nil {
			return err
		}
		open, closes := c.Open(), c.Close()
		each := make([]string, len(closes))
		for i := range closes {
			if closes[i]-open[i] >= 0 {
				each[i] = inc
			} else {
				each[i] = dec
			}
		}
		paint = Paint{Each: each}
	} else {
		primary, err := b.color("primary")
		if err != nil {
			return err
		}
		paint = Solid(primary)
	}

	m := tr.marker()
	m.Color = paint
	if m.Line == nil {
		m.Line = &Line{}
	}
	if b.opts.kind == KindCandlestick {
		border, err := b.color("border")
		if err != nil {
			return err
		}
		m.Line.Color = Solid(border)
	} else {
		m.Line.Color = paint.clone()
	}
	b.traces = append(b.traces, tr)
	return nil
}

// axes lays out the x axis, the price axis and one axis per stacked series.
// Axis settings from the caller's layout are merged over the computed ones.
func (b *builder) axes(stacked int) {
	caller := b.layout
	l := &b.layout

	x := b.tmpl.Additions.XAxis.Clone()
	x.Merge(caller.XAxis)
	l.XAxis = x

	yAxes := []*Axis{b.tmpl.Additions.YAxis.Clone()}
	for i := 0; i < stacked; i++ {
		yAxes = append(yAxes, b.tmpl.Additions.YAxis.Clone())
	}
	if domains, ok := stackedDomains[stacked]; ok {
		for i, d := range domains {
			yAxes[i].Domain = slices.Clone(d)
		}
	} else if stacked > 0 {
		msg := fmt.Sprintf("plotting %d stacked sub-plots is not supported; axis domains left unset", stacked)
		slog.Warn("stacked sub-plots unsupported", "stacked", stacked, "ticker", b.chart.Ticker)
		b.warnings = append(b.warnings, msg)
	}
	for i, a := range yAxes {
		a.Merge(caller.YAxis(i + 1))
	}
	callerAxes := caller.YAxes
	l.YAxes = nil
	for i, a := range yAxes {
		l.SetYAxis(i+1, a)
	}
	// caller axes beyond the allocated ones are kept as given
	for i := len(yAxes); i < len(callerAxes); i++ {
		l.SetYAxis(i+1, callerAxes[i])
	}
}

// subtitle appends the last price and last volume annotations under the legend.
func (b *builder) subtitle() error {
	l := &b.layout
	if !b.opts.subtitle || l.ShowLegend == nil || !*l.ShowLegend {
		return nil
	}
	c := b.chart
	closes := c.Close()
	last := len(closes) - 1

	var key string
	if IsOHLCKind(b.opts.kind) {
		if closes[last]-c.Open()[last] >= 0 {
			key = "increasing"
		} else {
			key = "decreasing"
		}
	} else {
		key = "primary"
	}
	color, err := b.color(key)
	if err != nil {
		return err
	}

	if l.Legend == nil {
		l.Legend = &Legend{}
	}
	lx, ly := deref(l.Legend.X), deref(l.Legend.Y)
	l.Annotations = append(l.Annotations, Annotation{
		X: lx, XAnchor: l.Legend.XAnchor, XRef: "paper",
		Y: ly, YAnchor: l.Legend.YAnchor, YRef: "paper",
		Text: "Last " + formatPrice(closes[last]),
		Font: &Font{Color: color},
	})
	l.Legend.Y = ptr(ly - legendShift)

	if !b.opts.volume {
		return nil
	}
	vol := l.YAxis(2)
	if vol == nil || len(vol.Domain) == 0 {
		return nil
	}
	volumes := c.Volume()
	l.Annotations = append(l.Annotations, Annotation{
		X: lx, XAnchor: l.Legend.XAnchor, XRef: "paper",
		Y: vol.Domain[len(vol.Domain)-1] - volumeLabelDrop, YAnchor: l.Legend.YAnchor, YRef: "paper",
		Text: "Volume " + formatVolume(volumes[len(volumes)-1]),
		Font: &Font{Color: color},
	})
	return nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// formatPrice renders v with thousands separators and two decimals.
func formatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return humanize.FormatFloat("#,###.##", v)
}

// formatVolume renders v as a thousands-separated integer.
func formatVolume(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return humanize.Comma(int64(math.Round(v)))
}
