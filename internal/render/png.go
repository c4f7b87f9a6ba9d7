package render

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"QuantChart/internal/figure"
)

// PNGRenderer rasterizes a preview of a figure: the price line, the
// overlays on the price axis and volume on the secondary axis. Stacked
// sub-plot indicators are not drawn.
type PNGRenderer struct {
	Dir    string
	Width  int
	Height int
}

// NewPNGRenderer returns a renderer writing into dir.
func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{Dir: dir, Width: 1280, Height: 720}
}

// Render writes <dir>/<id>.png and returns its path.
func (r *PNGRenderer) Render(ctx context.Context, fig *figure.Figure, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	series := previewSeries(fig)
	if len(series) == 0 {
		return "", fmt.Errorf("figure has no series with two or more points")
	}

	width, height := r.Width, r.Height
	if fig.Layout.Width > 0 {
		width = fig.Layout.Width
	}
	if fig.Layout.Height > 0 {
		height = fig.Layout.Height
	}
	graph := chart.Chart{
		Title:  fig.Layout.Title,
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.Dir, fileName(id, ".png"))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := graph.Render(chart.PNG, f); err != nil {
		f.Close()
		return "", fmt.Errorf("render png: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// previewSeries converts the traces on y1 and the volume bars on y2.
func previewSeries(fig *figure.Figure) []chart.Series {
	var out []chart.Series
	for i, tr := range fig.Traces {
		var ys figure.Values
		axis := chart.YAxisPrimary
		switch {
		case i == 0:
			ys = mainSeries(tr)
		case tr.Type == figure.KindBar:
			ys = tr.Y
			axis = chart.YAxisSecondary
		case tr.YAxis == "y1":
			ys = tr.Y
		default:
			continue
		}
		xs, vals := finite(tr.X, ys)
		if len(xs) < 2 {
			continue
		}
		name := tr.Name
		if name == "" {
			name = "price"
		}
		out = append(out, chart.TimeSeries{
			Name:    name,
			XValues: xs,
			YValues: vals,
			YAxis:   axis,
			Style:   previewStyle(tr, axis),
		})
	}
	return out
}

func previewStyle(tr figure.TraceSpec, axis chart.YAxisType) chart.Style {
	style := chart.Style{StrokeWidth: 1.5}
	var color string
	switch {
	case tr.Line != nil && tr.Line.Color.Solid != "":
		color = tr.Line.Color.Solid
	case tr.Marker != nil && tr.Marker.Color.Solid != "":
		color = tr.Marker.Color.Solid
	}
	if c, ok := hexColor(color); ok {
		style.StrokeColor = c
	}
	if tr.Line != nil && tr.Line.Dash != "" {
		style.StrokeDashArray = []float64{5, 5}
	}
	if axis == chart.YAxisSecondary {
		style.StrokeWidth = 1
		style.FillColor = style.StrokeColor.WithAlpha(64)
	}
	return style
}

// hexColor parses "#rrggbb"; other color syntaxes fall back to the default palette.
func hexColor(s string) (drawing.Color, bool) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 3) {
		return drawing.Color{}, false
	}
	return drawing.ColorFromHex(hex), true
}

// finite drops points whose value is NaN or infinite.
func finite(xs []time.Time, ys figure.Values) ([]time.Time, []float64) {
	n := min(len(xs), len(ys))
	outX := make([]time.Time, 0, n)
	outY := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		outX = append(outX, xs[i])
		outY = append(outY, ys[i])
	}
	return outX, outY
}
