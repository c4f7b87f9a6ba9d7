package figure

import (
	"errors"
	"math"
	"strings"
	"testing"

	"QuantChart/internal/model"
)

func TestParseOptions_Aliases(t *testing.T) {
	o, err := ParseOptions(map[string]any{
		"type":       "line",
		"kind":       "ohlc",
		"showlegend": false,
		"figsize":    []any{8, 4.5},
	})
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if o.Kind != "ohlc" {
		t.Errorf("expected kind alias to win, got %q", o.Kind)
	}
	if o.Legend == nil || *o.Legend {
		t.Errorf("expected legend false, got %v", o.Legend)
	}
	if o.Dimensions == nil || *o.Dimensions != [2]int{640, 360} {
		t.Errorf("expected 640x360, got %v", o.Dimensions)
	}
}

func TestParseOptions_UnknownKey(t *testing.T) {
	_, err := ParseOptions(map[string]any{"colour": "red"})
	if !errors.Is(err, model.ErrUnsupportedOption) {
		t.Errorf("expected ErrUnsupportedOption, got %v", err)
	}
}

func TestParseOptions_TypeMismatch(t *testing.T) {
	tests := []map[string]any{
		{"volume": "yes"},
		{"subtitle": 1},
		{"type": 3},
		{"figsize": []any{1, 2, 3}},
		{"figsize": "big"},
		{"dimensions": []any{"a", "b"}},
		{"margin": []any{1, 2}},
		{"width": -5},
		{"hovermode": true},
		{"legend": "top"},
	}
	for _, raw := range tests {
		if _, err := ParseOptions(raw); !errors.Is(err, model.ErrTypeMismatch) {
			t.Errorf("%v: expected ErrTypeMismatch, got %v", raw, err)
		}
	}
}

func TestParseOptions_Margin(t *testing.T) {
	o, err := ParseOptions(map[string]any{"margin": []any{10, 20, 30, 40, 5}})
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if *o.Margin != (Margin{L: 10, R: 20, B: 30, T: 40, Pad: 5}) {
		t.Errorf("unexpected margin %+v", *o.Margin)
	}
	o, err = ParseOptions(map[string]any{"margin": map[string]any{"l": 1, "r": 2, "b": 3, "t": 4}})
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if *o.Margin != (Margin{L: 1, R: 2, B: 3, T: 4}) {
		t.Errorf("unexpected margin %+v", *o.Margin)
	}
}

func TestParseOptions_LayoutMap(t *testing.T) {
	o, err := ParseOptions(map[string]any{
		"hovermode": false,
		"layout": map[string]any{
			"title":  "Daily",
			"yaxis2": map[string]any{"side": "left"},
			"legend": map[string]any{"x": 0.5},
		},
	})
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if o.HoverMode != HoverOff {
		t.Errorf("expected hovermode off, got %q", o.HoverMode)
	}
	if o.Layout.Title != "Daily" {
		t.Errorf("expected title Daily, got %q", o.Layout.Title)
	}
	if a := o.Layout.YAxis(2); a == nil || a.Side != "left" {
		t.Errorf("expected yaxis2 side left, got %+v", a)
	}
	if o.Layout.YAxis(1) != nil {
		t.Error("expected no yaxis override")
	}
	if o.Layout.Legend.X == nil || *o.Layout.Legend.X != 0.5 {
		t.Errorf("expected legend x 0.5, got %+v", o.Layout.Legend)
	}
}

func TestParseOptions_Annotations(t *testing.T) {
	o, err := ParseOptions(map[string]any{
		"annotations": []any{map[string]any{"x": "2024-01-02", "y": 10, "text": "split"}},
	})
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if len(o.Annotations) != 1 || o.Annotations[0].Text != "split" {
		t.Errorf("unexpected annotations %+v", o.Annotations)
	}
}

func TestValuesMarshalJSON(t *testing.T) {
	b, err := Values{1.5, math.NaN(), math.Inf(1), 2}.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(b) != "[1.5,null,null,2]" {
		t.Errorf("expected [1.5,null,null,2], got %s", b)
	}
}

func TestLayoutMerge(t *testing.T) {
	base := LayoutSpec{
		Title:  "base",
		Legend: &Legend{X: ptr(0.01), Y: ptr(0.99), XAnchor: "left"},
		Margin: &Margin{L: 1, R: 1, B: 1, T: 1},
	}
	base.SetYAxis(1, &Axis{Side: "right", GridColor: "#eee"})

	over := &LayoutSpec{Legend: &Legend{Y: ptr(0.5)}}
	over.SetYAxis(1, &Axis{Side: "left"})
	over.SetYAxis(3, &Axis{Title: "RSI"})
	base.Merge(over)

	if base.Title != "base" {
		t.Errorf("unset override must not clear title, got %q", base.Title)
	}
	if *base.Legend.X != 0.01 || *base.Legend.Y != 0.5 || base.Legend.XAnchor != "left" {
		t.Errorf("expected field-wise legend merge, got %+v", base.Legend)
	}
	if a := base.YAxis(1); a.Side != "left" || a.GridColor != "#eee" {
		t.Errorf("expected field-wise axis merge, got %+v", a)
	}
	if base.YAxis(2) != nil || base.YAxis(3).Title != "RSI" {
		t.Errorf("unexpected axes %+v", base.YAxes)
	}
}

func TestLayoutMarshalJSON_AxisKeys(t *testing.T) {
	l := LayoutSpec{}
	l.SetYAxis(1, &Axis{Domain: []float64{0.3, 1}})
	l.SetYAxis(2, &Axis{Domain: []float64{0, 0.25}})
	b, err := l.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"yaxis":{"domain":[0.3,1]}`) || !strings.Contains(s, `"yaxis2":{"domain":[0,0.25]}`) {
		t.Errorf("unexpected layout JSON %s", s)
	}
}
