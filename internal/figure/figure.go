// Package figure assembles a chart into a declarative, plotly-compatible
// figure: an ordered list of traces plus a layout.
package figure

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Figure is the assembled chart. It serializes as plotly {data, layout}.
type Figure struct {
	Traces []TraceSpec `json:"data"`
	Layout LayoutSpec  `json:"layout"`

	// Warnings lists non-fatal problems found during assembly.
	Warnings []string `json:"-"`
}

// JSON returns the plotly JSON encoding of the figure.
func (f *Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}

// Values is a numeric data column. NaN and infinities encode as JSON null.
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	b := make([]byte, 0, 2+len(v)*8)
	b = append(b, '[')
	for i, f := range v {
		if i > 0 {
			b = append(b, ',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			b = append(b, "null"...)
			continue
		}
		b = strconv.AppendFloat(b, f, 'g', -1, 64)
	}
	return append(b, ']'), nil
}

// Paint is either one color for every point or one color per point.
type Paint struct {
	Solid string
	Each  []string
}

// Solid returns a single-color Paint.
func Solid(color string) Paint { return Paint{Solid: color} }

func (p Paint) IsZero() bool { return p.Solid == "" && p.Each == nil }

func (p Paint) MarshalJSON() ([]byte, error) {
	if p.Each != nil {
		return json.Marshal(p.Each)
	}
	return json.Marshal(p.Solid)
}

func (p *Paint) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		p.Solid = ""
		return value.Decode(&p.Each)
	}
	p.Each = nil
	return value.Decode(&p.Solid)
}

func (p Paint) clone() Paint {
	return Paint{Solid: p.Solid, Each: slices.Clone(p.Each)}
}

// Line styles a trace line or a marker outline.
type Line struct {
	Color Paint   `json:"color,omitzero" yaml:"color"`
	Width float64 `json:"width,omitempty" yaml:"width"`
	Dash  string  `json:"dash,omitempty" yaml:"dash"`
	Shape string  `json:"shape,omitempty" yaml:"shape"`
}

func (l *Line) clone() *Line {
	if l == nil {
		return nil
	}
	c := *l
	c.Color = l.Color.clone()
	return &c
}

// Marker styles scatter points and bars.
type Marker struct {
	Color   Paint   `json:"color,omitzero" yaml:"color"`
	Size    float64 `json:"size,omitempty" yaml:"size"`
	Opacity float64 `json:"opacity,omitempty" yaml:"opacity"`
	Line    *Line   `json:"line,omitempty" yaml:"line"`
}

func (m *Marker) clone() *Marker {
	if m == nil {
		return nil
	}
	c := *m
	c.Color = m.Color.clone()
	c.Line = m.Line.clone()
	return &c
}

// Direction styles the rising or falling bars of an ohlc or candlestick trace.
type Direction struct {
	FillColor string `json:"fillcolor,omitempty" yaml:"fillcolor"`
	Line      *Line  `json:"line,omitempty" yaml:"line"`
}

func (d *Direction) clone() *Direction {
	if d == nil {
		return nil
	}
	c := *d
	c.Line = d.Line.clone()
	return &c
}

// TraceSpec is one renderable series. Theme skeletons fill the style
// fields and the assembler binds data, name, axis and colors.
type TraceSpec struct {
	Type string `json:"type" yaml:"type"`
	Mode string `json:"mode,omitempty" yaml:"mode"`
	Name string `json:"name,omitempty" yaml:"name"`

	X     []time.Time `json:"x,omitempty" yaml:"-"`
	Y     Values      `json:"y,omitempty" yaml:"-"`
	Open  Values      `json:"open,omitempty" yaml:"-"`
	High  Values      `json:"high,omitempty" yaml:"-"`
	Low   Values      `json:"low,omitempty" yaml:"-"`
	Close Values      `json:"close,omitempty" yaml:"-"`

	YAxis      string  `json:"yaxis,omitempty" yaml:"-"`
	ShowLegend *bool   `json:"showlegend,omitempty" yaml:"showlegend"`
	HoverInfo  string  `json:"hoverinfo,omitempty" yaml:"hoverinfo"`
	Fill       string  `json:"fill,omitempty" yaml:"fill"`
	FillColor  string  `json:"fillcolor,omitempty" yaml:"fillcolor"`
	Opacity    float64 `json:"opacity,omitempty" yaml:"opacity"`

	Line       *Line      `json:"line,omitempty" yaml:"line"`
	Marker     *Marker    `json:"marker,omitempty" yaml:"marker"`
	Increasing *Direction `json:"increasing,omitempty" yaml:"increasing"`
	Decreasing *Direction `json:"decreasing,omitempty" yaml:"decreasing"`
}

// Clone returns a deep copy of t.
func (t TraceSpec) Clone() TraceSpec {
	c := t
	c.X = slices.Clone(t.X)
	c.Y = slices.Clone(t.Y)
	c.Open = slices.Clone(t.Open)
	c.High = slices.Clone(t.High)
	c.Low = slices.Clone(t.Low)
	c.Close = slices.Clone(t.Close)
	if t.ShowLegend != nil {
		c.ShowLegend = ptr(*t.ShowLegend)
	}
	c.Line = t.Line.clone()
	c.Marker = t.Marker.clone()
	c.Increasing = t.Increasing.clone()
	c.Decreasing = t.Decreasing.clone()
	return c
}

func (t *TraceSpec) line() *Line {
	if t.Line == nil {
		t.Line = &Line{}
	}
	return t.Line
}

func (t *TraceSpec) marker() *Marker {
	if t.Marker == nil {
		t.Marker = &Marker{}
	}
	return t.Marker
}

func direction(d **Direction) *Direction {
	if *d == nil {
		*d = &Direction{}
	}
	if (*d).Line == nil {
		(*d).Line = &Line{}
	}
	return *d
}

func ptr[T any](v T) *T { return &v }
