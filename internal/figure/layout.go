package figure

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// HoverMode controls how hover tooltips are shown.
type HoverMode string

const (
	HoverX       HoverMode = "x"
	HoverY       HoverMode = "y"
	HoverClosest HoverMode = "closest"
	HoverOff     HoverMode = "false"
)

// Valid reports whether m is one of the supported hover modes.
func (m HoverMode) Valid() bool {
	switch m {
	case HoverX, HoverY, HoverClosest, HoverOff:
		return true
	}
	return false
}

func (m HoverMode) MarshalJSON() ([]byte, error) {
	if m == HoverOff {
		return []byte("false"), nil
	}
	return json.Marshal(string(m))
}

func (m *HoverMode) UnmarshalYAML(value *yaml.Node) error {
	var b bool
	if value.ShortTag() == "!!bool" {
		if err := value.Decode(&b); err != nil {
			return err
		}
		if b {
			return fmt.Errorf("hovermode true is not a mode")
		}
		*m = HoverOff
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	*m = HoverMode(s)
	return nil
}

// Font is a text style.
type Font struct {
	Family string  `json:"family,omitempty" yaml:"family"`
	Size   float64 `json:"size,omitempty" yaml:"size"`
	Color  string  `json:"color,omitempty" yaml:"color"`
}

// Merge copies the fields o sets onto f.
func (f *Font) Merge(o *Font) {
	if o == nil {
		return
	}
	if o.Family != "" {
		f.Family = o.Family
	}
	if o.Size != 0 {
		f.Size = o.Size
	}
	if o.Color != "" {
		f.Color = o.Color
	}
}

func (f *Font) clone() *Font {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// Legend positions the legend box in paper coordinates.
type Legend struct {
	X           *float64 `json:"x,omitempty" yaml:"x"`
	Y           *float64 `json:"y,omitempty" yaml:"y"`
	XAnchor     string   `json:"xanchor,omitempty" yaml:"xanchor"`
	YAnchor     string   `json:"yanchor,omitempty" yaml:"yanchor"`
	Orientation string   `json:"orientation,omitempty" yaml:"orientation"`
	BgColor     string   `json:"bgcolor,omitempty" yaml:"bgcolor"`
	Font        *Font    `json:"font,omitempty" yaml:"font"`
}

// Merge copies the fields o sets onto l.
func (l *Legend) Merge(o *Legend) {
	if o == nil {
		return
	}
	if o.X != nil {
		l.X = ptr(*o.X)
	}
	if o.Y != nil {
		l.Y = ptr(*o.Y)
	}
	if o.XAnchor != "" {
		l.XAnchor = o.XAnchor
	}
	if o.YAnchor != "" {
		l.YAnchor = o.YAnchor
	}
	if o.Orientation != "" {
		l.Orientation = o.Orientation
	}
	if o.BgColor != "" {
		l.BgColor = o.BgColor
	}
	if o.Font != nil {
		if l.Font == nil {
			l.Font = &Font{}
		}
		l.Font.Merge(o.Font)
	}
}

func (l *Legend) clone() *Legend {
	if l == nil {
		return nil
	}
	c := *l
	if l.X != nil {
		c.X = ptr(*l.X)
	}
	if l.Y != nil {
		c.Y = ptr(*l.Y)
	}
	c.Font = l.Font.clone()
	return &c
}

// Margin is the plot margin in pixels.
type Margin struct {
	L   int `json:"l" yaml:"l"`
	R   int `json:"r" yaml:"r"`
	B   int `json:"b" yaml:"b"`
	T   int `json:"t" yaml:"t"`
	Pad int `json:"pad,omitempty" yaml:"pad"`
}

// RangeSlider toggles the range slider under a date axis.
type RangeSlider struct {
	Visible bool `json:"visible" yaml:"visible"`
}

// Axis is an x or y axis. Domain is the vertical (or horizontal) fraction
// of the plot area the axis spans.
type Axis struct {
	Domain      []float64    `json:"domain,omitempty" yaml:"domain"`
	Type        string       `json:"type,omitempty" yaml:"type"`
	Title       string       `json:"title,omitempty" yaml:"title"`
	Side        string       `json:"side,omitempty" yaml:"side"`
	Anchor      string       `json:"anchor,omitempty" yaml:"anchor"`
	ShowGrid    *bool        `json:"showgrid,omitempty" yaml:"showgrid"`
	GridColor   string       `json:"gridcolor,omitempty" yaml:"gridcolor"`
	ZeroLine    *bool        `json:"zeroline,omitempty" yaml:"zeroline"`
	ShowLine    *bool        `json:"showline,omitempty" yaml:"showline"`
	LineColor   string       `json:"linecolor,omitempty" yaml:"linecolor"`
	TickFormat  string       `json:"tickformat,omitempty" yaml:"tickformat"`
	TickFont    *Font        `json:"tickfont,omitempty" yaml:"tickfont"`
	RangeSlider *RangeSlider `json:"rangeslider,omitempty" yaml:"rangeslider"`
}

// Clone returns a deep copy of a.
func (a *Axis) Clone() *Axis {
	if a == nil {
		return nil
	}
	c := *a
	c.Domain = slices.Clone(a.Domain)
	c.TickFont = a.TickFont.clone()
	if a.RangeSlider != nil {
		rs := *a.RangeSlider
		c.RangeSlider = &rs
	}
	return &c
}

// Merge copies the fields o sets onto a.
func (a *Axis) Merge(o *Axis) {
	if o == nil {
		return
	}
	if o.Domain != nil {
		a.Domain = slices.Clone(o.Domain)
	}
	for _, f := range []struct{ dst, src *string }{
		{&a.Type, &o.Type}, {&a.Title, &o.Title}, {&a.Side, &o.Side},
		{&a.Anchor, &o.Anchor}, {&a.GridColor, &o.GridColor},
		{&a.LineColor, &o.LineColor}, {&a.TickFormat, &o.TickFormat},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
	if o.ShowGrid != nil {
		a.ShowGrid = ptr(*o.ShowGrid)
	}
	if o.ZeroLine != nil {
		a.ZeroLine = ptr(*o.ZeroLine)
	}
	if o.ShowLine != nil {
		a.ShowLine = ptr(*o.ShowLine)
	}
	if o.TickFont != nil {
		if a.TickFont == nil {
			a.TickFont = &Font{}
		}
		a.TickFont.Merge(o.TickFont)
	}
	if o.RangeSlider != nil {
		rs := *o.RangeSlider
		a.RangeSlider = &rs
	}
}

// Annotation is a text label. X and Y are numbers in paper coordinates or
// data values when the matching ref names an axis.
type Annotation struct {
	X         any    `json:"x" yaml:"x"`
	Y         any    `json:"y" yaml:"y"`
	XRef      string `json:"xref,omitempty" yaml:"xref"`
	YRef      string `json:"yref,omitempty" yaml:"yref"`
	XAnchor   string `json:"xanchor,omitempty" yaml:"xanchor"`
	YAnchor   string `json:"yanchor,omitempty" yaml:"yanchor"`
	Text      string `json:"text" yaml:"text"`
	ShowArrow bool   `json:"showarrow" yaml:"showarrow"`
	Font      *Font  `json:"font,omitempty" yaml:"font"`
}

// Shape is a line, rectangle or circle drawn over the plot.
type Shape struct {
	Type      string  `json:"type" yaml:"type"`
	XRef      string  `json:"xref,omitempty" yaml:"xref"`
	YRef      string  `json:"yref,omitempty" yaml:"yref"`
	X0        any     `json:"x0" yaml:"x0"`
	X1        any     `json:"x1" yaml:"x1"`
	Y0        any     `json:"y0" yaml:"y0"`
	Y1        any     `json:"y1" yaml:"y1"`
	Line      *Line   `json:"line,omitempty" yaml:"line"`
	FillColor string  `json:"fillcolor,omitempty" yaml:"fillcolor"`
	Opacity   float64 `json:"opacity,omitempty" yaml:"opacity"`
	Layer     string  `json:"layer,omitempty" yaml:"layer"`
}

// LayoutSpec is the figure layout. YAxes[0] is the price axis ("yaxis"),
// YAxes[1] is "yaxis2" and so on.
type LayoutSpec struct {
	Title        string       `json:"title,omitempty" yaml:"title"`
	ShowLegend   *bool        `json:"showlegend,omitempty" yaml:"showlegend"`
	Legend       *Legend      `json:"legend,omitempty" yaml:"legend"`
	HoverMode    HoverMode    `json:"hovermode,omitempty" yaml:"hovermode"`
	Annotations  []Annotation `json:"annotations,omitempty" yaml:"annotations"`
	Shapes       []Shape      `json:"shapes,omitempty" yaml:"shapes"`
	Autosize     *bool        `json:"autosize,omitempty" yaml:"autosize"`
	Width        int          `json:"width,omitempty" yaml:"width"`
	Height       int          `json:"height,omitempty" yaml:"height"`
	Margin       *Margin      `json:"margin,omitempty" yaml:"margin"`
	PaperBgColor string       `json:"paper_bgcolor,omitempty" yaml:"paper_bgcolor"`
	PlotBgColor  string       `json:"plot_bgcolor,omitempty" yaml:"plot_bgcolor"`
	Font         *Font        `json:"font,omitempty" yaml:"font"`
	BarGap       float64      `json:"bargap,omitempty" yaml:"bargap"`
	XAxis        *Axis        `json:"xaxis,omitempty" yaml:"xaxis"`
	YAxes        []*Axis      `json:"-" yaml:"-"`
}

// YAxis returns the n-th y axis (1-based), or nil.
func (l *LayoutSpec) YAxis(n int) *Axis {
	if n < 1 || n > len(l.YAxes) {
		return nil
	}
	return l.YAxes[n-1]
}

// SetYAxis sets the n-th y axis (1-based), growing YAxes as needed.
func (l *LayoutSpec) SetYAxis(n int, a *Axis) {
	if n < 1 {
		return
	}
	for len(l.YAxes) < n {
		l.YAxes = append(l.YAxes, nil)
	}
	l.YAxes[n-1] = a
}

// Clone returns a deep copy of l.
func (l *LayoutSpec) Clone() LayoutSpec {
	c := *l
	if l.ShowLegend != nil {
		c.ShowLegend = ptr(*l.ShowLegend)
	}
	if l.Autosize != nil {
		c.Autosize = ptr(*l.Autosize)
	}
	c.Legend = l.Legend.clone()
	c.Annotations = slices.Clone(l.Annotations)
	c.Shapes = slices.Clone(l.Shapes)
	if l.Margin != nil {
		m := *l.Margin
		c.Margin = &m
	}
	c.Font = l.Font.clone()
	c.XAxis = l.XAxis.Clone()
	c.YAxes = nil
	for i, a := range l.YAxes {
		c.SetYAxis(i+1, a.Clone())
	}
	return c
}

// Merge applies o over l. Every field o sets wins; nested legend, font and
// axes merge field by field. Annotations, shapes and margin are replaced.
func (l *LayoutSpec) Merge(o *LayoutSpec) {
	if o == nil {
		return
	}
	if o.Title != "" {
		l.Title = o.Title
	}
	if o.ShowLegend != nil {
		l.ShowLegend = ptr(*o.ShowLegend)
	}
	if o.Legend != nil {
		if l.Legend == nil {
			l.Legend = &Legend{}
		}
		l.Legend.Merge(o.Legend)
	}
	if o.HoverMode != "" {
		l.HoverMode = o.HoverMode
	}
	if o.Annotations != nil {
		l.Annotations = slices.Clone(o.Annotations)
	}
	if o.Shapes != nil {
		l.Shapes = slices.Clone(o.Shapes)
	}
	if o.Autosize != nil {
		l.Autosize = ptr(*o.Autosize)
	}
	if o.Width != 0 {
		l.Width = o.Width
	}
	if o.Height != 0 {
		l.Height = o.Height
	}
	if o.Margin != nil {
		m := *o.Margin
		l.Margin = &m
	}
	if o.PaperBgColor != "" {
		l.PaperBgColor = o.PaperBgColor
	}
	if o.PlotBgColor != "" {
		l.PlotBgColor = o.PlotBgColor
	}
	if o.Font != nil {
		if l.Font == nil {
			l.Font = &Font{}
		}
		l.Font.Merge(o.Font)
	}
	if o.BarGap != 0 {
		l.BarGap = o.BarGap
	}
	if o.XAxis != nil {
		if l.XAxis == nil {
			l.XAxis = &Axis{}
		}
		l.XAxis.Merge(o.XAxis)
	}
	for i, a := range o.YAxes {
		if a == nil {
			continue
		}
		dst := l.YAxis(i + 1)
		if dst == nil {
			dst = &Axis{}
			l.SetYAxis(i+1, dst)
		}
		dst.Merge(a)
	}
}

// yAxisKey returns the layout key of the n-th y axis.
func yAxisKey(n int) string {
	if n == 1 {
		return "yaxis"
	}
	return "yaxis" + strconv.Itoa(n)
}

// yAxisNumber parses "yaxis", "yaxis1", "yaxis2", ...
func yAxisNumber(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "yaxis")
	if !ok {
		return 0, false
	}
	if rest == "" {
		return 1, true
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (l LayoutSpec) MarshalJSON() ([]byte, error) {
	type plain LayoutSpec
	base, err := json.Marshal(plain(l))
	if err != nil || len(l.YAxes) == 0 {
		return base, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for i, a := range l.YAxes {
		if a == nil {
			continue
		}
		raw, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		fields[yAxisKey(i+1)] = raw
	}
	return json.Marshal(fields)
}

func (l *LayoutSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain LayoutSpec
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*l = LayoutSpec(p)
	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		n, ok := yAxisNumber(key)
		if !ok {
			continue
		}
		var a Axis
		if err := value.Content[i+1].Decode(&a); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		l.SetYAxis(n, &a)
	}
	return nil
}
