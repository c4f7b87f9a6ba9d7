package figure

import (
	"fmt"
	"slices"

	"QuantChart/internal/model"
)

// Additions are the axis skeletons the assembler copies into the layout.
type Additions struct {
	XAxis Axis `yaml:"xaxis"`
	YAxis Axis `yaml:"yaxis"`
}

// Template is a resolved theme: a color palette keyed by role, a trace
// skeleton per geometry kind, axis skeletons and a layout skeleton that
// already carries the caller's overrides.
type Template struct {
	Colors    map[string]string    `yaml:"colors"`
	Traces    map[string]TraceSpec `yaml:"traces"`
	Additions Additions            `yaml:"additions"`
	Layout    LayoutSpec           `yaml:"layout"`
}

// Color returns the palette entry for key.
func (t *Template) Color(key string) (string, error) {
	c, ok := t.Colors[key]
	if !ok {
		return "", fmt.Errorf("%w: theme has no color %q", model.ErrConfiguration, key)
	}
	return c, nil
}

// Trace returns a copy of the skeleton for kind.
func (t *Template) Trace(kind string) (TraceSpec, error) {
	tr, ok := t.Traces[kind]
	if !ok {
		return TraceSpec{}, fmt.Errorf("%w: theme has no trace skeleton %q", model.ErrUnsupportedOption, kind)
	}
	return tr.Clone(), nil
}

// Overrides are the caller's layout settings a TemplateProvider merges
// into its layout skeleton.
type Overrides struct {
	Layout      *LayoutSpec
	Title       string
	HoverMode   HoverMode
	Legend      *bool
	LegendSpec  *Legend
	Annotations []Annotation
	Shapes      []Shape
	Dimensions  *[2]int
	Width       int
	Height      int
	Margin      *Margin
}

// Apply merges o into l. Explicit sizes turn autosize off. The caller's
// full layout is merged last so it wins over every other override.
func (o Overrides) Apply(l *LayoutSpec) {
	l.Title = o.Title
	if o.HoverMode != "" {
		l.HoverMode = o.HoverMode
	}
	if o.Legend != nil {
		l.ShowLegend = ptr(*o.Legend)
	}
	if o.LegendSpec != nil {
		if l.Legend == nil {
			l.Legend = &Legend{}
		}
		l.Legend.Merge(o.LegendSpec)
		l.ShowLegend = ptr(true)
	}
	if o.Annotations != nil {
		l.Annotations = slices.Clone(o.Annotations)
	}
	if o.Shapes != nil {
		l.Shapes = slices.Clone(o.Shapes)
	}
	if o.Dimensions != nil {
		l.Width, l.Height = o.Dimensions[0], o.Dimensions[1]
		l.Autosize = ptr(false)
	}
	if o.Width > 0 {
		l.Width = o.Width
		l.Autosize = ptr(false)
	}
	if o.Height > 0 {
		l.Height = o.Height
		l.Autosize = ptr(false)
	}
	if o.Margin != nil {
		m := *o.Margin
		l.Margin = &m
	}
	l.Merge(o.Layout)
}

// TemplateProvider resolves a theme identifier into a Template with the
// overrides applied. An empty id selects the provider's default theme.
// Every call must return a Template the caller may modify freely.
type TemplateProvider interface {
	Template(themeID string, o Overrides) (*Template, error)
}
