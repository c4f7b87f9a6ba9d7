package figure

import (
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"QuantChart/internal/model"
)

// Options are the caller's settings for one assembly. Nil pointers and
// empty strings mean unset and get defaults from the chart.
type Options struct {
	Kind        string
	Volume      *bool
	Theme       string
	Layout      *LayoutSpec
	Title       *string
	Subtitle    *bool
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

// figsizeScale converts a figsize in inches to pixels.
const figsizeScale = 80

var optionKeys = map[string]bool{
	"type": true, "volume": true, "theme": true, "layout": true,
	"title": true, "subtitle": true, "hovermode": true, "legend": true,
	"annotations": true, "shapes": true, "dimensions": true,
	"width": true, "height": true, "margin": true,
	// aliases
	"kind": true, "showlegend": true, "figsize": true,
}

// ParseOptions builds Options from a loosely typed option map, such as one
// read from a config file. Unknown keys fail with ErrUnsupportedOption and
// wrongly typed values with ErrTypeMismatch. The aliases kind, showlegend
// and figsize resolve to type, legend and dimensions (figsize is scaled by 80).
func ParseOptions(raw map[string]any) (Options, error) {
	var o Options
	keys := make([]string, 0, len(raw))
	for k := range raw {
		if !optionKeys[k] {
			return Options{}, fmt.Errorf("%w: invalid keyword %q", model.ErrUnsupportedOption, k)
		}
		keys = append(keys, k)
	}
	// aliases are applied after their canonical keys so they win
	sort.Strings(keys)
	sort.SliceStable(keys, func(i, j int) bool { return aliasRank(keys[i]) < aliasRank(keys[j]) })

	for _, k := range keys {
		v := raw[k]
		if v == nil {
			continue
		}
		if err := o.set(k, v); err != nil {
			return Options{}, err
		}
	}
	return o, nil
}

func aliasRank(k string) int {
	switch k {
	case "kind", "showlegend", "figsize":
		return 1
	}
	return 0
}

func mismatch(key string, v any, want string) error {
	return fmt.Errorf("%w: invalid %s %v (%T), it should be %s", model.ErrTypeMismatch, key, v, v, want)
}

func (o *Options) set(key string, v any) error {
	switch key {
	case "type", "kind":
		s, ok := v.(string)
		if !ok {
			return mismatch(key, v, "a string")
		}
		o.Kind = s
	case "volume", "subtitle":
		b, ok := v.(bool)
		if !ok {
			return mismatch(key, v, "a bool")
		}
		if key == "volume" {
			o.Volume = &b
		} else {
			o.Subtitle = &b
		}
	case "theme":
		s, ok := v.(string)
		if !ok {
			return mismatch(key, v, "a string")
		}
		o.Theme = s
	case "title":
		s, ok := v.(string)
		if !ok {
			return mismatch(key, v, "a string")
		}
		o.Title = &s
	case "hovermode":
		switch h := v.(type) {
		case string:
			o.HoverMode = HoverMode(h)
		case HoverMode:
			o.HoverMode = h
		case bool:
			if h {
				return mismatch(key, v, "x, y, closest or false")
			}
			o.HoverMode = HoverOff
		default:
			return mismatch(key, v, "x, y, closest or false")
		}
	case "legend", "showlegend":
		switch l := v.(type) {
		case bool:
			o.Legend = &l
		case *Legend:
			o.LegendSpec = l
		case Legend:
			o.LegendSpec = &l
		case map[string]any:
			var spec Legend
			if err := decode(l, &spec); err != nil {
				return mismatch(key, v, "a bool or a legend map")
			}
			o.LegendSpec = &spec
		default:
			return mismatch(key, v, "a bool or a legend map")
		}
	case "layout":
		switch l := v.(type) {
		case *LayoutSpec:
			o.Layout = l
		case LayoutSpec:
			o.Layout = &l
		case map[string]any:
			var spec LayoutSpec
			if err := decode(l, &spec); err != nil {
				return fmt.Errorf("%w: invalid layout: %v", model.ErrTypeMismatch, err)
			}
			o.Layout = &spec
		default:
			return mismatch(key, v, "a layout map")
		}
	case "annotations":
		if a, ok := v.([]Annotation); ok {
			o.Annotations = a
			return nil
		}
		if err := decode(v, &o.Annotations); err != nil {
			return mismatch(key, v, "a list of annotations")
		}
	case "shapes":
		if s, ok := v.([]Shape); ok {
			o.Shapes = s
			return nil
		}
		if err := decode(v, &o.Shapes); err != nil {
			return mismatch(key, v, "a list of shapes")
		}
	case "dimensions", "figsize":
		scale := 1.0
		if key == "figsize" {
			scale = figsizeScale
		}
		pair, ok := numbers(v)
		if !ok || len(pair) != 2 {
			return mismatch(key, v, "a (width, height) pair")
		}
		o.Dimensions = &[2]int{int(math.Round(pair[0] * scale)), int(math.Round(pair[1] * scale))}
	case "width", "height":
		n, ok := number(v)
		if !ok || n <= 0 {
			return mismatch(key, v, "a positive integer")
		}
		if key == "width" {
			o.Width = int(n)
		} else {
			o.Height = int(n)
		}
	case "margin":
		return o.setMargin(v)
	}
	return nil
}

// setMargin accepts a margin map or an (l, r, b, t[, pad]) tuple.
func (o *Options) setMargin(v any) error {
	switch m := v.(type) {
	case Margin:
		o.Margin = &m
		return nil
	case *Margin:
		o.Margin = m
		return nil
	case map[string]any:
		var spec Margin
		if err := decode(m, &spec); err != nil {
			return mismatch("margin", v, "a margin map")
		}
		o.Margin = &spec
		return nil
	}
	vals, ok := numbers(v)
	if !ok || (len(vals) != 4 && len(vals) != 5) {
		return mismatch("margin", v, "a margin map or an (l, r, b, t[, pad]) tuple")
	}
	spec := Margin{L: int(vals[0]), R: int(vals[1]), B: int(vals[2]), T: int(vals[3])}
	if len(vals) == 5 {
		spec.Pad = int(vals[4])
	}
	o.Margin = &spec
	return nil
}

// decode converts a loosely typed value into out through its yaml form.
func decode(v any, out any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func numbers(v any) ([]float64, bool) {
	var items []any
	switch s := v.(type) {
	case [2]int:
		return []float64{float64(s[0]), float64(s[1])}, true
	case []int:
		for _, n := range s {
			items = append(items, n)
		}
	case []float64:
		for _, n := range s {
			items = append(items, n)
		}
	case []any:
		items = s
	default:
		return nil, false
	}
	out := make([]float64, len(items))
	for i, it := range items {
		n, ok := number(it)
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// overrides returns the layout settings handed to the template provider.
func (o Options) overrides(title string) Overrides {
	return Overrides{
		Layout:      o.Layout,
		Title:       title,
		HoverMode:   o.HoverMode,
		Legend:      o.Legend,
		LegendSpec:  o.LegendSpec,
		Annotations: o.Annotations,
		Shapes:      o.Shapes,
		Dimensions:  o.Dimensions,
		Width:       o.Width,
		Height:      o.Height,
		Margin:      o.Margin,
	}
}
