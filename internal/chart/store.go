package chart

import (
	"fmt"
	"math"
	"slices"
	"time"

	"QuantChart/internal/indicator"
	"QuantChart/internal/model"
)

// Tier selects where an indicator is drawn.
type Tier int

const (
	// Primary indicators overlay the price axis.
	Primary Tier = iota
	// Secondary indicators each get a stacked sub-axis below the price panel.
	Secondary
)

func (t Tier) String() string {
	if t == Secondary {
		return "secondary"
	}
	return "primary"
}

// Style is the drawing metadata of an indicator. Kind names a trace
// skeleton of the theme; Color and FillColor are theme color keys.
type Style struct {
	Kind      string
	Color     string
	FillColor string
}

// Entry is an attached indicator with values aligned to the indicator index.
type Entry struct {
	Name   string
	Style  Style
	Values []float64
}

type registry struct {
	order  []string
	styles map[string]Style
}

func (r *registry) has(name string) bool {
	_, ok := r.styles[name]
	return ok
}

func (r *registry) put(name string, s Style) {
	if r.styles == nil {
		r.styles = make(map[string]Style)
	}
	if !r.has(name) {
		r.order = append(r.order, name)
	}
	r.styles[name] = s
}

// AddPrimary attaches series as an overlay on the price axis. A primary
// entry of the same name is replaced in place.
func (c *Chart) AddPrimary(name string, s indicator.Series, style Style) error {
	return c.add(Primary, name, s, style)
}

// AddSecondary attaches series on its own stacked sub-axis. A secondary
// entry of the same name is replaced in place.
func (c *Chart) AddSecondary(name string, s indicator.Series, style Style) error {
	return c.add(Secondary, name, s, style)
}

func (c *Chart) add(tier Tier, name string, s indicator.Series, style Style) error {
	if name == "" {
		return fmt.Errorf("%w: indicator name is empty", model.ErrConfiguration)
	}
	if style.Kind == "" || style.Color == "" {
		return fmt.Errorf("%w: indicator %q needs a trace kind and a color key", model.ErrConfiguration, name)
	}
	own, other, otherTier := &c.primary, &c.secondary, Secondary
	if tier == Secondary {
		own, other, otherTier = other, own, Primary
	}
	if other.has(name) {
		return fmt.Errorf("%w: %q is already a %s indicator", model.ErrTierConflict, name, otherTier)
	}
	values, err := c.align(s)
	if err != nil {
		return fmt.Errorf("indicator %q: %w", name, err)
	}
	own.put(name, style)
	c.indValues[name] = values
	return nil
}

// align maps s onto the indicator index. Rows s has no value for are NaN.
func (c *Chart) align(s indicator.Series) ([]float64, error) {
	if s.Index == nil {
		if len(s.Values) != len(c.indIndex) {
			return nil, fmt.Errorf("%w: %d values for %d index rows and no index to align on",
				model.ErrInsufficientData, len(s.Values), len(c.indIndex))
		}
		return slices.Clone(s.Values), nil
	}
	if len(s.Index) != len(s.Values) {
		return nil, fmt.Errorf("series has %d index entries and %d values", len(s.Index), len(s.Values))
	}
	pos := make(map[int64]int, len(s.Index))
	for i, t := range s.Index {
		pos[t.UnixNano()] = i
	}
	out := make([]float64, len(c.indIndex))
	for i, t := range c.indIndex {
		if j, ok := pos[t.UnixNano()]; ok {
			out[i] = s.Values[j]
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

func (c *Chart) entries(r *registry) []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Entry{Name: name, Style: r.styles[name], Values: c.indValues[name]})
	}
	return out
}

// Primary returns primary indicators in registration order.
func (c *Chart) Primary() []Entry { return c.entries(&c.primary) }

// Secondary returns secondary indicators in registration order.
func (c *Chart) Secondary() []Entry { return c.entries(&c.secondary) }

// IndicatorIndex returns the time index indicator values are aligned to.
func (c *Chart) IndicatorIndex() []time.Time { return c.indIndex }
