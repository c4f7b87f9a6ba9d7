package chart

import (
	"fmt"
	"strconv"
	"strings"

	"QuantChart/internal/model"
)

// study describes how an indicator's outputs are named, tiered and styled.
type study struct {
	tier     Tier
	defaults []int
	styles   map[string]Style // keyed by output name; "" for single-output indicators
}

var studies = map[string]study{
	"SMA": {
		tier:     Primary,
		defaults: []int{20},
		styles:   map[string]Style{"": {Kind: "line", Color: "secondary"}},
	},
	"EMA": {
		tier:     Primary,
		defaults: []int{20},
		styles:   map[string]Style{"": {Kind: "line", Color: "tertiary"}},
	},
	"WMA": {
		tier:     Primary,
		defaults: []int{20},
		styles:   map[string]Style{"": {Kind: "line", Color: "quaternary"}},
	},
	"DEMA": {
		tier:     Primary,
		defaults: []int{20},
		styles:   map[string]Style{"": {Kind: "line_thin", Color: "secondary"}},
	},
	"TEMA": {
		tier:     Primary,
		defaults: []int{20},
		styles:   map[string]Style{"": {Kind: "line_thin", Color: "tertiary"}},
	},
	"KAMA": {
		tier:     Primary,
		defaults: []int{20},
		styles:   map[string]Style{"": {Kind: "line_dashed", Color: "quaternary"}},
	},
	"TRIMA": {
		tier:     Primary,
		defaults: []int{20},
		styles:   map[string]Style{"": {Kind: "line_dashed", Color: "secondary"}},
	},
	// MA params are period and a TA-Lib type: 0 SMA, 1 EMA, 2 WMA, 3 DEMA,
	// 4 TEMA, 5 TRIMA, 6 KAMA.
	"MA": {
		tier:     Primary,
		defaults: []int{20, 0},
		styles:   map[string]Style{"": {Kind: "line", Color: "grey_strong"}},
	},
	"BBANDS": {
		tier:     Primary,
		defaults: []int{20, 2},
		styles: map[string]Style{
			"upper":  {Kind: "line_dashed_thin", Color: "grey"},
			"middle": {Kind: "line_dashed_thin", Color: "grey_strong"},
			"lower":  {Kind: "area_dashed_thin", Color: "grey", FillColor: "fill"},
		},
	},
	"RANGE": {
		tier:     Primary,
		defaults: []int{252},
		styles: map[string]Style{
			"high": {Kind: "line_dashed", Color: "increasing"},
			"low":  {Kind: "line_dashed", Color: "decreasing"},
		},
	},
	"RSI": {
		tier:     Secondary,
		defaults: []int{14},
		styles:   map[string]Style{"": {Kind: "line_thin", Color: "secondary"}},
	},
	"MACD": {
		tier:     Secondary,
		defaults: []int{12, 26},
		styles:   map[string]Style{"": {Kind: "area_threshold", Color: "quaternary", FillColor: "fill_light"}},
	},
	"ATR": {
		tier:     Secondary,
		defaults: []int{14},
		styles:   map[string]Style{"": {Kind: "line_thin", Color: "tertiary"}},
	},
}

// Studies returns the names AddStudy accepts.
func Studies() []string {
	out := make([]string, 0, len(studies))
	for name := range studies {
		out = append(out, name)
	}
	return out
}

// AddStudy computes the named indicator with the chart's provider and
// attaches every output in the study's tier. Missing params fall back to
// the study defaults. Outputs are named like "SMA(20)" or "BBANDS(20,2) upper".
func (c *Chart) AddStudy(name string, params ...int) error {
	key := strings.ToUpper(name)
	st, ok := studies[key]
	if !ok {
		return fmt.Errorf("%w: unknown study %q", model.ErrUnsupportedOption, name)
	}
	if c.provider == nil {
		return fmt.Errorf("%w: chart has no indicator provider", model.ErrConfiguration)
	}
	full := make([]int, len(st.defaults))
	for i := range full {
		full[i] = st.defaults[i]
		if i < len(params) && params[i] != 0 {
			full[i] = params[i]
		}
	}
	outputs, err := c.provider.Compute(key, c.input(), full...)
	if err != nil {
		return fmt.Errorf("compute %s: %w", key, err)
	}

	label := key + "(" + joinInts(full) + ")"
	for _, out := range outputs {
		style, ok := st.styles[out.Name]
		if !ok {
			return fmt.Errorf("%w: study %s has no style for output %q", model.ErrConfiguration, key, out.Name)
		}
		entry := label
		if out.Name != "" {
			entry += " " + out.Name
		}
		if st.tier == Secondary {
			err = c.AddSecondary(entry, out, style)
		} else {
			err = c.AddPrimary(entry, out, style)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// AddSMA adds a simple moving average overlay.
func (c *Chart) AddSMA(period int) error { return c.AddStudy("SMA", period) }

// AddEMA adds an exponential moving average overlay.
func (c *Chart) AddEMA(period int) error { return c.AddStudy("EMA", period) }

// AddWMA adds a linearly weighted moving average overlay.
func (c *Chart) AddWMA(period int) error { return c.AddStudy("WMA", period) }

// AddDEMA adds a double exponential moving average overlay.
func (c *Chart) AddDEMA(period int) error { return c.AddStudy("DEMA", period) }

// AddTEMA adds a triple exponential moving average overlay.
func (c *Chart) AddTEMA(period int) error { return c.AddStudy("TEMA", period) }

// AddKAMA adds a Kaufman adaptive moving average overlay.
func (c *Chart) AddKAMA(period int) error { return c.AddStudy("KAMA", period) }

// AddTRIMA adds a triangular moving average overlay.
func (c *Chart) AddTRIMA(period int) error { return c.AddStudy("TRIMA", period) }

// AddMA adds a moving average of the given type overlay.
func (c *Chart) AddMA(period, maType int) error { return c.AddStudy("MA", period, maType) }

// AddBBANDS adds Bollinger bands at sigma standard deviations.
func (c *Chart) AddBBANDS(period, sigma int) error { return c.AddStudy("BBANDS", period, sigma) }

// AddRange adds the rolling high/low channel over window bars.
func (c *Chart) AddRange(window int) error { return c.AddStudy("RANGE", window) }

// AddRSI adds a relative strength index sub-plot.
func (c *Chart) AddRSI(period int) error { return c.AddStudy("RSI", period) }

// AddMACD adds a MACD line sub-plot.
func (c *Chart) AddMACD(fast, slow int) error { return c.AddStudy("MACD", fast, slow) }

// AddATR adds an average true range sub-plot.
func (c *Chart) AddATR(period int) error { return c.AddStudy("ATR", period) }
