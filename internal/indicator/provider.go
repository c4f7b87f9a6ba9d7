// Package indicator computes technical indicator series from price columns.
package indicator

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"QuantChart/internal/model"
)

// Input is the price data an indicator reads. Columns the chart does not
// have are nil.
type Input struct {
	Index  []time.Time
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// Series is one output line. Index is a suffix of Input.Index once
// warm-up rows are dropped. Name distinguishes multi-output indicators
// ("upper", "lower") and is empty for single-output ones.
type Series struct {
	Name   string
	Index  []time.Time
	Values []float64
}

// Provider computes named indicators.
type Provider interface {
	Compute(name string, in Input, params ...int) ([]Series, error)
}

// Func computes one indicator.
type Func func(in Input, params []int) ([]Series, error)

// Registry is a Provider backed by registered functions.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Default returns a Registry with every built-in indicator.
func Default() *Registry {
	r := NewRegistry()
	r.Register("SMA", techanSMA)
	r.Register("EMA", techanEMA)
	r.Register("BBANDS", techanBollinger)
	r.Register("MACD", techanMACD)
	r.Register("ATR", techanATR)
	r.Register("RSI", wilderRSI)
	r.Register("RANGE", techanRange)
	r.Register("WMA", nativeWMA)
	r.Register("DEMA", techanDEMA)
	r.Register("TEMA", techanTEMA)
	r.Register("TRIMA", techanTRIMA)
	r.Register("KAMA", kaufmanKAMA)
	r.Register("MA", movingAverage)
	return r
}

// MA types accepted by the MA indicator, numbered as in TA-Lib.
var maTypes = []Func{
	0: techanSMA,
	1: techanEMA,
	2: nativeWMA,
	3: techanDEMA,
	4: techanTEMA,
	5: techanTRIMA,
	6: kaufmanKAMA,
}

// movingAverage dispatches on a type selector. params: [period=20, type=0].
func movingAverage(in Input, params []int) ([]Series, error) {
	period := param(params, 0, 20)
	kind := 0
	if len(params) > 1 {
		kind = params[1]
	}
	if kind < 0 || kind >= len(maTypes) {
		return nil, fmt.Errorf("%w: unknown moving average type %d", model.ErrUnsupportedOption, kind)
	}
	return maTypes[kind](in, []int{period})
}

// Register adds or replaces fn under name (case-insensitive).
func (r *Registry) Register(name string, fn Func) {
	r.funcs[strings.ToUpper(name)] = fn
}

// Names returns the registered indicator names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Compute runs the named indicator.
func (r *Registry) Compute(name string, in Input, params ...int) ([]Series, error) {
	fn, ok := r.funcs[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown indicator %q", model.ErrUnsupportedOption, name)
	}
	return fn(in, params)
}

func param(params []int, i, def int) int {
	if i < len(params) && params[i] != 0 {
		return params[i]
	}
	return def
}

func requirePositive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return nil
}

func requireColumns(in Input, need ...string) error {
	for _, n := range need {
		var col []float64
		switch n {
		case "open":
			col = in.Open
		case "high":
			col = in.High
		case "low":
			col = in.Low
		case "close":
			col = in.Close
		case "volume":
			col = in.Volume
		}
		if col == nil {
			return fmt.Errorf("%w: indicator needs %s data", model.ErrInsufficientData, n)
		}
	}
	return nil
}

// trim drops the first warmup rows and returns the rest as a Series.
func trim(name string, index []time.Time, values []float64, warmup int) Series {
	if warmup > len(values) {
		warmup = len(values)
	}
	if warmup < 0 {
		warmup = 0
	}
	out := Series{
		Name:   name,
		Index:  make([]time.Time, len(values)-warmup),
		Values: make([]float64, len(values)-warmup),
	}
	copy(out.Index, index[warmup:])
	copy(out.Values, values[warmup:])
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
