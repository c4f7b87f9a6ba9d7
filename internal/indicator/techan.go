package indicator

import (
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

func timeSeries(in Input) *techan.TimeSeries {
	ts := techan.NewTimeSeries()
	for i, t := range in.Index {
		c := techan.NewCandle(techan.TimePeriod{Start: t, End: t})
		if in.Open != nil {
			c.OpenPrice = big.NewDecimal(in.Open[i])
		}
		if in.High != nil {
			c.MaxPrice = big.NewDecimal(in.High[i])
		}
		if in.Low != nil {
			c.MinPrice = big.NewDecimal(in.Low[i])
		}
		if in.Close != nil {
			c.ClosePrice = big.NewDecimal(in.Close[i])
		}
		if in.Volume != nil {
			c.Volume = big.NewDecimal(in.Volume[i])
		}
		ts.AddCandle(c)
	}
	return ts
}

func evaluate(name string, in Input, ind techan.Indicator, warmup int) Series {
	values := make([]float64, len(in.Index))
	for i := range values {
		values[i] = ind.Calculate(i).Float()
	}
	return trim(name, in.Index, values, warmup)
}

// techanSMA params: [period=20].
func techanSMA(in Input, params []int) ([]Series, error) {
	if err := requireColumns(in, "close"); err != nil {
		return nil, err
	}
	period := param(params, 0, 20)
	if err := requirePositive("period", period); err != nil {
		return nil, err
	}
	closes := techan.NewClosePriceIndicator(timeSeries(in))
	return []Series{evaluate("", in, techan.NewSimpleMovingAverage(closes, period), period-1)}, nil
}

// techanEMA params: [period=20].
func techanEMA(in Input, params []int) ([]Series, error) {
	if err := requireColumns(in, "close"); err != nil {
		return nil, err
	}
	period := param(params, 0, 20)
	if err := requirePositive("period", period); err != nil {
		return nil, err
	}
	closes := techan.NewClosePriceIndicator(timeSeries(in))
	return []Series{evaluate("", in, techan.NewEMAIndicator(closes, period), period-1)}, nil
}

// techanBollinger params: [period=20, sigma=2].
func techanBollinger(in Input, params []int) ([]Series, error) {
	if err := requireColumns(in, "close"); err != nil {
		return nil, err
	}
	period := param(params, 0, 20)
	sigma := param(params, 1, 2)
	if err := requirePositive("period", period); err != nil {
		return nil, err
	}
	if err := requirePositive("sigma", sigma); err != nil {
		return nil, err
	}
	closes := techan.NewClosePriceIndicator(timeSeries(in))
	return []Series{
		evaluate("upper", in, techan.NewBollingerUpperBandIndicator(closes, period, float64(sigma)), period-1),
		evaluate("middle", in, techan.NewSimpleMovingAverage(closes, period), period-1),
		evaluate("lower", in, techan.NewBollingerLowerBandIndicator(closes, period, float64(sigma)), period-1),
	}, nil
}

// techanMACD params: [fast=12, slow=26].
func techanMACD(in Input, params []int) ([]Series, error) {
	if err := requireColumns(in, "close"); err != nil {
		return nil, err
	}
	fast := param(params, 0, 12)
	slow := param(params, 1, 26)
	if err := requirePositive("fast", fast); err != nil {
		return nil, err
	}
	if err := requirePositive("slow", slow); err != nil {
		return nil, err
	}
	closes := techan.NewClosePriceIndicator(timeSeries(in))
	return []Series{evaluate("", in, techan.NewMACDIndicator(closes, fast, slow), max(fast, slow)-1)}, nil
}

// techanATR params: [period=14].
func techanATR(in Input, params []int) ([]Series, error) {
	if err := requireColumns(in, "high", "low", "close"); err != nil {
		return nil, err
	}
	period := param(params, 0, 14)
	if err := requirePositive("period", period); err != nil {
		return nil, err
	}
	return []Series{evaluate("", in, techan.NewAverageTrueRangeIndicator(timeSeries(in), period), period)}, nil
}

// techanRange tracks the highest high and lowest low over the trailing
// window. params: [window=252], one trading year of daily bars.
func techanRange(in Input, params []int) ([]Series, error) {
	if err := requireColumns(in, "high", "low"); err != nil {
		return nil, err
	}
	window := param(params, 0, 252)
	if err := requirePositive("window", window); err != nil {
		return nil, err
	}
	ts := timeSeries(in)
	return []Series{
		evaluate("high", in, techan.NewMaximumValueIndicator(techan.NewHighPriceIndicator(ts), window), 0),
		evaluate("low", in, techan.NewMinimumValueIndicator(techan.NewLowPriceIndicator(ts), window), 0),
	}, nil
}

// shift moves an indicator along the index: shift{ind, k} at i reads ind
// at i-k and is zero before k.
type shift struct {
	ind techan.Indicator
	by  int
}

func (s shift) Calculate(i int) big.Decimal {
	if i-s.by < 0 {
		return big.ZERO
	}
	return s.ind.Calculate(i - s.by)
}

// restart applies a windowed average to ind from its first valid row, so
// the average seeds on real values instead of warm-up zeros.
func restart(ind techan.Indicator, valid int, avg func(techan.Indicator) techan.Indicator) techan.Indicator {
	return shift{avg(shift{ind, -valid}), valid}
}

// emaChain returns depth EMAs, each smoothing the previous one.
func emaChain(in Input, period, depth int) []techan.Indicator {
	ema := func(ind techan.Indicator) techan.Indicator { return techan.NewEMAIndicator(ind, period) }
	chain := []techan.Indicator{ema(techan.NewClosePriceIndicator(timeSeries(in)))}
	for d := 1; d < depth; d++ {
		chain = append(chain, restart(chain[d-1], d*(period-1), ema))
	}
	return chain
}

func closePeriod(in Input, params []int) (int, error) {
	if err := requireColumns(in, "close"); err != nil {
		return 0, err
	}
	period := param(params, 0, 20)
	return period, requirePositive("period", period)
}

// techanDEMA is 2*EMA - EMA(EMA). params: [period=20].
func techanDEMA(in Input, params []int) ([]Series, error) {
	period, err := closePeriod(in, params)
	if err != nil {
		return nil, err
	}
	e := emaChain(in, period, 2)
	// e1 - (e2 - e1)
	dema := techan.NewDifferenceIndicator(e[0], techan.NewDifferenceIndicator(e[1], e[0]))
	return []Series{evaluate("", in, dema, 2*(period-1))}, nil
}

// techanTEMA is 3*EMA - 3*EMA(EMA) + EMA(EMA(EMA)). params: [period=20].
func techanTEMA(in Input, params []int) ([]Series, error) {
	period, err := closePeriod(in, params)
	if err != nil {
		return nil, err
	}
	e := emaChain(in, period, 3)
	lag := techan.NewDifferenceIndicator(e[1], e[0])
	tema := e[2]
	for i := 0; i < 3; i++ {
		tema = techan.NewDifferenceIndicator(tema, lag)
	}
	return []Series{evaluate("", in, tema, 3*(period-1))}, nil
}

// techanTRIMA is an SMA of an SMA whose two windows add up to period+1.
// params: [period=20].
func techanTRIMA(in Input, params []int) ([]Series, error) {
	period, err := closePeriod(in, params)
	if err != nil {
		return nil, err
	}
	first := (period + 1) / 2
	second := period + 1 - first
	sma := techan.NewSimpleMovingAverage(techan.NewClosePriceIndicator(timeSeries(in)), first)
	trima := restart(sma, first-1, func(ind techan.Indicator) techan.Indicator {
		return techan.NewSimpleMovingAverage(ind, second)
	})
	return []Series{evaluate("", in, trima, period-1)}, nil
}
