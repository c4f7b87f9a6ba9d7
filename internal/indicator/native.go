package indicator

import (
	"math"
)

// wilderRSI computes the Wilder-smoothed RSI for every bar after the first
// period changes. params: [period=14].
func wilderRSI(in Input, params []int) ([]Series, error) {
	if err := requireColumns(in, "close"); err != nil {
		return nil, err
	}
	period := param(params, 0, 14)
	if err := requirePositive("period", period); err != nil {
		return nil, err
	}
	closes := in.Close
	out := nanSlice(len(closes))
	if len(closes) < period+1 {
		return []Series{trim("", in.Index, out, len(out))}, nil
	}

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return []Series{trim("", in.Index, out, period)}, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// nativeWMA weights the last period closes linearly, newest heaviest.
// params: [period=20].
func nativeWMA(in Input, params []int) ([]Series, error) {
	if err := requireColumns(in, "close"); err != nil {
		return nil, err
	}
	period := param(params, 0, 20)
	if err := requirePositive("period", period); err != nil {
		return nil, err
	}
	closes := in.Close
	out := nanSlice(len(closes))
	denom := float64(period*(period+1)) / 2
	for i := period - 1; i < len(closes); i++ {
		var sum float64
		for w := 1; w <= period; w++ {
			sum += float64(w) * closes[i-period+w]
		}
		out[i] = sum / denom
	}
	return []Series{trim("", in.Index, out, period-1)}, nil
}

// kama smoothing constants for the fastest (2 bar) and slowest (30 bar) trend.
const (
	kamaFast = 2.0 / 3.0
	kamaSlow = 2.0 / 31.0
)

// kaufmanKAMA is Kaufman's adaptive moving average. The efficiency ratio
// over period bars scales the smoothing between the 2 and 30 bar EMA
// constants. Seeded with the close at period-1. params: [period=20].
func kaufmanKAMA(in Input, params []int) ([]Series, error) {
	if err := requireColumns(in, "close"); err != nil {
		return nil, err
	}
	period := param(params, 0, 20)
	if err := requirePositive("period", period); err != nil {
		return nil, err
	}
	closes := in.Close
	out := nanSlice(len(closes))
	if len(closes) <= period {
		return []Series{trim("", in.Index, out, len(out))}, nil
	}

	kama := closes[period-1]
	for i := period; i < len(closes); i++ {
		change := math.Abs(closes[i] - closes[i-period])
		var volatility float64
		for j := i - period + 1; j <= i; j++ {
			volatility += math.Abs(closes[j] - closes[j-1])
		}
		er := 1.0
		if volatility > change {
			er = change / volatility
		}
		sc := er*(kamaFast-kamaSlow) + kamaSlow
		kama += sc * sc * (closes[i] - kama)
		out[i] = kama
	}
	return []Series{trim("", in.Index, out, period)}, nil
}
