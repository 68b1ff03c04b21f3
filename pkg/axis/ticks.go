package axis

import (
	"math"
	"strconv"
)

// DefaultTickCount is the target tick count used when n is not positive.
const DefaultTickCount = 5

const (
	shrinkSml = 0.75
	highUBias = 1.5
	u5Bias    = 0.5 + 1.5*highUBias
)

// PrettyTicks returns a human-friendly tick sequence covering ext with
// roughly n ticks. When internalOnly is set, a first tick below ext[0] and a
// last tick above ext[1] are dropped.
//
// A zero-width or non-finite extent yields the single tick ext[0].
func PrettyTicks(ext Extent, n int, internalOnly bool) []float64 {
	if n <= 0 {
		n = DefaultTickCount
	}
	lo, hi := ext[0], ext[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	d := hi - lo
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return []float64{lo}
	}

	minN := float64(n) / 3
	c := d / float64(n)
	if math.Log10(d) < -2 {
		c = (d * shrinkSml) / minN
	}

	base := math.Pow(10, math.Floor(math.Log10(c)))
	places := 0
	if base < 1 {
		places = int(math.Abs(math.Round(math.Log10(base))))
	}

	unit := base
	if (2*base)-c < highUBias*(c-unit) {
		unit = 2 * base
		if (5*base)-c < u5Bias*(c-unit) {
			unit = 5 * base
			if (10*base)-c < highUBias*(c-unit) {
				unit = 10 * base
			}
		}
	}

	var i float64
	if lo < 0 || lo > unit {
		i = toFixed(math.Floor(lo/unit)*unit, places)
	}
	var ticks []float64
	for i < hi {
		ticks = append(ticks, i)
		i += unit
		if places > 0 {
			i = toFixed(i, places)
		}
	}
	ticks = append(ticks, i)

	if internalOnly {
		if len(ticks) > 0 && ticks[0] < lo {
			ticks = ticks[1:]
		}
		if len(ticks) > 0 && ticks[len(ticks)-1] > hi {
			ticks = ticks[:len(ticks)-1]
		}
	}
	return ticks
}

// toFixed rounds f to the given number of decimal places through its decimal
// representation, matching the printed value rather than the binary one.
func toFixed(f float64, places int) float64 {
	out, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', places, 64), 64)
	if err != nil {
		return f
	}
	return out
}
