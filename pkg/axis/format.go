package axis

import (
	"math"
	"strconv"
)

// FormatMegabase formats a base-pair position in megabases, using at least
// two decimal places and more for small positions.
func FormatMegabase(p float64) string {
	places := 2
	if p > 0 {
		places = max(6-int(math.Floor(toFixed(math.Log10(p), 9))), 2)
	}
	return strconv.FormatFloat(p/1e6, 'f', places, 64)
}

// FormatTick formats a plain numeric tick without trailing zeros.
func FormatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
