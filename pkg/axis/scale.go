package axis

import "math"

// Extent is a closed [min, max] interval.
type Extent [2]float64

// Width returns max - min.
func (e Extent) Width() float64 { return e[1] - e[0] }

// Valid reports whether both bounds are finite.
func (e Extent) Valid() bool {
	return !math.IsNaN(e[0]) && !math.IsNaN(e[1]) && !math.IsInf(e[0], 0) && !math.IsInf(e[1], 0)
}

// Union returns the smallest extent covering e and o.
func (e Extent) Union(o Extent) Extent {
	return Extent{math.Min(e[0], o[0]), math.Max(e[1], o[1])}
}

// ExtentOf returns the extent of the finite values in vs, and false if there
// are none.
func ExtentOf(vs []float64) (Extent, bool) {
	ext := Extent{math.Inf(1), math.Inf(-1)}
	found := false
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ext[0] = math.Min(ext[0], v)
		ext[1] = math.Max(ext[1], v)
		found = true
	}
	return ext, found
}

// Linear maps a numeric domain onto a pixel range.
type Linear struct {
	Domain Extent
	Range  Extent
}

// NewLinear returns a linear scale from domain onto rng.
func NewLinear(domain, rng Extent) Linear {
	return Linear{Domain: domain, Range: rng}
}

// Map converts a domain value to range space. A zero-width domain maps
// everything to the middle of the range.
func (s Linear) Map(x float64) float64 {
	dw := s.Domain.Width()
	if dw == 0 {
		return (s.Range[0] + s.Range[1]) / 2
	}
	return s.Range[0] + (x-s.Domain[0])/dw*s.Range.Width()
}

// Invert converts a range value back to the domain.
func (s Linear) Invert(y float64) float64 {
	rw := s.Range.Width()
	if rw == 0 {
		return s.Domain[0]
	}
	return s.Domain[0] + (y-s.Range[0])/rw*s.Domain.Width()
}
