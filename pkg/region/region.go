// Package region parses genomic region queries.
//
// Accepted forms:
//
//	chr:start-end       10:114,550,452-115,067,678
//	chr:center+offset   10:114.8M+250kb
//	chr:position        rs-free single position, expanded with a flank
//
// Positions accept K, M or G magnitude suffixes (case-insensitive, optional
// trailing B). Comma separators are ignored.
package region

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// DefaultFlank is the half-width applied to single-position queries.
const DefaultFlank = 250_000

var (
	rangeRe    = regexp.MustCompile(`^(\w+):([\d,.]+[kmgbKMGB]*)([-+])([\d,.]+[kmgbKMGB]*)$`)
	positionRe = regexp.MustCompile(`^(\w+):([\d,.]+[kmgbKMGB]*)$`)
	suffixRe   = regexp.MustCompile(`([KMG])B*$`)
)

// Region is a parsed query. Position is set, and Start/End are zero, for
// single-position queries until Expand is called.
type Region struct {
	Chr      string `json:"chr"`
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	Position int64  `json:"position,omitempty"`
}

// IsPosition reports whether r came from a chr:position query.
func (r Region) IsPosition() bool {
	return r.Position != 0 && r.Start == 0 && r.End == 0
}

// Expand turns a single-position region into [pos-flank, pos+flank], with
// the start floored at 1. Ranges are returned unchanged.
func (r Region) Expand(flank int64) Region {
	if !r.IsPosition() {
		return r
	}
	if flank <= 0 {
		flank = DefaultFlank
	}
	return Region{
		Chr:   r.Chr,
		Start: max(r.Position-flank, 1),
		End:   r.Position + flank,
	}
}

// String formats r as chr:start-end, or chr:position.
func (r Region) String() string {
	if r.IsPosition() {
		return fmt.Sprintf("%s:%d", r.Chr, r.Position)
	}
	return fmt.Sprintf("%s:%d-%d", r.Chr, r.Start, r.End)
}

// Parse parses a region query.
func Parse(q string) (Region, error) {
	q = strings.TrimSpace(q)
	if m := rangeRe.FindStringSubmatch(q); m != nil {
		a, err := ParsePosition(m[2])
		if err != nil {
			return Region{}, err
		}
		b, err := ParsePosition(m[4])
		if err != nil {
			return Region{}, err
		}
		r := Region{Chr: m[1], Start: a, End: b}
		if m[3] == "+" {
			r = Region{Chr: m[1], Start: a - b, End: a + b}
		}
		if r.End < r.Start {
			return Region{}, errors.New(errors.ErrCodeInvalidRegion, "region %q ends before it starts", q)
		}
		return r, nil
	}
	if m := positionRe.FindStringSubmatch(q); m != nil {
		p, err := ParsePosition(m[2])
		if err != nil {
			return Region{}, err
		}
		return Region{Chr: m[1], Position: p}, nil
	}
	return Region{}, errors.New(errors.ErrCodeInvalidRegion, "unrecognised region %q: want chr:start-end, chr:center+offset or chr:position", q)
}

// ParsePosition parses a position such as "1,500", "5Mb" or "1.4kB".
func ParsePosition(s string) (int64, error) {
	val := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), ",", "")
	mult := 1.0
	if m := suffixRe.FindStringSubmatch(val); m != nil {
		switch m[1] {
		case "K":
			mult = 1e3
		case "M":
			mult = 1e6
		case "G":
			mult = 1e9
		}
		val = suffixRe.ReplaceAllString(val, "")
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidRegion, err, "invalid position %q", s)
	}
	return int64(math.Round(f * mult)), nil
}
