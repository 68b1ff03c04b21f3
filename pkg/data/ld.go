package data

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// LDName is the SOURCE_NAME of [LDSource].
const LDName = "LDLZ"

// LDSource fetches linkage disequilibrium against a reference variant and
// left-joins it onto the chain body.
//
// The join walks both sequences once. The chain body must be sorted by
// ascending position and the response by ascending position2, or matches
// are missed.
type LDSource struct {
	remote
}

// NewLDSource creates an LD source.
func NewLDSource(init Init, f Fetcher) *LDSource {
	return &LDSource{remote{name: LDName, init: init, fetch: f}}
}

func (s *LDSource) refSource(state State, c Chain) int {
	if state.LDRefSource > 0 {
		return state.LDRefSource
	}
	if r := c.headerInt("ldrefsource"); r > 0 {
		return r
	}
	return s.init.paramInt("ldrefsource", 1)
}

// extreme returns the index of the smallest (or largest) numeric field
// value, first occurrence winning, or -1.
func extreme(body []Record, field string, largest bool) int {
	best, bestV := -1, math.Inf(1)
	if largest {
		bestV = math.Inf(-1)
	}
	for i, rec := range body {
		v, ok := number(rec[field])
		if !ok {
			continue
		}
		if best < 0 || (!largest && v < bestV) || (largest && v > bestV) {
			best, bestV = i, v
		}
	}
	return best
}

// refVar resolves the reference variant for field. "state" defers to the
// plot state, then the chain header, then "best"; "best" picks the record
// with the smallest p-value, or the largest log_pvalue when no p-values
// were fetched. Any other value is taken as a variant id.
func (s *LDSource) refVar(state State, c Chain, field string) (string, error) {
	ref := field
	if ref == "state" {
		ref = state.LDRefVar
		if ref == "" {
			ref = c.headerString("ldrefvar")
		}
		if ref == "" {
			ref = "best"
		}
	}
	if ref != "best" {
		return ref, nil
	}

	pfield := s.init.paramString("pvalue_field", "pvalue")
	best := extreme(c.Body, pfield, false)
	if best < 0 && pfield == "pvalue" {
		best = extreme(c.Body, "log_pvalue", true)
	}
	if best < 0 {
		return "", errors.New(errors.ErrCodeFieldMismatch,
			"%s: no association data with %q to choose a reference variant", s.name, pfield)
	}
	id, ok := c.Body[best]["id"].(string)
	if !ok || id == "" {
		return "", errors.New(errors.ErrCodeFieldMismatch, "%s: best record has no id", s.name)
	}
	return id, nil
}

func (s *LDSource) url(state State, c Chain, ref string) string {
	filter := fmt.Sprintf("reference eq %d and chromosome2 eq '%s' and position2 ge %d and position2 le %d and variant1 eq '%s'",
		s.refSource(state, c), state.Chr, state.Start, state.End, ref)
	return query(s.init.URL+"results/", url.Values{
		"filter": {filter},
		"fields": {"chr,pos,rsquare"},
	})
}

// URL resolves the reference variant and returns the LD query.
func (s *LDSource) URL(state State, c Chain, fields []string) (string, error) {
	field := "state"
	if len(fields) > 0 {
		field = fields[0]
	}
	ref, err := s.refVar(state, c, field)
	if err != nil {
		return "", err
	}
	return s.url(state, c, ref), nil
}

// GetData accepts exactly one field. The link stores the resolved reference
// variant in the chain header under "ldrefvar".
func (s *LDSource) GetData(state State, fields, outnames []string) (Link, error) {
	if len(fields) != 1 {
		return nil, errors.New(errors.ErrCodeConfig, "%s: expected exactly one field, got %d", s.name, len(fields))
	}
	outnames = outnamesFor(fields, outnames)
	field, out := fields[0], outnames[0]

	return func(ctx context.Context, c Chain) (Chain, error) {
		ref, err := s.refVar(state, c, field)
		if err != nil {
			return c, err
		}
		c.Header["ldrefvar"] = ref

		data, err := s.get(ctx, s.url(state, c, ref))
		if err != nil {
			return c, err
		}
		cols := data.Map()
		pos2, ok := cols["position2"]
		if !ok || !pos2.IsArray() {
			return c, errors.New(errors.ErrCodeFieldMismatch, "%s: field %q not found in response", s.name, "position2")
		}
		rsq, ok := cols["rsquare"]
		if !ok || !rsq.IsArray() {
			return c, errors.New(errors.ErrCodeFieldMismatch, "%s: field %q not found in response", s.name, "rsquare")
		}

		positions := pos2.Array()
		values := rsq.Array()
		if len(values) < len(positions) {
			return c, errors.New(errors.ErrCodeFieldMismatch,
				"%s: rsquare has %d values, want %d", s.name, len(values), len(positions))
		}
		i, j := 0, 0
		for i < len(c.Body) && j < len(positions) {
			left, ok := number(c.Body[i]["position"])
			if !ok {
				i++
				continue
			}
			right := positions[j].Float()
			switch {
			case left == right:
				c.Body[i][out] = values[j].Value()
				i++
				j++
			case left < right:
				i++
			default:
				j++
			}
		}
		return c, nil
	}, nil
}
