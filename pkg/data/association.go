package data

import (
	"context"
	"fmt"
	"net/url"
	"slices"
)

// AssociationName is the SOURCE_NAME of [AssociationSource].
const AssociationName = "AssociationLZ"

const defaultAnalysis = 3

// AssociationSource fetches single-variant association statistics. The
// response is columnar; every record carries id and position.
type AssociationSource struct {
	remote
}

// NewAssociationSource creates an association source.
func NewAssociationSource(init Init, f Fetcher) *AssociationSource {
	return &AssociationSource{remote{name: AssociationName, init: init, fetch: f}}
}

func (s *AssociationSource) analysis(state State, c Chain) int {
	if state.Analysis > 0 {
		return state.Analysis
	}
	if a := c.headerInt("analysis"); a > 0 {
		return a
	}
	return s.init.paramInt("analysis", defaultAnalysis)
}

// URL returns results/?filter=analysis in A and chromosome in 'chr' ...
func (s *AssociationSource) URL(state State, c Chain, _ []string) (string, error) {
	filter := fmt.Sprintf("analysis in %d and chromosome in  '%s' and position ge %d and position le %d",
		s.analysis(state, c), state.Chr, state.Start, state.End)
	return query(s.init.URL+"results/", url.Values{"filter": {filter}}), nil
}

// GetData prepends id and position to the request when absent.
func (s *AssociationSource) GetData(state State, fields, outnames []string) (Link, error) {
	outnames = outnamesFor(fields, outnames)
	fields = slices.Clone(fields)
	outnames = slices.Clone(outnames)
	for _, required := range []string{"position", "id"} {
		if !slices.Contains(fields, required) {
			fields = append([]string{required}, fields...)
			outnames = append([]string{required}, outnames...)
		}
	}
	if _, err := parseFields(fields); err != nil {
		return nil, err
	}

	return func(ctx context.Context, c Chain) (Chain, error) {
		u, err := s.URL(state, c, fields)
		if err != nil {
			return c, err
		}
		data, err := s.get(ctx, u)
		if err != nil {
			return c, err
		}
		body, err := columns(s.name, data, fields, outnames)
		if err != nil {
			return c, err
		}
		c.Body = body
		return c, nil
	}, nil
}
