package data

import (
	"context"
	"fmt"
	"net/url"
)

// Names of the columnar annotation sources.
const (
	RecombName   = "RecombLZ"
	IntervalName = "IntervalLZ"
)

// columnar is a source whose columnar response replaces the chain body.
type columnar struct {
	remote
	filter func(s *columnar, state State) string
}

func (s *columnar) URL(state State, _ Chain, _ []string) (string, error) {
	return query(s.init.URL, url.Values{"filter": {s.filter(s, state)}}), nil
}

func (s *columnar) GetData(state State, fields, outnames []string) (Link, error) {
	outnames = outnamesFor(fields, outnames)
	if _, err := parseFields(fields); err != nil {
		return nil, err
	}
	return func(ctx context.Context, c Chain) (Chain, error) {
		u, _ := s.URL(state, c, fields)
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

// NewRecombSource creates a recombination-rate source. params.source selects
// the recombination map (default 15).
func NewRecombSource(init Init, f Fetcher) Source {
	return &columnar{
		remote: remote{name: RecombName, init: init, fetch: f},
		filter: func(s *columnar, st State) string {
			return fmt.Sprintf("id in %d and chromosome eq '%s' and position le %d and position ge %d",
				s.init.paramInt("source", 15), st.Chr, st.End, st.Start)
		},
	}
}

// NewIntervalSource creates an interval annotation source. params.source
// selects the annotation track (default 16).
func NewIntervalSource(init Init, f Fetcher) Source {
	return &columnar{
		remote: remote{name: IntervalName, init: init, fetch: f},
		filter: func(s *columnar, st State) string {
			return fmt.Sprintf("id in %d and chromosome eq '%s' and start le %d and end ge %d",
				s.init.paramInt("source", 16), st.Chr, st.End, st.Start)
		},
	}
}
