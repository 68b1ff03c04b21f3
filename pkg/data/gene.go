package data

import (
	"context"
	"fmt"
	"net/url"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// GeneName is the SOURCE_NAME of [GeneSource].
const GeneName = "GeneLZ"

// GeneSource fetches gene models overlapping the region. Its response
// replaces the chain body; genes are never joined onto other records.
type GeneSource struct {
	remote
}

// NewGeneSource creates a gene source.
func NewGeneSource(init Init, f Fetcher) *GeneSource {
	return &GeneSource{remote{name: GeneName, init: init, fetch: f}}
}

// URL returns ?filter=source in S and chrom eq 'chr' and start le E and end ge S.
func (s *GeneSource) URL(state State, _ Chain, _ []string) (string, error) {
	filter := fmt.Sprintf("source in %d and chrom eq '%s' and start le %d and end ge %d",
		s.init.paramInt("source", 1), state.Chr, state.End, state.Start)
	return query(s.init.URL, url.Values{"filter": {filter}}), nil
}

// GetData ignores fields; each gene is returned whole.
func (s *GeneSource) GetData(state State, fields, _ []string) (Link, error) {
	return func(ctx context.Context, c Chain) (Chain, error) {
		u, _ := s.URL(state, c, fields)
		data, err := s.get(ctx, u)
		if err != nil {
			return c, err
		}
		if !data.IsArray() {
			return c, errors.New(errors.ErrCodeFieldMismatch, "%s: data is not a record array", s.name)
		}
		items := data.Array()
		body := make([]Record, 0, len(items))
		for _, item := range items {
			rec, ok := item.Value().(map[string]any)
			if !ok {
				return c, errors.New(errors.ErrCodeFieldMismatch, "%s: gene record is not an object", s.name)
			}
			body = append(body, Record(rec))
		}
		c.Body = body
		return c, nil
	}, nil
}
