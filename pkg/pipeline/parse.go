package pipeline

import (
	"github.com/matzehuels/locuszoom/pkg/region"
)

// ParseRegion parses a region query and expands a single position by flank
// on each side. A non-positive flank uses [region.DefaultFlank].
func ParseRegion(query string, flank int64) (region.Region, error) {
	r, err := region.Parse(query)
	if err != nil {
		return region.Region{}, err
	}
	return r.Expand(flank), nil
}
