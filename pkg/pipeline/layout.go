package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/locuszoom/pkg/cache"
	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/layout"
	"github.com/matzehuels/locuszoom/pkg/plot"
)

// ResolveLayout returns the named plot layout with the run's overrides and
// width applied.
func ResolveLayout(reg *layout.Registry, opts Options) (layout.Layout, error) {
	lay, err := reg.Get(layout.KindPlot, opts.Layout, opts.Overrides)
	if err != nil {
		return nil, err
	}
	if opts.Width > 0 {
		lay["width"] = float64(opts.Width)
	}
	return lay, nil
}

// LayoutHash is the content hash of a resolved layout. Reloading a layout
// file with different content changes the hash and so the artifact keys.
func LayoutHash(lay layout.Layout) string {
	raw, err := json.Marshal(lay)
	if err != nil {
		return ""
	}
	return cache.Hash(raw)
}

// Build assembles a plot instance from a resolved layout. A reference
// variant in opts seeds the instance state.
func Build(lay layout.Layout, requester *data.Requester, opts Options) (*plot.Instance, error) {
	var popts []plot.Option
	if opts.Logger != nil {
		popts = append(popts, plot.WithLogger(opts.Logger))
	}
	inst, err := plot.FromLayout(lay, requester, popts...)
	if err != nil {
		return nil, err
	}
	if opts.LDRefVar != "" {
		inst.UpdateState(func(s *data.State) { s.LDRefVar = opts.LDRefVar })
	}
	return inst, nil
}
