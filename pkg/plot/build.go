package plot

import (
	"fmt"

	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
)

// FromLayout builds an instance from a resolved plot layout.
//
// Panels stack vertically in declaration order. A panel with
// proportional_height gets that fraction of the plot height, and one with
// proportional_width that fraction of the plot width; otherwise its own
// width and height apply. The plot height becomes the sum of the panel
// heights. An initial state in the layout seeds the region.
func FromLayout(lay layout.Layout, requester *data.Requester, opts ...Option) (*Instance, error) {
	if lay == nil {
		return nil, errors.New(errors.ErrCodeConfig, "plot layout is required")
	}
	if st := sub(lay, "state"); len(st) > 0 {
		opts = append([]Option{WithState(stateFrom(st))}, opts...)
	}
	inst := New(requester, opts...)
	inst.layout = lay
	width := numOr(lay, "width", DefaultPanelWidth)
	height := numOr(lay, "height", 0)

	panels, _ := lay["panels"].([]any)
	y := 0.0
	for n, raw := range panels {
		pl, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeConfig, "panel %d is not an object", n)
		}
		p, err := inst.AddPanel(pl)
		if err != nil {
			return nil, err
		}
		w, h := p.Dimensions()
		if pw, ok := value(pl["proportional_width"]); ok {
			w = width * pw
		}
		if ph, ok := value(pl["proportional_height"]); ok && height > 0 {
			h = height * ph
		}
		p.SetDimensions(w, h)
		p.SetOrigin(0, y)
		y += h
	}
	inst.SetDimensions(width, y)
	return inst, nil
}

func stateFrom(m map[string]any) data.State {
	var s data.State
	if v, ok := m["chr"]; ok && v != nil {
		s.Chr = fmt.Sprint(v)
	}
	if v, ok := value(m["start"]); ok {
		s.Start = int64(v)
	}
	if v, ok := value(m["end"]); ok {
		s.End = int64(v)
	}
	s.LDRefVar = str(m, "ldrefvar", "")
	if v, ok := value(m["ldrefsource"]); ok {
		s.LDRefSource = int(v)
	}
	if v, ok := value(m["analysis"]); ok {
		s.Analysis = int(v)
	}
	return s
}

// Layout returns the plot layout the instance was built from, or nil.
func (i *Instance) Layout() layout.Layout { return i.layout }
