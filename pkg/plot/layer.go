package plot

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/matzehuels/locuszoom/pkg/axis"
	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
	"github.com/matzehuels/locuszoom/pkg/scene"
)

// Phase is the lifecycle position of a panel or data layer.
type Phase int

const (
	Uninitialized Phase = iota
	Initialized
	Mapped
	Rendered
)

func (p Phase) String() string {
	switch p {
	case Initialized:
		return "initialized"
	case Mapped:
		return "mapped"
	case Rendered:
		return "rendered"
	default:
		return "uninitialized"
	}
}

// MarshalText encodes the phase name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Frame carries the panel geometry and scales a layer draws against.
type Frame struct {
	State  data.State
	Width  float64
	Height float64
	X      axis.Linear
	Y1     axis.Linear
	Y2     axis.Linear
}

// Y returns the scale of y axis n (1 or 2).
func (f *Frame) Y(n int) axis.Linear {
	if n == 2 {
		return f.Y2
	}
	return f.Y1
}

// variant is the per-type behaviour of a data layer.
type variant interface {
	// postGet derives fields after a successful fetch.
	postGet(l *DataLayer, state data.State, c *data.Chain)
	// prerender computes layout that depends on the panel scales.
	prerender(l *DataLayer, f *Frame)
	// render draws the layer's data into g.
	render(l *DataLayer, f *Frame, g *scene.Node) error
}

func newVariant(kind string, lay layout.Layout) (variant, error) {
	switch kind {
	case "scatter":
		return newScatter(lay)
	case "line":
		return &line{}, nil
	case "genes":
		return &genes{}, nil
	case "intervals":
		return newIntervals(lay)
	case "genome_legend":
		return &genomeLegend{}, nil
	}
	return nil, errors.New(errors.ErrCodeConfig, "unknown data layer type %q", kind)
}

// DataLayer draws one data series inside a panel.
type DataLayer struct {
	id     string
	kind   string
	layout layout.Layout
	fields []string
	zIndex int
	panel  *Panel
	v      variant
	attrs  resolver

	gen atomic.Uint64

	mu    sync.Mutex
	phase Phase
	chain data.Chain
	group *scene.Node
}

func newDataLayer(p *Panel, lay layout.Layout, z int) (*DataLayer, error) {
	id := str(lay, "id", "")
	if err := errors.ValidateName("data layer", id); err != nil {
		return nil, err
	}
	kind := str(lay, "type", "")
	v, err := newVariant(kind, lay)
	if err != nil {
		return nil, fmt.Errorf("data layer %s: %w", id, err)
	}
	l := &DataLayer{
		id:     id,
		kind:   kind,
		layout: lay,
		fields: stringList(lay["fields"]),
		zIndex: z,
		panel:  p,
		v:      v,
		attrs:  resolver{scales: p.parent.scales},
		chain:  data.NewChain(),
	}
	if zi, ok := value(lay["z_index"]); ok {
		l.zIndex = int(zi)
	}
	for _, name := range []string{"color", "point_shape", "point_size", "fill_opacity"} {
		if err := l.attrs.check(name, lay[name]); err != nil {
			return nil, fmt.Errorf("data layer %s: %w", id, err)
		}
	}
	return l, nil
}

// ID returns the layer id.
func (l *DataLayer) ID() string { return l.id }

// Type returns the layout type.
func (l *DataLayer) Type() string { return l.kind }

// ZIndex returns the draw order key.
func (l *DataLayer) ZIndex() int { return l.zIndex }

// Fields returns the requested field list.
func (l *DataLayer) Fields() []string { return append([]string(nil), l.fields...) }

// Layout returns the resolved layout.
func (l *DataLayer) Layout() layout.Layout { return l.layout }

// BaseID is the scene id prefix: instance.panel.layer.
func (l *DataLayer) BaseID() string { return l.panel.BaseID() + "." + l.id }

// Phase returns the current lifecycle phase.
func (l *DataLayer) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Generation returns the number of re-maps issued so far.
func (l *DataLayer) Generation() uint64 { return l.gen.Load() }

// Data returns the records of the last accepted fetch.
func (l *DataLayer) Data() []data.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]data.Record(nil), l.chain.Body...)
}

// Header returns the chain header of the last accepted fetch.
func (l *DataLayer) Header() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]any, len(l.chain.Header))
	for k, v := range l.chain.Header {
		out[k] = v
	}
	return out
}

// Initialize moves the layer out of the uninitialized phase. Later calls
// are no-ops.
func (l *DataLayer) Initialize() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase == Uninitialized {
		l.phase = Initialized
	}
}

// ReMap fetches the layer's fields for state. A result superseded by a
// newer ReMap is discarded, so the stored data always belongs to the most
// recent request that completed in order.
func (l *DataLayer) ReMap(ctx context.Context, state data.State) error {
	gen := l.gen.Add(1)
	chain := data.NewChain()
	if len(l.fields) > 0 {
		var err error
		chain, err = l.panel.parent.requester.GetData(ctx, state, l.fields)
		if err != nil {
			return fmt.Errorf("data layer %s: %w", l.id, err)
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen.Load() {
		return nil
	}
	l.v.postGet(l, state, &chain)
	l.chain = chain
	l.phase = Mapped
	return nil
}

// render redraws the layer against f. The caller holds the panel lock.
func (l *DataLayer) render(f *Frame) (*scene.Node, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	base := l.BaseID()
	g := scene.Group(base, "lz-data_layer lz-data_layer-"+l.kind).
		Set("clip-path", "url(#"+l.panel.BaseID()+".clip)")
	l.v.prerender(l, f)
	if err := l.v.render(l, f, g); err != nil {
		return nil, fmt.Errorf("data layer %s: %w", l.id, err)
	}
	l.group = g
	l.phase = Rendered
	return g, nil
}

// Scene returns the subtree drawn by the last render, or nil.
func (l *DataLayer) Scene() *scene.Node {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.group
}

// YAxis returns the y axis (1 or 2) the layer is attached to, or 0.
func (l *DataLayer) YAxis() int {
	ya := sub(l.layout, "y_axis")
	if ya == nil {
		return 0
	}
	if int(numOr(ya, "axis", 1)) == 2 {
		return 2
	}
	return 1
}

// Extent computes the layer's contribution to dimension "x" or "y".
//
// The extent of axis.field over the data is widened by lower_buffer and
// upper_buffer (fractions of the span), unioned with min_extent, then
// overridden by floor and ceiling. Without a field, floor and ceiling alone
// define the extent. A decoupled x axis contributes nothing.
func (l *DataLayer) Extent(dim string) (axis.Extent, bool) {
	cfg := sub(l.layout, dim+"_axis")
	if cfg == nil || (dim == "x" && flag(cfg, "decoupled")) {
		return axis.Extent{}, false
	}
	l.mu.Lock()
	body := l.chain.Body
	l.mu.Unlock()
	return axisExtent(cfg, body)
}

func axisExtent(cfg map[string]any, body []data.Record) (axis.Extent, bool) {
	floor, hasFloor := value(cfg["floor"])
	ceil, hasCeil := value(cfg["ceiling"])
	var ext axis.Extent
	found := false
	if field := str(cfg, "field", ""); field != "" {
		vs := make([]float64, 0, len(body))
		for _, rec := range body {
			if f, ok := value(rec[field]); ok {
				vs = append(vs, f)
			}
		}
		ext, found = axis.ExtentOf(vs)
		if found {
			span := ext.Width()
			if b, ok := value(cfg["lower_buffer"]); ok {
				ext[0] -= span * b
			}
			if b, ok := value(cfg["upper_buffer"]); ok {
				ext[1] += span * b
			}
		}
	}
	if me, _ := cfg["min_extent"].([]any); len(me) == 2 {
		lo, lok := value(me[0])
		hi, hok := value(me[1])
		if lok && hok {
			if found {
				ext = ext.Union(axis.Extent{lo, hi})
			} else {
				ext, found = axis.Extent{lo, hi}, true
			}
		}
	}
	if !found {
		if hasFloor && hasCeil {
			return axis.Extent{floor, ceil}, true
		}
		return axis.Extent{}, false
	}
	if hasFloor {
		ext[0] = floor
	}
	if hasCeil {
		ext[1] = ceil
	}
	if ext[0] > ext[1] {
		ext[0], ext[1] = ext[1], ext[0]
	}
	return ext, !math.IsNaN(ext.Width())
}
