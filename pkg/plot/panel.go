package plot

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/locuszoom/pkg/axis"
	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
	"github.com/matzehuels/locuszoom/pkg/observability"
	"github.com/matzehuels/locuszoom/pkg/scene"
)

// Default panel geometry.
const (
	DefaultPanelWidth  = 800.0
	DefaultPanelHeight = 225.0
	// XTickSpacing is the target pixel distance between x ticks.
	XTickSpacing = 120.0
)

// Margin is the space between the panel edge and its clip area.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Point is a pixel position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Panel is one horizontal band of a plot with its own axes and layers.
type Panel struct {
	id     string
	layout layout.Layout
	parent *Instance
	gen    atomic.Uint64 // one per remap cycle

	mu      sync.Mutex
	phase   Phase
	width   float64
	height  float64
	origin  Point
	margin  Margin
	layers  []*DataLayer
	axes    map[string]*Axis
	group   *scene.Node
	curtain Curtain
}

func newPanel(parent *Instance, lay layout.Layout) (*Panel, error) {
	id := str(lay, "id", "")
	if err := errors.ValidateName("panel", id); err != nil {
		return nil, err
	}
	p := &Panel{
		id:     id,
		layout: lay,
		parent: parent,
		width:  numOr(lay, "width", DefaultPanelWidth),
		height: numOr(lay, "height", DefaultPanelHeight),
		axes:   map[string]*Axis{},
	}
	if o := sub(lay, "origin"); o != nil {
		p.origin = Point{X: numOr(o, "x", 0), Y: numOr(o, "y", 0)}
	}
	if m := sub(lay, "margin"); m != nil {
		p.margin = Margin{
			Top:    numOr(m, "top", 0),
			Right:  numOr(m, "right", 0),
			Bottom: numOr(m, "bottom", 0),
			Left:   numOr(m, "left", 0),
		}
	}
	layers, _ := lay["data_layers"].([]any)
	for i, raw := range layers {
		ll, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeConfig, "panel %s: data layer %d is not an object", id, i)
		}
		if _, err := p.addDataLayer(ll); err != nil {
			return nil, fmt.Errorf("panel %s: %w", id, err)
		}
	}
	return p, nil
}

// ID returns the panel id.
func (p *Panel) ID() string { return p.id }

// BaseID is the scene id prefix: instance.panel.
func (p *Panel) BaseID() string { return p.parent.id + "." + p.id }

// Layout returns the resolved panel layout.
func (p *Panel) Layout() layout.Layout { return p.layout }

// Phase returns the current lifecycle phase.
func (p *Panel) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Curtain returns the panel's error overlay.
func (p *Panel) Curtain() *Curtain { return &p.curtain }

// AddDataLayer creates a data layer from lay and attaches it. Layer ids
// must be unique within the panel. Without a z_index the layer draws above
// every existing layer.
func (p *Panel) AddDataLayer(lay layout.Layout) (*DataLayer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addDataLayer(lay)
}

func (p *Panel) addDataLayer(lay layout.Layout) (*DataLayer, error) {
	l, err := newDataLayer(p, lay, len(p.layers))
	if err != nil {
		return nil, err
	}
	for _, existing := range p.layers {
		if existing.id == l.id {
			return nil, errors.New(errors.ErrCodeConfig, "data layer %q already exists in panel %s", l.id, p.id)
		}
	}
	if p.phase != Uninitialized {
		l.Initialize()
	}
	p.layers = append(p.layers, l)
	return l, nil
}

// DataLayer returns the layer with id.
func (p *Panel) DataLayer(id string) (*DataLayer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, l := range p.layers {
		if l.id == id {
			return l, true
		}
	}
	return nil, false
}

// DataLayers returns the layers in ascending z-index order. Ties keep
// insertion order.
func (p *Panel) DataLayers() []*DataLayer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sorted()
}

func (p *Panel) sorted() []*DataLayer {
	out := append([]*DataLayer(nil), p.layers...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].zIndex < out[j].zIndex })
	return out
}

// SetDimensions resizes the panel. Non-positive values are ignored.
func (p *Panel) SetDimensions(width, height float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if width > 0 {
		p.width = width
	}
	if height > 0 {
		p.height = height
	}
}

// Dimensions returns the panel width and height.
func (p *Panel) Dimensions() (float64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// SetOrigin places the panel within the plot.
func (p *Panel) SetOrigin(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.origin = Point{X: math.Max(x, 0), Y: math.Max(y, 0)}
}

// Origin returns the panel position within the plot.
func (p *Panel) Origin() Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.origin
}

// SetMargin sets the margins. Negative values are clamped to zero.
func (p *Panel) SetMargin(top, right, bottom, left float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.margin = Margin{
		Top:    math.Max(top, 0),
		Right:  math.Max(right, 0),
		Bottom: math.Max(bottom, 0),
		Left:   math.Max(left, 0),
	}
}

// Margin returns the margins.
func (p *Panel) Margin() Margin {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.margin
}

// ClipArea returns the drawable width and height inside the margins.
func (p *Panel) ClipArea() (float64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clip()
}

func (p *Panel) clip() (float64, float64) {
	w := math.Max(p.width-(p.margin.Left+p.margin.Right), 0)
	h := math.Max(p.height-(p.margin.Top+p.margin.Bottom), 0)
	return w, h
}

// Initialize moves the panel and its layers out of the uninitialized
// phase. Later calls are no-ops.
func (p *Panel) Initialize() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != Uninitialized {
		return
	}
	for _, l := range p.layers {
		l.Initialize()
	}
	p.phase = Initialized
}

// ReMap re-fetches every layer for the instance's current state, waits for
// all of them, and renders. Any failure in the cycle drops the curtain and
// is returned as RENDER_FAULT; a successful cycle raises it. A cycle
// overtaken by a newer one leaves the panel untouched and returns nil.
func (p *Panel) ReMap(ctx context.Context) error {
	return p.remap(ctx, p.parent.State())
}

func (p *Panel) remap(ctx context.Context, state data.State) error {
	p.Initialize()
	gen := p.gen.Add(1)
	start := time.Now()
	err := p.fanOut(ctx, state)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen.Load() {
		p.parent.logger.Debug("panel cycle superseded", "panel", p.BaseID(), "start", state.Start, "end", state.End)
		return nil
	}
	if err == nil {
		p.phase = Mapped
		err = guard(func() error { return p.draw(state) })
	}
	observability.Plot().OnPanelRender(ctx, p.parent.id, p.id, time.Since(start), err)
	if err != nil {
		fault := errors.Wrap(errors.ErrCodeRenderFault, err, "panel %s", p.BaseID())
		p.curtain.Drop(fault)
		p.parent.logger.Warn("panel render failed", "panel", p.BaseID(), "error", err)
		observability.Plot().OnCurtain(ctx, p.parent.id, p.id, fault)
		return fault
	}
	p.curtain.Raise()
	return nil
}

func (p *Panel) fanOut(ctx context.Context, state data.State) error {
	p.mu.Lock()
	layers := append([]*DataLayer(nil), p.layers...)
	p.mu.Unlock()
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range layers {
		g.Go(func() error {
			return guard(func() error { return l.ReMap(gctx, state) })
		})
	}
	return g.Wait()
}

// guard converts a panic inside fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeInternal, "panic: %v", r)
		}
	}()
	return fn()
}

// Render redraws the panel from the layers' current data.
func (p *Panel) Render() error {
	err := p.render(p.parent.State())
	if err != nil {
		fault := errors.Wrap(errors.ErrCodeRenderFault, err, "panel %s", p.BaseID())
		p.curtain.Drop(fault)
		return fault
	}
	return nil
}

func (p *Panel) render(state data.State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return guard(func() error { return p.draw(state) })
}

// draw recomputes extents, ticks and scales, then draws axes and every
// layer in ascending z-index order.
func (p *Panel) draw(state data.State) error {
	clipW, clipH := p.clip()
	layers := p.sorted()
	f := &Frame{State: state, Width: clipW, Height: clipH}

	axes := map[string]*Axis{}
	if ext, ok := p.xExtent(state, layers); ok {
		a := p.newXAxis(ext, clipW, state)
		axes["x"] = a
		f.X = a.Scale
	}
	for n, key := range []string{"y1", "y2"} {
		if ext, ok := p.yExtent(n+1, layers); ok {
			a := p.newYAxis(key, ext, clipH)
			axes[key] = a
			if n == 0 {
				f.Y1 = a.Scale
			} else {
				f.Y2 = a.Scale
			}
		}
	}

	base := p.BaseID()
	g := scene.Group(base+".panel", "lz-panel-content")
	if border, ok := p.layout["inner_border"].(string); ok && border != "" {
		g.Append(scene.Rect(p.margin.Left, p.margin.Top, clipW, clipH).
			Set("class", "lz-panel-inner-border").
			Set("fill", "none").
			Set("stroke", border))
	}
	for _, key := range []string{"x", "y1", "y2"} {
		if a, ok := axes[key]; ok && a.Rendered {
			g.Append(p.axisNode(key, a, clipW, clipH))
		}
	}
	content := scene.Group(base+".data_layers", "lz-data_layers").
		Set("transform", translate(p.margin.Left, p.margin.Top))
	for _, l := range layers {
		node, err := l.render(f)
		if err != nil {
			return err
		}
		content.Append(node)
	}
	g.Append(content)
	g.Append(p.legendNode(layers))

	p.axes = axes
	p.group = g
	p.phase = Rendered
	return nil
}

// xExtent uses the region when axes.x.extent is "state", otherwise the
// union of the coupled layers' x extents.
func (p *Panel) xExtent(state data.State, layers []*DataLayer) (axis.Extent, bool) {
	if str(sub(sub(p.layout, "axes"), "x"), "extent", "") == "state" {
		return axis.Extent{float64(state.Start), float64(state.End)}, true
	}
	return union(layers, "x", 0)
}

func (p *Panel) yExtent(n int, layers []*DataLayer) (axis.Extent, bool) {
	return union(layers, "y", n)
}

func union(layers []*DataLayer, dim string, yAxis int) (axis.Extent, bool) {
	var out axis.Extent
	found := false
	for _, l := range layers {
		if dim == "y" && l.YAxis() != yAxis {
			continue
		}
		ext, ok := l.Extent(dim)
		if !ok {
			continue
		}
		if found {
			out = out.Union(ext)
		} else {
			out, found = ext, true
		}
	}
	return out, found
}

// Axis returns the axis computed by the last render ("x", "y1" or "y2").
func (p *Panel) Axis(key string) (*Axis, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.axes[key]
	return a, ok
}

// Scene returns the panel's positioned subtree: the last render plus the
// curtain.
func (p *Panel) Scene() *scene.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	base := p.BaseID()
	clipW, clipH := p.clip()
	container := scene.Group(base+".panel_container", "lz-panel").
		Set("transform", translate(p.origin.X, p.origin.Y))
	clipPath := scene.New("clipPath").Set("id", base+".clip")
	clipPath.Append(scene.Rect(0, 0, clipW, clipH))
	container.Append(scene.New("defs").Append(clipPath))
	container.Append(p.group)
	container.Append(p.curtain.node(base+".curtain", p.width, p.height))
	return container
}
