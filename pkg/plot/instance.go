package plot

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
	"github.com/matzehuels/locuszoom/pkg/observability"
	"github.com/matzehuels/locuszoom/pkg/scale"
	"github.com/matzehuels/locuszoom/pkg/scene"
)

// Instance is a plot bound to a region state.
type Instance struct {
	id        string
	requester *data.Requester
	scales    *scale.Registry
	logger    *log.Logger
	layout    layout.Layout

	mu     sync.RWMutex
	state  data.State
	width  float64
	height float64
	panels []*Panel
	phase  Phase
}

// Option configures an [Instance].
type Option func(*Instance)

// WithID sets the instance id used as the scene id prefix.
func WithID(id string) Option {
	return func(i *Instance) { i.id = id }
}

// WithLogger sets the logger. Curtain drops are logged at warn level.
func WithLogger(l *log.Logger) Option {
	return func(i *Instance) { i.logger = l }
}

// WithScales sets the scale function registry.
func WithScales(r *scale.Registry) Option {
	return func(i *Instance) { i.scales = r }
}

// WithState sets the initial region state.
func WithState(s data.State) Option {
	return func(i *Instance) { i.state = s }
}

// New creates an empty instance. Without WithID the id is a random UUID.
func New(requester *data.Requester, opts ...Option) *Instance {
	i := &Instance{requester: requester, width: DefaultPanelWidth}
	for _, opt := range opts {
		opt(i)
	}
	if i.id == "" {
		i.id = "lz-" + uuid.NewString()
	}
	if i.scales == nil {
		i.scales = scale.NewRegistry()
	}
	if i.logger == nil {
		i.logger = log.New(io.Discard)
	}
	return i
}

// ID returns the instance id.
func (i *Instance) ID() string { return i.id }

// Requester returns the data requester the layers fetch through.
func (i *Instance) Requester() *data.Requester { return i.requester }

// State returns a snapshot of the region state.
func (i *Instance) State() data.State {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state
}

// UpdateState applies fn to the state without re-mapping.
func (i *Instance) UpdateState(fn func(*data.State)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	fn(&i.state)
}

// Dimensions returns the plot width and height.
func (i *Instance) Dimensions() (float64, float64) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.width, i.height
}

// SetDimensions sets the plot size. Non-positive values are ignored.
func (i *Instance) SetDimensions(width, height float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if width > 0 {
		i.width = width
	}
	if height > 0 {
		i.height = height
	}
}

// AddPanel creates a panel from lay and appends it. Panel ids must be
// unique.
func (i *Instance) AddPanel(lay layout.Layout) (*Panel, error) {
	p, err := newPanel(i, lay)
	if err != nil {
		return nil, err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, existing := range i.panels {
		if existing.id == p.id {
			return nil, errors.New(errors.ErrCodeConfig, "panel %q already exists", p.id)
		}
	}
	if i.phase != Uninitialized {
		p.Initialize()
	}
	i.panels = append(i.panels, p)
	return p, nil
}

// Panel returns the panel with id.
func (i *Instance) Panel(id string) (*Panel, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, p := range i.panels {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

// Panels returns the panels in stacking order.
func (i *Instance) Panels() []*Panel {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]*Panel(nil), i.panels...)
}

// Initialize initializes every panel. Later calls are no-ops.
func (i *Instance) Initialize() {
	i.mu.Lock()
	if i.phase != Uninitialized {
		i.mu.Unlock()
		return
	}
	i.phase = Initialized
	panels := append([]*Panel(nil), i.panels...)
	i.mu.Unlock()
	for _, p := range panels {
		p.Initialize()
	}
}

// MapTo sets the region and re-maps every panel concurrently. Panels do
// not wait on each other's success: a failing panel shows its curtain while
// the others render normally. Panel failures are reported by [Instance.Faults],
// not by the returned error, which is only set for an invalid region or a
// cancelled ctx.
func (i *Instance) MapTo(ctx context.Context, chr string, start, end int64) error {
	if chr == "" {
		return errors.New(errors.ErrCodeInvalidRegion, "chromosome is required")
	}
	if start > end {
		return errors.New(errors.ErrCodeInvalidRegion, "start %d is after end %d", start, end)
	}
	i.UpdateState(func(s *data.State) {
		s.Chr, s.Start, s.End = chr, start, end
	})
	return i.Refresh(ctx)
}

// Refresh re-maps every panel for the current state. Like MapTo, it leaves
// panel failures to Faults and returns only ctx's error.
func (i *Instance) Refresh(ctx context.Context) error {
	i.Initialize()
	state := i.State()
	panels := i.Panels()
	observability.Plot().OnMapStart(ctx, i.id, state.Chr, state.Start, state.End)
	start := time.Now()

	faults := make([]error, len(panels))
	var g errgroup.Group
	for n, p := range panels {
		g.Go(func() error {
			faults[n] = p.remap(ctx, state)
			return nil
		})
	}
	_ = g.Wait()

	count := 0
	for _, err := range faults {
		if err != nil {
			count++
		}
	}
	i.mu.Lock()
	i.phase = Rendered
	i.mu.Unlock()
	observability.Plot().OnMapComplete(ctx, i.id, time.Since(start), count)
	i.logger.Debug("mapped", "plot", i.id, "chr", state.Chr, "start", state.Start, "end", state.End, "faults", count)
	return ctx.Err()
}

// SelectLDReference toggles the LD reference variant and re-maps. Selecting
// the current reference clears it.
func (i *Instance) SelectLDReference(ctx context.Context, variant string) error {
	i.UpdateState(func(s *data.State) {
		if s.LDRefVar == variant {
			s.LDRefVar = ""
		} else {
			s.LDRefVar = variant
		}
	})
	return i.Refresh(ctx)
}

// Faults returns the error of every panel whose curtain is down.
func (i *Instance) Faults() map[string]error {
	out := map[string]error{}
	for _, p := range i.Panels() {
		if err := p.curtain.Err(); err != nil {
			out[p.id] = err
		}
	}
	return out
}

// Scene assembles the scene tree of every panel.
func (i *Instance) Scene() *scene.Node {
	root := scene.Group(i.id, "lz-locuszoom")
	for _, p := range i.Panels() {
		root.Append(p.Scene())
	}
	return root
}

// SVG renders the plot as a standalone SVG document.
func (i *Instance) SVG() []byte {
	w, h := i.Dimensions()
	return scene.RenderSVG(i.Scene(), w, h)
}

type layerJSON struct {
	ID     string        `json:"id"`
	Type   string        `json:"type"`
	ZIndex int           `json:"z_index"`
	Phase  Phase         `json:"phase"`
	Data   []data.Record `json:"data"`
	Genes  *GeneArena    `json:"genes,omitempty"`
}

type panelJSON struct {
	ID      string           `json:"id"`
	Phase   Phase            `json:"phase"`
	Origin  Point            `json:"origin"`
	Width   float64          `json:"width"`
	Height  float64          `json:"height"`
	Margin  Margin           `json:"margin"`
	Curtain CurtainState     `json:"curtain"`
	Axes    map[string]*Axis `json:"axes"`
	Layers  []layerJSON      `json:"data_layers"`
}

// MarshalJSON emits the state, panel geometry, axes and layer data.
func (i *Instance) MarshalJSON() ([]byte, error) {
	w, h := i.Dimensions()
	out := struct {
		ID     string      `json:"id"`
		State  data.State  `json:"state"`
		Width  float64     `json:"width"`
		Height float64     `json:"height"`
		Panels []panelJSON `json:"panels"`
	}{ID: i.id, State: i.State(), Width: w, Height: h}
	for _, p := range i.Panels() {
		p.mu.Lock()
		pj := panelJSON{
			ID: p.id, Phase: p.phase, Origin: p.origin,
			Width: p.width, Height: p.height, Margin: p.margin,
			Axes: p.axes,
		}
		layers := p.sorted()
		p.mu.Unlock()
		pj.Curtain = p.curtain.State()
		for _, l := range layers {
			pj.Layers = append(pj.Layers, layerJSON{
				ID: l.id, Type: l.kind, ZIndex: l.zIndex, Phase: l.Phase(),
				Data: l.Data(), Genes: l.Genes(),
			})
		}
		out.Panels = append(out.Panels, pj)
	}
	return json.Marshal(out)
}
