package plot

import (
	"fmt"
	"math"

	"github.com/matzehuels/locuszoom/pkg/axis"
	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/scene"
)

// Tick is one axis tick.
type Tick struct {
	Value     float64        `json:"x"`
	Text      string         `json:"text"`
	Style     map[string]any `json:"style,omitempty"`
	Transform string         `json:"transform,omitempty"`
}

// Axis is the extent, ticks and scale of one panel axis.
type Axis struct {
	Extent   axis.Extent `json:"extent"`
	Ticks    []Tick      `json:"ticks"`
	Scale    axis.Linear `json:"-"`
	Label    string      `json:"label,omitempty"`
	Rendered bool        `json:"rendered"`
}

func (p *Panel) axisLayout(key string) map[string]any {
	return sub(sub(p.layout, "axes"), key)
}

// customTicks reads a layout ticks list.
func customTicks(raw any) ([]Tick, bool) {
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Tick, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		x, ok := value(m["x"])
		if !ok {
			continue
		}
		t := Tick{Value: x, Text: str(m, "text", axis.FormatTick(x)), Style: sub(m, "style"), Transform: str(m, "transform", "")}
		out = append(out, t)
	}
	return out, true
}

// newXAxis builds the x axis. Ticks come from the layout when listed,
// otherwise one pretty tick per XTickSpacing pixels, keeping only ticks
// inside the extent.
func (p *Panel) newXAxis(ext axis.Extent, clipW float64, state data.State) *Axis {
	cfg := p.axisLayout("x")
	a := &Axis{Extent: ext, Scale: axis.NewLinear(ext, axis.Extent{0, clipW}), Rendered: cfg == nil || cfg["render"] != false}
	if ticks, ok := customTicks(cfg["ticks"]); ok {
		a.Ticks = ticks
	} else {
		n := max(int(math.Round(clipW/XTickSpacing)), 1)
		format := axis.FormatTick
		if str(cfg, "tick_format", "") == "region" {
			format = axis.FormatMegabase
		}
		for _, v := range axis.PrettyTicks(ext, n, true) {
			a.Ticks = append(a.Ticks, Tick{Value: v, Text: format(v)})
		}
	}
	a.Label = axisLabel(cfg, state)
	return a
}

// newYAxis builds a y axis whose scale domain spans the first to the last
// pretty tick.
func (p *Panel) newYAxis(key string, ext axis.Extent, clipH float64) *Axis {
	cfg := p.axisLayout(key)
	a := &Axis{Extent: ext, Rendered: cfg == nil || cfg["render"] != false, Label: str(cfg, "label", "")}
	if ticks, ok := customTicks(cfg["ticks"]); ok {
		a.Ticks = ticks
		a.Scale = axis.NewLinear(ext, axis.Extent{clipH, 0})
		return a
	}
	vals := axis.PrettyTicks(ext, axis.DefaultTickCount, false)
	for _, v := range vals {
		a.Ticks = append(a.Ticks, Tick{Value: v, Text: axis.FormatTick(v)})
	}
	a.Scale = axis.NewLinear(axis.Extent{vals[0], vals[len(vals)-1]}, axis.Extent{clipH, 0})
	return a
}

func axisLabel(cfg map[string]any, state data.State) string {
	if str(cfg, "label_function", "") == "chromosome" {
		if state.Chr == "" {
			return "Chromosome"
		}
		return fmt.Sprintf("Chromosome %s (Mb)", state.Chr)
	}
	return str(cfg, "label", "")
}

func (p *Panel) axisNode(key string, a *Axis, clipW, clipH float64) *scene.Node {
	cfg := p.axisLayout(key)
	offset := numOr(cfg, "label_offset", 0)
	g := scene.Group(p.BaseID()+"."+key+"_axis", "lz-axis lz-"+key)
	switch key {
	case "x":
		g.Set("transform", translate(p.margin.Left, p.height-p.margin.Bottom))
		g.Append(scene.Path(fmt.Sprintf("M0,0H%s", scene.Num(clipW))).Set("class", "domain"))
		for _, t := range a.Ticks {
			x := a.Scale.Map(t.Value)
			if x < 0 || x > clipW {
				continue
			}
			g.Append(tickNode(t, x, 0, 0, 6, 0, 9, "middle", "hanging"))
		}
		if a.Label != "" {
			g.Append(scene.Text(clipW/2, offset, a.Label).Set("class", "lz-label").Set("text-anchor", "middle"))
		}
	case "y1", "y2":
		dir, anchor, x := -1.0, "end", p.margin.Left
		if key == "y2" {
			dir, anchor, x = 1.0, "start", p.width-p.margin.Right
		}
		g.Set("transform", translate(x, p.margin.Top))
		g.Append(scene.Path(fmt.Sprintf("M0,0V%s", scene.Num(clipH))).Set("class", "domain"))
		for _, t := range a.Ticks {
			y := a.Scale.Map(t.Value)
			g.Append(tickNode(t, 0, y, 6*dir, 0, 9*dir, 0, anchor, "middle"))
		}
		if a.Label != "" {
			lx := dir * offset
			g.Append(scene.Text(lx, clipH/2, a.Label).
				Set("class", "lz-label").
				Set("text-anchor", "middle").
				Set("transform", fmt.Sprintf("rotate(%d %s %s)", int(-90*-dir), scene.Num(lx), scene.Num(clipH/2))))
		}
	}
	return g
}

func tickNode(t Tick, x, y, dx, dy, tx, ty float64, anchor, baseline string) *scene.Node {
	g := scene.Group("", "tick").Set("transform", translate(x, y))
	g.Append(scene.Line(0, 0, dx, dy))
	label := scene.Text(tx, ty, t.Text).Set("text-anchor", anchor).Set("dominant-baseline", baseline)
	if style := css(t.Style); style != "" {
		label.Set("style", style)
	}
	if t.Transform != "" {
		label.Set("transform", t.Transform)
	}
	return g.Append(label)
}

// legendNode draws the panel legend from the layers' legend entries. A
// missing or hidden legend draws nothing.
func (p *Panel) legendNode(layers []*DataLayer) *scene.Node {
	cfg := sub(p.layout, "legend")
	if cfg == nil || flag(cfg, "hidden") {
		return nil
	}
	o := sub(cfg, "origin")
	g := scene.Group(p.BaseID()+".legend", "lz-legend").
		Set("transform", translate(numOr(o, "x", 0), numOr(o, "y", 0)))
	horizontal := str(cfg, "orientation", "vertical") == "horizontal"
	const pad, row = 5.0, 15.0
	cx, cy := pad, pad
	for _, l := range layers {
		entries, _ := l.layout["legend"].([]any)
		for _, raw := range entries {
			e, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			color := str(e, "color", DefaultColor)
			shape := str(e, "shape", scene.ShapeCircle)
			label := str(e, "label", "")
			var mark *scene.Node
			width := 0.0
			if shape == "rect" {
				width = numOr(e, "width", 9)
				mark = scene.Rect(cx, cy, width, numOr(e, "height", 5)).Set("fill", color)
			} else {
				size := numOr(e, "size", DefaultPointSize)
				width = 2 * math.Sqrt(size/math.Pi)
				mark = scene.Path(scene.Symbol(shape, size)).
					Set("transform", translate(cx+width/2, cy+width/2)).
					Set("fill", color)
			}
			g.Append(mark)
			g.Append(scene.Text(cx+width+pad, cy+width/2, label).Set("dominant-baseline", "middle"))
			if horizontal {
				cx += width + 2*pad + scene.TextWidth(label, 12) + row
			} else {
				cy += math.Max(width, row) + pad
			}
		}
	}
	if len(g.Children) == 0 {
		return nil
	}
	return g
}
