package plot

import (
	"fmt"
	"math"
	"sort"

	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
	"github.com/matzehuels/locuszoom/pkg/scene"
)

// Scatter defaults.
const (
	DefaultPointSize  = 40
	DefaultPointShape = scene.ShapeCircle
	DefaultColor      = "#888888"
)

type scatter struct {
	xField, yField string
	idField        string
	labels         []filter
	labelText      string
}

func newScatter(lay layout.Layout) (*scatter, error) {
	s := &scatter{
		xField:  str(sub(lay, "x_axis"), "field", ""),
		yField:  str(sub(lay, "y_axis"), "field", ""),
		idField: str(lay, "id_field", "id"),
	}
	if s.xField == "" || s.yField == "" {
		return nil, errors.New(errors.ErrCodeConfig, "scatter layer requires x_axis.field and y_axis.field")
	}
	if label := sub(lay, "label"); label != nil {
		s.labelText = str(label, "text", "")
		filters, err := parseFilters(label["filters"])
		if err != nil {
			return nil, err
		}
		s.labels = filters
	}
	return s, nil
}

func (s *scatter) recordID(rec data.Record) string {
	if v, ok := rec[s.idField]; ok && v != nil {
		return fmt.Sprint(v)
	}
	if v, ok := rec["id"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// postGet adds log10pval when the layout names a pvalue_field and flags the
// LD reference variant when it names a refvar_flag_field.
func (s *scatter) postGet(l *DataLayer, state data.State, c *data.Chain) {
	if pf := str(l.layout, "pvalue_field", ""); pf != "" {
		for _, rec := range c.Body {
			if p, ok := value(rec[pf]); ok && p > 0 {
				rec["log10pval"] = -math.Log10(p)
			}
		}
	}
	flagField := str(l.layout, "refvar_flag_field", "")
	if flagField == "" {
		return
	}
	ref, _ := c.Header["ldrefvar"].(string)
	if ref == "" {
		ref = state.LDRefVar
	}
	if ref == "" {
		return
	}
	for _, rec := range c.Body {
		if s.recordID(rec) == ref || fmt.Sprint(rec["id"]) == ref {
			rec[flagField] = 1.0
		}
	}
}

func (s *scatter) prerender(*DataLayer, *Frame) {}

func (s *scatter) render(l *DataLayer, f *Frame, g *scene.Node) error {
	y := f.Y(l.YAxis())
	points := scene.Group("", "lz-points")
	labels := scene.Group("", "lz-labels")
	spacing := numOr(sub(l.layout, "label"), "spacing", 4)
	labelStyle := css(sub(sub(l.layout, "label"), "style"))
	for _, rec := range l.chain.Body {
		xv, xok := value(rec[s.xField])
		yv, yok := value(rec[s.yField])
		if !xok || !yok {
			continue
		}
		px, py := f.X.Map(xv), y.Map(yv)
		shape := l.attrs.str(l.layout["point_shape"], rec, DefaultPointShape)
		size := l.attrs.num(l.layout["point_size"], rec, DefaultPointSize)
		id := s.recordID(rec)
		class := "lz-data_layer-scatter"
		if id != "" && id == f.State.LDRefVar {
			class += " lz-selected"
		}
		pt := scene.Path(scene.Symbol(shape, size)).
			Set("class", class).
			Set("transform", translate(px, py)).
			Set("fill", l.attrs.str(l.layout["color"], rec, DefaultColor))
		if op, ok := l.layout["fill_opacity"]; ok {
			pt.Set("fill-opacity", l.attrs.num(op, rec, 1))
		}
		if id != "" {
			pt.Set("id", l.BaseID()+"-"+id)
			title := scene.New("title")
			title.Text = id
			pt.Append(title)
		}
		points.Append(pt)

		if s.labelText != "" && matchAll(s.labels, rec) {
			r := math.Sqrt(size / math.Pi)
			t := scene.Text(px+r+spacing, py, fill(s.labelText, rec)).
				Set("class", "lz-data_layer-scatter-label").
				Set("dominant-baseline", "middle")
			if labelStyle != "" {
				t.Set("style", labelStyle)
			}
			labels.Append(t)
		}
	}
	g.Append(points)
	if len(labels.Children) > 0 {
		g.Append(labels)
	}
	return nil
}

// line draws a polyline through the data sorted by x.
type line struct{}

func (line) postGet(*DataLayer, data.State, *data.Chain) {}
func (line) prerender(*DataLayer, *Frame)                {}

func (line) render(l *DataLayer, f *Frame, g *scene.Node) error {
	xField := str(sub(l.layout, "x_axis"), "field", "")
	yField := str(sub(l.layout, "y_axis"), "field", "")
	if xField == "" || yField == "" {
		return errors.New(errors.ErrCodeConfig, "line layer requires x_axis.field and y_axis.field")
	}
	type point struct{ x, y float64 }
	pts := make([]point, 0, len(l.chain.Body))
	for _, rec := range l.chain.Body {
		xv, xok := value(rec[xField])
		yv, yok := value(rec[yField])
		if xok && yok {
			pts = append(pts, point{xv, yv})
		}
	}
	if len(pts) == 0 {
		return nil
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].x < pts[j].x })
	y := f.Y(l.YAxis())
	d := make([]byte, 0, len(pts)*16)
	for i, p := range pts {
		if i == 0 {
			d = append(d, 'M')
		} else {
			d = append(d, 'L')
		}
		d = append(d, scene.Num(f.X.Map(p.x))...)
		d = append(d, ',')
		d = append(d, scene.Num(y.Map(p.y))...)
	}
	path := scene.Path(string(d)).Set("class", "lz-data_layer-line").Set("fill", "none")
	if style := css(sub(l.layout, "style")); style != "" {
		path.Set("style", style)
	}
	g.Append(path)
	return nil
}
