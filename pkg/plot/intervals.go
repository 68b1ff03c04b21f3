package plot

import (
	"fmt"
	"sort"

	"github.com/matzehuels/locuszoom/pkg/axis"
	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
	"github.com/matzehuels/locuszoom/pkg/scale"
	"github.com/matzehuels/locuszoom/pkg/scene"
)

// Interval layer defaults, in pixels.
const (
	DefaultIntervalTrackHeight = 15.0
	DefaultIntervalSpacing     = 3.0
)

type intervals struct {
	startField, endField string
	splitField           string
	tracks               []int
	count                int
}

func newIntervals(lay layout.Layout) (*intervals, error) {
	iv := &intervals{
		startField: str(lay, "start_field", "start"),
		endField:   str(lay, "end_field", "end"),
		splitField: str(lay, "track_split_field", ""),
	}
	if flag(lay, "split_tracks") && iv.splitField == "" {
		return nil, errors.New(errors.ErrCodeConfig, "split_tracks requires track_split_field")
	}
	return iv, nil
}

func (iv *intervals) postGet(*DataLayer, data.State, *data.Chain) {}

// prerender assigns tracks. With split_tracks each distinct split value
// gets its own track, ordered by value; otherwise intervals are packed
// first-fit.
func (iv *intervals) prerender(l *DataLayer, f *Frame) {
	body := l.chain.Body
	iv.tracks = make([]int, len(body))
	if flag(l.layout, "split_tracks") {
		var keys []any
		for _, rec := range body {
			v := rec[iv.splitField]
			found := false
			for _, k := range keys {
				if scale.Equal(k, v) {
					found = true
					break
				}
			}
			if !found {
				keys = append(keys, v)
			}
		}
		sort.SliceStable(keys, func(i, j int) bool { return lessValue(keys[i], keys[j]) })
		for i, rec := range body {
			for t, k := range keys {
				if scale.Equal(k, rec[iv.splitField]) {
					iv.tracks[i] = t + 1
					break
				}
			}
		}
		iv.count = len(keys)
		return
	}
	view := axis.Extent{float64(f.State.Start), float64(f.State.End)}
	spans := make([]Span, len(body))
	for i, rec := range body {
		s, _ := value(rec[iv.startField])
		e, _ := value(rec[iv.endField])
		spans[i] = DisplaySpan(f.X, s, e, view, 0)
	}
	iv.tracks, iv.count = PackTracks(spans)
}

func lessValue(a, b any) bool {
	af, aok := value(a)
	bf, bok := value(b)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func (iv *intervals) render(l *DataLayer, f *Frame, g *scene.Node) error {
	h := numOr(l.layout, "track_height", DefaultIntervalTrackHeight)
	gap := numOr(l.layout, "track_vertical_spacing", DefaultIntervalSpacing)
	for i, rec := range l.chain.Body {
		s, sok := value(rec[iv.startField])
		e, eok := value(rec[iv.endField])
		if !sok || !eok {
			continue
		}
		x0, x1 := f.X.Map(s), f.X.Map(e)
		y := float64(iv.tracks[i]-1) * (h + gap)
		g.Append(scene.Rect(x0, y, x1-x0, h).
			Set("class", "lz-data_layer-intervals").
			Set("fill", l.attrs.str(l.layout["color"], rec, DefaultColor)))
	}
	return nil
}

// genomeLegend draws alternating bands, one per chromosome, over a
// cumulative base-pair axis.
type genomeLegend struct{}

var bandColors = [2]string{"rgb(120, 120, 186)", "rgb(0, 0, 66)"}

func (genomeLegend) postGet(*DataLayer, data.State, *data.Chain) {}
func (genomeLegend) prerender(*DataLayer, *Frame)                {}

func (genomeLegend) render(l *DataLayer, f *Frame, g *scene.Node) error {
	if len(l.fields) < 2 {
		return errors.New(errors.ErrCodeConfig, "genome_legend requires chromosome and base pair fields")
	}
	chrField, bpField := l.fields[0], l.fields[1]
	offset := 0.0
	for i, rec := range l.chain.Body {
		bp, ok := value(rec[bpField])
		if !ok {
			return errors.New(errors.ErrCodeFieldMismatch, "chromosome %v has no %s", rec[chrField], bpField)
		}
		x0, x1 := f.X.Map(offset), f.X.Map(offset+bp)
		band := scene.Rect(x0, 0, x1-x0, f.Height).
			Set("class", "lz-data_layer-genome_legend").
			Set("fill", bandColors[i%2])
		title := scene.New("title")
		title.Text = fmt.Sprint(rec[chrField])
		band.Append(title)
		g.Append(band)
		offset += bp
	}
	return nil
}
