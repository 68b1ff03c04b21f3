package plot

import (
	"math"

	"github.com/matzehuels/locuszoom/pkg/axis"
)

// Text anchors for labels drawn over a span.
const (
	AnchorStart  = "start"
	AnchorMiddle = "middle"
	AnchorEnd    = "end"
)

// Span is the pixel range an item occupies on its track, including any
// padding added to fit its label.
type Span struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Width  float64 `json:"width"`
	Anchor string  `json:"text_anchor"`
}

// DisplaySpan computes the pixel span of the genomic interval [start, end]
// clipped to view and widened to at least need pixels.
//
// A span narrower than need grows away from a clipped edge: an interval
// starting left of the view is left-anchored, one ending right of the view
// is right-anchored, otherwise the span is centred and then pushed back
// inside the view.
func DisplaySpan(x axis.Linear, start, end float64, view axis.Extent, need float64) Span {
	s := Span{
		Start:  x.Map(math.Max(start, view[0])),
		End:    x.Map(math.Min(end, view[1])),
		Anchor: AnchorMiddle,
	}
	s.Width = s.End - s.Start
	if s.Width >= need {
		return s
	}
	left, right := x.Map(view[0]), x.Map(view[1])
	switch {
	case start < view[0]:
		s.End = s.Start + need
		s.Anchor = AnchorStart
	case end > view[1]:
		s.Start = s.End - need
		s.Anchor = AnchorEnd
	default:
		pad := (need - s.Width) / 2
		switch {
		case s.Start-pad < left:
			s.Start = left
			s.End = left + need
			s.Anchor = AnchorStart
		case s.End+pad > right:
			s.End = right
			s.Start = right - need
			s.Anchor = AnchorEnd
		default:
			s.Start -= pad
			s.End += pad
		}
	}
	s.Width = s.End - s.Start
	return s
}

// Collide reports whether two spans overlap.
func Collide(a, b Span) bool {
	return math.Max(a.End, b.End)-math.Min(a.Start, b.Start) < a.Width+b.Width
}

// PackTracks assigns each span, in order, to the lowest-numbered track
// (starting at 1) holding no colliding span. It returns the per-span track
// numbers and the track count.
func PackTracks(spans []Span) ([]int, int) {
	tracks := make([]int, len(spans))
	var lanes [][]int
	for i, s := range spans {
		placed := false
		for t, lane := range lanes {
			free := true
			for _, j := range lane {
				if Collide(s, spans[j]) {
					free = false
					break
				}
			}
			if free {
				lanes[t] = append(lane, i)
				tracks[i] = t + 1
				placed = true
				break
			}
		}
		if !placed {
			lanes = append(lanes, []int{i})
			tracks[i] = len(lanes)
		}
	}
	return tracks, len(lanes)
}
