package plot

import (
	"fmt"
	"math"

	"github.com/matzehuels/locuszoom/pkg/axis"
	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/scene"
)

// Gene layer defaults, in pixels.
const (
	DefaultTrackHeight     = 40.0
	DefaultLabelMargin     = 5.0
	DefaultMinDisplayWidth = 80.0
	GeneLabelFontSize      = 12.0
)

// Gene is one gene model with its computed placement.
type Gene struct {
	ID          string  `json:"gene_id"`
	Name        string  `json:"gene_name"`
	Strand      string  `json:"strand"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Transcripts []int   `json:"-"`

	Label   string      `json:"label"`
	Display Span        `json:"display_range"`
	Domain  axis.Extent `json:"display_domain"`
	Track   int         `json:"track"`
}

// Transcript belongs to Genes[Gene].
type Transcript struct {
	ID    string
	Gene  int
	Start float64
	End   float64
	Exons []int
}

// Exon belongs to Transcripts[Transcript].
type Exon struct {
	ID         string
	Transcript int
	Start      float64
	End        float64
}

// GeneArena stores gene models in flat slices linked by index.
type GeneArena struct {
	Genes       []Gene
	Transcripts []Transcript
	Exons       []Exon
	Tracks      int
}

func genomic(rec map[string]any, key string) float64 {
	f, _ := value(rec[key])
	return f
}

// BuildGeneArena converts gene records into arena form. Records without a
// numeric start and end are skipped.
func BuildGeneArena(body []data.Record) *GeneArena {
	a := &GeneArena{}
	for _, rec := range body {
		if _, ok := value(rec["start"]); !ok {
			continue
		}
		if _, ok := value(rec["end"]); !ok {
			continue
		}
		gi := len(a.Genes)
		g := Gene{
			ID:     str(rec, "gene_id", ""),
			Name:   str(rec, "gene_name", ""),
			Strand: str(rec, "strand", ""),
			Start:  genomic(rec, "start"),
			End:    genomic(rec, "end"),
		}
		txs, _ := rec["transcripts"].([]any)
		for _, raw := range txs {
			tr, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			ti := len(a.Transcripts)
			t := Transcript{
				ID:    str(tr, "transcript_id", ""),
				Gene:  gi,
				Start: genomic(tr, "start"),
				End:   genomic(tr, "end"),
			}
			exons, _ := tr["exons"].([]any)
			for _, rawExon := range exons {
				ex, ok := rawExon.(map[string]any)
				if !ok {
					continue
				}
				t.Exons = append(t.Exons, len(a.Exons))
				a.Exons = append(a.Exons, Exon{
					ID:         str(ex, "exon_id", ""),
					Transcript: ti,
					Start:      genomic(ex, "start"),
					End:        genomic(ex, "end"),
				})
			}
			g.Transcripts = append(g.Transcripts, ti)
			a.Transcripts = append(a.Transcripts, t)
		}
		a.Genes = append(a.Genes, g)
	}
	return a
}

// GeneLabel is the strand-decorated label drawn above a gene.
func GeneLabel(name, strand string) string {
	if name == "" {
		return ""
	}
	if strand == "+" {
		return name + "→"
	}
	return "←" + name
}

// Place computes each gene's display range and track for the x scale and
// visible window.
func (a *GeneArena) Place(x axis.Linear, view axis.Extent, labelMargin, minWidth float64) {
	spans := make([]Span, len(a.Genes))
	for i := range a.Genes {
		g := &a.Genes[i]
		g.Label = GeneLabel(g.Name, g.Strand)
		need := minWidth
		if g.Label != "" {
			need = scene.TextWidth(g.Label, GeneLabelFontSize) + 2*labelMargin
		}
		g.Display = DisplaySpan(x, g.Start, g.End, view, need)
		g.Domain = axis.Extent{x.Invert(g.Display.Start), x.Invert(g.Display.End)}
		spans[i] = g.Display
	}
	tracks, n := PackTracks(spans)
	for i := range a.Genes {
		a.Genes[i].Track = tracks[i]
	}
	a.Tracks = n
}

type genes struct {
	arena *GeneArena
}

func (gl *genes) postGet(_ *DataLayer, _ data.State, c *data.Chain) {
	gl.arena = BuildGeneArena(c.Body)
}

func (gl *genes) prerender(l *DataLayer, f *Frame) {
	if gl.arena == nil {
		gl.arena = &GeneArena{}
	}
	view := axis.Extent{float64(f.State.Start), float64(f.State.End)}
	gl.arena.Place(f.X, view,
		numOr(l.layout, "label_margin", DefaultLabelMargin),
		numOr(l.layout, "min_display_range_width", DefaultMinDisplayWidth))
}

func (gl *genes) render(l *DataLayer, f *Frame, g *scene.Node) error {
	h := numOr(l.layout, "track_height", DefaultTrackHeight)
	a := gl.arena
	for i := range a.Genes {
		gene := &a.Genes[i]
		top := float64(gene.Track) * h
		id := gene.ID
		if id == "" {
			id = fmt.Sprintf("gene%d", i)
		}
		node := scene.Group(l.BaseID()+"-"+id, "lz-gene")
		x0, x1 := f.X.Map(gene.Start), f.X.Map(gene.End)
		node.Append(scene.Rect(x0, top-h/2, x1-x0, 1).
			Set("class", "lz-gene lz-boundary").
			Set("fill", "#000099"))
		var lx float64
		switch gene.Display.Anchor {
		case AnchorStart:
			lx = gene.Display.Start
		case AnchorEnd:
			lx = gene.Display.End
		default:
			lx = gene.Display.Start + gene.Display.Width/2
		}
		if gene.Label != "" {
			node.Append(scene.Text(lx, top-0.75*h, gene.Label).
				Set("class", "lz-gene lz-label").
				Set("text-anchor", gene.Display.Anchor))
		}
		if len(gene.Transcripts) > 0 {
			tr := a.Transcripts[gene.Transcripts[0]]
			for _, ei := range tr.Exons {
				ex := a.Exons[ei]
				e0, e1 := f.X.Map(ex.Start), f.X.Map(ex.End)
				node.Append(scene.Rect(e0, top-0.65*h, math.Max(e1-e0, 1), 0.3*h).
					Set("class", "lz-gene lz-exon").
					Set("fill", "#000099"))
			}
		}
		g.Append(node)
	}
	return nil
}

// Genes returns the placed gene models of a genes layer, or nil for other
// layer types.
func (l *DataLayer) Genes() *GeneArena {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gl, ok := l.v.(*genes); ok {
		return gl.arena
	}
	return nil
}
