// Package pipeline provides the region plot pipeline shared by the CLI and
// the HTTP server.
//
// # Architecture
//
// A run has three stages:
//
//  1. Region: parse the query and expand single positions by a flank
//  2. Build: resolve the named plot layout and assemble a [plot.Instance]
//  3. Render: map the instance to the region and serialise it (SVG, JSON)
//
// Rendered artifacts are cached by layout, region and format. A run in which
// any panel dropped its curtain is still rendered, so the failure is visible
// in the output, but it is never cached.
//
// # Usage
//
//	runner := pipeline.NewRunner(registry, sources, c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Layout:  "standard_association",
//	    Region:  "10:114550452-115067678",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/locuszoom/pkg/cache"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/plot"
	"github.com/matzehuels/locuszoom/pkg/region"
)

const (
	// DefaultLayout is the plot layout used when none is named.
	DefaultLayout = "standard_association"

	// DefaultWidth is the plot width in pixels.
	DefaultWidth = 800

	// MaxWidth bounds the requested width.
	MaxWidth = 4000

	// TTLArtifact is how long rendered artifacts stay cached.
	TTLArtifact = 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
}

// Options contains the configuration of one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Layout    string         `json:"layout"`
	Region    string         `json:"region"`
	Flank     int64          `json:"flank,omitempty"`
	LDRefVar  string         `json:"ldrefvar,omitempty"`
	Overrides map[string]any `json:"overrides,omitempty"`
	Width     int            `json:"width,omitempty"`
	Formats   []string       `json:"formats,omitempty"`
	Refresh   bool           `json:"refresh,omitempty"` // bypass the artifact cache

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Region is the expanded region the plot was mapped to.
	Region region.Region

	// Plot is the mapped instance. It is nil when every artifact came from
	// the cache.
	Plot *plot.Instance

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Faults holds the error of every panel whose curtain is down.
	Faults map[string]error

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline timing information.
type Stats struct {
	MapTime    time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache use for a run.
type CacheInfo struct {
	RenderHit bool // every artifact came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Region == "" {
		return errors.New(errors.ErrCodeInvalidRegion, "region is required")
	}
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if err := errors.ValidateName("layout", o.Layout); err != nil {
		return err
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Width < 0 || o.Width > MaxWidth {
		return errors.New(errors.ErrCodeInvalidInput, "width %d out of range (1-%d)", o.Width, MaxWidth)
	}
	if o.Flank == 0 {
		o.Flank = region.DefaultFlank
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for one rendered format of r.
func (o *Options) ArtifactKeyOpts(r region.Region, layoutHash, format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Layout:     o.Layout,
		Overrides:  o.Overrides,
		Chr:        r.Chr,
		Start:      r.Start,
		End:        r.End,
		LDRefVar:   o.LDRefVar,
		Width:      o.Width,
		Format:     format,
		LayoutHash: layoutHash,
	}
}
