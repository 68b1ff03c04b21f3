package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/plot"
)

// Render serialises a mapped instance in the requested formats.
func Render(inst *plot.Instance, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		switch format {
		case FormatSVG:
			artifacts[format] = inst.SVG()
		case FormatJSON:
			data, err := json.MarshalIndent(inst, "", "  ")
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "render json")
			}
			artifacts[format] = data
		default:
			return nil, ValidateFormat(format)
		}
	}
	return artifacts, nil
}
