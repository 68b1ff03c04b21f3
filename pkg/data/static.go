package data

import (
	"context"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// StaticName is the SOURCE_NAME of [StaticSource].
const StaticName = "StaticJSON"

// StaticSource serves fixed records regardless of state. It backs
// user-defined data such as a significance line.
type StaticSource struct {
	init Init
	data []Record
}

// NewStaticSource accepts a record array, {data: [...]}, or
// {params: {data: [...]}}.
func NewStaticSource(raw any) (*StaticSource, error) {
	var items any
	init := Init{Params: map[string]any{}}
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		if d, ok := v["data"]; ok {
			items = d
		} else if p, ok := v["params"].(map[string]any); ok {
			items = p["data"]
		}
	}
	list, ok := items.([]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeConfig, "%s: init must provide a data array", StaticName)
	}
	s := &StaticSource{init: init}
	for _, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeConfig, "%s: data entries must be objects", StaticName)
		}
		s.data = append(s.data, Record(rec))
	}
	init.Params["data"] = list
	return s, nil
}

func (s *StaticSource) Name() string { return StaticName }
func (s *StaticSource) Init() Init   { return s.init }

// URL is empty; nothing is fetched.
func (s *StaticSource) URL(State, Chain, []string) (string, error) { return "", nil }

// GetData copies the requested fields of every record under their outnames.
// With no fields each record is copied whole.
func (s *StaticSource) GetData(_ State, fields, outnames []string) (Link, error) {
	outnames = outnamesFor(fields, outnames)
	parsed, err := parseFields(fields)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, c Chain) (Chain, error) {
		body := make([]Record, len(s.data))
		for i, src := range s.data {
			rec := make(Record, len(fields))
			if len(fields) == 0 {
				for k, v := range src {
					rec[k] = v
				}
			}
			for j, f := range parsed {
				v, ok := src[f.Column]
				if !ok {
					return c, errors.New(errors.ErrCodeFieldMismatch, "%s: field %q not found in record %d", StaticName, f.Column, i)
				}
				rec[outnames[j]] = f.Apply(v)
			}
			body[i] = rec
		}
		c.Body = body
		return c, nil
	}, nil
}
