package layout

import (
	"bytes"
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

//go:embed defaults/*.yaml
var defaultFS embed.FS

// defaultFiles are loaded in this order so that includes resolve.
var defaultFiles = []string{
	"defaults/data_layers.yaml",
	"defaults/dashboards.yaml",
	"defaults/panels.yaml",
	"defaults/plots.yaml",
}

const (
	includeKey = "$include"
	withKey    = "$with"
)

// Document is one entry of a layout file.
type Document struct {
	Kind   Kind   `yaml:"kind" json:"kind"`
	Name   string `yaml:"name" json:"name"`
	Layout Layout `yaml:"layout" json:"layout"`
}

// Default returns a registry populated with the built-in layouts.
func Default() (*Registry, error) {
	r := NewRegistry()
	for _, name := range defaultFiles {
		data, err := defaultFS.ReadFile(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", name)
		}
		if _, err := r.Load(bytes.NewReader(data), name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Load decodes layout documents from rd and stores them. Files ending in
// .json hold a single document or an array of documents; anything else is
// read as a stream of YAML documents. It returns the kind/name of every
// document stored.
func (r *Registry) Load(rd io.Reader, filename string) ([]string, error) {
	docs, err := decodeDocuments(rd, filename)
	if err != nil {
		return nil, err
	}

	var stored []string
	for _, doc := range docs {
		if !ValidKinds[doc.Kind] {
			return stored, errors.New(errors.ErrCodeConfig, "%s: unknown layout kind %q", filename, doc.Kind)
		}
		resolved, err := r.resolveIncludes(normalize(doc.Layout))
		if err != nil {
			return stored, errors.Wrap(errors.ErrCodeConfig, err, "%s: %s/%s", filename, doc.Kind, doc.Name)
		}
		l, _ := resolved.(map[string]any)
		if err := r.Set(doc.Kind, doc.Name, l); err != nil {
			return stored, err
		}
		stored = append(stored, string(doc.Kind)+"/"+doc.Name)
	}
	return stored, nil
}

// LoadFile loads one layout file from disk.
func (r *Registry) LoadFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "open layout file")
	}
	defer f.Close()
	return r.Load(f, filename)
}

// LoadDir loads every .yaml, .yml and .json file in dir, in lexical order.
func (r *Registry) LoadDir(dir string) ([]string, error) {
	return r.LoadFS(os.DirFS(dir), ".")
}

// LoadFS loads every layout file directly under dir in fsys.
func (r *Registry) LoadFS(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "read layout directory")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var stored []string
	for _, e := range entries {
		if e.IsDir() || !IsLayoutFile(e.Name()) {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return stored, errors.Wrap(errors.ErrCodeConfig, err, "read %s", e.Name())
		}
		names, err := r.Load(bytes.NewReader(data), e.Name())
		stored = append(stored, names...)
		if err != nil {
			return stored, err
		}
	}
	return stored, nil
}

// IsLayoutFile reports whether name has a layout file extension.
func IsLayoutFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func decodeDocuments(rd io.Reader, filename string) ([]Document, error) {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		data, err := io.ReadAll(rd)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, err, "read %s", filename)
		}
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '[' {
			var docs []Document
			if err := json.Unmarshal(data, &docs); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", filename)
			}
			return docs, nil
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", filename)
		}
		return []Document{doc}, nil
	}

	var docs []Document
	dec := yaml.NewDecoder(rd)
	for {
		var doc Document
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", filename)
		}
		if doc.Kind == "" && doc.Name == "" && doc.Layout == nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// normalize converts YAML-decoded maps with non-string keys into
// map[string]any so the tree is JSON-safe.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[toString(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	}
	return v
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// resolveIncludes replaces {"$include": "kind/name", "$with": {...}} objects
// with the named, fully resolved registry entry.
func (r *Registry) resolveIncludes(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		if ref, ok := t[includeKey].(string); ok {
			kind, name, found := strings.Cut(ref, "/")
			if !found {
				return nil, errors.New(errors.ErrCodeConfig, "bad include %q: want kind/name", ref)
			}
			var with Layout
			if w, ok := t[withKey].(map[string]any); ok {
				resolved, err := r.resolveIncludes(w)
				if err != nil {
					return nil, err
				}
				with, _ = resolved.(map[string]any)
			}
			return r.Get(Kind(kind), name, with)
		}
		for k, e := range t {
			resolved, err := r.resolveIncludes(e)
			if err != nil {
				return nil, err
			}
			t[k] = resolved
		}
		return t, nil
	case []any:
		for i, e := range t {
			resolved, err := r.resolveIncludes(e)
			if err != nil {
				return nil, err
			}
			t[i] = resolved
		}
		return t, nil
	}
	return v, nil
}
