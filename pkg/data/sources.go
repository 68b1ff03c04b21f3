package data

import (
	"bytes"
	"encoding/json"
	"slices"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// Factory builds a source from its raw init (a URL string or an object).
type Factory func(raw any, f Fetcher) (Source, error)

// Sources maps namespaces to data sources.
//
// Sources is safe for concurrent use.
type Sources struct {
	mu        sync.RWMutex
	factories map[string]Factory
	sources   map[string]Source
	order     []string
	fetch     Fetcher
}

// Option configures a [Sources] collection.
type Option func(*Sources)

// WithFetcher sets the transport used by HTTP-backed sources.
func WithFetcher(f Fetcher) Option {
	return func(s *Sources) { s.fetch = f }
}

// NewSources returns a collection with the built-in source types registered.
// Without [WithFetcher] sources use an uncached [Client].
func NewSources(opts ...Option) *Sources {
	s := &Sources{
		factories: map[string]Factory{},
		sources:   map[string]Source{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetch == nil {
		s.fetch = NewClient(nil, 0, nil)
	}

	remoteFactory := func(build func(Init, Fetcher) Source) Factory {
		return func(raw any, f Fetcher) (Source, error) {
			init, err := ParseInit(raw)
			if err != nil {
				return nil, err
			}
			return build(init, f), nil
		}
	}
	s.factories[AssociationName] = remoteFactory(func(i Init, f Fetcher) Source { return NewAssociationSource(i, f) })
	s.factories[LDName] = remoteFactory(func(i Init, f Fetcher) Source { return NewLDSource(i, f) })
	s.factories[GeneName] = remoteFactory(func(i Init, f Fetcher) Source { return NewGeneSource(i, f) })
	s.factories[RecombName] = remoteFactory(NewRecombSource)
	s.factories[IntervalName] = remoteFactory(NewIntervalSource)
	s.factories[StaticName] = func(raw any, _ Fetcher) (Source, error) { return NewStaticSource(raw) }
	return s
}

// Register adds or replaces a source type.
func (s *Sources) Register(name string, f Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[name] = f
}

// Types returns the registered SOURCE_NAMEs.
func (s *Sources) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.factories))
	for name := range s.factories {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Add binds src to namespace ns, replacing any previous binding.
func (s *Sources) Add(ns string, src Source) error {
	if err := errors.ValidateName("namespace", ns); err != nil {
		return err
	}
	if src == nil {
		return errors.New(errors.ErrCodeConfig, "namespace %q: nil source", ns)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[ns]; !ok {
		s.order = append(s.order, ns)
	}
	s.sources[ns] = src
	return nil
}

// AddKnown builds a source of a registered type and binds it to ns.
// An unknown type is SOURCE_RESOLUTION.
func (s *Sources) AddKnown(ns, typeName string, raw any) error {
	s.mu.RLock()
	factory, ok := s.factories[typeName]
	fetch := s.fetch
	s.mu.RUnlock()
	if !ok {
		return errors.New(errors.ErrCodeSourceResolution, "namespace %q: unknown source type %q", ns, typeName)
	}
	src, err := factory(raw, fetch)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeConfig
		}
		return errors.Wrap(code, err, "namespace %q", ns)
	}
	return s.Add(ns, src)
}

// Get returns the source bound to ns.
func (s *Sources) Get(ns string) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[ns]
	return src, ok
}

// Remove unbinds ns.
func (s *Sources) Remove(ns string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[ns]; !ok {
		return
	}
	delete(s.sources, ns)
	for i, k := range s.order {
		if k == ns {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Keys returns the bound namespaces in the order they were added.
func (s *Sources) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// SetJSON binds every entry of a {ns: [typeName, init]} object, in document
// order.
func (s *Sources) SetJSON(raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return errors.New(errors.ErrCodeInvalidFormat, "sources: invalid JSON")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return errors.New(errors.ErrCodeInvalidFormat, "sources: expected an object of namespace entries")
	}
	var err error
	doc.ForEach(func(key, value gjson.Result) bool {
		ns := key.String()
		entry := value.Array()
		if !value.IsArray() || len(entry) == 0 || entry[0].Type != gjson.String {
			err = errors.New(errors.ErrCodeInvalidFormat, "sources: %q must be [type, init]", ns)
			return false
		}
		var init any
		if len(entry) > 1 {
			init = entry[1].Value()
		}
		err = s.AddKnown(ns, entry[0].String(), init)
		return err == nil
	})
	return err
}

// MarshalJSON emits {ns: [SOURCE_NAME, init]} in insertion order.
func (s *Sources) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ns := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		src := s.sources[ns]
		key, _ := json.Marshal(ns)
		val, err := json.Marshal([]any{src.Name(), src.Init()})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
