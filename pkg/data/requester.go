package data

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// BaseNamespace receives unqualified fields.
const BaseNamespace = "base"

// Request is the slice of a field list that one namespace serves.
type Request struct {
	Namespace string
	// Fields are the bare field names sent to the source.
	Fields []string
	// Names are the fields as the caller wrote them, used as outnames.
	Names []string
}

// SplitFields groups fields by namespace prefix. Requests are ordered by
// the first appearance of each namespace; this order is the chain order.
func SplitFields(fields []string) []Request {
	var plan []Request
	index := map[string]int{}
	for _, name := range fields {
		ns, field, ok := strings.Cut(name, ":")
		if !ok {
			ns, field = BaseNamespace, name
		}
		i, seen := index[ns]
		if !seen {
			i = len(plan)
			index[ns] = i
			plan = append(plan, Request{Namespace: ns})
		}
		plan[i].Fields = append(plan[i].Fields, field)
		plan[i].Names = append(plan[i].Names, name)
	}
	return plan
}

// Requester resolves field lists against a [Sources] collection.
type Requester struct {
	sources *Sources
	logger  *log.Logger
}

// NewRequester creates a requester. A nil logger discards output.
func NewRequester(sources *Sources, logger *log.Logger) *Requester {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Requester{sources: sources, logger: logger}
}

// Sources returns the collection the requester resolves against.
func (r *Requester) Sources() *Sources { return r.sources }

// Links builds one link per request. Every namespace is resolved before any
// link runs, so a bad namespace fails without touching the network.
func (r *Requester) Links(state State, plan []Request) ([]Link, error) {
	links := make([]Link, len(plan))
	for i, req := range plan {
		src, ok := r.sources.Get(req.Namespace)
		if !ok {
			return nil, errors.Wrap(errors.ErrCodeSourceResolution,
				errors.New(errors.ErrCodeNotFound, "namespace %q", req.Namespace),
				"no data source for namespace %q", req.Namespace)
		}
		link, err := src.GetData(state, req.Fields, req.Names)
		if err != nil {
			return nil, fmt.Errorf("namespace %q: %w", req.Namespace, err)
		}
		links[i] = link
	}
	return links, nil
}

// Fetch runs plan sequentially, folding each link's chain into the next.
func (r *Requester) Fetch(ctx context.Context, state State, plan []Request) (Chain, error) {
	links, err := r.Links(state, plan)
	if err != nil {
		return Chain{}, err
	}
	chain := NewChain()
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return chain, errors.Wrap(errors.ErrCodeTransport, err, "request cancelled")
		}
		req := plan[i]
		r.logger.Debug("fetching", "namespace", req.Namespace, "fields", strings.Join(req.Fields, ","))
		chain, err = link(WithNamespace(ctx, req.Namespace), chain)
		if err != nil {
			return chain, fmt.Errorf("namespace %q: %w", req.Namespace, err)
		}
		r.logger.Debug("fetched", "namespace", req.Namespace, "records", len(chain.Body))
	}
	return chain, nil
}

// GetData splits fields by namespace and fetches them.
func (r *Requester) GetData(ctx context.Context, state State, fields []string) (Chain, error) {
	return r.Fetch(ctx, state, SplitFields(fields))
}
