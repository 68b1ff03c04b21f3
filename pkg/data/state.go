package data

// State is the genomic region being viewed plus layer-level selections.
type State struct {
	Chr   string `json:"chr"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`

	// LDRefVar is the selected LD reference variant id. Empty means the LD
	// source picks one.
	LDRefVar string `json:"ldrefvar,omitempty"`
	// LDRefSource selects the LD reference panel. Zero falls back to the
	// chain header, then 1.
	LDRefSource int `json:"ldrefsource,omitempty"`
	// Analysis selects the association analysis. Zero falls back to the
	// chain header, then the source params, then 3.
	Analysis int `json:"analysis,omitempty"`
}

// Record maps an output field name to a scalar value.
type Record map[string]any

// Chain is the accumulator threaded through a sequence of links.
type Chain struct {
	Header map[string]any `json:"header"`
	Body   []Record       `json:"body"`
}

// NewChain returns an empty chain.
func NewChain() Chain {
	return Chain{Header: map[string]any{}, Body: []Record{}}
}

// headerString returns a non-empty string header value.
func (c Chain) headerString(key string) string {
	if s, ok := c.Header[key].(string); ok {
		return s
	}
	return ""
}

// headerInt returns a positive integer header value.
func (c Chain) headerInt(key string) int {
	switch v := c.Header[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
