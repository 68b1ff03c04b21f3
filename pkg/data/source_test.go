package data

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

var testState = State{Chr: "10", Start: 100, End: 200}

func filterOf(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query()
}

func TestParseInit(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		url     string
		timeout time.Duration
		code    errors.Code
	}{
		{"string", "https://example.org/", "https://example.org/", DefaultTimeout, ""},
		{"object", map[string]any{"url": "u/", "params": map[string]any{"analysis": 4.0}}, "u/", DefaultTimeout, ""},
		{"duration timeout", map[string]any{"url": "u/", "timeout": "250ms"}, "u/", 250 * time.Millisecond, ""},
		{"seconds timeout", map[string]any{"url": "u/", "timeout": 2.0}, "u/", 2 * time.Second, ""},
		{"empty string", "", "", 0, errors.ErrCodeMissingURL},
		{"object without url", map[string]any{"params": map[string]any{}}, "", 0, errors.ErrCodeMissingURL},
		{"nil", nil, "", 0, errors.ErrCodeMissingURL},
		{"bad timeout", map[string]any{"url": "u/", "timeout": "soon"}, "", 0, errors.ErrCodeConfig},
		{"wrong type", 42, "", 0, errors.ErrCodeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			init, err := ParseInit(tt.raw)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.code), "ParseInit() error = %v, want %s", err, tt.code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.url, init.URL)
			assert.Equal(t, tt.timeout, init.Timeout)
			assert.NotNil(t, init.Params)
		})
	}
}

func TestAssociationURL(t *testing.T) {
	src := NewAssociationSource(Init{URL: "https://example.org/single/", Params: map[string]any{"analysis": 45.0}}, nil)

	u, err := src.URL(testState, NewChain(), nil)
	require.NoError(t, err)
	assert.Contains(t, u, "https://example.org/single/results/?filter=")
	assert.NotContains(t, u, "+")
	assert.Equal(t,
		"analysis in 45 and chromosome in  '10' and position ge 100 and position le 200",
		filterOf(t, u).Get("filter"))

	// state, then header, then params
	chain := NewChain()
	chain.Header["analysis"] = 7.0
	u, _ = src.URL(testState, chain, nil)
	assert.Contains(t, filterOf(t, u).Get("filter"), "analysis in 7 ")

	st := testState
	st.Analysis = 9
	u, _ = src.URL(st, chain, nil)
	assert.Contains(t, filterOf(t, u).Get("filter"), "analysis in 9 ")

	u, _ = NewAssociationSource(Init{URL: "x/"}, nil).URL(testState, NewChain(), nil)
	assert.Contains(t, filterOf(t, u).Get("filter"), "analysis in 3 ")
}

func TestLDURL(t *testing.T) {
	src := NewLDSource(Init{URL: "https://example.org/ld/"}, nil)
	st := testState
	st.LDRefVar = "10:150_A/G"

	u, err := src.URL(st, NewChain(), []string{"state"})
	require.NoError(t, err)
	q := filterOf(t, u)
	assert.Equal(t,
		"reference eq 1 and chromosome2 eq '10' and position2 ge 100 and position2 le 200 and variant1 eq '10:150_A/G'",
		q.Get("filter"))
	assert.Equal(t, "chr,pos,rsquare", q.Get("fields"))
}

func TestLDRefVar(t *testing.T) {
	src := NewLDSource(Init{URL: "u/"}, nil)
	body := []Record{
		{"id": "a", "pvalue": 0.5},
		{"id": "b", "pvalue": 0.01},
		{"id": "c", "pvalue": 0.01},
		{"id": "d"},
	}
	chain := Chain{Header: map[string]any{}, Body: body}

	ref, err := src.refVar(State{}, chain, "state")
	require.NoError(t, err)
	assert.Equal(t, "b", ref, "first minimum wins")

	chain.Header["ldrefvar"] = "c"
	ref, _ = src.refVar(State{}, chain, "state")
	assert.Equal(t, "c", ref, "header beats best")

	ref, _ = src.refVar(State{LDRefVar: "a"}, chain, "state")
	assert.Equal(t, "a", ref, "state beats header")

	ref, _ = src.refVar(State{LDRefVar: "a"}, chain, "d")
	assert.Equal(t, "d", ref, "literal variant")

	_, err = src.refVar(State{}, NewChain(), "best")
	assert.True(t, errors.Is(err, errors.ErrCodeFieldMismatch))
}

func TestLDGetDataFieldCount(t *testing.T) {
	src := NewLDSource(Init{URL: "u/"}, nil)
	_, err := src.GetData(testState, []string{"state", "isrefvar"}, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeConfig))

	_, err = src.GetData(testState, nil, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeConfig))
}

func TestGeneAndAnnotationURLs(t *testing.T) {
	gene := NewGeneSource(Init{URL: "https://example.org/genes/", Params: map[string]any{"source": 2}}, nil)
	u, _ := gene.URL(testState, NewChain(), nil)
	assert.Equal(t, "source in 2 and chrom eq '10' and start le 200 and end ge 100", filterOf(t, u).Get("filter"))

	recomb := NewRecombSource(Init{URL: "https://example.org/recomb/results/"}, nil)
	u, _ = recomb.URL(testState, NewChain(), nil)
	assert.Equal(t, "id in 15 and chromosome eq '10' and position le 200 and position ge 100", filterOf(t, u).Get("filter"))

	intervals := NewIntervalSource(Init{URL: "https://example.org/intervals/results/"}, nil)
	u, _ = intervals.URL(testState, NewChain(), nil)
	assert.Equal(t, "id in 16 and chromosome eq '10' and start le 200 and end ge 100", filterOf(t, u).Get("filter"))
}

func TestStaticSource(t *testing.T) {
	src, err := NewStaticSource(map[string]any{"data": []any{
		map[string]any{"x": 0.0, "y": 4.522},
		map[string]any{"x": 2881033286.0, "y": 4.522},
	}})
	require.NoError(t, err)

	link, err := src.GetData(testState, []string{"x", "y"}, []string{"sig:x", "sig:y"})
	require.NoError(t, err)
	chain, err := link(t.Context(), NewChain())
	require.NoError(t, err)
	require.Len(t, chain.Body, 2)
	assert.Equal(t, Record{"sig:x": 2881033286.0, "sig:y": 4.522}, chain.Body[1])

	link, _ = src.GetData(testState, []string{"z"}, nil)
	_, err = link(t.Context(), NewChain())
	assert.True(t, errors.Is(err, errors.ErrCodeFieldMismatch))

	_, err = NewStaticSource("not data")
	assert.True(t, errors.Is(err, errors.ErrCodeConfig))
}

func TestLDRefVarFromLogPvalue(t *testing.T) {
	src := NewLDSource(Init{URL: "u/"}, nil)
	chain := Chain{Header: map[string]any{}, Body: []Record{
		{"id": "a", "log_pvalue": 2.0},
		{"id": "b", "log_pvalue": 7.5},
		{"id": "c", "log_pvalue": 7.5},
	}}
	ref, err := src.refVar(State{}, chain, "best")
	require.NoError(t, err)
	assert.Equal(t, "b", ref)
}
