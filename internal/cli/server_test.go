package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
)

func newTestServer(t *testing.T) (*server, *httptest.Server) {
	t.Helper()
	path, _ := testConfig(t)
	c := testCLI(path)
	runner, err := c.newRunner(context.Background(), false)
	if err != nil {
		t.Fatalf("newRunner() error = %v", err)
	}
	t.Cleanup(func() { runner.Close() })

	srv := newServer(runner, prometheus.NewRegistry(), c.Logger)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestServePlot(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/plots/mini.svg?region=10:1-400")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Cache") != "MISS" {
		t.Errorf("first request X-Cache = %q, want MISS", resp.Header.Get("X-Cache"))
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if !strings.HasPrefix(body, "<svg") || !strings.Contains(body, "Chromosome 10 (Mb)") {
		t.Errorf("body is not the plot: %.120s", body)
	}

	resp, _ = get(t, ts.URL+"/plots/mini.svg?region=10:1-400")
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Errorf("second request X-Cache = %q, want HIT", resp.Header.Get("X-Cache"))
	}

	resp, body = get(t, ts.URL+"/plots/mini.json?region=10:1-400&width=600")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("json status = %d, body = %s", resp.StatusCode, body)
	}
	var decoded struct {
		State struct {
			Chr string `json:"chr"`
		} `json:"state"`
	}
	if err := json.Unmarshal([]byte(body), &decoded); err != nil || decoded.State.Chr != "10" {
		t.Errorf("json body state = %+v, err = %v", decoded.State, err)
	}
}

func TestServeErrors(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		code   errors.Code
	}{
		{"unknown layout", "/plots/nope.svg?region=10:1-400", http.StatusNotFound, errors.ErrCodeNotFound},
		{"missing region", "/plots/mini.svg", http.StatusBadRequest, errors.ErrCodeInvalidRegion},
		{"bad region", "/plots/mini.svg?region=10:9-2", http.StatusBadRequest, errors.ErrCodeInvalidRegion},
		{"bad format", "/plots/mini.png?region=10:1-400", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad width", "/plots/mini.svg?region=10:1-400&width=wide", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad kind", "/layouts/widget/x", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing layout", "/layouts/plot/nope", http.StatusNotFound, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.status, body)
			}
			var e struct {
				Code errors.Code `json:"code"`
			}
			if err := json.Unmarshal([]byte(body), &e); err != nil {
				t.Fatalf("error body is not JSON: %s", body)
			}
			if e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestServeLayouts(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/layouts")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var all map[string][]string
	if err := json.Unmarshal([]byte(body), &all); err != nil {
		t.Fatal(err)
	}
	if !contains(all["plot"], "mini") || !contains(all["plot"], "standard_association") {
		t.Errorf("plots = %v", all["plot"])
	}

	resp, body = get(t, ts.URL+"/layouts/data_layer/association_pvalues?namespace=default=assoc2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "assoc2:") {
		t.Errorf("namespace override not applied: %.200s", body)
	}
}

func TestServeSourcesAndHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/sources")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"base"`) {
		t.Errorf("/sources = %d %s", resp.StatusCode, body)
	}
	resp, body = get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Errorf("/healthz = %d %s", resp.StatusCode, body)
	}
	resp, _ = get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/metrics status = %d", resp.StatusCode)
	}
}

func TestServeSetLayouts(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.setLayouts(layout.NewRegistry())

	resp, _ := get(t, ts.URL+"/plots/mini.svg?region=10:1-400")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status after swapping layouts = %d, want 404", resp.StatusCode)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidRegion, http.StatusBadRequest},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeMissingURL, http.StatusUnprocessableEntity},
		{errors.ErrCodeTransport, http.StatusBadGateway},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errors.ErrCodeRenderFault, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := httpStatus(tt.code); got != tt.want {
			t.Errorf("httpStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
