package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/locuszoom/pkg/pipeline"
)

func captureUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := ui
	ui = &buf
	t.Cleanup(func() { ui = prev })
	return &buf
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		name string
		res  *pipeline.Result
		want []string
	}{
		{
			name: "fresh with faults",
			res: &pipeline.Result{
				Stats:  pipeline.Stats{MapTime: 412 * time.Millisecond},
				Faults: map[string]error{"genes": errors.New("boom")},
			},
			want: []string{"mapped in 412ms", "1 failed", "fresh"},
		},
		{
			name: "cached",
			res:  &pipeline.Result{CacheInfo: pipeline.CacheInfo{RenderHit: true}},
			want: []string{"cached"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureUI(t)
			printStats(tt.res)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("printStats() = %q, missing %q", buf.String(), w)
				}
			}
		})
	}
}

func TestPrintLines(t *testing.T) {
	buf := captureUI(t)
	printSuccess("Rendered %s", "10:1-400")
	printWarning("panel %s: %v", "genes", "timeout")
	printFile("plot.svg")
	out := buf.String()
	for _, w := range []string{iconSuccess + " Rendered 10:1-400", "panel genes: timeout", iconArrow, "plot.svg"} {
		if !strings.Contains(out, w) {
			t.Errorf("output %q missing %q", out, w)
		}
	}
}
