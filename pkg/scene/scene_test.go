package scene

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1.5, "1.5"},
		{1.23456, "1.235"},
		{-0.0001, "0"},
		{100, "100"},
	}
	for _, tt := range tests {
		if got := Num(tt.in); got != tt.want {
			t.Errorf("Num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNodeSetReplaces(t *testing.T) {
	n := Rect(1, 2, 3, 4).Set("x", 10.0).Set("fill", "#fff")
	if v, _ := n.Get("x"); v != "10" {
		t.Errorf("x = %q, want 10", v)
	}
	if len(n.Attrs) != 5 {
		t.Errorf("len(Attrs) = %d, want 5", len(n.Attrs))
	}
	if Rect(0, 0, -5, 1).Attrs[2].Value != "0" {
		t.Error("negative width should clamp to 0")
	}
}

func TestTreeHelpers(t *testing.T) {
	root := Group("plot", "")
	panel := Group("plot.association", "lz-panel")
	panel.Append(Rect(0, 0, 1, 1), Rect(1, 1, 1, 1), nil)
	root.Append(panel)

	if root.Find("plot.association") != panel {
		t.Error("Find did not return panel")
	}
	if root.Find("missing") != nil {
		t.Error("Find(missing) should be nil")
	}
	if got := root.Count("rect"); got != 2 {
		t.Errorf("Count(rect) = %d, want 2", got)
	}
	panel.Clear()
	if got := root.Count("rect"); got != 0 {
		t.Errorf("Count(rect) after Clear = %d, want 0", got)
	}
}

func TestRenderSVG(t *testing.T) {
	root := Group("plot", "")
	root.Append(Text(5, 10, "a<b & c"), Rect(0, 0, 10, 10).Set("fill", `"red"`))

	out := string(RenderSVG(root, 800, 450))
	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800 450" width="800" height="450">`,
		`<g id="plot">`,
		`>a&lt;b &amp; c</text>`,
		`fill="&#34;red&#34;"`,
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSVG missing %q in:\n%s", want, out)
		}
	}
}

func TestNodeJSON(t *testing.T) {
	root := Group("plot", "lz")
	root.Append(Text(1, 2, "hi"))
	b, err := json.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"tag":"g","attrs":{"class":"lz","id":"plot"},"children":[{"tag":"text","attrs":{"x":"1","y":"2"},"text":"hi"}]}`
	if string(b) != want {
		t.Errorf("MarshalJSON = %s\nwant %s", b, want)
	}
}

func TestTextWidth(t *testing.T) {
	if got := TextWidth("", 12); got != 0 {
		t.Errorf("TextWidth(empty) = %v", got)
	}
	// Face7x13 advances 7px per glyph.
	if got := TextWidth("ABCD", 13); got != 28 {
		t.Errorf("TextWidth(ABCD, 13) = %v, want 28", got)
	}
	if a, b := TextWidth("ABCD", 26), TextWidth("ABCD", 13); a != 2*b {
		t.Errorf("TextWidth should scale with size: %v vs %v", a, b)
	}
}

func TestSymbol(t *testing.T) {
	for _, shape := range []string{ShapeCircle, ShapeSquare, ShapeDiamond, ShapeTriangleUp, ShapeTriangleDown, ShapeCross, "unknown"} {
		d := Symbol(shape, 40)
		if !strings.HasPrefix(d, "M") || !strings.HasSuffix(d, "Z") {
			t.Errorf("Symbol(%q) = %q", shape, d)
		}
	}
	if Symbol("unknown", 40) != Symbol(ShapeCircle, 40) {
		t.Error("unknown shapes should draw circles")
	}
	if got := Symbol(ShapeSquare, 16); got != "M-2,-2L2,-2 2,2 -2,2Z" {
		t.Errorf("Symbol(square, 16) = %q", got)
	}
}
