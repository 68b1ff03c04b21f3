package scene

import (
	"encoding/json"
	"math"
	"strconv"
)

// Attr is one element attribute. Attributes keep insertion order.
type Attr struct {
	Name  string
	Value string
}

// Node is one element of the scene tree.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// New returns a node with the given tag.
func New(tag string) *Node { return &Node{Tag: tag} }

// Group returns a <g> with an id and class. Empty values are omitted.
func Group(id, class string) *Node {
	g := New("g")
	if id != "" {
		g.Set("id", id)
	}
	if class != "" {
		g.Set("class", class)
	}
	return g
}

// Rect returns a rectangle.
func Rect(x, y, w, h float64) *Node {
	return New("rect").Set("x", x).Set("y", y).Set("width", math.Max(w, 0)).Set("height", math.Max(h, 0))
}

// Line returns a line segment.
func Line(x1, y1, x2, y2 float64) *Node {
	return New("line").Set("x1", x1).Set("y1", y1).Set("x2", x2).Set("y2", y2)
}

// Path returns a path with data d.
func Path(d string) *Node { return New("path").Set("d", d) }

// Text returns a text element at x, y.
func Text(x, y float64, s string) *Node {
	n := New("text").Set("x", x).Set("y", y)
	n.Text = s
	return n
}

// Set assigns an attribute, replacing an existing one of the same name.
// Numbers are written with at most three decimals.
func (n *Node) Set(name string, value any) *Node {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case float64:
		s = Num(v)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case bool:
		s = strconv.FormatBool(v)
	case nil:
		return n
	default:
		b, _ := json.Marshal(v)
		s = string(b)
	}
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = s
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: s})
	return n
}

// Get returns an attribute value.
func (n *Node) Get(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ID returns the id attribute.
func (n *Node) ID() string {
	id, _ := n.Get("id")
	return id
}

// Append adds children and returns n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Clear removes every child.
func (n *Node) Clear() { n.Children = nil }

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the first descendant (or n) with the given id.
func (n *Node) Find(id string) *Node {
	if n.ID() == id {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

// Count returns how many nodes in the subtree have tag.
func (n *Node) Count(tag string) int {
	count := 0
	n.Walk(func(m *Node) {
		if m.Tag == tag {
			count++
		}
	})
	return count
}

// Num formats v with at most three decimals and no trailing zeros.
func Num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

type jsonNode struct {
	Tag      string            `json:"tag"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// MarshalJSON emits {tag, attrs, text, children}.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := jsonNode{Tag: n.Tag, Text: n.Text, Children: n.Children}
	if len(n.Attrs) > 0 {
		out.Attrs = make(map[string]string, len(n.Attrs))
		for _, a := range n.Attrs {
			out.Attrs[a.Name] = a.Value
		}
	}
	return json.Marshal(out)
}
