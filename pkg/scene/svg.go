package scene

import (
	"bytes"
	"fmt"
	"strings"
)

const baseCSS = `
    text { font-family: sans-serif; font-size: 12px; }
    .lz-axis line, .lz-axis path { stroke: #333; fill: none; }
    .lz-curtain text { fill: #a94442; }`

// RenderSVG serialises root into a standalone SVG document.
func RenderSVG(root *Node, width, height float64) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		Num(width), Num(height), Num(width), Num(height))
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", baseCSS)
	write(&buf, root, 1)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func write(buf *bytes.Buffer, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(n.Tag)
	for _, a := range n.Attrs {
		fmt.Fprintf(buf, ` %s="%s"`, a.Name, EscapeXML(a.Value))
	}
	switch {
	case len(n.Children) == 0 && n.Text == "":
		buf.WriteString("/>\n")
	case len(n.Children) == 0:
		fmt.Fprintf(buf, ">%s</%s>\n", EscapeXML(n.Text), n.Tag)
	default:
		buf.WriteString(">\n")
		if n.Text != "" {
			buf.WriteString(indent + "  " + EscapeXML(n.Text) + "\n")
		}
		for _, c := range n.Children {
			write(buf, c, depth+1)
		}
		fmt.Fprintf(buf, "%s</%s>\n", indent, n.Tag)
	}
}
