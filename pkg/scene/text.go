package scene

import (
	"bytes"
	"encoding/xml"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// faceSize is the pixel height of the measuring face.
const faceSize = 13.0

// EscapeXML escapes s for use in text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// TextWidth returns the rendered width of s at the given font size in px.
func TextWidth(s string, size float64) float64 {
	if s == "" {
		return 0
	}
	if size <= 0 {
		size = faceSize
	}
	d := &font.Drawer{Face: basicfont.Face7x13}
	return float64(d.MeasureString(s).Ceil()) * size / faceSize
}
