package scene

import (
	"fmt"
	"math"
)

// Shapes understood by [Symbol].
const (
	ShapeCircle       = "circle"
	ShapeSquare       = "square"
	ShapeDiamond      = "diamond"
	ShapeTriangleUp   = "triangle-up"
	ShapeTriangleDown = "triangle-down"
	ShapeCross        = "cross"
)

var (
	sqrt3 = math.Sqrt(3)
	tan30 = math.Sqrt(1.0 / 3)
)

// Symbol returns path data for a point marker of the given area in px²,
// centred on the origin. Unknown shapes draw a circle.
func Symbol(shape string, size float64) string {
	size = math.Max(size, 0)
	switch shape {
	case ShapeSquare:
		h := math.Sqrt(size) / 2
		return fmt.Sprintf("M%s,%sL%s,%s %s,%s %s,%sZ", Num(-h), Num(-h), Num(h), Num(-h), Num(h), Num(h), Num(-h), Num(h))
	case ShapeDiamond:
		y := math.Sqrt(size / (2 * tan30))
		x := y * tan30
		return fmt.Sprintf("M0,%sL%s,0 0,%s %s,0Z", Num(-y), Num(x), Num(y), Num(-x))
	case ShapeTriangleUp:
		rx := math.Sqrt(size / sqrt3)
		ry := rx * sqrt3 / 2
		return fmt.Sprintf("M0,%sL%s,%s %s,%sZ", Num(-ry), Num(rx), Num(ry), Num(-rx), Num(ry))
	case ShapeTriangleDown:
		rx := math.Sqrt(size / sqrt3)
		ry := rx * sqrt3 / 2
		return fmt.Sprintf("M0,%sL%s,%s %s,%sZ", Num(ry), Num(rx), Num(-ry), Num(-rx), Num(-ry))
	case ShapeCross:
		r := math.Sqrt(size/5) / 2
		return fmt.Sprintf("M%s,%sH%sV%sH%sV%sH%sV%sH%sV%sH%sV%sH%sZ",
			Num(-3*r), Num(-r), Num(-r), Num(-3*r), Num(r), Num(-r), Num(3*r),
			Num(r), Num(r), Num(3*r), Num(-r), Num(r), Num(-3*r))
	}
	r := math.Sqrt(size / math.Pi)
	return fmt.Sprintf("M%s,0A%s,%s 0 1,1 %s,0A%s,%s 0 1,1 %s,0Z", Num(r), Num(r), Num(r), Num(-r), Num(r), Num(r), Num(r))
}
