// Package scene is the drawing surface that plots emit into.
//
// A scene is a tree of [Node] values mirroring SVG elements. Layers build
// subtrees under their own group and clear them on every render; the tree
// is serialised with [RenderSVG] or as JSON through [Node.MarshalJSON].
//
// [TextWidth] measures labels with the 7x13 bitmap face so that layout
// decisions such as gene track packing do not depend on installed fonts.
package scene
