// Package plot is the panel and data-layer lifecycle engine.
//
// An [Instance] owns the region state and a vertical stack of [Panel]
// values. Each panel owns data layers drawn in ascending z-index order.
// Every object moves through the same phases:
//
//	uninitialized → initialized → (mapped ⇄ rendered)
//
// [Instance.MapTo] sets the region and re-maps every panel. Panels run
// independently of each other: a panel fans out one data request per layer,
// waits for all of them, then recomputes extents, ticks and scales and
// redraws. A failure anywhere in that cycle is wrapped as RENDER_FAULT and
// shown on the panel's [Curtain] without touching sibling panels.
//
// Layer variants are a closed set selected by the layout "type" key:
//
//	scatter        points with scale-function driven shape, size and colour
//	line           a polyline attached to the y1 or y2 axis
//	genes          gene models packed onto non-overlapping tracks
//	intervals      annotated intervals, split by category or packed
//	genome_legend  alternating chromosome bands on a cumulative axis
//
// Rendering produces an opaque [scene.Node] tree; [Instance.SVG] serialises
// it.
package plot
