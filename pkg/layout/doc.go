// Package layout stores and resolves declarative plot layouts.
//
// A layout is a tree of plain key/value nodes describing a plot, panel, data
// layer or dashboard. The [Registry] keeps named templates per [Kind] and hands
// out private copies with caller overrides merged in and namespace
// placeholders resolved.
//
// # Merging
//
// [Merge] is right-biased: a property present in the custom tree wins, a
// property absent (or null) in the custom tree is deep-copied from the default,
// and two objects merge recursively. Arrays are never merged element-wise.
//
// # Namespaces
//
// String values and object keys may contain {{namespace}} or {{namespace[key]}}
// placeholders. They are replaced with the layout's namespace (suffixed with
// ":" when non-empty) so that one template can address fields from differently
// named data sources:
//
//	reg, _ := layout.Default()
//	l, _ := reg.Get(layout.KindDataLayer, "association_pvalues", layout.Layout{
//	    "namespace": map[string]any{"default": "assoc", "ld": "ld"},
//	})
//	// l["fields"] now contains "assoc:position", "ld:state", ...
//
// # Files
//
// Layouts can be loaded from YAML or JSON documents with kind, name and layout
// keys. An object of the form {"$include": "kind/name", "$with": {...}} is
// replaced by the resolved registry entry at load time, which is how panels
// embed data layers and plots embed panels.
package layout
