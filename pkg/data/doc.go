// Package data fetches and joins the records that data layers draw.
//
// A plot reads from several remote sources, each registered in a [Sources]
// collection under a namespace. Layers name the fields they need with a
// namespace prefix ("ld:state"); unqualified fields belong to "base".
//
// # Chains
//
// A [Requester] splits a field list into one [Request] per namespace, asks
// each [Source] for a [Link], and folds the links over an empty [Chain] in the
// order the namespaces first appear. Later links see everything earlier links
// wrote, so the LD source can pick its reference variant from the association
// body that precedes it:
//
//	chain, err := requester.GetData(ctx, state, []string{"position", "pvalue", "ld:state"})
//
// Building links is synchronous and reports configuration errors at once.
// Running them blocks on the network and reports data errors
// (FIELD_MISMATCH, TRANSPORT_ERROR, TIMEOUT). Nothing is retried.
//
// # Sources
//
// Six source types ship with the package, looked up by their SOURCE_NAME:
// AssociationLZ, LDLZ, GeneLZ, RecombLZ, IntervalLZ and StaticJSON.
package data
