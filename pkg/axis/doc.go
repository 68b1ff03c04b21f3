// Package axis provides the numeric machinery behind panel axes: extents,
// linear scales, "pretty" tick generation and genomic tick formatting.
//
// [PrettyTicks] follows R's classic pretty() heuristic. For a range and a
// target count it picks a unit of 1, 2, 5 or 10 times a power of ten and
// steps from the first multiple at or below the range start to one step past
// the range end:
//
//	axis.PrettyTicks(axis.Extent{0, 100}, 5, false) // [0 20 40 60 80 100]
package axis
