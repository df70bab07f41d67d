// Package benchmarks holds cross-package benchmarks for the query
// pipeline: runner disciplines, fusion payoff, flatten and join.
package benchmarks
