// Package aggregates defines the write boundaries of the asset and gate-pass
// domains: inputs, results, error codes and the interfaces the transactional
// implementations in data/aggregates satisfy.
package aggregates
