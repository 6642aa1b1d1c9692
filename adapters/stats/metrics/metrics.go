// Package metrics holds the pure per-draw statistics the rarefaction engine
// averages across draws. Every metric is stateless and free of randomness:
// the same table always yields the same value.
package metrics
