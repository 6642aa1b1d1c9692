package rarefaction

import "fmt"

// Metric selects the per-draw statistic the engine averages across draws.
type Metric string

const (
	// MetricRichness counts taxa with positive reads per sample.
	MetricRichness Metric = "richness"
	// MetricBrayCurtis computes the pairwise Bray-Curtis dissimilarity matrix.
	MetricBrayCurtis Metric = "braycurtis"
)

// Mode selects how a sample's column is reduced to the target depth.
type Mode string

const (
	// ModeExact draws reads uniformly without replacement. Every retained
	// column sums exactly to the target depth.
	ModeExact Mode = "exact"
	// ModeScaled is the round-based shortcut: each count is scaled by
	// depth/libsize and rounded. Column sums may miss the target depth by
	// rounding error. Explicitly approximate, never a substitute for exact.
	ModeScaled Mode = "scaled"
)

// Config holds the immutable parameters of one rarefaction run.
type Config struct {
	// TargetDepth is the common subsampling depth. Zero means "resolve to
	// the minimum library size across samples".
	TargetDepth int64 `json:"target_depth"`
	// Iterations is the number of independent subsampling draws.
	Iterations int `json:"iterations"`
	// Seed is the base seed; per-draw randomness is derived from it and the
	// iteration index only, never from scheduling.
	Seed int64 `json:"seed"`
	// Metric selects richness or Bray-Curtis.
	Metric Metric `json:"metric"`
	// WithReplacement must be false for classic rarefaction.
	WithReplacement bool `json:"with_replacement"`
	// Mode selects the exact draw or the approximate scaled shortcut.
	// Empty means exact.
	Mode Mode `json:"mode,omitempty"`
}

// Validate checks the static parts of the configuration. Depth resolution
// against a concrete table happens in the engine.
func (c Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if c.TargetDepth < 0 {
		return fmt.Errorf("target depth must be positive (or zero to use the minimum library size), got %d", c.TargetDepth)
	}
	if c.WithReplacement {
		return fmt.Errorf("subsampling with replacement is not supported; classic rarefaction draws without replacement")
	}
	switch c.Metric {
	case MetricRichness, MetricBrayCurtis:
	default:
		return fmt.Errorf("unrecognized metric %q", c.Metric)
	}
	switch c.Mode {
	case "", ModeExact, ModeScaled:
	default:
		return fmt.Errorf("unrecognized mode %q", c.Mode)
	}
	return nil
}

// EffectiveMode returns the configured mode, defaulting to exact.
func (c Config) EffectiveMode() Mode {
	if c.Mode == "" {
		return ModeExact
	}
	return c.Mode
}
