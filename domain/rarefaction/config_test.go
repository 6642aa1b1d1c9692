package rarefaction

import "testing"

func validConfig() Config {
	return Config{
		TargetDepth: 100,
		Iterations:  10,
		Seed:        42,
		Metric:      MetricRichness,
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero iterations", func(c *Config) { c.Iterations = 0 }},
		{"negative iterations", func(c *Config) { c.Iterations = -5 }},
		{"negative depth", func(c *Config) { c.TargetDepth = -1 }},
		{"with replacement", func(c *Config) { c.WithReplacement = true }},
		{"unknown metric", func(c *Config) { c.Metric = "shannon" }},
		{"unknown mode", func(c *Config) { c.Mode = "bootstrap" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestConfig_ZeroDepthIsValid(t *testing.T) {
	cfg := validConfig()
	cfg.TargetDepth = 0 // resolve to minimum library size later
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero depth should validate: %v", err)
	}
}

func TestConfig_EffectiveMode(t *testing.T) {
	cfg := validConfig()
	if cfg.EffectiveMode() != ModeExact {
		t.Errorf("empty mode should default to exact, got %q", cfg.EffectiveMode())
	}
	cfg.Mode = ModeScaled
	if cfg.EffectiveMode() != ModeScaled {
		t.Errorf("explicit mode should win, got %q", cfg.EffectiveMode())
	}
}
