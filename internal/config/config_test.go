package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "SSL_MODE", "PORT", "RAREFY_WORKERS", "RAREFY_ITERATIONS", "RAREFY_SEED"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.URL != "" {
		t.Errorf("database URL = %q, want empty", cfg.Database.URL)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("SSL mode = %q, want disable", cfg.Database.SSLMode)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Engine.Workers != 0 {
		t.Errorf("workers = %d, want 0", cfg.Engine.Workers)
	}
	if cfg.Engine.DefaultIterations != 100 {
		t.Errorf("default iterations = %d, want 100", cfg.Engine.DefaultIterations)
	}
	if cfg.Engine.DefaultSeed != 42 {
		t.Errorf("default seed = %d, want 42", cfg.Engine.DefaultSeed)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/rarefy")
	t.Setenv("PORT", "9090")
	t.Setenv("RAREFY_WORKERS", "4")
	t.Setenv("RAREFY_ITERATIONS", "250")
	t.Setenv("RAREFY_SEED", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/rarefy" {
		t.Errorf("database URL = %q", cfg.Database.URL)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Engine.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Engine.Workers)
	}
	if cfg.Engine.DefaultIterations != 250 {
		t.Errorf("default iterations = %d, want 250", cfg.Engine.DefaultIterations)
	}
	if cfg.Engine.DefaultSeed != 7 {
		t.Errorf("default seed = %d, want 7", cfg.Engine.DefaultSeed)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative workers", "RAREFY_WORKERS", "-2"},
		{"zero iterations", "RAREFY_ITERATIONS", "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatal("Load() succeeded, want error")
			}
		})
	}
}

func TestLoad_UnparsableIntFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAREFY_WORKERS", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.Workers != 0 {
		t.Errorf("workers = %d, want default 0", cfg.Engine.Workers)
	}
}

func TestEffectiveWorkers(t *testing.T) {
	if got := (EngineConfig{Workers: 3}).EffectiveWorkers(); got != 3 {
		t.Errorf("EffectiveWorkers() = %d, want 3", got)
	}
	if got := (EngineConfig{}).EffectiveWorkers(); got < 1 {
		t.Errorf("EffectiveWorkers() = %d, want at least 1", got)
	}
}
