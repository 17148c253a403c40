package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadIncludesAnalysisDefaults(t *testing.T) {
	t.Setenv("ANALYSIS_MIN_CHARS", "")
	t.Setenv("ANALYSIS_QUIET_PERIOD_MS", "")
	t.Setenv("ANALYSIS_TIMEOUT_SECONDS", "")
	t.Setenv("ANALYZER_PROVIDER", "")
	t.Setenv("STORE_BACKEND", "")

	cfg := Load()
	if cfg.AnalysisMinChars != 20 {
		t.Fatalf("expected default min chars 20, got %d", cfg.AnalysisMinChars)
	}
	if cfg.AnalysisQuietPeriod() != 1500*time.Millisecond {
		t.Fatalf("expected default quiet period 1.5s, got %s", cfg.AnalysisQuietPeriod())
	}
	if cfg.AnalysisTimeout() != 15*time.Second {
		t.Fatalf("expected default timeout 15s, got %s", cfg.AnalysisTimeout())
	}
	if cfg.AnalyzerProvider != ProviderGemini || cfg.StoreBackend != StoreMemory {
		t.Fatalf("unexpected defaults: provider=%q store=%q", cfg.AnalyzerProvider, cfg.StoreBackend)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("ANALYZER_PROVIDER", "OpenAI")
	t.Setenv("ANALYSIS_QUIET_PERIOD_MS", "300")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("RESILIENCE_BREAKER_ENABLED", "false")
	t.Setenv("RESILIENCE_RETRY_INITIAL_BACKOFF_MS", "50")
	t.Setenv("DRAFT_IDLE_MINUTES", "not-a-number")

	cfg := Load()
	if cfg.AnalyzerProvider != ProviderOpenAI {
		t.Fatalf("expected provider normalized to openai, got %q", cfg.AnalyzerProvider)
	}
	if cfg.AnalysisQuietPeriod() != 300*time.Millisecond {
		t.Fatalf("expected quiet period override, got %s", cfg.AnalysisQuietPeriod())
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected fractional rps, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.DraftIdleTimeout() != 30*time.Minute {
		t.Fatalf("invalid values must fall back, got %s", cfg.DraftIdleTimeout())
	}
	res := cfg.Resilience()
	if res.BreakerEnabled || res.RetryInitialBackoff != 50*time.Millisecond {
		t.Fatalf("unexpected resilience config: %+v", res)
	}
}

func TestGeminiKeyFallsBackToAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")

	if got := Load().GeminiAPIKey; got != "legacy-key" {
		t.Fatalf("expected API_KEY fallback, got %q", got)
	}
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MEDGUARD_TEST_A=from-file\nMEDGUARD_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("MEDGUARD_TEST_A", "from-env")
	t.Setenv("MEDGUARD_TEST_B", "")
	os.Unsetenv("MEDGUARD_TEST_B")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	if os.Getenv("MEDGUARD_TEST_A") != "from-env" {
		t.Fatalf("existing variables must win")
	}
	if os.Getenv("MEDGUARD_TEST_B") != "from-file" {
		t.Fatalf("expected variable loaded from file")
	}
}
