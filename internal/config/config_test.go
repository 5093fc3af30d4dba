package config

import (
	"flag"
	"os"
	"testing"
	"time"
)

// resetFlagSet создаёт новый FlagSet перед каждым вызовом NewConfig,
// чтобы избежать повторной регистрации одних и тех же флагов между тестами.
func resetFlagSet(t *testing.T) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(os.Stderr)
	// go test передаёт свои -test.* флаги, новому FlagSet они не нужны
	args := os.Args
	os.Args = args[:1]
	t.Cleanup(func() { os.Args = args })
}

// clearEnv удаляет переменные окружения (t.Setenv восстановит их после теста);
// пустое значение env.Parse пытался бы разобрать как число или длительность.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ADDRESS", "ENABLE_HTTPS", "STORAGE", "DATABASE_URI", "DATA_DIR", "UPLOAD_DIR",
		"UPLOAD_MAX_MB", "SESSION_SECRET", "SESSION_TTL", "ADMIN_USERNAME", "ADMIN_PASSWORD",
	} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestNewConfig_DefaultsWhenEnvEmpty(t *testing.T) {
	clearEnv(t)
	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.Address != "localhost:3000" {
		t.Fatalf("Address default expected 'localhost:3000', got %q", cfg.Address)
	}
	if cfg.Storage != "json" {
		t.Fatalf("Storage default expected 'json', got %q", cfg.Storage)
	}
	if cfg.DataDir != "data" || cfg.UploadDir != "uploads" {
		t.Fatalf("dir defaults: DataDir=%q UploadDir=%q", cfg.DataDir, cfg.UploadDir)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("SessionTTL default expected 1h, got %v", cfg.SessionTTL)
	}
	if cfg.SessionSecret != "dev-secret-key" {
		t.Fatalf("SessionSecret default expected 'dev-secret-key', got %q", cfg.SessionSecret)
	}
	if cfg.AdminUsername != "admin" || cfg.AdminPassword != "admin123" {
		t.Fatalf("admin defaults: %q/%q", cfg.AdminUsername, cfg.AdminPassword)
	}
	if cfg.UploadMaxMB != 20 {
		t.Fatalf("UploadMaxMB default expected 20, got %d", cfg.UploadMaxMB)
	}
}

func TestNewConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADDRESS", ":8080")
	t.Setenv("STORAGE", "SQLite")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("SESSION_SECRET", "top")
	t.Setenv("UPLOAD_MAX_MB", "5")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.Address != ":8080" {
		t.Fatalf("Address expected ':8080', got %q", cfg.Address)
	}
	if cfg.Storage != "sqlite" {
		t.Fatalf("Storage expected normalized 'sqlite', got %q", cfg.Storage)
	}
	if cfg.SessionTTL != 15*time.Minute {
		t.Fatalf("SessionTTL expected 15m, got %v", cfg.SessionTTL)
	}
	if cfg.SessionSecret != "top" {
		t.Fatalf("SessionSecret expected from env 'top', got %q", cfg.SessionSecret)
	}
	if cfg.UploadMaxMB != 5 {
		t.Fatalf("UploadMaxMB expected 5, got %d", cfg.UploadMaxMB)
	}
}

func TestNewConfig_InvalidValuesFallback(t *testing.T) {
	clearEnv(t)
	// адрес со схемой и неизвестный бэкенд откатываются на умолчания
	t.Setenv("ADDRESS", "http://bad:8080")
	t.Setenv("STORAGE", "mongo")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.Address != "localhost:3000" {
		t.Fatalf("invalid ADDRESS must fallback to 'localhost:3000', got %q", cfg.Address)
	}
	if cfg.Storage != "json" {
		t.Fatalf("unknown STORAGE must fallback to 'json', got %q", cfg.Storage)
	}
}
