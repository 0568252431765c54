package config

import "testing"

func TestLoadRequiresDBVars(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatal("expected error when required DB_* variables are unset")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_NAME", "picoweather")
	t.Setenv("DB_USER", "picoweather")
	t.Setenv("DB_PASS", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", cfg.APIPort)
	}
	if cfg.DefaultTimezone != "Europe/Madrid" {
		t.Errorf("DefaultTimezone = %q, want Europe/Madrid", cfg.DefaultTimezone)
	}
	if cfg.MaxDBConn <= 0 {
		t.Errorf("MaxDBConn = %d, want > 0", cfg.MaxDBConn)
	}
}

func TestLoadHonorsOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_NAME", "picoweather")
	t.Setenv("DB_USER", "picoweather")
	t.Setenv("DB_PASS", "secret")
	t.Setenv("API_PORT", "9000")
	t.Setenv("DEFAULT_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIPort != 9000 {
		t.Errorf("APIPort = %d, want 9000", cfg.APIPort)
	}
	if cfg.DefaultTimezone != "UTC" {
		t.Errorf("DefaultTimezone = %q, want UTC", cfg.DefaultTimezone)
	}
}
