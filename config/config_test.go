package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty category reference",
			mutate: func(cfg *Config) {
				cfg.CategoryRef = ""
			},
			wantErr: "category reference",
		},
		{
			name: "empty listing api",
			mutate: func(cfg *Config) {
				cfg.ListingAPI = ""
			},
			wantErr: "listing API",
		},
		{
			name: "listing api without host",
			mutate: func(cfg *Config) {
				cfg.ListingAPI = "http://"
			},
			wantErr: "listing API",
		},
		{
			name: "negative max pages",
			mutate: func(cfg *Config) {
				cfg.MaxPages = -1
			},
			wantErr: "max pages",
		},
		{
			name: "zero page size",
			mutate: func(cfg *Config) {
				cfg.PageSize = 0
			},
			wantErr: "page size",
		},
		{
			name: "negative delay",
			mutate: func(cfg *Config) {
				cfg.Delay = -time.Second
			},
			wantErr: "delay",
		},
		{
			name: "zero timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = 0
			},
			wantErr: "timeout",
		},
		{
			name: "zero failure budget",
			mutate: func(cfg *Config) {
				cfg.MaxConsecutiveFailures = 0
			},
			wantErr: "consecutive failures",
		},
		{
			name: "inverted range",
			mutate: func(cfg *Config) {
				cfg.RangeStart = 50
				cfg.RangeEnd = 10
			},
			wantErr: "range start",
		},
		{
			name: "empty output file",
			mutate: func(cfg *Config) {
				cfg.OutputFile = ""
			},
			wantErr: "output file",
		},
		{
			name: "unknown format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "parquet"
			},
			wantErr: "output format",
		},
		{
			name: "empty user agent",
			mutate: func(cfg *Config) {
				cfg.UserAgent = ""
			},
			wantErr: "user agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestRangeModeSkipsCategoryRef(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CategoryRef = ""
	cfg.RangeStart = 1
	cfg.RangeEnd = 50
	if err := cfg.Validate(); err != nil {
		t.Fatalf("range mode should not require a category reference, got %v", err)
	}
	if !cfg.RangeMode() {
		t.Fatalf("expected range mode")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("HARVESTER_TEST_PAGES", "42")
	value, ok, err := EnvInt("HARVESTER_TEST_PAGES")
	if err != nil || !ok || value != 42 {
		t.Fatalf("EnvInt = (%d, %v, %v), want (42, true, nil)", value, ok, err)
	}

	if _, ok, err := EnvInt("HARVESTER_TEST_UNSET"); ok || err != nil {
		t.Fatalf("unset variable should report not ok, got ok=%v err=%v", ok, err)
	}

	t.Setenv("HARVESTER_TEST_BAD", "not-a-number")
	if _, ok, err := EnvInt("HARVESTER_TEST_BAD"); !ok || err == nil {
		t.Fatalf("expected parse error for bad value, got ok=%v err=%v", ok, err)
	}
}

func TestEnvString(t *testing.T) {
	t.Setenv("HARVESTER_TEST_OUTPUT", "out.xlsx")
	if value, ok := EnvString("HARVESTER_TEST_OUTPUT"); !ok || value != "out.xlsx" {
		t.Fatalf("EnvString = (%q, %v)", value, ok)
	}
	if _, ok := EnvString("HARVESTER_TEST_UNSET"); ok {
		t.Fatalf("unset variable should report not ok")
	}
}
