package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.DataSource.Provider != "yahoo" || cfg.Log.Level != "info" {
		t.Errorf("unexpected defaults: provider=%s level=%s", cfg.DataSource.Provider, cfg.Log.Level)
	}
	opts := cfg.Dataset.Options()
	if opts.NSteps != 50 || opts.LookupStep != 1 || opts.TestSize != 0.2 || opts.Seed != 314 {
		t.Errorf("unexpected options %+v", opts)
	}
	if !opts.Scale || !opts.Shuffle || !opts.SplitByDate {
		t.Errorf("expected boolean options on by default: %+v", opts)
	}
	if strings.Join(opts.FeatureColumns, ",") != "adjclose,volume,open,high,low" {
		t.Errorf("unexpected feature columns %v", opts.FeatureColumns)
	}
	start, err := cfg.Dataset.Start()
	if err != nil || !start.Equal(time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v (%v)", start, err)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
dataset:
  symbols: [AAPL, MSFT]
  n_steps: 30
  lookup_step: 5
  shuffle: false
  feature_columns: [adjclose, MACD]
data_source:
  provider: rest
  base_url: http://bars.local
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	opts := cfg.Dataset.Options()
	if opts.NSteps != 30 || opts.LookupStep != 5 {
		t.Errorf("unexpected window options %+v", opts)
	}
	if opts.Shuffle {
		t.Error("explicit shuffle: false must survive defaults")
	}
	if !opts.Scale {
		t.Error("unset scale should default to true")
	}
	if len(cfg.Dataset.Symbols) != 2 || len(opts.FeatureColumns) != 2 {
		t.Errorf("unexpected lists %v %v", cfg.Dataset.Symbols, opts.FeatureColumns)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEQPREP_SYMBOLS", " SPX , QQQ,")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("CRON_REFRESH", "0 0 6 * * *")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg, err := Load(writeConfig(t, "dataset:\n  symbols: [IGNORED]\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if strings.Join(cfg.Dataset.Symbols, ",") != "SPX,QQQ" {
		t.Errorf("unexpected symbols %v", cfg.Dataset.Symbols)
	}
	if !cfg.Telegram.Enabled() {
		t.Error("expected telegram enabled from env")
	}
	if cfg.Schedule.RefreshCron != "0 0 6 * * *" || cfg.Log.Level != "debug" || cfg.Database.SQLitePath != "/tmp/x.db" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"test size", "dataset:\n  test_size: 1.5\n", "dataset.test_size"},
		{"zero test size", "dataset:\n  test_size: 0\n", "dataset.test_size"},
		{"zero lookup step", "dataset:\n  lookup_step: 0\n", "dataset.lookup_step"},
		{"zero n_steps", "dataset:\n  n_steps: 0\n", "dataset.n_steps"},
		{"start date", "dataset:\n  start_date: 01/02/2017\n", "dataset.start_date"},
		{"provider", "data_source:\n  provider: bloomberg\n", "data_source.provider"},
		{"rest url", "data_source:\n  provider: rest\n", "data_source.base_url"},
		{"clickhouse host", "data_source:\n  provider: clickhouse\n", "data_source.clickhouse.host"},
		{"log level", "log:\n  level: loud\n", "log.level"},
		{"blank symbol", "dataset:\n  symbols: [AAPL, \"\"]\n", "dataset.symbols"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_ExplicitZeroKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, "dataset:\n  lookup_step: 0\n  seed: 0\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dataset.LookupStep == nil || *cfg.Dataset.LookupStep != 0 {
		t.Fatalf("explicit lookup_step: 0 was replaced: %v", cfg.Dataset.LookupStep)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "dataset.lookup_step") {
		t.Fatalf("expected lookup_step error, got %v", err)
	}
	if opts := cfg.Dataset.Options(); opts.Seed != 0 || opts.LookupStep != 0 {
		t.Errorf("explicit zeros should reach the options: %+v", opts)
	}
}

func TestLoad_ZeroSeed(t *testing.T) {
	cfg, err := Load(writeConfig(t, "dataset:\n  seed: 0\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("seed 0 is a valid seed: %v", err)
	}
	if opts := cfg.Dataset.Options(); opts.Seed != 0 || opts.NSteps != 50 {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "dataset: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
