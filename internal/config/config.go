package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"TimeSeriesML/internal/logger"
	"TimeSeriesML/internal/pipeline"
)

const dateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Log        logger.Config `yaml:"log"`
	Dataset    Dataset       `yaml:"dataset"`
	DataSource DataSource    `yaml:"data_source"`
	Telegram   Telegram      `yaml:"telegram"`
	Schedule   Schedule      `yaml:"schedule"`
	Database   Database      `yaml:"database"`
	Metrics    Metrics       `yaml:"metrics"`
	Export     Export        `yaml:"export"`
	Proxy      string        `yaml:"proxy"`
}

// Dataset configures what is prepared and how.
type Dataset struct {
	Symbols        []string `yaml:"symbols" validate:"dive,required"`
	StartDate      string   `yaml:"start_date" default:"2017-01-01" validate:"datetime=2006-01-02"`
	NSteps         *int     `yaml:"n_steps" default:"50" validate:"gte=1"`
	LookupStep     *int     `yaml:"lookup_step" default:"1" validate:"gte=1"`
	TestSize       *float64 `yaml:"test_size" default:"0.2" validate:"gt=0,lt=1"`
	Scale          *bool    `yaml:"scale" default:"true"`
	Shuffle        *bool    `yaml:"shuffle" default:"true"`
	SplitByDate    *bool    `yaml:"split_by_date" default:"true"`
	FeatureColumns []string `yaml:"feature_columns" default:"[\"adjclose\",\"volume\",\"open\",\"high\",\"low\"]" validate:"min=1,dive,required"`
	Seed           *int64   `yaml:"seed" default:"314"`
}

// DataSource selects where symbol history comes from.
type DataSource struct {
	Provider   string     `yaml:"provider" default:"yahoo" validate:"oneof=yahoo rest clickhouse mock"`
	BaseURL    string     `yaml:"base_url"`
	APIKey     string     `yaml:"api_key"`
	ClickHouse ClickHouse `yaml:"clickhouse"`
}

// ClickHouse holds the stored-bars connection used by the clickhouse provider.
type ClickHouse struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" default:"9000"`
	Database string `yaml:"database" default:"default"`
	User     string `yaml:"user" default:"default"`
	Password string `yaml:"password"`
	Table    string `yaml:"table" default:"daily_bars"`
	UseHTTP  bool   `yaml:"use_http"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// Enabled reports whether run reports can be sent.
func (t Telegram) Enabled() bool { return t.BotToken != "" && t.ChatID != "" }

type Schedule struct {
	RefreshCron string `yaml:"refresh_cron" default:"0 30 22 * * 1-5"`
}

type Database struct {
	SQLitePath string `yaml:"sqlite_path" default:"data/seqprep.db"`
}

type Metrics struct {
	Addr string `yaml:"addr" default:":9090"`
	Path string `yaml:"path" default:"/metrics"`
}

type Export struct {
	Dir string `yaml:"dir" default:"data/datasets"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SEQPREP_SYMBOLS"); v != "" {
		cfg.Dataset.Symbols = splitList(v)
	}
	if v := os.Getenv("SEQPREP_START_DATE"); v != "" {
		cfg.Dataset.StartDate = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		cfg.DataSource.ClickHouse.Host = v
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks field constraints and provider requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.New(message(verrs[0]))
		}
		return fmt.Errorf("validate config: %w", err)
	}
	switch c.DataSource.Provider {
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	case "clickhouse":
		if c.DataSource.ClickHouse.Host == "" {
			return fmt.Errorf("data_source.clickhouse.host is required for the clickhouse provider")
		}
	}
	return nil
}

func message(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// Start returns the first day of history to request.
func (d Dataset) Start() (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, d.StartDate, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("dataset.start_date: %w", err)
	}
	return t, nil
}

// Options converts the dataset section into pipeline options. Nil values
// fall back to pipeline.DefaultOptions; an explicit zero is passed through
// and left for validation to reject.
func (d Dataset) Options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	if d.NSteps != nil {
		opts.NSteps = *d.NSteps
	}
	if d.LookupStep != nil {
		opts.LookupStep = *d.LookupStep
	}
	if d.TestSize != nil {
		opts.TestSize = *d.TestSize
	}
	if d.Scale != nil {
		opts.Scale = *d.Scale
	}
	if d.Shuffle != nil {
		opts.Shuffle = *d.Shuffle
	}
	if d.SplitByDate != nil {
		opts.SplitByDate = *d.SplitByDate
	}
	if len(d.FeatureColumns) > 0 {
		opts.FeatureColumns = append([]string(nil), d.FeatureColumns...)
	}
	if d.Seed != nil {
		opts.Seed = *d.Seed
	}
	return opts
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// String renders the non-secret parts of the config for startup logs.
func (c *Config) String() string {
	opts := c.Dataset.Options()
	return fmt.Sprintf("provider=%s symbols=%s start=%s n_steps=%d lookup_step=%d cron=%q telegram=%t",
		c.DataSource.Provider, strings.Join(c.Dataset.Symbols, ","), c.Dataset.StartDate,
		opts.NSteps, opts.LookupStep, c.Schedule.RefreshCron, c.Telegram.Enabled())
}
