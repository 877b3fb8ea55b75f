package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultTokenEnv = "OANDA_TOKEN"

var ErrNoToken = errors.New("no API token configured")

// Config is everything a trading run needs. It is passed explicitly into
// the engine; nothing reads it from globals.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

// AccountConfig selects the broker environment and where the token lives.
// The token itself is never stored in the file.
type AccountConfig struct {
	Environment string  `json:"environment" yaml:"environment" validate:"oneof=practice live"`
	ID          string  `json:"id,omitempty" yaml:"id,omitempty"`
	TokenEnv    string  `json:"token_env,omitempty" yaml:"token_env,omitempty"`
	TokenFile   string  `json:"token_file,omitempty" yaml:"token_file,omitempty"`
	Timeout     string  `json:"timeout" yaml:"timeout" validate:"required"` // e.g. "10s"
	RateLimit   float64 `json:"rate_limit" yaml:"rate_limit" validate:"gte=0"` // requests per second, 0 disables
}

// TimeoutDuration parses Timeout.
func (a AccountConfig) TimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(a.Timeout)
}

// Token returns the API token from TokenFile when set, otherwise from the
// environment variable named by TokenEnv.
func (a AccountConfig) Token() (string, error) {
	if a.TokenFile != "" {
		b, err := os.ReadFile(a.TokenFile)
		if err != nil {
			return "", fmt.Errorf("read token file: %w", err)
		}
		if tok := strings.TrimSpace(string(b)); tok != "" {
			return tok, nil
		}
		return "", fmt.Errorf("%w: %s is empty", ErrNoToken, a.TokenFile)
	}
	name := a.TokenEnv
	if name == "" {
		name = DefaultTokenEnv
	}
	if tok := strings.TrimSpace(os.Getenv(name)); tok != "" {
		return tok, nil
	}
	return "", fmt.Errorf("%w: set %s", ErrNoToken, name)
}

// StrategyConfig holds the breakout parameters.
type StrategyConfig struct {
	RiskPercent  float64  `json:"risk_percent" yaml:"risk_percent" validate:"gt=0,lte=1"`
	WatchList    []string `json:"watch_list" yaml:"watch_list" validate:"required,min=1,dive,required,contains=_"`
	ExitWindow   int      `json:"exit_window" yaml:"exit_window" validate:"gte=1"`
	EntryWindow  int      `json:"entry_window" yaml:"entry_window" validate:"gte=1"`
	History      int      `json:"history" yaml:"history" validate:"gte=1,lte=5000"`
	ATRPeriod    int      `json:"atr_period" yaml:"atr_period" validate:"gte=1"`
	ADXPeriod    int      `json:"adx_period" yaml:"adx_period" validate:"gte=1"`
	ADXThreshold float64  `json:"adx_threshold" yaml:"adx_threshold" validate:"gt=0,lt=100"`
	Granularity  string   `json:"granularity" yaml:"granularity" validate:"oneof=M1 M5 M15 M30 H1 H4 D W M"`
}

// JournalConfig points at the submission ledger. An empty DBPath keeps
// claims in memory for the life of the process.
type JournalConfig struct {
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Mode     string `json:"mode" yaml:"mode" validate:"oneof=console file"`
	Level    string `json:"level" yaml:"level" validate:"oneof=debug info error severe"`
	Encoding string `json:"encoding" yaml:"encoding" validate:"oneof=json plain"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
}

type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // e.g. ":9090", empty disables
}

// LoadEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored; a
// file that exists but does not parse is an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
// on top of Default.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and then the relations between fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			field := strings.TrimPrefix(fe.Namespace(), "Config.")
			if fe.Param() != "" {
				msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
			} else {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
			}
		}
		return errors.New(strings.Join(msgs, "; "))
	}

	if d, err := c.Account.TimeoutDuration(); err != nil || d <= 0 {
		return fmt.Errorf("account.timeout must be a positive duration, got %q", c.Account.Timeout)
	}
	s := c.Strategy
	if s.EntryWindow > s.History || s.ExitWindow > s.History {
		return fmt.Errorf("strategy.history (%d) must cover entry_window (%d) and exit_window (%d)",
			s.History, s.EntryWindow, s.ExitWindow)
	}
	if s.History < s.ATRPeriod+2 || s.History < 2*s.ADXPeriod+1 {
		return fmt.Errorf("strategy.history (%d) too short for atr_period %d and adx_period %d",
			s.History, s.ATRPeriod, s.ADXPeriod)
	}
	if c.Log.Mode == "file" && c.Log.Path == "" {
		return fmt.Errorf("log.path required for file mode")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Environment: "practice",
			TokenEnv:    DefaultTokenEnv,
			Timeout:     "10s",
		},
		Strategy: StrategyConfig{
			RiskPercent:  0.01,
			WatchList:    []string{"EUR_USD"},
			ExitWindow:   40,
			EntryWindow:  40,
			History:      100,
			ATRPeriod:    18,
			ADXPeriod:    18,
			ADXThreshold: 25,
			Granularity:  "D",
		},
		Log: LogConfig{
			Mode:     "console",
			Level:    "info",
			Encoding: "plain",
		},
	}
}
