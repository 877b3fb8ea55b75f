package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/breakout/broker/oanda"
	"github.com/rustyeddy/breakout/config"
	"github.com/rustyeddy/breakout/journal"
	v20 "github.com/rustyeddy/breakout/oanda"
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "Daily channel-breakout trader for OANDA v20 accounts",
	Long: `Trader runs a channel-breakout strategy against an OANDA v20 account.

Each tick it:
  - closes open trades whose price made an adverse extreme
  - opens new trades on watch-list symbols breaking out of their range
    while ADX shows a strong trend
  - sizes every entry from a fixed share of the current balance, with the
    stop one ATR away

Secrets are read from the environment (and a .env file), never from the
config file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnv(envFiles...)
	},
}

var (
	cfgPath  string
	envFiles []string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (YAML or JSON); defaults apply when empty")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the token")
}

// loadConfig reads --config, or returns the defaults when it is unset.
func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.LoadFromFile(cfgPath)
}

func setupLogging(c config.LogConfig) error {
	if err := logx.SetUp(logx.LogConf{
		ServiceName: "trader",
		Mode:        c.Mode,
		Level:       c.Level,
		Encoding:    c.Encoding,
		Path:        c.Path,
	}); err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	logx.DisableStat()
	return nil
}

// connect opens the configured OANDA account.
func connect(ctx context.Context, cfg *config.Config) (*oanda.Account, error) {
	token, err := cfg.Account.Token()
	if err != nil {
		return nil, err
	}
	base, err := v20.BaseURL(cfg.Account.Environment)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Account.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	client := v20.NewClient(token, cfg.Account.Environment != "live",
		v20.WithBaseURL(base),
		v20.WithTimeout(timeout),
		v20.WithRateLimit(cfg.Account.RateLimit),
	)
	return oanda.Open(ctx, client, cfg.Account.ID, v20.Granularity(cfg.Strategy.Granularity))
}

// openClaimer returns the SQLite ledger when a path is configured and an
// in-memory one otherwise.
func openClaimer(c config.JournalConfig) (journal.Claimer, error) {
	if c.DBPath == "" {
		return journal.NewMemory(), nil
	}
	j, err := journal.NewSQLite(c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", c.DBPath, err)
	}
	return j, nil
}
