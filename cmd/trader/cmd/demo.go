package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/breakout/broker/sim"
	"github.com/rustyeddy/breakout/engine"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run two ticks against a simulated EUR account",
	Long: `Run the strategy against an in-memory broker seeded with synthetic
daily candles. No network access or token is needed.

The first tick opens breakouts; the second shows the duplicate guard and
the exit pass over the trades just opened.

Example:
  trader demo`,
	RunE: runDemo,
}

var demoWatch []string

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringSliceVarP(&demoWatch, "watch", "w", []string{"EUR_USD", "USD_JPY", "GBP_USD"}, "symbols to evaluate")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := setupLogging(cfg.Log); err != nil {
		return err
	}
	cfg.Strategy.WatchList = demoWatch

	b := sim.Demo()
	eng := engine.New(b, cfg.Strategy)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Simulated account %s (%s)\n\n", b.AccountID(), b.Currency())
	for i := 0; i < 2; i++ {
		rep, err := eng.RunTick(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprint(out, rep.String())
	}

	bal, _ := b.Balance(context.Background())
	fmt.Fprintf(out, "\nOrders submitted: %d, balance %.2f %s\n", len(b.Orders()), bal, b.Currency())
	return nil
}
