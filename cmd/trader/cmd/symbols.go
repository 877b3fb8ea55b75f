package cmd

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols [NAME...]",
	Short: "List the instruments tradeable on the account",
	Long: `Print every instrument the configured account can trade, with the
pip location, precisions and minimum size the sizing engine uses.

Examples:
  trader symbols
  trader symbols EUR_USD USD_JPY`,
	RunE: runSymbols,
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := setupLogging(cfg.Log); err != nil {
		return err
	}

	ctx := context.Background()
	acct, err := connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	ins, err := acct.Client().Instruments(ctx, acct.AccountID(), args...)
	if err != nil {
		return fmt.Errorf("list instruments: %w", err)
	}
	sort.Slice(ins, func(i, j int) bool { return ins[i].Name < ins[j].Name })

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tPIP\tDISPLAY\tUNITS\tMIN SIZE\tMARGIN")
	for _, in := range ins {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%v\t%v\n",
			in.Name, in.Type, in.PipLocation, in.DisplayPrecision,
			in.TradeUnitsPrecision, in.MinimumTradeSize, in.MarginRate)
	}
	return w.Flush()
}
