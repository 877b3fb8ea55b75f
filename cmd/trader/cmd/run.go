package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/config"
	"github.com/rustyeddy/breakout/engine"
	"github.com/rustyeddy/breakout/journal"
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one trading tick (or one every --every) against OANDA",
	Long: `Run the exit pass over open trades and the entry pass over the
watch-list against the configured OANDA account.

Without --every a single tick runs and the report is printed. With --every
ticks repeat sequentially at that interval until interrupted, and
Prometheus metrics are served on metrics.addr.

Examples:
  trader run -c breakout.yaml
  trader run -c breakout.yaml --every 24h`,
	RunE: runRun,
}

var runEvery time.Duration

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().DurationVar(&runEvery, "every", 0, "repeat the tick at this interval (0 runs once)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := setupLogging(cfg.Log); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	acct, err := connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	claims, err := openClaimer(cfg.Journal)
	if err != nil {
		return err
	}
	defer claims.Close()

	if runEvery <= 0 {
		return tickOnce(ctx, cmd, acct, cfg, claims)
	}

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr)
		defer func() {
			shutdownCtx, c := context.WithTimeout(context.Background(), 2*time.Second)
			defer c()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}
	return loop(ctx, runEvery, func() error {
		return tickOnce(ctx, cmd, acct, cfg, claims)
	})
}

func tickOnce(ctx context.Context, cmd *cobra.Command, b broker.Broker, cfg *config.Config, claims journal.Claimer) error {
	rep, err := engine.New(b, cfg.Strategy, engine.WithClaimer(claims)).RunTick(ctx)
	fmt.Fprint(cmd.OutOrStdout(), rep.String())
	return err
}

// loop runs fn now and then every interval. Ticks never overlap: the next
// one is scheduled only after the previous returns.
func loop(ctx context.Context, every time.Duration, fn func() error) error {
	for {
		if err := fn(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			logx.WithContext(ctx).Errorw("tick aborted", logx.Field("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(every):
		}
	}
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logx.Infow("serving metrics", logx.Field("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Errorw("metrics server", logx.Field("error", err.Error()))
		}
	}()
	return srv
}
