package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"aequiswap/internal/aggregate"
	"aequiswap/internal/chain"
	"aequiswap/internal/config"
	"aequiswap/internal/discovery"
	"aequiswap/internal/quote"
	"aequiswap/internal/server"
	"aequiswap/internal/store"
	"aequiswap/internal/swap"
	"aequiswap/internal/token"
)

func main() {
	root := &cobra.Command{
		Use:          "aequiswap",
		Short:        "DEX quote aggregator and swap plan builder",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN for quote history")
	serveCmd.Flags().String("history-path", "", "JSONL path for quote history")
	root.AddCommand(serveCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Fetch one quote and print it as JSON",
		RunE:  runQuote,
	}
	quoteCmd.Flags().String("chain", "", "chain key")
	quoteCmd.Flags().String("token-in", "", "input token address, or 'native'")
	quoteCmd.Flags().String("token-out", "", "output token address, or 'native'")
	quoteCmd.Flags().String("amount-in", "", "input amount, raw base units or decimal (e.g. 1.5)")
	quoteCmd.Flags().String("preference", "auto", "routing preference (auto, v2, v3)")
	quoteCmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildService(ctx context.Context, cfg config.Config, logger *zap.Logger) (*aggregate.Service, error) {
	history, err := store.FromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	pool := chain.NewPool(cfg.Chains, logger)
	resolver := token.NewResolver(cfg.TokenCacheTTL, logger)
	engine := quote.NewEngine(discovery.NewDiscoverer(logger), cfg, logger)
	builder := swap.NewBuilder(cfg, logger)

	return aggregate.NewService(cfg, pool, resolver, engine, builder, history, logger), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if len(cfg.Chains) == 0 {
		return fmt.Errorf("no chains configured")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer service.Close()

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(service, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Listen))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	level, _ := cmd.Flags().GetString("log-level")
	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer service.Close()

	chainKey, _ := cmd.Flags().GetString("chain")
	tokenIn, _ := cmd.Flags().GetString("token-in")
	tokenOut, _ := cmd.Flags().GetString("token-out")
	amountIn, _ := cmd.Flags().GetString("amount-in")
	preference, _ := cmd.Flags().GetString("preference")

	best, err := service.Quote(ctx, aggregate.QuoteParams{
		Chain:      chainKey,
		TokenIn:    tokenIn,
		TokenOut:   tokenOut,
		AmountIn:   amountIn,
		Preference: preference,
	})
	if err != nil {
		return err
	}

	out, err := server.QuoteJSON(best)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
