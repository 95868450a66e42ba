// Package main is the entry point for the dicer command.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/dice-notation/pkg/api"
	grpcapi "github.com/lemonberrylabs/dice-notation/pkg/api/grpc"
	"github.com/lemonberrylabs/dice-notation/pkg/config"
	"github.com/lemonberrylabs/dice-notation/pkg/dice"
	"github.com/lemonberrylabs/dice-notation/pkg/repl"
	"github.com/lemonberrylabs/dice-notation/pkg/stats"
	"github.com/lemonberrylabs/dice-notation/web"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dicer",
		Short:         "Dice notation roller",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runREPL,
	}
	root.Version = version + " (commit=" + commit + ", built=" + date + ")"
	root.SetVersionTemplate("dicer version {{.Version}}\n")

	root.PersistentFlags().String("config", "", "Path to a YAML config file (env DICER_CONFIG)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env DICER_LOG_LEVEL)")
	root.PersistentFlags().Uint64("seed", 0, "Seed for reproducible rolls (0 picks a random seed)")
	root.PersistentFlags().Int("max-dice", 0, "Maximum dice per roll (env DICER_MAX_DICE)")

	rollCmd := &cobra.Command{
		Use:   "roll EXPRESSION...",
		Short: "Evaluate one expression and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRoll,
	}
	rollCmd.Flags().String("format", "", "Output format: text, json or yaml (env DICER_FORMAT)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API, web UI and gRPC service",
		RunE:  runServe,
	}
	serveCmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env DICER_HOST)")
	serveCmd.Flags().Int("port", 0, "HTTP server port (default 8787, env DICER_PORT)")
	serveCmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env DICER_GRPC_PORT)")

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive prompt (default)",
		RunE:  runREPL,
	}

	root.AddCommand(rollCmd, serveCmd, replCmd)
	return root
}

// loadConfig reads the config file and environment, then applies any flags
// set on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("DICER_CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetInt("max-dice"); v != 0 {
		cfg.MaxDice = v
	}
	if flags.Lookup("format") != nil {
		if v, _ := flags.GetString("format"); v != "" {
			cfg.Format = v
		}
	}
	if flags.Lookup("host") != nil {
		if v, _ := flags.GetString("host"); v != "" {
			cfg.Host = v
		}
		if v, _ := flags.GetInt("port"); v != 0 {
			cfg.Port = v
		}
		if v, _ := flags.GetInt("grpc-port"); v != 0 {
			cfg.GRPCPort = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("service", "dicer").Logger().
		Level(cfg.Level())
}

// newEvaluator builds an evaluator over a seeded source. The seed comes from
// --seed or crypto/rand and is logged at debug so a session can be replayed.
func newEvaluator(cmd *cobra.Command, cfg config.Config, logger zerolog.Logger) (*dice.Evaluator, error) {
	seed, _ := cmd.Flags().GetUint64("seed")
	if seed == 0 {
		var err error
		if seed, err = dice.NewSeed(); err != nil {
			return nil, err
		}
	}
	logger.Debug().Uint64("seed", seed).Msg("seeded dice source")

	src := dice.Locked(dice.NewSeededSource(seed))
	return dice.NewEvaluator(&dice.Options{Source: src, MaxDice: cfg.MaxDice}), nil
}

func runREPL(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ev, err := newEvaluator(cmd, cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return repl.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), ev)
}

func runRoll(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ev, err := newEvaluator(cmd, cfg, logger)
	if err != nil {
		return err
	}

	expr := strings.Join(args, " ")
	res, err := ev.Roll(expr)
	if err != nil {
		return err
	}
	return writeRoll(cmd.OutOrStdout(), cfg.Format, api.NewRollResponse(expr, res))
}

func writeRoll(w io.Writer, format string, resp api.RollResponse) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(resp)
	default:
		_, err := fmt.Fprintf(w, "Rolled: %s\nTotal: %s\n", resp.Display, resp.TotalText)
		return err
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ev, err := newEvaluator(cmd, cfg, logger)
	if err != nil {
		return err
	}
	st := stats.New()

	server := api.New(ev, st, logger)
	web.New(ev, st).Register(server.App())

	grpcServer := grpcapi.New(ev, st, logger)
	go func() {
		logger.Info().Msgf("gRPC server listening on %s", cfg.GRPCAddr())
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			logger.Fatal().Err(err).Msg("gRPC server error")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("error during shutdown")
		}
	}()

	logger.Info().
		Str("version", version).
		Int("maxDice", ev.MaxDice()).
		Msgf("dicer listening on %s (UI at /ui)", cfg.HTTPAddr())
	return server.Listen(cfg.HTTPAddr())
}
