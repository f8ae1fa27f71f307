package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/ourotrade/ouro/internal/broker"
	"github.com/ourotrade/ouro/internal/catalog"
	"github.com/ourotrade/ouro/internal/config"
	"github.com/ourotrade/ouro/internal/logger"
	"github.com/ourotrade/ouro/internal/store"
	"github.com/ourotrade/ouro/internal/trader"
)

// tradeAction wires the session from configuration and runs it to
// completion or interruption.
func tradeAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if cmd.Bool("test") {
		cfg.TestMode = true
	}

	if cmd.Bool("market-open") {
		cfg.ForceMarketOpen = true
	}

	if err := cfg.ValidateBroker(); err != nil {
		return err
	}

	var lg *logger.Logger

	if cfg.LogPath != "" {
		lg, err = logger.NewFileLogger(cfg.LogPath)
	} else {
		lg, err = logger.NewLogger()
	}

	if err != nil {
		return err
	}
	defer lg.Sync()

	st, err := store.Open(cfg.StorePath, lg)
	if err != nil {
		return err
	}
	defer st.Close()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	lg.Info("Strategy catalog loaded", zap.Int("families", cat.Len()))

	gateway := broker.NewAlpacaGateway(cfg.Alpaca, lg)

	session := trader.NewSession(gateway, cat, st, cfg.Files, lg, trader.Options{
		MaxRiskRatio:    cfg.MaxRiskRatio,
		TestMode:        cfg.TestMode,
		ForceMarketOpen: cfg.ForceMarketOpen,
	})

	return session.Run(ctx)
}

func main() {
	// Missing .env is fine; secrets may come from the real environment.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "trader",
		Usage: "Run one intraday trading session against the action feed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
			&cli.BoolFlag{
				Name:  "test",
				Usage: "Keep the loop running regardless of the market clock",
			},
			&cli.BoolFlag{
				Name:  "market-open",
				Usage: "Force one trading pass and then the end-of-day sequence",
			},
		},
		Action: tradeAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
