package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/ourotrade/ouro/internal/config"
	"github.com/ourotrade/ouro/internal/history"
	"github.com/ourotrade/ouro/internal/logger"
	"github.com/ourotrade/ouro/internal/store"
	"github.com/ourotrade/ouro/pkg/errors"
)

// fetchAction downloads daily and minute history for the requested tickers
// into the bar store.
func fetchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if cfg.PolygonAPIKey == "" {
		return errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required; set POLYGON_API_KEY or polygon_api_key")
	}

	tickers := splitTickers(cmd.String("tickers"))
	if len(tickers) == 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "at least one ticker is required")
	}

	lg, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer lg.Sync()

	st, err := store.Open(cfg.StorePath, lg)
	if err != nil {
		return err
	}
	defer st.Close()

	fetcher, err := history.NewFetcher(cfg.PolygonAPIKey, st, lg)
	if err != nil {
		return err
	}

	from := cmd.Timestamp("start")
	to := cmd.Timestamp("end")

	if err := fetcher.FetchAll(ctx, tickers, from, to, history.TimespanDay); err != nil {
		return err
	}

	if cmd.Bool("minutes") {
		return fetcher.FetchAll(ctx, tickers, from, to, history.TimespanMinute)
	}

	return nil
}

func splitTickers(raw string) []string {
	parts := strings.Split(raw, ",")

	tickers := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			tickers = append(tickers, p)
		}
	}

	return tickers
}

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "history",
		Usage: "Download historical aggregates into the bar store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:     "tickers",
				Aliases:  []string{"t"},
				Usage:    "Comma-separated ticker symbols",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:     "start",
				Aliases:  []string{"s"},
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.BoolFlag{
				Name:  "minutes",
				Usage: "Also download minute aggregates",
			},
		},
		Action: fetchAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
