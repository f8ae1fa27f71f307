package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/ourotrade/ouro/internal/classifier"
	"github.com/ourotrade/ouro/internal/indicator"
	"github.com/ourotrade/ouro/internal/types"
	"github.com/ourotrade/ouro/pkg/errors"
)

// barTimeLayouts are tried in order when parsing the time column.
var barTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// classifyAction reads a bar CSV, classifies every warmed-up bar, and
// writes time/strategy-id rows to the output.
func classifyAction(ctx context.Context, cmd *cli.Command) error {
	bars, err := readBars(cmd.String("input"))
	if err != nil {
		return err
	}

	c := classifier.New(indicator.NewSeriesProvider())

	classified, err := c.Classify(bars)
	if err != nil {
		return err
	}

	out := os.Stdout

	if path := cmd.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		out = f
	}

	w := csv.NewWriter(out)

	if err := w.Write([]string{"time", "strategy_id"}); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	for _, row := range classified {
		record := []string{row.Time.Format(time.RFC3339), row.StrategyID}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	log.Printf("Classified %d of %d bars.", len(classified), len(bars))

	return nil
}

// readBars parses a CSV with time,open,high,low,close,volume columns in
// ascending time order.
func readBars(path string) ([]types.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to open bar file %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to read bar header", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	for _, required := range []string{"time", "open", "high", "low", "close", "volume"} {
		if _, ok := cols[required]; !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "bar file is missing column %q", required)
		}
	}

	var bars []types.Bar

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to read bar row", err)
		}

		barTime, err := parseBarTime(record[cols["time"]])
		if err != nil {
			return nil, err
		}

		bar := types.Bar{Time: barTime}

		for _, field := range []struct {
			name string
			dst  *float64
		}{
			{"open", &bar.Open},
			{"high", &bar.High},
			{"low", &bar.Low},
			{"close", &bar.Close},
			{"volume", &bar.Volume},
		} {
			v, err := strconv.ParseFloat(record[cols[field.name]], 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid %s value %q", field.name, record[cols[field.name]])
			}

			*field.dst = v
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

func parseBarTime(value string) (time.Time, error) {
	for _, layout := range barTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeInvalidParameter, "unparseable bar time %q", value)
}

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "classify",
		Usage: "Classify an OHLCV bar series into per-bar strategy IDs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to the bar CSV (time,open,high,low,close,volume)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Path for the result CSV; stdout when omitted",
			},
		},
		Action: classifyAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
