package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"congress-trades/config"
	"congress-trades/models"
	"congress-trades/scraper/house"
	"congress-trades/services"
	"congress-trades/storage"
	"congress-trades/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "congress-trades",
	Short: "Extract congressional stock trades from House disclosure reports",
	Long: `congress-trades downloads the House Clerk's periodic transaction reports,
extracts every disclosed trade from the report PDFs and publishes the trades
together with hot-ticker and top-filer rankings as a JSON document.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger = utils.NewLogger()
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.LogLevel = lvl
		}
		logger.SetLevel(cfg.LogLevel)
	},
	RunE: runScrape,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info)")

	rootCmd.Flags().IntSlice("year", nil, "disclosure year to scrape (repeatable, default: current year, plus last year until April)")
	rootCmd.Flags().String("output", "", "JSON report path (overrides OUTPUT_PATH)")
	rootCmd.Flags().String("csv", "", "also write a flat trade CSV to this path")
	rootCmd.Flags().Bool("postgres", false, "also store trades in PostgreSQL")
	rootCmd.Flags().String("fetch-mode", "", "http or browser (overrides FETCH_MODE)")

	rootCmd.AddCommand(extractCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	applyFlags(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	years, _ := cmd.Flags().GetIntSlice("year")
	if len(years) == 0 {
		years = services.DefaultYears(time.Now())
	}

	logger.Info("=== Congress Trade Scraper starting ===")
	logger.Info("Config — years: %v | concurrency: %d | pacing: %dms | fetch: %s",
		years, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.FetchMode)

	fetcher, closeFetcher, err := house.NewFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	docs, err := storage.NewDocCache(cfg.CacheDir)
	if err != nil {
		return err
	}

	scraper := house.New(cfg, logger, fetcher, docs)
	trades, err := scraper.Scrape(ctx, years)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}
	logger.Info("Total trades extracted: %d", len(trades))

	if cfg.CSVOutputPath != "" {
		if err := exportCSV(cfg.CSVOutputPath, trades); err != nil {
			logger.Error("CSV write failed: %v", err)
		} else {
			logger.Info("Trades saved to %s", cfg.CSVOutputPath)
		}
	}

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Report(trades, years, time.Now())

	if cfg.PostgresEnabled {
		storeAndReload(report)
	}

	out := storage.NewJSONWriter(cfg.OutputPath)
	if err := publish(out, report); err != nil {
		return err
	}

	logger.Info("Saved to %s", cfg.OutputPath)
	logger.Info("  %d trades", report.TotalTrades)
	logger.Info("  %d hot tickers", len(report.HotTickers))
	logger.Info("  %d politicians", len(report.TopPoliticians))
	if size, err := out.Size(); err == nil {
		logger.Info("  File size: %.1f KB", float64(size)/1024)
	}

	insightSvc.Print(report.TotalTrades, &models.Aggregates{
		HotTickers:     report.HotTickers,
		TopPoliticians: report.TopPoliticians,
	})
	return nil
}

// storeAndReload persists the sorted trades and recomputes the rankings from
// the stored rows, so the published numbers match what the database holds.
func storeAndReload(report *models.Report) {
	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		return
	}
	defer pgWriter.Close()

	if err := writeTrades(pgWriter, report.Trades); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		return
	}
	logger.Info("Trades stored in PostgreSQL (run %s)", pgWriter.RunID())

	stored, err := pgWriter.FetchRun(pgWriter.RunID())
	if err != nil {
		logger.Error("Failed to fetch trades from DB for insights: %v", err)
		return
	}
	if len(stored) != len(report.Trades) {
		logger.Warn("Stored %d trades but extracted %d — keeping in-memory rankings", len(stored), len(report.Trades))
		return
	}
	agg := services.Aggregate(stored)
	report.HotTickers = agg.HotTickers
	report.TopPoliticians = agg.TopPoliticians
}

func exportCSV(path string, trades []*models.Trade) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := writeTrades(w, trades); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func writeTrades(w storage.TradeWriter, trades []*models.Trade) error {
	if len(trades) == 0 {
		logger.Warn("No trades to write")
	}
	return w.Write(trades)
}

func publish(w storage.ReportWriter, report *models.Report) error {
	if err := w.WriteReport(report); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}

func applyFlags(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.OutputPath = v
	}
	if v, _ := cmd.Flags().GetString("csv"); v != "" {
		cfg.CSVOutputPath = v
	}
	if v, _ := cmd.Flags().GetBool("postgres"); v {
		cfg.PostgresEnabled = true
	}
	if v, _ := cmd.Flags().GetString("fetch-mode"); v != "" {
		cfg.FetchMode = strings.ToLower(v)
	}
}

// --- Extract Command ---

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract trades from a local report PDF or text dump",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		text := string(data)
		if !strings.EqualFold(filepath.Ext(args[0]), ".txt") {
			if text, err = house.PDFText(data); err != nil {
				return err
			}
		}

		trades := services.ExtractTrades(text)
		if trades == nil {
			trades = []*models.Trade{}
		}
		logger.Debug("[extract] %s: %d trades", args[0], len(trades))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(trades)
	},
}
