// Command techlens is the Tech Stock Fundamentals Dashboard CLI.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/techlens/internal/config"
	"github.com/seenimoa/techlens/pkg/logger"
	"github.com/seenimoa/techlens/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command's PersistentPreRunE.
var (
	cfg *config.Config
	log zerolog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "techlens",
	Short: "techlens: Tech Stock Fundamentals Dashboard",
	Long: `techlens evaluates a basket of technology stocks.
It computes risk metrics (returns, volatility, Sharpe, Sortino, VaR/CVaR,
drawdowns, beta) and scores each company through five lenses (valuation,
quality, growth, financial health, risk & momentum).

For education only; nothing here is investment advice.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		log = logger.New(logger.Config{
			Level:  cfg.Logging.Level,
			Pretty: cfg.Logging.Format != "json",
		})
		logger.SetGlobalLogger(log)

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(correlationCmd)
	rootCmd.AddCommand(signalCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("techlens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show market status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  techlens System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Market Status: %s\n", utils.MarketStatus())
		fmt.Fprintf(out, "  Time (ET):     %s\n", utils.FormatDateTimeEastern(utils.NowEastern()))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Tickers:        %v\n", cfg.Analysis.Tickers)
		fmt.Fprintf(out, "    Data Source:    %s", cfg.Data.Source)
		if cfg.Data.Fallback != "" {
			fmt.Fprintf(out, " (fallback: %s)", cfg.Data.Fallback)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "    Benchmark:      %s\n", cfg.Data.MarketTicker)
		fmt.Fprintf(out, "    Rates:          %s", cfg.Rates.Source)
		if cfg.Rates.Source == config.SourceFRED {
			fmt.Fprintf(out, " (%s)", cfg.Rates.FREDSeries)
		}
		fmt.Fprintf(out, ", fallback %s\n", utils.FormatPct(cfg.Analysis.RiskFreeRate))
		fmt.Fprintf(out, "    History:        %s\n", cfg.Analysis.HistoryPeriod)
		fmt.Fprintf(out, "    Schedule:       %s\n", cfg.Schedule.Cron)
		fmt.Fprintf(out, "    Registry:       %v\n", cfg.RegisteredTickers())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
