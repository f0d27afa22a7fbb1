package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/techlens/internal/evaluator"
	"github.com/seenimoa/techlens/internal/report"
	"github.com/seenimoa/techlens/internal/scheduler"
	"github.com/seenimoa/techlens/pkg/utils"
)

// --- Evaluate Command ---

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [tickers...]",
	Short: "Run the full dashboard: risk metrics, five-lens scores and recommendations",
	Long: `Fetch price history and fundamentals for each ticker, then print every
dashboard section. With no tickers the configured basket is used.

Examples:
  techlens evaluate
  techlens evaluate NVDA MSFT --format yaml --output run.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, args, report.AllSections())
	},
}

// --- Risk Command ---

var riskCmd = &cobra.Command{
	Use:   "risk [tickers...]",
	Short: "Show risk metrics and tail risk",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, args, []report.Section{report.SectionRisk, report.SectionTailRisk})
	},
}

// --- Correlation Command ---

var correlationCmd = &cobra.Command{
	Use:   "correlation [tickers...]",
	Short: "Show the daily-return correlation matrix",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return fmt.Errorf("correlation needs at least two tickers")
		}
		return runReport(cmd, args, []report.Section{report.SectionCorrelation})
	},
}

// --- Signal Command ---

var signalCmd = &cobra.Command{
	Use:   "signal [tickers...]",
	Short: "Show five-lens scores, peer ranking and investment signals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, args, []report.Section{report.SectionScores, report.SectionPeers, report.SectionRecommend})
	},
}

func init() {
	for _, c := range []*cobra.Command{evaluateCmd, riskCmd, correlationCmd, signalCmd, watchCmd} {
		c.Flags().StringP("format", "f", "text", "output format (text, yaml)")
		c.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	}
	watchCmd.Flags().String("schedule", "", "cron schedule override (default: schedule.cron)")
	watchCmd.Flags().Bool("now", true, "run once immediately before waiting for the schedule")
	watchCmd.Flags().Bool("fresh", true, "flush cached Yahoo data before each run; when false only expired entries are dropped")
}

// --- Watch Command ---

var watchCmd = &cobra.Command{
	Use:   "watch [tickers...]",
	Short: "Re-run the dashboard on a schedule",
	Long: `Evaluate the basket on a cron schedule until interrupted. Cached Yahoo
responses are flushed before each run so every refresh sees fresh data;
pass --fresh=false to keep entries until their TTL expires.

Examples:
  techlens watch
  techlens watch --schedule "30 16 * * MON-FRI"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}

		spec, _ := cmd.Flags().GetString("schedule")
		if spec == "" {
			spec = cfg.Schedule.Cron
		}
		if err := scheduler.ValidateSchedule(spec); err != nil {
			return err
		}

		ctx := cmd.Context()
		tickers := a.tickers(args)
		fresh, _ := cmd.Flags().GetBool("fresh")
		job := scheduler.JobFunc{JobName: "dashboard-refresh", Fn: func() error {
			if a.yahoo != nil {
				if fresh {
					a.yahoo.Cache().Flush()
				} else {
					a.yahoo.Cache().Cleanup()
				}
			}
			res, err := a.svc.Run(ctx, tickers)
			if err != nil {
				return err
			}
			return emit(cmd, res, format, report.DefaultConfig())
		}}

		s := scheduler.New(log)
		if err := s.AddJob(spec, job); err != nil {
			return err
		}
		if now, _ := cmd.Flags().GetBool("now"); now {
			if err := s.RunNow(job); err != nil {
				log.Error().Err(err).Msg("initial run failed")
			}
		}

		s.Start()
		log.Info().Str("schedule", spec).Str("at", report.ReportTimestamp()).Msg("watching; press Ctrl+C to stop")
		<-ctx.Done()
		s.Stop()
		return nil
	},
}

// --- helpers ---

func runReport(cmd *cobra.Command, args []string, sections []report.Section) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}

	log.Debug().Str("market", utils.MarketStatus()).Msg("starting evaluation")
	res, err := a.svc.Run(cmd.Context(), a.tickers(args))
	if err != nil {
		return err
	}

	rc := report.DefaultConfig()
	rc.Sections = sections
	return emit(cmd, res, format, rc)
}

func formatFlag(cmd *cobra.Command) (report.Format, error) {
	f, _ := cmd.Flags().GetString("format")
	return report.ParseFormat(f)
}

// emit writes res to --output, or stdout when unset. Each watch run
// overwrites the output file.
func emit(cmd *cobra.Command, res *evaluator.Result, format report.Format, rc report.Config) error {
	var w io.Writer = cmd.OutOrStdout()
	path, _ := cmd.Flags().GetString("output")
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := report.Write(w, res, format, rc); err != nil {
		return err
	}
	if format == report.FormatText {
		fmt.Fprintf(w, "  Completed in %s at %s\n", report.FormatDuration(res.Duration), res.Dashboard.GeneratedAt.Format(time.RFC3339))
	}
	if path != "" {
		log.Info().Str("path", path).Str("run_id", res.Dashboard.RunID).Msg("report written")
	}
	return nil
}
