// Package report renders evaluation runs for the terminal (aligned text
// tables) and for machines (YAML).
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seenimoa/techlens/internal/evaluator"
	"github.com/seenimoa/techlens/pkg/models"
	"github.com/seenimoa/techlens/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Types
// ════════════════════════════════════════════════════════════════════

// Format identifies an output format.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a flag value onto a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text or yaml)", s)
	}
}

// Section names one block of the text report.
type Section string

const (
	SectionRisk        Section = "risk"
	SectionTailRisk    Section = "tail_risk"
	SectionScores      Section = "scores"
	SectionCorrelation Section = "correlation"
	SectionPeers       Section = "peers"
	SectionRecommend   Section = "recommendation"
)

// AllSections returns every section in render order.
func AllSections() []Section {
	return []Section{SectionRisk, SectionTailRisk, SectionScores, SectionCorrelation, SectionPeers, SectionRecommend}
}

// Config controls what the text report contains.
type Config struct {
	Title    string
	Sections []Section // empty = all
}

// DefaultConfig returns a config rendering every section.
func DefaultConfig() Config {
	return Config{Title: "Tech Stock Fundamentals Dashboard", Sections: AllSections()}
}

func (c Config) has(s Section) bool {
	if len(c.Sections) == 0 {
		return true
	}
	for _, x := range c.Sections {
		if x == s {
			return true
		}
	}
	return false
}

// Benchmarks the text report flags metrics against.
const (
	BenchmarkSharpe     = 1.0
	BenchmarkSortino    = 1.0
	BenchmarkVolatility = 0.20
)

const (
	markPass = "✔"
	markFail = "✘"
)

// ════════════════════════════════════════════════════════════════════
// Public API
// ════════════════════════════════════════════════════════════════════

// Write renders res in the given format.
func Write(w io.Writer, res *evaluator.Result, format Format, cfg Config) error {
	if res == nil {
		return fmt.Errorf("result is nil")
	}
	switch format {
	case FormatYAML:
		return writeYAML(w, res)
	case FormatText, "":
		return writeText(w, res, cfg)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// GenerateText returns the plain-text report.
func GenerateText(res *evaluator.Result, cfg Config) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, res, FormatText, cfg); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// GenerateYAML returns the run as a YAML document.
func GenerateYAML(res *evaluator.Result) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, res, FormatYAML, Config{}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeYAML(w io.Writer, res *evaluator.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func writeText(w io.Writer, res *evaluator.Result, cfg Config) error {
	if cfg.Title == "" {
		cfg.Title = DefaultConfig().Title
	}
	d := res.Dashboard
	line := strings.Repeat("═", 72)
	thin := strings.Repeat("─", 72)

	var sb strings.Builder
	sb.WriteString("\n" + line + "\n")
	fmt.Fprintf(&sb, "  %s\n", cfg.Title)
	fmt.Fprintf(&sb, "  Generated: %s | Run: %s\n", utils.FormatDateTimeEastern(d.GeneratedAt), d.RunID)
	fmt.Fprintf(&sb, "  Risk-free rate: %s | Duration: %s\n", utils.FormatPct(d.RiskFreeRate), FormatDuration(res.Duration))
	sb.WriteString(line + "\n")

	ok := okReports(d.Reports)

	section := func(title string, body string) {
		if body == "" {
			return
		}
		fmt.Fprintf(&sb, "\n  ■ %s\n", title)
		sb.WriteString(body)
		sb.WriteString(thin + "\n")
	}

	if cfg.has(SectionRisk) {
		section("RISK METRICS", riskTable(ok))
	}
	if cfg.has(SectionTailRisk) {
		section("TAIL RISK (historical VaR / CVaR)", tailRiskTable(ok))
	}
	if cfg.has(SectionScores) {
		section("FIVE-LENS SCORES", scoreTable(ok))
	}
	if cfg.has(SectionCorrelation) && d.Correlation != nil {
		section("RETURN CORRELATION", correlationTable(*d.Correlation))
	}
	if cfg.has(SectionPeers) {
		section("PEER RANKING", peerTable(res))
	}
	if cfg.has(SectionRecommend) {
		section("RECOMMENDATIONS", recommendations(ok))
	}

	if errs := failures(d.Reports); errs != "" {
		section("UNAVAILABLE", errs)
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Educational use only. Not financial advice.\n")
	sb.WriteString(line + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func riskTable(reports []models.CompanyReport) string {
	if len(reports) == 0 {
		return ""
	}
	return table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "  Ticker\tSector\tAnn. Return\tVolatility\tSharpe\tSortino\tMax DD\tRecovery\tBeta\tAssessment\t")
		for _, r := range reports {
			m := r.Risk
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s %s\t%s %s\t%s %s\t%s\t%s\t%s (%s)\t%s\t\n",
				r.Stock.Ticker,
				r.Stock.Sector,
				utils.FormatPct(m.AnnualReturn),
				utils.FormatPct(m.Volatility), mark(m.Volatility <= BenchmarkVolatility),
				utils.FormatRatio(m.SharpeRatio), mark(m.SharpeRatio >= BenchmarkSharpe),
				utils.FormatRatio(m.SortinoRatio), mark(m.SortinoRatio >= BenchmarkSortino),
				utils.FormatPct(m.MaxDrawdown),
				utils.FormatDays(m.RecoveryDays),
				utils.FormatRatio(m.Beta), m.BetaSource,
				m.Assessment,
			)
		}
	}) + fmt.Sprintf("  %s meets benchmark (Sharpe ≥ %.1f, Sortino ≥ %.1f, volatility ≤ %s)\n",
		markPass, BenchmarkSharpe, BenchmarkSortino, utils.FormatPct(BenchmarkVolatility))
}

func tailRiskTable(reports []models.CompanyReport) string {
	var levels []float64
	for _, r := range reports {
		if len(r.Risk.TailRisk) > 0 {
			for _, t := range r.Risk.TailRisk {
				levels = append(levels, t.Confidence)
			}
			break
		}
	}
	if len(levels) == 0 {
		return ""
	}
	return table(func(tw *tabwriter.Writer) {
		fmt.Fprint(tw, "  Ticker\t")
		for _, c := range levels {
			fmt.Fprintf(tw, "VaR %s\tCVaR %s\t", confLabel(c), confLabel(c))
		}
		fmt.Fprintln(tw)
		for _, r := range reports {
			fmt.Fprintf(tw, "  %s\t", r.Stock.Ticker)
			for _, c := range levels {
				v, okV := r.Risk.VaR(c)
				cv, okC := r.Risk.CVaR(c)
				fmt.Fprintf(tw, "%s\t%s\t", pctOrNA(v, okV), pctOrNA(cv, okC))
			}
			fmt.Fprintln(tw)
		}
	})
}

func scoreTable(reports []models.CompanyReport) string {
	if len(reports) == 0 {
		return ""
	}
	return table(func(tw *tabwriter.Writer) {
		fmt.Fprint(tw, "  Ticker\t")
		for _, l := range models.AllLenses() {
			fmt.Fprintf(tw, "%s\t", l.Title())
		}
		fmt.Fprintln(tw, "Composite\tSignal\t")
		for _, r := range reports {
			s := r.Evaluation.Scores
			fmt.Fprintf(tw, "  %s\t", r.Stock.Ticker)
			for _, l := range models.AllLenses() {
				fmt.Fprintf(tw, "%.1f\t", s.Get(l))
			}
			fmt.Fprintf(tw, "%.1f\t%s\t\n", s.Composite, r.Evaluation.Signal.Label())
		}
	})
}

func correlationTable(cm models.CorrelationMatrix) string {
	if len(cm.Tickers) == 0 {
		return ""
	}
	return table(func(tw *tabwriter.Writer) {
		fmt.Fprint(tw, "  \t")
		for _, t := range cm.Tickers {
			fmt.Fprintf(tw, "%s\t", t)
		}
		fmt.Fprintln(tw)
		for i, t := range cm.Tickers {
			fmt.Fprintf(tw, "  %s\t", t)
			for j := range cm.Tickers {
				fmt.Fprintf(tw, "%.2f\t", cm.Values[i][j])
			}
			fmt.Fprintln(tw)
		}
	})
}

func peerTable(res *evaluator.Result) string {
	if len(res.Peers) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "  Rank\tTicker\tComposite\tSignal\tRolling DD\t")
		for _, p := range res.Peers {
			dd := "N/A"
			if v, ok := res.Rolling[p.Ticker]; ok {
				dd = utils.FormatPct(v)
			}
			fmt.Fprintf(tw, "  %d\t%s\t%.1f\t%s\t%s\t\n", p.Rank, p.Ticker, p.Composite, p.Signal.Label(), dd)
		}
	}))

	tickers := make([]string, 0, len(res.Relative))
	for t := range res.Relative {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	for _, t := range tickers {
		fmt.Fprintf(&sb, "\n  %s vs peers\n", t)
		sb.WriteString(table(func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "    Metric\tValue\tPeer Avg\tPeer Median\tPercentile\t")
			for _, m := range res.Relative[t] {
				fmt.Fprintf(tw, "    %s\t%s\t%s\t%s\t%.0f\t\n", m.Field,
					utils.FormatRatio(m.TargetValue), utils.FormatRatio(m.PeerAvg),
					utils.FormatRatio(m.PeerMedian), m.Percentile)
			}
		}))
	}
	return sb.String()
}

func recommendations(reports []models.CompanyReport) string {
	var sb strings.Builder
	for _, r := range reports {
		rec := r.Recommendation
		if rec == nil {
			continue
		}
		name := r.Stock.Ticker
		if r.Stock.Name != "" {
			name = fmt.Sprintf("%s (%s)", r.Stock.Name, r.Stock.Ticker)
		}
		fmt.Fprintf(&sb, "\n  ★ %s: %s [%s]\n", name, rec.Signal.Label(), rec.Signal.Color())
		if r.Stock.MarketCap > 0 {
			fmt.Fprintf(&sb, "    Market cap: %s\n", utils.FormatMarketCap(r.Stock.MarketCap))
		}
		if rec.Text != "" {
			fmt.Fprintf(&sb, "    %s\n", rec.Text)
		}
		sb.WriteString("    Strengths:\n")
		sb.WriteString(indent(utils.Bullets(rec.Strengths), "      "))
		sb.WriteString("    Weaknesses:\n")
		sb.WriteString(indent(utils.Bullets(rec.Weaknesses), "      "))
	}
	return sb.String()
}

func failures(reports []models.CompanyReport) string {
	var sb strings.Builder
	for _, r := range reports {
		if r.Err != "" {
			fmt.Fprintf(&sb, "    %s: %s\n", r.Stock.Ticker, r.Err)
		}
	}
	return sb.String()
}

// --- helpers ---

func table(fill func(tw *tabwriter.Writer)) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fill(tw)
	_ = tw.Flush()
	return sb.String()
}

func okReports(reports []models.CompanyReport) []models.CompanyReport {
	out := make([]models.CompanyReport, 0, len(reports))
	for _, r := range reports {
		if r.OK() && r.Risk != nil {
			out = append(out, r)
		}
	}
	return out
}

func mark(pass bool) string {
	if pass {
		return markPass
	}
	return markFail
}

func confLabel(c float64) string {
	return fmt.Sprintf("%g%%", math.Round(c*1000)/10)
}

func pctOrNA(v float64, ok bool) string {
	if !ok {
		return "N/A"
	}
	return utils.FormatPct(v)
}

func indent(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	var sb strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		sb.WriteString(prefix + l)
	}
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Utility: Timestamp
// ════════════════════════════════════════════════════════════════════

// ReportTimestamp returns the current US Eastern time formatted for report headers.
func ReportTimestamp() string {
	return utils.FormatDateTimeEastern(utils.NowEastern())
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
