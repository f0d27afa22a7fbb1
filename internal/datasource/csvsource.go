package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seenimoa/techlens/internal/analysis/fundamental"
	"github.com/seenimoa/techlens/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Directory source: prices/<TICKER>.csv + fundamentals.yaml
// ════════════════════════════════════════════════════════════════════

// FundamentalsFile is the name of the per-directory company file.
const FundamentalsFile = "fundamentals.yaml"

// fileCompany is one entry of fundamentals.yaml.
type fileCompany struct {
	Name         string             `yaml:"name"`
	Sector       string             `yaml:"sector"`
	MarketCap    float64            `yaml:"market_cap"`
	Fundamentals map[string]float64 `yaml:"fundamentals"`
}

// DirSource reads daily bars and fundamentals from a local directory.
// Prices live in <dir>/prices/<TICKER>.csv with a Date,Open,High,Low,Close,Volume
// header (Adj Close is accepted and preferred over Close). Company data lives
// in <dir>/fundamentals.yaml keyed by ticker.
type DirSource struct {
	dir string

	once      sync.Once
	companies map[string]fileCompany
	loadErr   error
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Name returns the data source name.
func (d *DirSource) Name() string { return "Local CSV" }

// GetHistory reads <dir>/prices/<ticker>.csv and returns the bars in [from, to].
// A zero from or to leaves that side unbounded.
func (d *DirSource) GetHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return models.PriceSeries{}, err
	}

	path := filepath.Join(d.dir, "prices", priceFileName(ticker))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.PriceSeries{}, fmt.Errorf("%s: %w", ticker, ErrTickerNotFound)
		}
		return models.PriceSeries{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bars, err := parsePriceCSV(f)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("parse %s: %w", path, err)
	}

	filtered := bars[:0]
	for _, b := range bars {
		if !from.IsZero() && b.Timestamp.Before(dayStart(from)) {
			continue
		}
		if !to.IsZero() && b.Timestamp.After(to) {
			continue
		}
		filtered = append(filtered, b)
	}
	return models.NewPriceSeries(ticker, filtered)
}

// GetFundamentals returns the fundamentals block for ticker.
func (d *DirSource) GetFundamentals(ctx context.Context, ticker string) (fundamental.Raw, error) {
	c, err := d.company(ctx, ticker)
	if err != nil {
		return nil, err
	}
	raw := make(fundamental.Raw, len(c.Fundamentals))
	for k, v := range c.Fundamentals {
		raw[k] = v
	}
	return raw, nil
}

// GetProfile returns name, sector and market cap for ticker.
func (d *DirSource) GetProfile(ctx context.Context, ticker string) (models.Stock, error) {
	c, err := d.company(ctx, ticker)
	if err != nil {
		return models.Stock{}, err
	}
	return models.Stock{
		Ticker:    ticker,
		Name:      c.Name,
		Sector:    c.Sector,
		MarketCap: c.MarketCap,
	}, nil
}

func (d *DirSource) company(ctx context.Context, ticker string) (fileCompany, error) {
	if err := ctx.Err(); err != nil {
		return fileCompany{}, err
	}
	d.once.Do(d.load)
	if d.loadErr != nil {
		return fileCompany{}, d.loadErr
	}
	c, ok := d.companies[strings.ToUpper(ticker)]
	if !ok {
		return fileCompany{}, fmt.Errorf("%s: %w", ticker, ErrTickerNotFound)
	}
	return c, nil
}

func (d *DirSource) load() {
	path := filepath.Join(d.dir, FundamentalsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		d.loadErr = fmt.Errorf("read %s: %w", path, err)
		return
	}

	var parsed map[string]fileCompany
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		d.loadErr = fmt.Errorf("decode %s: %w", path, err)
		return
	}

	d.companies = make(map[string]fileCompany, len(parsed))
	for ticker, c := range parsed {
		d.companies[strings.ToUpper(ticker)] = c
	}
}

// --- helpers ---

// priceFileName maps a ticker to its CSV file; index carets are dropped
// so ^GSPC reads GSPC.csv.
func priceFileName(ticker string) string {
	return strings.TrimPrefix(strings.ToUpper(ticker), "^") + ".csv"
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parsePriceCSV decodes a Yahoo-style daily CSV export. Rows with an
// unparsable or non-positive close (e.g. "null") are skipped. Output is
// sorted by date.
func parsePriceCSV(r io.Reader) ([]models.OHLCV, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateCol, ok := cols["date"]
	if !ok {
		return nil, errors.New("missing Date column")
	}
	closeCol, ok := cols["adj close"]
	if !ok {
		if closeCol, ok = cols["close"]; !ok {
			return nil, errors.New("missing Close column")
		}
	}

	field := func(rec []string, name string) float64 {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return 0
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			return 0
		}
		return v
	}

	var bars []models.OHLCV
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if dateCol >= len(rec) || closeCol >= len(rec) {
			continue
		}
		ts, err := time.Parse(time.DateOnly, strings.TrimSpace(rec[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", rec[dateCol], err)
		}
		closePx, err := strconv.ParseFloat(strings.TrimSpace(rec[closeCol]), 64)
		if err != nil || closePx <= 0 {
			continue
		}
		bars = append(bars, models.OHLCV{
			Timestamp: ts,
			Open:      field(rec, "open"),
			High:      field(rec, "high"),
			Low:       field(rec, "low"),
			Close:     closePx,
			Volume:    int64(field(rec, "volume")),
		})
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	return bars, nil
}
