// Package models defines the core data structures used throughout techlens.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Stock represents basic company information for a tracked ticker.
type Stock struct {
	Ticker    string  `json:"ticker" yaml:"ticker"`         // e.g., "NVDA"
	Name      string  `json:"name" yaml:"name"`             // e.g., "NVIDIA Corporation"
	Sector    string  `json:"sector" yaml:"sector"`         // e.g., "Semiconductors"
	MarketCap float64 `json:"market_cap" yaml:"market_cap"` // in USD (raw value, not formatted)
}

// OHLCV represents a single daily bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Open      float64   `json:"open" yaml:"open"`
	High      float64   `json:"high" yaml:"high"`
	Low       float64   `json:"low" yaml:"low"`
	Close     float64   `json:"close" yaml:"close"`
	Volume    int64     `json:"volume" yaml:"volume"`
}

var (
	// ErrEmptySeries is returned when a price series has no bars.
	ErrEmptySeries = errors.New("price series is empty")
	// ErrUnsortedSeries is returned when bars are not in increasing date order.
	ErrUnsortedSeries = errors.New("price series is not sorted by date")
	// ErrDuplicateDate is returned when two bars share the same date.
	ErrDuplicateDate = errors.New("price series has duplicate dates")
)

// PriceSeries is an ordered, date-indexed sequence of daily bars for one ticker.
// Dates are strictly increasing. A series is never appended to; a new fetch
// replaces it wholesale.
type PriceSeries struct {
	Ticker string  `json:"ticker" yaml:"ticker"`
	Bars   []OHLCV `json:"bars" yaml:"bars"`
}

// NewPriceSeries validates bars and returns a series that owns a private copy of them.
func NewPriceSeries(ticker string, bars []OHLCV) (PriceSeries, error) {
	if len(bars) == 0 {
		return PriceSeries{}, fmt.Errorf("%s: %w", ticker, ErrEmptySeries)
	}
	for i := 1; i < len(bars); i++ {
		prev, curr := dateOf(bars[i-1].Timestamp), dateOf(bars[i].Timestamp)
		if curr.Equal(prev) {
			return PriceSeries{}, fmt.Errorf("%s %s: %w", ticker, curr.Format(time.DateOnly), ErrDuplicateDate)
		}
		if curr.Before(prev) {
			return PriceSeries{}, fmt.Errorf("%s %s: %w", ticker, curr.Format(time.DateOnly), ErrUnsortedSeries)
		}
	}

	owned := make([]OHLCV, len(bars))
	copy(owned, bars)
	return PriceSeries{Ticker: ticker, Bars: owned}, nil
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes returns the closing prices in date order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Dates returns the bar dates in order.
func (s PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		dates[i] = b.Timestamp
	}
	return dates
}

// Last returns the most recent bar and false when the series is empty.
func (s PriceSeries) Last() (OHLCV, bool) {
	if len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// dateOf truncates a timestamp to its calendar date in its own location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey returns the calendar-date key used to align series across tickers.
func DateKey(t time.Time) string {
	return dateOf(t).Format(time.DateOnly)
}
