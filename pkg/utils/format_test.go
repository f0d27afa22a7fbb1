package utils

import (
	"math"
	"testing"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{0, "$0"},
		{1234.5, "$1,234.5"},
		{1234567.891, "$1,234,567.89"},
		{-42.25, "-$42.25"},
		{math.NaN(), "N/A"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.amount); got != tt.expected {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.amount, got, tt.expected)
		}
	}
}

func TestFormatMarketCap(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{3.2e12, "$3.20T"},
		{4.5e9, "$4.50B"},
		{7.25e6, "$7.25M"},
		{0, "N/A"},
	}
	for _, tt := range tests {
		if got := FormatMarketCap(tt.amount); got != tt.expected {
			t.Errorf("FormatMarketCap(%v) = %q, want %q", tt.amount, got, tt.expected)
		}
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(0.1234); got != "12.34%" {
		t.Errorf("FormatPct(0.1234) = %q", got)
	}
	if got := FormatPct(-0.05); got != "-5.00%" {
		t.Errorf("FormatPct(-0.05) = %q", got)
	}
	if got := FormatRatio(math.Inf(1)); got != "∞" {
		t.Errorf("FormatRatio(+Inf) = %q", got)
	}
}

func TestFormatDays(t *testing.T) {
	if got := FormatDays(-1); got != "not recovered" {
		t.Errorf("FormatDays(-1) = %q", got)
	}
	if got := FormatDays(1); got != "1 day" {
		t.Errorf("FormatDays(1) = %q", got)
	}
	if got := FormatDays(30); got != "30 days" {
		t.Errorf("FormatDays(30) = %q", got)
	}
}

func TestFormatVolume(t *testing.T) {
	if got := FormatVolume(1234567); got != "1,234,567" {
		t.Errorf("FormatVolume = %q", got)
	}
}
