package utils

import (
	"testing"
	"time"
)

func TestMarketOpenClose(t *testing.T) {
	date := time.Date(2026, 2, 18, 12, 0, 0, 0, Eastern)

	open := MarketOpenTime(date)
	if open.Hour() != 9 || open.Minute() != 30 {
		t.Errorf("MarketOpenTime = %v, want 09:30", open)
	}

	close := MarketCloseTime(date)
	if close.Hour() != 16 || close.Minute() != 0 {
		t.Errorf("MarketCloseTime = %v, want 16:00", close)
	}
}

func TestIsMarketOpenAt(t *testing.T) {
	// Wednesday at 10:00 AM ET, should be open
	weekday := time.Date(2026, 2, 18, 10, 0, 0, 0, Eastern)
	if !IsMarketOpenAt(weekday) {
		t.Error("Expected market to be open on Wednesday 10:00 AM")
	}

	saturday := time.Date(2026, 2, 21, 10, 0, 0, 0, Eastern)
	if IsMarketOpenAt(saturday) {
		t.Error("Expected market to be closed on Saturday")
	}

	closeBell := time.Date(2026, 2, 18, 16, 0, 0, 0, Eastern)
	if IsMarketOpenAt(closeBell) {
		t.Error("Expected market to be closed at 4:00 PM")
	}
}

func TestIsTradingHoliday(t *testing.T) {
	thanksgiving := time.Date(2026, 11, 26, 10, 0, 0, 0, Eastern)
	if !IsTradingHoliday(thanksgiving) {
		t.Error("Expected Thanksgiving to be a trading holiday")
	}

	regular := time.Date(2026, 11, 24, 10, 0, 0, 0, Eastern)
	if IsTradingHoliday(regular) {
		t.Error("Expected Nov 24 to be a regular trading day")
	}
}

func TestPrevTradingDay(t *testing.T) {
	// Monday after a regular weekend goes back to Friday.
	monday := time.Date(2026, 3, 9, 12, 0, 0, 0, Eastern)
	prev := PrevTradingDay(monday)
	if prev.Weekday() != time.Friday || prev.Day() != 6 {
		t.Errorf("PrevTradingDay(%v) = %v, want Friday Mar 6", monday, prev)
	}

	// Monday after Good Friday goes back to Thursday.
	afterGoodFriday := time.Date(2026, 4, 6, 12, 0, 0, 0, Eastern)
	prev = PrevTradingDay(afterGoodFriday)
	if prev.Day() != 2 {
		t.Errorf("PrevTradingDay(%v) = %v, want Apr 2", afterGoodFriday, prev)
	}
}

func TestMarketStatusAt(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"weekend", time.Date(2026, 2, 21, 10, 0, 0, 0, Eastern), "CLOSED (Weekend)"},
		{"holiday", time.Date(2026, 12, 25, 10, 0, 0, 0, Eastern), "CLOSED (Christmas Day)"},
		{"overnight", time.Date(2026, 2, 18, 3, 0, 0, 0, Eastern), "CLOSED"},
		{"pre-market", time.Date(2026, 2, 18, 8, 0, 0, 0, Eastern), "PRE-MARKET"},
		{"open", time.Date(2026, 2, 18, 11, 0, 0, 0, Eastern), "OPEN"},
		{"after-hours", time.Date(2026, 2, 18, 17, 0, 0, 0, Eastern), "AFTER-HOURS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketStatusAt(tt.at); got != tt.want {
				t.Errorf("MarketStatusAt(%v) = %q, want %q", tt.at, got, tt.want)
			}
		})
	}
}
