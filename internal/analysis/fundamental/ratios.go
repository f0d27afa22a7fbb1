package fundamental

// DebtToEquity returns D/E as a plain ratio. Yahoo reports debtToEquity in
// percent (41.5 means 0.415); without it the ratio is totalDebt/totalEquity.
func DebtToEquity(raw Raw) (float64, bool) {
	if v, ok := raw.Get("debtToEquity"); ok {
		return v / 100, true
	}
	debt, okD := raw.Get("totalDebt")
	equity, okE := raw.Get("totalEquity")
	if okD && okE && equity > 0 {
		return debt / equity, true
	}
	return 0, false
}

// CurrentRatio returns currentRatio or currentAssets/currentLiabilities.
func CurrentRatio(raw Raw) (float64, bool) {
	if v, ok := raw.Get("currentRatio"); ok {
		return v, true
	}
	assets, okA := raw.Get("currentAssets")
	liabilities, okL := raw.Get("currentLiabilities")
	if okA && okL && liabilities > 0 {
		return assets / liabilities, true
	}
	return 0, false
}

// InterestCoverage tries, in order: the reported interestCoverage,
// EBIT/interestExpense, and (netIncome+interestExpense+incomeTaxExpense)
// over interestExpense when that reconstructed EBIT is positive.
func InterestCoverage(raw Raw) (float64, bool) {
	if v, ok := raw.Get("interestCoverage"); ok {
		return v, true
	}

	interest, ok := raw.Get("interestExpense")
	if !ok || interest <= 0 {
		return 0, false
	}

	if ebit, ok := raw.first("ebit", "operatingIncome"); ok && ebit != 0 {
		return ebit / interest, true
	}

	ni, okN := raw.Get("netIncome")
	tax, okT := raw.Get("incomeTaxExpense")
	if okN && okT {
		if ebit := ni + interest + tax; ebit > 0 {
			return ebit / interest, true
		}
	}
	return 0, false
}

// Momentum52w returns the 52-week price change as a decimal. It prefers the
// provider's 52WeekChange (decimal) or fiftyTwoWeekChangePercent (percent),
// then falls back to the change over the last MomentumWindow trading days,
// which needs MomentumWindow+1 closes.
func Momentum52w(raw Raw, closes []float64) (float64, bool) {
	if v, ok := raw.Get("52WeekChange"); ok {
		return v, true
	}
	if v, ok := raw.Get("fiftyTwoWeekChangePercent"); ok {
		return v / 100, true
	}
	n := len(closes)
	if n <= MomentumWindow {
		return 0, false
	}
	start, end := closes[n-1-MomentumWindow], closes[n-1]
	if start <= 0 {
		return 0, false
	}
	return pctChange(start, end), true
}

// pctChange is the decimal change between two prices.
func pctChange(from, to float64) float64 {
	return (to - from) / from
}
