package fivelens

import "github.com/seenimoa/techlens/pkg/models"

// Signal thresholds on the composite score, inclusive at the lower bound.
const (
	StrongBuyThreshold = 85.0
	BuyThreshold       = 75.0
	HoldThreshold      = 65.0
	WatchThreshold     = 50.0
)

// Signal maps a composite score onto the five-state investment signal.
func Signal(composite float64) models.InvestmentSignal {
	switch {
	case composite >= StrongBuyThreshold:
		return models.SignalStrongBuy
	case composite >= BuyThreshold:
		return models.SignalBuy
	case composite >= HoldThreshold:
		return models.SignalHold
	case composite >= WatchThreshold:
		return models.SignalWatch
	default:
		return models.SignalAvoid
	}
}
