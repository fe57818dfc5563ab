package models

import "time"

// Session labels shown in the page header, keyed off wall-clock hour.
const (
	LabelSilentMarket  = "Silent Market"
	LabelLiveAuction   = "Live Auction"
	LabelInstantMarket = "Instant Market"
	LabelMarketClosed  = "Market Closed"
)

// SessionLabel maps the hour of day to the label of the session running in
// that band. Display only, no state.
func SessionLabel(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 10 && h < 16:
		return LabelSilentMarket
	case h >= 16 && h < 19:
		return LabelLiveAuction
	case h >= 19 && h < 22:
		return LabelInstantMarket
	default:
		return LabelMarketClosed
	}
}
