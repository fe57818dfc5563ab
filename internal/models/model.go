package models

import "time"

// Lot status values used by the backend
const (
	StatusLive      = "live"
	StatusCompleted = "completed"
	StatusScheduled = "scheduled"
	StatusEnded     = "ended"
	StatusCancelled = "cancelled"
)

// Dealer represents the dealership a car may be listed through
type Dealer struct {
	UserID int64 `json:"user_id"`
}

// Car represents the vehicle attached to a lot
type Car struct {
	CarID     int64   `json:"id"`
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	Year      int     `json:"year"`
	VIN       string  `json:"vin"`
	Odometer  int64   `json:"odometer"`
	Condition string  `json:"condition"`
	UserID    int64   `json:"user_id"`
	Dealer    *Dealer `json:"dealer,omitempty"` // nil when the car is listed privately
}

// Bid is one entry in a lot's bid history
type Bid struct {
	Amount    float64   `json:"amount"`
	BidderID  int64     `json:"bidder_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Lot represents one car up for auction within a session
type Lot struct {
	LotID           int64   `json:"id"`
	CarID           int64   `json:"car_id"`
	Car             *Car    `json:"car,omitempty"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	OpeningPrice    float64 `json:"opening_price"`
	CurrentBid      float64 `json:"current_bid"`
	Viewers         int     `json:"viewers"`
	Status          string  `json:"status"`
	ApprovedForLive bool    `json:"approved_for_live"`
	BidHistory      []Bid   `json:"bids,omitempty"`
}

// Snapshot is a full, authoritative point-in-time listing of a session's lots,
// already partitioned by the backend
type Snapshot struct {
	Current   *Lot  `json:"current_live_car"`
	Pending   []Lot `json:"pending_live_auctions"`
	Completed []Lot `json:"completed_live_auctions"`
}

// Lots returns every lot in the snapshot regardless of the backend's partitioning.
func (s Snapshot) Lots() []Lot {
	lots := make([]Lot, 0, 1+len(s.Pending)+len(s.Completed))
	if s.Current != nil {
		lots = append(lots, *s.Current)
	}
	lots = append(lots, s.Pending...)
	lots = append(lots, s.Completed...)
	return lots
}

// Phase is the lifecycle stage of the bid-submission form
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseVisible
	PhaseSubmitting
	PhaseSuccess
	PhaseError
)

// String returns the phase name for logs and status labels.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseVisible:
		return "visible"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// BidDraft is the ephemeral state of the bid form for one screen instance
type BidDraft struct {
	Visible      bool    `json:"visible"`
	Amount       float64 `json:"amount"`
	Phase        Phase   `json:"phase"`
	ErrorMessage string  `json:"error_message,omitempty"`
}
