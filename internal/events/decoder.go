package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"livemarket-sync/internal/syncerrors"
)

// EventKind discriminates push messages on the wire
type EventKind string

const (
	KindSessionUpdated     EventKind = "SessionUpdated"
	KindLotMoved           EventKind = "LotMoved"
	KindLotApprovalChanged EventKind = "LotApprovalChanged"
	KindLotStatusChanged   EventKind = "LotStatusChanged"
	KindBidPlaced          EventKind = "BidPlaced"
)

// Structural reports whether the event invalidates the lot partitioning and
// therefore requires a fresh snapshot.
func (k EventKind) Structural() bool {
	switch k {
	case KindSessionUpdated, KindLotMoved, KindLotApprovalChanged, KindLotStatusChanged:
		return true
	default:
		return false
	}
}

// Envelope is a normalized push notification. Only the fields relevant to the
// envelope's kind are populated.
type Envelope struct {
	Kind      EventKind
	SessionID string
	CarID     int64
	CarMake   string
	CarModel  string
	Approved  bool
	OldStatus string
	NewStatus string
	BidderID  int64
	BidAmount float64
}

// flexFloat accepts both JSON numbers and string-encoded numbers; the backend
// serializes money fields as strings like "20000.00".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return err
	}
	*f = flexFloat(n)
	return nil
}

type rawEvent struct {
	Kind      string    `json:"kind"`
	SessionID string    `json:"session_id"`
	CarID     int64     `json:"car_id"`
	CarMake   string    `json:"car_make"`
	CarModel  string    `json:"car_model"`
	Approved  bool      `json:"approved"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	BidderID  int64     `json:"bidder_id"`
	BidAmount flexFloat `json:"bid_amount"`
}

// Decode validates and normalizes a raw push message into an Envelope.
// Undecodable payloads return ErrMalformedEvent; recognizable payloads with
// an unrecognized kind return ErrUnknownEventKind so callers can drop them
// without breaking on event types added server-side later.
func Decode(raw []byte) (Envelope, error) {
	var re rawEvent
	if err := json.Unmarshal(raw, &re); err != nil {
		return Envelope{}, fmt.Errorf("decode event: %w: %v", syncerrors.ErrMalformedEvent, err)
	}

	kind := EventKind(re.Kind)
	switch kind {
	case KindSessionUpdated, KindLotMoved, KindLotApprovalChanged, KindLotStatusChanged, KindBidPlaced:
	default:
		return Envelope{}, fmt.Errorf("decode event %q: %w", re.Kind, syncerrors.ErrUnknownEventKind)
	}

	return Envelope{
		Kind:      kind,
		SessionID: re.SessionID,
		CarID:     re.CarID,
		CarMake:   re.CarMake,
		CarModel:  re.CarModel,
		Approved:  re.Approved,
		OldStatus: re.OldStatus,
		NewStatus: re.NewStatus,
		BidderID:  re.BidderID,
		BidAmount: float64(re.BidAmount),
	}, nil
}
