package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"livemarket-sync/internal/events"
	"livemarket-sync/internal/models"
	"livemarket-sync/internal/subscription"
	"livemarket-sync/utils"
)

// AuctionService holds the business rules of the simulated backend for one
// session: bid validation, lot administration and the push events each
// mutation emits.
type AuctionService struct {
	store     LotStore
	bus       subscription.Bus
	sessionID string // "" publishes on the global channel
}

// NewAuctionService creates an AuctionService publishing on the session's
// channel. A nil bus disables push events.
func NewAuctionService(store LotStore, bus subscription.Bus, sessionID string) *AuctionService {
	return &AuctionService{store: store, bus: bus, sessionID: sessionID}
}

// Snapshot partitions the stored lots the way the production API does:
// the first approved live lot is current, remaining live lots pending,
// completed lots completed.
func (s *AuctionService) Snapshot() models.Snapshot {
	snap := models.Snapshot{
		Pending:   []models.Lot{},
		Completed: []models.Lot{},
	}
	for _, lot := range s.store.ListLots() {
		switch {
		case lot.Status == models.StatusLive && lot.ApprovedForLive && snap.Current == nil:
			current := lot
			snap.Current = &current
		case lot.Status == models.StatusLive:
			snap.Pending = append(snap.Pending, lot)
		case lot.Status == models.StatusCompleted:
			snap.Completed = append(snap.Completed, lot)
		}
	}
	return snap
}

// HasLot reports whether the session holds the lot.
func (s *AuctionService) HasLot(lotID int64) bool {
	_, err := s.store.GetLot(lotID)
	return err == nil
}

// PlaceBid validates and records a bid, then announces it on the push
// channel.
func (s *AuctionService) PlaceBid(ctx context.Context, lotID, bidderID int64, amount float64) (models.Bid, error) {
	lot, err := s.store.GetLot(lotID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: place bid: %w", err)
	}
	if err := validateBid(lot, amount); err != nil {
		return models.Bid{}, err
	}

	bid := models.Bid{
		Amount:    amount,
		BidderID:  bidderID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.RecordBid(lotID, bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for lot %d: %w", lotID, err)
	}

	s.publish(ctx, map[string]any{
		"kind":       string(events.KindBidPlaced),
		"car_id":     lot.CarID,
		"car_make":   carMake(lot),
		"car_model":  carModel(lot),
		"bidder_id":  bidderID,
		"bid_amount": amount,
	})
	return bid, nil
}

// validateBid checks input validity and the bidding rules
func validateBid(lot models.Lot, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("service: %w - non-positive bid amount", ErrInvalidBid)
	}
	if lot.Status != models.StatusLive || !lot.ApprovedForLive {
		return fmt.Errorf("service: lot %d: %w", lot.LotID, ErrLotNotLive)
	}
	floor := lot.CurrentBid
	if floor == 0 {
		floor = lot.OpeningPrice
	}
	if amount <= floor {
		return fmt.Errorf("service: %w - current highest bid is %.2f", ErrBidTooLow, floor)
	}
	return nil
}

// SetApproval flips the approved-for-live flag and announces the change.
func (s *AuctionService) SetApproval(ctx context.Context, lotID int64, approved bool) error {
	lot, err := s.store.GetLot(lotID)
	if err != nil {
		return fmt.Errorf("service: set approval: %w", err)
	}
	if err := s.store.SetApproval(lotID, approved); err != nil {
		return fmt.Errorf("service: set approval: %w", err)
	}

	s.publish(ctx, map[string]any{
		"kind":      string(events.KindLotApprovalChanged),
		"car_id":    lot.CarID,
		"car_make":  carMake(lot),
		"car_model": carModel(lot),
		"approved":  approved,
	})
	return nil
}

// SetStatus moves a lot to another status and announces the transition.
func (s *AuctionService) SetStatus(ctx context.Context, lotID int64, status string) error {
	lot, err := s.store.GetLot(lotID)
	if err != nil {
		return fmt.Errorf("service: set status: %w", err)
	}
	if err := s.store.SetStatus(lotID, status); err != nil {
		return fmt.Errorf("service: set status: %w", err)
	}

	s.publish(ctx, map[string]any{
		"kind":       string(events.KindLotStatusChanged),
		"car_id":     lot.CarID,
		"car_make":   carMake(lot),
		"car_model":  carModel(lot),
		"old_status": lot.Status,
		"new_status": status,
	})
	return nil
}

// MoveLot re-registers a lot under this session and announces the move.
func (s *AuctionService) MoveLot(ctx context.Context, lot models.Lot) {
	s.store.AddLot(lot)
	s.publish(ctx, map[string]any{
		"kind":      string(events.KindLotMoved),
		"car_id":    lot.CarID,
		"car_make":  carMake(lot),
		"car_model": carModel(lot),
	})
}

// AnnounceSessionUpdate emits a bare session-level invalidation.
func (s *AuctionService) AnnounceSessionUpdate(ctx context.Context) {
	s.publish(ctx, map[string]any{
		"kind":       string(events.KindSessionUpdated),
		"session_id": s.sessionID,
	})
}

func (s *AuctionService) publish(ctx context.Context, payload map[string]any) {
	if s.bus == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		utils.Error("simulator: marshal event failed", map[string]any{"error": err.Error()})
		return
	}
	channel := subscription.ChannelName(s.sessionID)
	if err := s.bus.Publish(ctx, channel, body); err != nil {
		utils.Warn("simulator: publish event failed", map[string]any{
			"channel": channel,
			"error":   err.Error(),
		})
	}
}

func carMake(lot models.Lot) string {
	if lot.Car != nil {
		return lot.Car.Make
	}
	return ""
}

func carModel(lot models.Lot) string {
	if lot.Car != nil {
		return lot.Car.Model
	}
	return ""
}
