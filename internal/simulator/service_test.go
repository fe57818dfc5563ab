package simulator

import (
	"context"
	"sync"
	"testing"

	"livemarket-sync/internal/events"
	"livemarket-sync/internal/models"
	"livemarket-sync/internal/subscription"

	"github.com/stretchr/testify/require"
)

// busRecorder collects raw payloads a service publishes on a channel.
type busRecorder struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (r *busRecorder) record(payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
}

func (r *busRecorder) envelopes(t *testing.T) []events.Envelope {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	envs := make([]events.Envelope, 0, len(r.payloads))
	for _, p := range r.payloads {
		env, err := events.Decode(p)
		require.NoError(t, err)
		envs = append(envs, env)
	}
	return envs
}

func serviceWithLots(t *testing.T, sessionID string, lots ...models.Lot) (*AuctionService, *busRecorder) {
	t.Helper()
	store := NewMemoryStore()
	for _, lot := range lots {
		store.AddLot(lot)
	}
	bus := subscription.NewMemoryBus()
	rec := &busRecorder{}
	_, err := bus.Subscribe(context.Background(), subscription.ChannelName(sessionID), rec.record, nil)
	require.NoError(t, err)
	return NewAuctionService(store, bus, sessionID), rec
}

// Tests Snapshot partitioning of the stored lots
func TestAuctionService_Snapshot(t *testing.T) {
	t.Parallel()

	svc, _ := serviceWithLots(t, "",
		storedLot(1, models.StatusLive, true, 500),
		storedLot(2, models.StatusLive, true, 600), // only the first approved lot is current
		storedLot(3, models.StatusLive, false, 700),
		storedLot(4, models.StatusCompleted, false, 800),
		storedLot(5, models.StatusScheduled, false, 900),
	)

	snap := svc.Snapshot()
	require.NotNil(t, snap.Current)
	require.Equal(t, int64(1), snap.Current.LotID)
	require.Len(t, snap.Pending, 2)
	require.Len(t, snap.Completed, 1)
}

// Tests PlaceBid validation and the BidPlaced announcement
func TestAuctionService_PlaceBid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		lot       models.Lot
		amount    float64
		seed      float64 // pre-existing bid, 0 for none
		wantError error
	}{
		{name: "first_bid_above_opening", lot: storedLot(1, models.StatusLive, true, 500), amount: 600},
		{name: "bid_above_current", lot: storedLot(1, models.StatusLive, true, 500), seed: 700, amount: 800},
		{name: "bid_at_current_rejected", lot: storedLot(1, models.StatusLive, true, 500), seed: 700, amount: 700, wantError: ErrBidTooLow},
		{name: "bid_below_opening_rejected", lot: storedLot(1, models.StatusLive, true, 500), amount: 400, wantError: ErrBidTooLow},
		{name: "non_positive_amount", lot: storedLot(1, models.StatusLive, true, 500), amount: 0, wantError: ErrInvalidBid},
		{name: "unapproved_lot", lot: storedLot(1, models.StatusLive, false, 500), amount: 600, wantError: ErrLotNotLive},
		{name: "completed_lot", lot: storedLot(1, models.StatusCompleted, true, 500), amount: 600, wantError: ErrLotNotLive},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, rec := serviceWithLots(t, "", tc.lot)
			if tc.seed > 0 {
				_, err := svc.PlaceBid(context.Background(), tc.lot.LotID, 2, tc.seed)
				require.NoError(t, err)
			}

			bid, err := svc.PlaceBid(context.Background(), tc.lot.LotID, 9, tc.amount)
			if tc.wantError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.wantError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.amount, bid.Amount)
			require.Equal(t, int64(9), bid.BidderID)

			envs := rec.envelopes(t)
			last := envs[len(envs)-1]
			require.Equal(t, events.KindBidPlaced, last.Kind)
			require.Equal(t, tc.lot.CarID, last.CarID)
			require.Equal(t, int64(9), last.BidderID)
			require.Equal(t, tc.amount, last.BidAmount)
		})
	}
}

// Tests the administrative mutations and their events
func TestAuctionService_AdminEvents(t *testing.T) {
	t.Parallel()

	svc, rec := serviceWithLots(t, "42", storedLot(1, models.StatusLive, false, 500))
	ctx := context.Background()

	require.NoError(t, svc.SetApproval(ctx, 1, true))
	require.NoError(t, svc.SetStatus(ctx, 1, models.StatusCompleted))
	svc.MoveLot(ctx, storedLot(2, models.StatusLive, false, 300))
	svc.AnnounceSessionUpdate(ctx)

	envs := rec.envelopes(t)
	require.Len(t, envs, 4)

	require.Equal(t, events.KindLotApprovalChanged, envs[0].Kind)
	require.True(t, envs[0].Approved)

	require.Equal(t, events.KindLotStatusChanged, envs[1].Kind)
	require.Equal(t, models.StatusLive, envs[1].OldStatus)
	require.Equal(t, models.StatusCompleted, envs[1].NewStatus)

	require.Equal(t, events.KindLotMoved, envs[2].Kind)
	require.Equal(t, int64(20), envs[2].CarID)

	require.Equal(t, events.KindSessionUpdated, envs[3].Kind)
	require.Equal(t, "42", envs[3].SessionID)
}
