package events

import (
	"errors"
	"testing"

	"livemarket-sync/internal/syncerrors"

	"github.com/stretchr/testify/require"
)

// Tests Decode
func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    Envelope
		wantErr error
	}{
		{
			name: "session_updated",
			raw:  `{"kind":"SessionUpdated","session_id":"42"}`,
			want: Envelope{Kind: KindSessionUpdated, SessionID: "42"},
		},
		{
			name: "lot_moved",
			raw:  `{"kind":"LotMoved","car_id":7,"car_make":"Toyota","car_model":"Camry"}`,
			want: Envelope{Kind: KindLotMoved, CarID: 7, CarMake: "Toyota", CarModel: "Camry"},
		},
		{
			name: "approval_revoked",
			raw:  `{"kind":"LotApprovalChanged","car_id":7,"car_make":"Toyota","car_model":"Camry","approved":false}`,
			want: Envelope{Kind: KindLotApprovalChanged, CarID: 7, CarMake: "Toyota", CarModel: "Camry"},
		},
		{
			name: "status_changed",
			raw:  `{"kind":"LotStatusChanged","car_id":7,"car_make":"Toyota","car_model":"Camry","old_status":"live","new_status":"completed"}`,
			want: Envelope{Kind: KindLotStatusChanged, CarID: 7, CarMake: "Toyota", CarModel: "Camry", OldStatus: "live", NewStatus: "completed"},
		},
		{
			name: "bid_placed_numeric_amount",
			raw:  `{"kind":"BidPlaced","car_id":7,"car_make":"Toyota","car_model":"Camry","bidder_id":9,"bid_amount":1200}`,
			want: Envelope{Kind: KindBidPlaced, CarID: 7, CarMake: "Toyota", CarModel: "Camry", BidderID: 9, BidAmount: 1200},
		},
		{
			name: "bid_placed_string_amount",
			raw:  `{"kind":"BidPlaced","car_id":7,"bidder_id":9,"bid_amount":"20000.00"}`,
			want: Envelope{Kind: KindBidPlaced, CarID: 7, BidderID: 9, BidAmount: 20000},
		},
		{
			name:    "unknown_kind",
			raw:     `{"kind":"ViewerJoinedEvent","car_id":7}`,
			wantErr: syncerrors.ErrUnknownEventKind,
		},
		{
			name:    "missing_kind",
			raw:     `{"car_id":7}`,
			wantErr: syncerrors.ErrUnknownEventKind,
		},
		{
			name:    "not_json",
			raw:     `kind=BidPlaced`,
			wantErr: syncerrors.ErrMalformedEvent,
		},
		{
			name:    "wrong_field_type",
			raw:     `{"kind":"BidPlaced","car_id":"seven"}`,
			wantErr: syncerrors.ErrMalformedEvent,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env, err := Decode([]byte(tc.raw))
			if tc.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.want, env)
			}
		})
	}
}

// Tests EventKind.Structural
func TestEventKind_Structural(t *testing.T) {
	t.Parallel()

	require.True(t, KindSessionUpdated.Structural())
	require.True(t, KindLotMoved.Structural())
	require.True(t, KindLotApprovalChanged.Structural())
	require.True(t, KindLotStatusChanged.Structural())
	require.False(t, KindBidPlaced.Structural())
	require.False(t, EventKind("SomethingElse").Structural())
}
