package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"livemarket-sync/internal/syncerrors"

	"github.com/stretchr/testify/require"
)

func snapshotServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// Tests FetchSnapshot
func TestClient_FetchSnapshot(t *testing.T) {
	t.Parallel()

	wrapped := `{
		"status": 200,
		"message": "ok",
		"data": {
			"current_live_car": {
				"id": 7, "car_id": 70,
				"car": {"id": 70, "make": "Toyota", "model": "Camry", "year": 2021, "user_id": 5, "dealer": {"user_id": 11}},
				"opening_price": "15000.00",
				"current_bid": "20000.00",
				"status": "live",
				"approved_for_live": true,
				"bids": [
					{"amount": "20000.00", "bidder_id": 9, "created_at": "2026-03-14T16:10:00Z"},
					{"amount": "18000.00", "bidder_id": 8, "created_at": "2026-03-14T16:05:00Z"}
				]
			},
			"pending_live_auctions": [
				{"id": 8, "car_id": 80, "status": "live", "approved_for_live": false, "starting_bid": 9000}
			],
			"completed_live_auctions": []
		}
	}`

	tests := []struct {
		name      string
		status    int
		body      string
		sessionID string
		wantErr   error
	}{
		{name: "wrapped_payload", status: http.StatusOK, body: wrapped},
		{name: "bare_payload", status: http.StatusOK, body: `{"pending_live_auctions":[],"completed_live_auctions":[]}`},
		{name: "missing_all_lists", status: http.StatusOK, body: `{"status":200,"message":"ok"}`, wantErr: syncerrors.ErrMalformedSnapshot},
		{name: "not_json", status: http.StatusOK, body: `<html>backend down</html>`, wantErr: syncerrors.ErrMalformedSnapshot},
		{name: "server_error", status: http.StatusInternalServerError, body: `{}`, wantErr: syncerrors.ErrNetworkFailure},
		{name: "not_found", status: http.StatusNotFound, body: `{}`, wantErr: syncerrors.ErrNetworkFailure},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := snapshotServer(t, tc.status, tc.body)
			client := NewClient(srv.URL, 2*time.Second)

			snap, err := client.FetchSnapshot(context.Background(), tc.sessionID)
			if tc.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
				return
			}
			require.NoError(t, err)

			if tc.name == "wrapped_payload" {
				require.NotNil(t, snap.Current)
				require.Equal(t, int64(7), snap.Current.LotID)
				require.Equal(t, "Toyota", snap.Current.Car.Make)
				require.Equal(t, int64(11), snap.Current.Car.Dealer.UserID)
				// History re-sorted by timestamp, current bid from the tail
				require.Len(t, snap.Current.BidHistory, 2)
				require.Equal(t, 18000.0, snap.Current.BidHistory[0].Amount)
				require.Equal(t, 20000.0, snap.Current.BidHistory[1].Amount)
				require.Equal(t, 20000.0, snap.Current.CurrentBid)
				require.Len(t, snap.Pending, 1)
				require.Equal(t, 9000.0, snap.Pending[0].OpeningPrice)
				require.Empty(t, snap.Completed)
			}
		})
	}
}

// Tests FetchSnapshot routing between the global and per-session endpoints
func TestClient_FetchSnapshot_Endpoints(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pending_live_auctions":[],"completed_live_auctions":[]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, 2*time.Second)

	_, err := client.FetchSnapshot(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "/approved-live-auctions", gotPath)

	_, err = client.FetchSnapshot(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, "/sessions/live/42", gotPath)
}

// Tests FetchSnapshot against an unreachable server
func TestClient_FetchSnapshot_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately, so the address refuses connections

	client := NewClient(srv.URL, time.Second)
	_, err := client.FetchSnapshot(context.Background(), "")
	require.Error(t, err)
	require.True(t, errors.Is(err, syncerrors.ErrNetworkFailure))
}

// Tests SubmitBid
func TestClient_SubmitBid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "accepted", status: http.StatusCreated, body: `{"status":201,"message":"bid recorded"}`},
		{name: "accepted_ok", status: http.StatusOK, body: `{"ok":true}`},
		{name: "rejected_error_field", status: http.StatusConflict, body: `{"error":"bid amount too low"}`, wantErr: syncerrors.ErrSubmissionRejected, wantMsg: "bid amount too low"},
		{name: "rejected_message_field", status: http.StatusBadRequest, body: `{"message":"invalid bid details"}`, wantErr: syncerrors.ErrSubmissionRejected, wantMsg: "invalid bid details"},
		{name: "rejected_empty_body", status: http.StatusUnprocessableEntity, body: ``, wantErr: syncerrors.ErrSubmissionRejected},
		{name: "server_error", status: http.StatusBadGateway, body: ``, wantErr: syncerrors.ErrNetworkFailure},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var gotReq submitBidRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				require.Equal(t, "/submit-bid", r.URL.Path)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			client := NewClient(srv.URL, 2*time.Second).AsViewer(9)
			err := client.SubmitBid(context.Background(), 7, 1200)

			require.Equal(t, int64(7), gotReq.ItemID)
			require.Equal(t, 1200.0, gotReq.BidAmount)
			require.Equal(t, int64(9), gotReq.BidderID)

			if tc.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
				if tc.wantMsg != "" {
					require.Contains(t, err.Error(), tc.wantMsg)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}
