package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"livemarket-sync/internal/models"
	"livemarket-sync/internal/syncerrors"
)

// SnapshotSource pulls a full session snapshot from the backend. An empty
// sessionID means "the currently approved global session".
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context, sessionID string) (models.Snapshot, error)
}

// BidSubmitter forwards a bid to the backend's submission endpoint.
type BidSubmitter interface {
	SubmitBid(ctx context.Context, lotID int64, amount float64) error
}

// Client talks to the live-market REST API
type Client struct {
	baseURL  string
	viewerID int64
	http     *http.Client
}

// NewClient creates a Client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// AsViewer sets the account submitted bids are attributed to and returns the
// client for chaining.
func (c *Client) AsViewer(viewerID int64) *Client {
	c.viewerID = viewerID
	return c
}

// apiEnvelope matches the {status, message, data} wrapper the backend puts
// around every payload. Older endpoints return the payload bare, so data is
// kept raw and both shapes are accepted.
type apiEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// FetchSnapshot retrieves the snapshot for a session, or the globally
// approved session when sessionID is empty.
func (c *Client) FetchSnapshot(ctx context.Context, sessionID string) (models.Snapshot, error) {
	url := c.baseURL + "/approved-live-auctions"
	if sessionID != "" {
		url = c.baseURL + "/sessions/live/" + sessionID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("fetcher: build snapshot request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("fetcher: fetch snapshot: %w: %v", syncerrors.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("fetcher: read snapshot body: %w: %v", syncerrors.ErrNetworkFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.Snapshot{}, fmt.Errorf("fetcher: snapshot endpoint returned %d: %w", resp.StatusCode, syncerrors.ErrNetworkFailure)
	}

	return decodeSnapshot(body)
}

// decodeSnapshot unwraps the API envelope (when present) and normalizes the
// payload into a models.Snapshot.
func decodeSnapshot(body []byte) (models.Snapshot, error) {
	payload := body
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		payload = env.Data
	}

	var ws wireSnapshot
	if err := json.Unmarshal(payload, &ws); err != nil {
		return models.Snapshot{}, fmt.Errorf("fetcher: decode snapshot: %w: %v", syncerrors.ErrMalformedSnapshot, err)
	}
	if ws.Current == nil && ws.Pending == nil && ws.Completed == nil {
		return models.Snapshot{}, fmt.Errorf("fetcher: snapshot has none of the expected lists: %w", syncerrors.ErrMalformedSnapshot)
	}

	snap := models.Snapshot{
		Pending:   make([]models.Lot, 0, len(ws.Pending)),
		Completed: make([]models.Lot, 0, len(ws.Completed)),
	}
	if ws.Current != nil {
		lot := ws.Current.normalize()
		snap.Current = &lot
	}
	for _, wl := range ws.Pending {
		snap.Pending = append(snap.Pending, wl.normalize())
	}
	for _, wl := range ws.Completed {
		snap.Completed = append(snap.Completed, wl.normalize())
	}
	return snap, nil
}

// submitBidRequest is the POST /submit-bid body
type submitBidRequest struct {
	ItemID    int64   `json:"item_id"`
	BidAmount float64 `json:"bid_amount"`
	BidderID  int64   `json:"bidder_id,omitempty"`
}

// submitBidFailure carries the server's validation message. Some deployments
// use "error", others "message".
type submitBidFailure struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SubmitBid posts a bid for a lot. Server-side validation failures come back
// as ErrSubmissionRejected with the server's message attached; transport
// problems as ErrNetworkFailure.
func (c *Client) SubmitBid(ctx context.Context, lotID int64, amount float64) error {
	payload, err := json.Marshal(submitBidRequest{ItemID: lotID, BidAmount: amount, BidderID: c.viewerID})
	if err != nil {
		return fmt.Errorf("fetcher: marshal bid: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit-bid", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("fetcher: build bid request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetcher: submit bid: %w: %v", syncerrors.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var fail submitBidFailure
		_ = json.Unmarshal(body, &fail)
		msg := fail.Error
		if msg == "" {
			msg = fail.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("fetcher: %w: %s", syncerrors.ErrSubmissionRejected, msg)
	}
	return fmt.Errorf("fetcher: bid endpoint returned %d: %w", resp.StatusCode, syncerrors.ErrNetworkFailure)
}

// sortHistory orders a bid history by timestamp so the last entry is the
// most recent one.
func sortHistory(bids []models.Bid) {
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].CreatedAt.Before(bids[j].CreatedAt)
	})
}
