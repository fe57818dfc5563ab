// Package screen wires the synchronizer components together for one viewer
// of one auction session and exposes the read-only view-model plus the
// callbacks the rendering layer drives.
package screen

import (
	"context"
	"sync"
	"time"

	"livemarket-sync/internal/bidflow"
	"livemarket-sync/internal/events"
	"livemarket-sync/internal/fetcher"
	"livemarket-sync/internal/models"
	"livemarket-sync/internal/reconciler"
	"livemarket-sync/internal/subscription"
	"livemarket-sync/utils"
)

// Backend is the remote API surface the screen consumes.
type Backend interface {
	fetcher.SnapshotSource
	fetcher.BidSubmitter
}

// Options configure one screen instance.
type Options struct {
	SessionID string // empty: the globally approved session
	ViewerID  int64  // zero: anonymous viewer
	Notifier  reconciler.Notifier
}

// Screen composes fetcher, reconciler, bid controller and subscription for
// one viewer. The view-model it exposes is owned by the reconciler and the
// bid draft by the controller; the renderer only ever reads copies.
type Screen struct {
	rec  *reconciler.Reconciler
	bids *bidflow.Controller
	subs *subscription.Lifecycle

	mu        sync.Mutex
	sessionID string
}

// New creates a Screen attached to the session named in the options.
// Nothing happens until Start.
func New(ctx context.Context, backend Backend, bus subscription.Bus, opts Options) *Screen {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Screen{
		rec: reconciler.New(ctx, backend, reconciler.Options{
			SessionID: opts.SessionID,
			ViewerID:  opts.ViewerID,
			Notifier:  notifier,
		}),
		bids:      bidflow.NewController(backend),
		subs:      subscription.NewLifecycle(bus),
		sessionID: opts.SessionID,
	}
}

// Start opens the push channel for the configured session and fetches the
// first snapshot. The channel is opened first so no event published during
// the initial fetch is missed. Calling Start again after a channel drop
// reopens the channel and resumes live updates.
func (s *Screen) Start(ctx context.Context) error {
	s.mu.Lock()
	sessionID := s.sessionID
	s.mu.Unlock()

	if err := s.subs.Open(ctx, sessionID, s.handlePayload, s.handleChannelClosed); err != nil {
		s.rec.SetChannelDown(true)
		s.rec.Refresh()
		return err
	}
	s.rec.SetChannelDown(false)
	s.rec.Refresh()
	return nil
}

// ChangeSession retargets the screen at another session: the old channel is
// closed before the new one opens, and the stale in-flight fetch is
// discarded.
func (s *Screen) ChangeSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	s.sessionID = sessionID
	s.mu.Unlock()

	s.bids.Close()
	s.rec.ChangeSession(sessionID)
	if err := s.subs.Open(ctx, sessionID, s.handlePayload, s.handleChannelClosed); err != nil {
		s.rec.SetChannelDown(true)
		return err
	}
	s.rec.SetChannelDown(false)
	return nil
}

// View returns the current view-model.
func (s *Screen) View() reconciler.View {
	return s.rec.View()
}

// Updates exposes view-model changes for the renderer.
func (s *Screen) Updates() <-chan reconciler.View {
	return s.rec.Updates()
}

// BidDraft returns the state of the bid form.
func (s *Screen) BidDraft() models.BidDraft {
	return s.bids.Draft()
}

// OpenBidForm shows the bid form for the current lot. Blocked when the
// viewer owns or represents the lot, or when no lot is under auction.
func (s *Screen) OpenBidForm() error {
	view := s.rec.View()
	return s.bids.Open(view.Current, view.ViewerOwnsCurrent)
}

// SubmitBid submits the entered amount. Monetary state is not updated
// locally; the server's push event brings the authoritative total back
// through the reconciler.
func (s *Screen) SubmitBid(ctx context.Context, amount float64) error {
	return s.bids.Submit(ctx, amount)
}

// CloseBidForm hides the bid form.
func (s *Screen) CloseBidForm() {
	s.bids.Close()
}

// Retry re-runs the session fetch after the error banner.
func (s *Screen) Retry() {
	s.rec.Refresh()
}

// Label returns the display label of the session band running now.
func (s *Screen) Label() string {
	return models.SessionLabel(time.Now())
}

// Close tears the screen down: subscription released, in-flight fetch
// results discarded, bid draft destroyed.
func (s *Screen) Close() {
	if err := s.subs.Close(); err != nil {
		utils.Warn("screen: closing subscription failed", map[string]any{"error": err.Error()})
	}
	s.bids.Close()
	s.rec.Close()
}

// handlePayload routes one raw push message into the reconciler. Messages
// of unknown kinds are dropped here so new server-side event types never
// break older clients.
func (s *Screen) handlePayload(payload []byte) {
	env, err := events.Decode(payload)
	if err != nil {
		utils.Warn("screen: dropping unrecognized push message", map[string]any{"error": err.Error()})
		return
	}
	s.rec.HandleEvent(env)
}

func (s *Screen) handleChannelClosed(err error) {
	fields := map[string]any{}
	if err != nil {
		fields["error"] = err.Error()
	}
	utils.Warn("screen: live updates paused, push channel dropped", fields)
	s.rec.SetChannelDown(true)
}
