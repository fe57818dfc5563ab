// Package reconciler merges session snapshots and push events into one
// consistent, exclusively-owned view of an in-progress auction session.
package reconciler

import (
	"context"

	"livemarket-sync/internal/events"
	"livemarket-sync/internal/fetcher"
	"livemarket-sync/internal/models"
	"livemarket-sync/internal/ownership"
	"livemarket-sync/utils"
)

// Notifier receives the user-visible notifications derived from push events.
// Implementations must not block.
type Notifier interface {
	BidPlaced(carMake, carModel string, amount float64)
	LotApprovalChanged(carMake, carModel string, approved bool)
	LotStatusChanged(carMake, carModel, oldStatus, newStatus string)
}

// View is the read-only view-model handed to the rendering layer. Every lot
// of the session appears in exactly one of Current/Pending/Completed.
type View struct {
	Current           *models.Lot
	Pending           []models.Lot
	Completed         []models.Lot
	ViewerOwnsCurrent bool
	Banner            string // non-empty: persistent "server unreachable" banner
	LivePaused        bool   // push channel down, data may lag
}

type msg interface{ isReconcilerMsg() }

type eventMsg struct{ env events.Envelope }

type fetchResultMsg struct {
	id   uint64
	snap models.Snapshot
	err  error
}

type refreshMsg struct{}

type changeSessionMsg struct{ sessionID string }

type setViewerMsg struct{ viewerID int64 }

type channelStateMsg struct{ down bool }

type getViewMsg struct{ reply chan View }

type shutdownMsg struct{}

func (eventMsg) isReconcilerMsg()         {}
func (fetchResultMsg) isReconcilerMsg()   {}
func (refreshMsg) isReconcilerMsg()       {}
func (changeSessionMsg) isReconcilerMsg() {}
func (setViewerMsg) isReconcilerMsg()     {}
func (channelStateMsg) isReconcilerMsg()  {}
func (getViewMsg) isReconcilerMsg()       {}
func (shutdownMsg) isReconcilerMsg()      {}

// Options configure a Reconciler for one screen instance.
type Options struct {
	SessionID string // empty: the globally approved session
	ViewerID  int64  // zero: anonymous viewer
	Notifier  Notifier
}

// Reconciler owns the view-model for one screen instance. All mutation goes
// through a single goroutine reading the inbox, so snapshot application and
// event handling never race. Fetches run in their own goroutines and post
// results back tagged with the request id they were issued under; a result is
// applied only while its id is still the latest issued one.
type Reconciler struct {
	inbox   chan msg
	updates chan View
	source  fetcher.SnapshotSource
	ctx     context.Context
	cancel  context.CancelFunc

	// Loop-owned state, never touched outside the loop goroutine.
	view      View
	sessionID string
	viewerID  int64
	notifier  Notifier
	latestReq uint64
	inFlight  bool
	queued    bool
}

// New creates a Reconciler and starts its loop. No fetch is issued until
// Refresh is called.
func New(parent context.Context, source fetcher.SnapshotSource, opts Options) *Reconciler {
	ctx, cancel := context.WithCancel(parent)
	r := &Reconciler{
		inbox:     make(chan msg, 64),
		updates:   make(chan View, 1),
		source:    source,
		ctx:       ctx,
		cancel:    cancel,
		sessionID: opts.SessionID,
		viewerID:  opts.ViewerID,
		notifier:  opts.Notifier,
	}
	go r.loop()
	return r
}

// HandleEvent feeds a decoded push event into the reconciler.
func (r *Reconciler) HandleEvent(env events.Envelope) {
	r.send(eventMsg{env: env})
}

// Refresh forces a fresh snapshot fetch, superseding any in-flight one. Used
// for initial activation and the error banner's manual retry.
func (r *Reconciler) Refresh() {
	r.send(refreshMsg{})
}

// ChangeSession retargets the reconciler at another session and refetches.
// The in-flight fetch for the old session, if any, is discarded on arrival.
func (r *Reconciler) ChangeSession(sessionID string) {
	r.send(changeSessionMsg{sessionID: sessionID})
}

// SetViewer updates the viewer identity and recomputes ownership.
func (r *Reconciler) SetViewer(viewerID int64) {
	r.send(setViewerMsg{viewerID: viewerID})
}

// SetChannelDown flips the "live updates paused" indicator. It never clears
// the view and never triggers a refetch, so a flapping channel cannot cause
// a reconnect storm.
func (r *Reconciler) SetChannelDown(down bool) {
	r.send(channelStateMsg{down: down})
}

// View returns the current view-model.
func (r *Reconciler) View() View {
	reply := make(chan View, 1)
	select {
	case r.inbox <- getViewMsg{reply: reply}:
		select {
		case v := <-reply:
			return v
		case <-r.ctx.Done():
		}
	case <-r.ctx.Done():
	}
	return View{}
}

// Updates exposes a latest-value channel of view-model changes for the
// renderer. Slow consumers only ever miss intermediate states.
func (r *Reconciler) Updates() <-chan View {
	return r.updates
}

// Close stops the loop. Any in-flight fetch result is discarded: the request
// id counter moves past it, which is the only cancellation the transport
// allows.
func (r *Reconciler) Close() {
	r.send(shutdownMsg{})
}

func (r *Reconciler) send(m msg) {
	select {
	case r.inbox <- m:
	case <-r.ctx.Done():
	}
}

func (r *Reconciler) loop() {
	for {
		select {
		case <-r.ctx.Done():
			return

		case m := <-r.inbox:
			switch m := m.(type) {
			case eventMsg:
				r.handleEvent(m.env)

			case fetchResultMsg:
				if m.id != r.latestReq {
					// A later request supersedes this one; applying it would
					// clobber fresher data.
					utils.Info("reconciler: discarding stale snapshot response", map[string]any{
						"request_id": m.id,
						"latest":     r.latestReq,
					})
					break
				}
				r.inFlight = false
				if m.err != nil {
					utils.Warn("reconciler: snapshot fetch failed", map[string]any{
						"session_id": r.sessionID,
						"error":      m.err.Error(),
					})
					r.view = View{Banner: "server unreachable", LivePaused: r.view.LivePaused}
				} else {
					r.apply(m.snap)
				}
				if r.queued {
					r.queued = false
					r.startFetch()
				}
				r.publish()

			case refreshMsg:
				r.forceFetch()

			case changeSessionMsg:
				r.sessionID = m.sessionID
				r.forceFetch()

			case setViewerMsg:
				r.viewerID = m.viewerID
				r.view.ViewerOwnsCurrent = ownership.ViewerOwnsLot(r.viewerID, r.view.Current)
				r.publish()

			case channelStateMsg:
				r.view.LivePaused = m.down
				r.publish()

			case getViewMsg:
				m.reply <- r.view

			case shutdownMsg:
				r.latestReq++ // strand any in-flight result
				r.cancel()
				return
			}
		}
	}
}

func (r *Reconciler) handleEvent(env events.Envelope) {
	if r.notifier != nil {
		switch env.Kind {
		case events.KindBidPlaced:
			// The viewer's own bids are not announced, the submission flow
			// already confirmed them.
			if r.viewerID == 0 || env.BidderID != r.viewerID {
				r.notifier.BidPlaced(env.CarMake, env.CarModel, env.BidAmount)
			}
		case events.KindLotApprovalChanged:
			r.notifier.LotApprovalChanged(env.CarMake, env.CarModel, env.Approved)
		case events.KindLotStatusChanged:
			r.notifier.LotStatusChanged(env.CarMake, env.CarModel, env.OldStatus, env.NewStatus)
		}
	}

	// Bids are never applied optimistically: the refetch supplies the
	// authoritative totals.
	if env.Kind.Structural() || env.Kind == events.KindBidPlaced {
		r.requestFetch()
	}
}

// requestFetch coalesces refetch triggers: while a fetch is outstanding,
// further triggers only mark one follow-up fetch as queued, bounding the
// number of requests under event bursts.
func (r *Reconciler) requestFetch() {
	if r.inFlight {
		r.queued = true
		return
	}
	r.startFetch()
}

// forceFetch supersedes whatever is in flight and issues a new request.
func (r *Reconciler) forceFetch() {
	r.queued = false
	r.startFetch()
}

func (r *Reconciler) startFetch() {
	r.inFlight = true
	r.latestReq++
	id := r.latestReq
	sessionID := r.sessionID
	go func() {
		snap, err := r.source.FetchSnapshot(r.ctx, sessionID)
		select {
		case r.inbox <- fetchResultMsg{id: id, snap: snap, err: err}:
		case <-r.ctx.Done():
		}
	}()
}

// apply repartitions a fresh snapshot. Live+approved is the current lot (at
// most one; extra matches are demoted to pending rather than dropped),
// live-unapproved lots are pending, completed lots completed. Lots in any
// other state never render.
func (r *Reconciler) apply(snap models.Snapshot) {
	next := View{
		Pending:    []models.Lot{},
		Completed:  []models.Lot{},
		LivePaused: r.view.LivePaused,
	}

	for _, lot := range snap.Lots() {
		switch {
		case lot.Status == models.StatusLive && lot.ApprovedForLive:
			if next.Current == nil {
				current := lot
				next.Current = &current
			} else {
				next.Pending = append(next.Pending, lot)
			}
		case lot.Status == models.StatusLive:
			next.Pending = append(next.Pending, lot)
		case lot.Status == models.StatusCompleted:
			next.Completed = append(next.Completed, lot)
		default:
			utils.Info("reconciler: dropping lot in unknown state", map[string]any{
				"lot_id": lot.LotID,
				"status": lot.Status,
			})
		}
	}

	next.ViewerOwnsCurrent = ownership.ViewerOwnsLot(r.viewerID, next.Current)
	r.view = next
}

// publish pushes the latest view to the updates channel, replacing an unread
// older value instead of blocking the loop.
func (r *Reconciler) publish() {
	for {
		select {
		case r.updates <- r.view:
			return
		default:
			select {
			case <-r.updates:
			default:
			}
		}
	}
}
