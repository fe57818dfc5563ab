// Package bidflow drives the bid-submission form for one screen instance.
package bidflow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"livemarket-sync/internal/fetcher"
	"livemarket-sync/internal/models"
	"livemarket-sync/internal/syncerrors"
	"livemarket-sync/utils"
)

// Controller is the state machine behind the bid form:
// Idle -> Visible -> Submitting -> Success | Error. Error returns to the
// visible form with the amount preserved for resubmission.
type Controller struct {
	mu        sync.Mutex
	submitter fetcher.BidSubmitter
	draft     models.BidDraft
	lotID     int64
}

// NewController creates a Controller in the Idle state.
func NewController(submitter fetcher.BidSubmitter) *Controller {
	return &Controller{submitter: submitter}
}

// Draft returns a copy of the current form state.
func (c *Controller) Draft() models.BidDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Open shows the form for the given lot, pre-filled with the current bid or,
// when no bid exists yet, the opening price. Owners may not bid on their own
// lot, so the transition is blocked entirely when owns is true.
func (c *Controller) Open(lot *models.Lot, owns bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lot == nil {
		return fmt.Errorf("bidflow: open form: %w", syncerrors.ErrNoCurrentLot)
	}
	if owns {
		return fmt.Errorf("bidflow: open form for lot %d: %w", lot.LotID, syncerrors.ErrBidNotAllowed)
	}
	if c.draft.Phase == models.PhaseSubmitting {
		// One submission at a time; the form is disabled while in flight.
		return nil
	}

	amount := lot.CurrentBid
	if amount == 0 {
		amount = lot.OpeningPrice
	}
	c.lotID = lot.LotID
	c.draft = models.BidDraft{Visible: true, Amount: amount, Phase: models.PhaseVisible}
	return nil
}

// Submit runs one call to the submission endpoint. The client performs only
// a numeric sanity check; bid business rules stay on the server. On success
// the controller does not touch the current bid: the server's own push event
// updates monetary state through the reconciler.
func (c *Controller) Submit(ctx context.Context, amount float64) error {
	c.mu.Lock()
	if c.draft.Phase != models.PhaseVisible && c.draft.Phase != models.PhaseError {
		c.mu.Unlock()
		return fmt.Errorf("bidflow: submit in phase %s: %w", c.draft.Phase, syncerrors.ErrInvalidAmount)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		c.draft.Phase = models.PhaseError
		c.draft.ErrorMessage = "bid amount must be a positive number"
		c.mu.Unlock()
		return fmt.Errorf("bidflow: amount %v: %w", amount, syncerrors.ErrInvalidAmount)
	}
	lotID := c.lotID
	c.draft.Amount = amount
	c.draft.Phase = models.PhaseSubmitting
	c.draft.ErrorMessage = ""
	c.mu.Unlock()

	err := c.submitter.SubmitBid(ctx, lotID, amount)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// Back to the form with the message inline and the amount intact.
		c.draft.Phase = models.PhaseError
		c.draft.Visible = true
		c.draft.ErrorMessage = rejectionMessage(err)
		utils.Warn("bidflow: bid submission failed", map[string]any{
			"lot_id": lotID,
			"amount": amount,
			"error":  err.Error(),
		})
		return fmt.Errorf("bidflow: submit bid for lot %d: %w", lotID, err)
	}

	c.draft.Phase = models.PhaseSuccess
	c.draft.Visible = false
	utils.Info("bidflow: bid submitted", map[string]any{"lot_id": lotID, "amount": amount})
	return nil
}

// Close hides the form and destroys the draft.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = models.BidDraft{}
	c.lotID = 0
}

// rejectionMessage picks the inline message for a failed submission: the
// server's own wording for validation failures, a generic one for transport
// problems.
func rejectionMessage(err error) string {
	if errors.Is(err, syncerrors.ErrSubmissionRejected) {
		return err.Error()
	}
	return "could not reach the server, please try again"
}
