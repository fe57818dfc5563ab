package simulator

import (
	"fmt"
	"net/http"

	"livemarket-sync/utils"

	"github.com/gin-gonic/gin"
)

// SubmitBidRequest is the POST /submit-bid body
type SubmitBidRequest struct {
	ItemID    int64   `json:"item_id" binding:"required"`
	BidAmount float64 `json:"bid_amount" binding:"required,gt=0"`
	BidderID  int64   `json:"bidder_id"`
}

// Handler serves the live-market endpoints over the registered sessions
type Handler struct {
	sessions map[string]*AuctionService // key "" is the global session
}

// NewHandler creates a Handler with no sessions registered.
func NewHandler() *Handler {
	return &Handler{sessions: make(map[string]*AuctionService)}
}

// Register attaches a session's service. An empty id registers the globally
// approved session.
func (h *Handler) Register(sessionID string, svc *AuctionService) {
	h.sessions[sessionID] = svc
}

// GetApprovedLiveAuctionsHandler handles GET /approved-live-auctions
func (h *Handler) GetApprovedLiveAuctionsHandler(c *gin.Context) {
	svc, ok := h.sessions[""]
	if !ok {
		utils.JSONError(c, http.StatusNotFound, ErrLotNotFound, "no approved session")
		return
	}
	utils.JSONResponse(c, http.StatusOK, svc.Snapshot(), "live auctions retrieved successfully")
}

// GetSessionHandler handles GET /sessions/live/:session_id
func (h *Handler) GetSessionHandler(c *gin.Context) {
	sessionID := c.Param("session_id")
	svc, ok := h.sessions[sessionID]
	if !ok {
		utils.JSONError(c, http.StatusNotFound, fmt.Errorf("session %s not found", sessionID), "session not found")
		utils.Warn("GetSessionHandler: unknown session", map[string]any{"session_id": sessionID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, svc.Snapshot(), "session retrieved successfully")
}

// SubmitBidHandler handles POST /submit-bid
func (h *Handler) SubmitBidHandler(c *gin.Context) {
	var req SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, "SubmitBidHandler", err)
		return
	}

	svc := h.sessionForLot(req.ItemID)
	if svc == nil {
		utils.JSONError(c, http.StatusNotFound, fmt.Errorf("lot %d: %w", req.ItemID, ErrLotNotFound), "lot not found")
		return
	}

	bid, err := svc.PlaceBid(c.Request.Context(), req.ItemID, req.BidderID, req.BidAmount)
	if err != nil {
		status, message := MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("SubmitBidHandler: failed to record bid", map[string]any{
			"item_id":   req.ItemID,
			"bidder_id": req.BidderID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"ok":         true,
		"amount":     bid.Amount,
		"bidder_id":  bid.BidderID,
		"created_at": bid.CreatedAt,
	}, "bid recorded successfully")
	LogSuccess("SubmitBidHandler", "bid recorded successfully", map[string]any{
		"item_id":   req.ItemID,
		"bidder_id": req.BidderID,
		"amount":    bid.Amount,
	})
}

// sessionForLot finds the session holding a lot, preferring the global one.
func (h *Handler) sessionForLot(lotID int64) *AuctionService {
	if svc, ok := h.sessions[""]; ok && svc.HasLot(lotID) {
		return svc
	}
	for id, svc := range h.sessions {
		if id != "" && svc.HasLot(lotID) {
			return svc
		}
	}
	return nil
}
