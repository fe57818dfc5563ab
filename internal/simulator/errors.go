package simulator

import "errors"

// Store-level errors
var (
	ErrLotNotFound = errors.New("lot not found")
)

// Business logic errors
var (
	ErrInvalidBid = errors.New("invalid bid")
	ErrBidTooLow  = errors.New("bid amount too low")
	ErrLotNotLive = errors.New("lot is not under live auction")
)
