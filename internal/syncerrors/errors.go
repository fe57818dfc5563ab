package syncerrors

import "errors"

// Fetch and push-channel errors
var (
	ErrNetworkFailure      = errors.New("server unreachable")
	ErrMalformedSnapshot   = errors.New("snapshot missing required fields")
	ErrMalformedEvent      = errors.New("event payload not decodable")
	ErrUnknownEventKind    = errors.New("unknown event kind")
	ErrChannelDisconnected = errors.New("push channel disconnected")
)

// Bid-flow errors
var (
	ErrSubmissionRejected = errors.New("bid rejected by server")
	ErrInvalidAmount      = errors.New("invalid bid amount")
	ErrBidNotAllowed      = errors.New("owner may not bid on own lot")
	ErrNoCurrentLot       = errors.New("no lot currently under auction")
)
