package marketerrors

import (
	"errors"
	"fmt"

	"auction-market/internal/money"
)

// Repository-level errors
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNoBids          = errors.New("no bids found for listing")
)

// business logic errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotAuction        = errors.New("listing is not an auction")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrAuctionClosed     = errors.New("auction has ended")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrActorNotAllowed   = errors.New("actor not allowed to perform this transition")
)

// BidTooLowError carries the computed minimum next bid so the caller can
// render a corrective message. It matches ErrBidTooLow under errors.Is.
type BidTooLowError struct {
	Proposed money.Cents
	Minimum  money.Cents
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid %s below minimum %s", e.Proposed, e.Minimum)
}

func (e *BidTooLowError) Unwrap() error { return ErrBidTooLow }

// IllegalTransitionError names the current and requested status of a
// rejected transition. It matches ErrIllegalTransition under errors.Is.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }
