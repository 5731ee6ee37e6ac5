package notify

import (
	"fmt"

	model "auction-market/internal/models"
	"auction-market/utils"
)

// Notifier delivers user-facing notifications. The in-memory marketplace has
// no push transport, so the default implementation logs; a real deployment
// would swap in a websocket or mobile-push backed implementation.
type Notifier interface {
	Outbid(listing model.Listing, winning model.Bid, outbidUserID string)
}

// Presence reports whether anyone is currently watching a live stream that
// features the given listing. Outbid notifications are suppressed while the
// user is already watching the action.
type Presence interface {
	Watching(listingID string) bool
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct{}

func (LogNotifier) Outbid(listing model.Listing, winning model.Bid, outbidUserID string) {
	utils.Info(fmt.Sprintf("%s outbid you on %s", winning.UserName, listing.Title), map[string]any{
		"listing_id": listing.ID,
		"user_id":    outbidUserID,
		"bidder":     winning.UserName,
		"amount":     winning.Amount.Dollars(),
	})
}

// NoPresence assumes no stream is being watched, so notifications always fire.
type NoPresence struct{}

func (NoPresence) Watching(string) bool { return false }
