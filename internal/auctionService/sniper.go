package auction

import (
	"math/rand"
	"sync"
	"time"

	"auction-market/internal/models"
)

// CompetitorPolicy decides whether a synthetic competitor answers the current
// leading bid. Implementations return the counter-bid (identity and amount)
// and whether to place it; the service stamps id, listing and timestamp.
type CompetitorPolicy interface {
	MaybeCounterBid(listing models.Listing) (models.Bid, bool)
}

// SniperPolicy is the scripted stand-in for real competitive bidding: with
// the configured probability it raises the winning amount by one step.
type SniperPolicy struct {
	UserID      string
	UserName    string
	Probability float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSniperPolicy returns the default sniper ("SniperPro99", 50% chance).
func NewSniperPolicy() *SniperPolicy {
	return &SniperPolicy{
		UserID:      "bot_sniper",
		UserName:    "SniperPro99",
		Probability: 0.5,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *SniperPolicy) MaybeCounterBid(listing models.Listing) (models.Bid, bool) {
	a := listing.Auction
	if a == nil || len(a.BidHistory) == 0 {
		return models.Bid{}, false
	}
	// Never counter our own bid.
	if a.BidHistory[len(a.BidHistory)-1].UserID == p.UserID {
		return models.Bid{}, false
	}

	p.mu.Lock()
	roll := p.rng.Float64()
	p.mu.Unlock()
	if roll >= p.Probability {
		return models.Bid{}, false
	}

	return models.Bid{
		UserID:   p.UserID,
		UserName: p.UserName,
		Amount:   MinimumNextBid(listing),
	}, true
}

// DisabledPolicy never counter-bids. Tests and single-player demos use it to
// switch the simulated competitor off.
type DisabledPolicy struct{}

func (DisabledPolicy) MaybeCounterBid(models.Listing) (models.Bid, bool) {
	return models.Bid{}, false
}
