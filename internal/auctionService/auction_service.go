package auction

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-market/internal/catalog"
	"auction-market/internal/marketerrors"
	"auction-market/internal/models"
	"auction-market/internal/money"
	"auction-market/internal/notify"
	"auction-market/utils"
)

// DefaultStepPrice is the minimum bid increment used when a listing does not
// set one ($10).
const DefaultStepPrice money.Cents = 1000

// DefaultCounterBidDelay is how long after a human bid the competitor policy
// is consulted.
const DefaultCounterBidDelay = 3 * time.Second

// MinimumNextBid computes the lowest acceptable bid for an auction listing.
// This is the single source of truth for the increment rule; validation and
// UI affordances both go through it.
func MinimumNextBid(listing models.Listing) money.Cents {
	base := listing.Price
	step := DefaultStepPrice
	if a := listing.Auction; a != nil {
		if a.CurrentBid > 0 {
			base = a.CurrentBid
		}
		if a.StepPrice > 0 {
			step = a.StepPrice
		}
	}
	return base + step
}

// AuctionService defines the business logic for auction bidding
type AuctionService struct {
	catalog  catalog.CatalogDB
	locks    *catalog.KeyedMutex
	policy   CompetitorPolicy
	notifier notify.Notifier
	presence notify.Presence
	delay    time.Duration
	now      func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer // pending counter-bid timers keyed by listingID
	closed bool
}

// Option configures an AuctionService.
type Option func(*AuctionService)

// WithCompetitorPolicy replaces the simulated competitor bidder. Pass nil to
// disable counter-bidding entirely.
func WithCompetitorPolicy(p CompetitorPolicy) Option {
	return func(s *AuctionService) { s.policy = p }
}

// WithCounterBidDelay overrides the delay before the competitor policy runs.
func WithCounterBidDelay(d time.Duration) Option {
	return func(s *AuctionService) { s.delay = d }
}

// WithNotifier replaces the outbid notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(s *AuctionService) { s.notifier = n }
}

// WithPresence replaces the stream-presence check.
func WithPresence(p notify.Presence) Option {
	return func(s *AuctionService) { s.presence = p }
}

// WithClock overrides the time source, used by tests to pin auction close.
func WithClock(now func() time.Time) Option {
	return func(s *AuctionService) { s.now = now }
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(db catalog.CatalogDB, opts ...Option) *AuctionService {
	s := &AuctionService{
		catalog:  db,
		locks:    catalog.NewKeyedMutex(),
		policy:   NewSniperPolicy(),
		notifier: notify.LogNotifier{},
		presence: notify.NoPresence{},
		delay:    DefaultCounterBidDelay,
		now:      time.Now,
		timers:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceBid validates and records a user's bid on an auction listing,
// returning the updated listing. A successful human bid also schedules the
// competitor policy after the configured delay.
func (s *AuctionService) PlaceBid(listingID, userID, userName string, amount money.Cents) (models.Listing, error) {
	if listingID == "" || userID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - missing listingID or userID", marketerrors.ErrInvalidInput)
	}
	if amount <= 0 {
		return models.Listing{}, fmt.Errorf("service: %w - non-positive bid amount", marketerrors.ErrInvalidInput)
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		ListingID: listingID,
		UserID:    userID,
		UserName:  userName,
		Amount:    amount,
		CreatedAt: s.now().UTC(),
	}

	updated, err := s.acceptBid(bid)
	if err != nil {
		return models.Listing{}, err
	}

	s.scheduleCounterBid(listingID)
	return updated, nil
}

// acceptBid applies the increment rule and swaps in the updated listing.
// The listing's key lock is held across the load-validate-replace sequence
// so concurrent accepts cannot overwrite each other's history. Nothing is
// mutated on failure.
func (s *AuctionService) acceptBid(bid models.Bid) (models.Listing, error) {
	s.locks.Lock(bid.ListingID)
	defer s.locks.Unlock(bid.ListingID)

	listing, err := s.catalog.GetListing(bid.ListingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to load listing %s: %w", bid.ListingID, err)
	}
	if listing.Type != models.Auction {
		return models.Listing{}, fmt.Errorf("service: listing %s: %w", listing.ID, marketerrors.ErrNotAuction)
	}
	if listing.Auction == nil {
		listing.Auction = &models.AuctionState{StepPrice: DefaultStepPrice}
	}
	if end := listing.Auction.EndTime; end != nil && !s.now().Before(*end) {
		return models.Listing{}, fmt.Errorf("service: listing %s: %w", listing.ID, marketerrors.ErrAuctionClosed)
	}

	minimum := MinimumNextBid(listing)
	if bid.Amount < minimum {
		return models.Listing{}, fmt.Errorf("service: listing %s: %w", listing.ID,
			&marketerrors.BidTooLowError{Proposed: bid.Amount, Minimum: minimum})
	}

	listing.Auction.BidHistory = append(listing.Auction.BidHistory, bid)
	listing.Auction.CurrentBid = bid.Amount
	listing.Auction.BidCount++

	if err := s.catalog.ReplaceListing(listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to record bid for listing %s: %w", listing.ID, err)
	}
	return listing, nil
}

// scheduleCounterBid arms the competitor timer for a listing. A newer human
// bid resets any timer still pending for the same listing.
func (s *AuctionService) scheduleCounterBid(listingID string) {
	if s.policy == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if t, ok := s.timers[listingID]; ok {
		t.Stop()
	}
	s.timers[listingID] = time.AfterFunc(s.delay, func() {
		s.runCounterBid(listingID)
	})
}

func (s *AuctionService) runCounterBid(listingID string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.timers, listingID)
	s.mu.Unlock()

	listing, err := s.catalog.GetListing(listingID)
	if err != nil {
		utils.Warn("competitor bid skipped: listing gone", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	counter, ok := s.policy.MaybeCounterBid(listing)
	if !ok {
		return
	}

	var outbid models.Bid
	if a := listing.Auction; a != nil && len(a.BidHistory) > 0 {
		outbid = a.BidHistory[len(a.BidHistory)-1]
	}

	counter.BidID = utils.GenerateID()
	counter.ListingID = listingID
	counter.CreatedAt = s.now().UTC()

	updated, err := s.acceptBid(counter)
	if err != nil {
		// Lost the race against a newer human bid; the competitor gives up.
		if errors.Is(err, marketerrors.ErrBidTooLow) || errors.Is(err, marketerrors.ErrAuctionClosed) {
			return
		}
		utils.Error("competitor bid failed", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	if outbid.UserID != "" && !s.presence.Watching(listingID) {
		s.notifier.Outbid(updated, counter, outbid.UserID)
	}
}

// Close cancels all pending counter-bid timers. The service accepts no
// further competitor activity afterwards.
func (s *AuctionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// BidsForListing returns the chronological bid history for a listing
func (s *AuctionService) BidsForListing(listingID string) ([]models.Bid, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", marketerrors.ErrInvalidInput)
	}

	listing, err := s.catalog.GetListing(listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}
	if listing.Auction == nil || len(listing.Auction.BidHistory) == 0 {
		return nil, fmt.Errorf("service: listing %s: %w", listingID, marketerrors.ErrNoBids)
	}
	return listing.Auction.BidHistory, nil
}

// WinningBid returns the current leading bid for a listing. Bids are totally
// ordered by insertion, so the leader is always the last history entry.
func (s *AuctionService) WinningBid(listingID string) (models.Bid, error) {
	bids, err := s.BidsForListing(listingID)
	if err != nil {
		return models.Bid{}, err
	}
	return bids[len(bids)-1], nil
}

// NextBidFor returns the minimum acceptable bid for a listing, for the bid
// form's increment affordances.
func (s *AuctionService) NextBidFor(listingID string) (money.Cents, error) {
	if listingID == "" {
		return 0, fmt.Errorf("service: %w - empty listing ID", marketerrors.ErrInvalidInput)
	}

	listing, err := s.catalog.GetListing(listingID)
	if err != nil {
		return 0, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	if listing.Type != models.Auction {
		return 0, fmt.Errorf("service: listing %s: %w", listingID, marketerrors.ErrNotAuction)
	}
	return MinimumNextBid(listing), nil
}
