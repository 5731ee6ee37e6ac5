package catalog

import (
	"fmt"
	"strings"
	"sync"

	"auction-market/internal/marketerrors"
	model "auction-market/internal/models"
)

// Filter narrows ListListings results. Zero values match everything.
type Filter struct {
	Status   model.OrderStatus
	Type     model.ListingType
	Category string
	SellerID string
	Search   string // case-insensitive substring match on Title
}

// CatalogDB defines the listing storage interface for the marketplace.
// All writes replace the whole entity keyed by id, so readers always see a
// consistent snapshot of a listing.
type CatalogDB interface {
	AddListing(listing model.Listing) error
	GetListing(listingID string) (model.Listing, error)
	ReplaceListing(listing model.Listing) error
	ListListings(filter Filter) ([]model.Listing, error)
	ListingsBySeller(sellerID string) ([]model.Listing, error)
}

// MemoryCatalog is a concurrency-safe in-memory implementation of CatalogDB
type MemoryCatalog struct {
	mu       sync.RWMutex
	listings map[string]model.Listing // key: listingID -> value: listing
	order    []string                 // listingIDs in insertion order, for stable listing output
}

// NewMemoryCatalog creates a new in-memory catalog instance
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		listings: make(map[string]model.Listing),
	}
}

// AddListing stores a new listing. The id must not already be taken.
func (c *MemoryCatalog) AddListing(listing model.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if listing.ID == "" {
		return fmt.Errorf("add listing: %w - empty id", marketerrors.ErrInvalidInput)
	}
	if _, ok := c.listings[listing.ID]; ok {
		return fmt.Errorf("add listing %s: %w - id already exists", listing.ID, marketerrors.ErrInvalidInput)
	}

	c.listings[listing.ID] = listing.Clone()
	c.order = append(c.order, listing.ID)
	return nil
}

// GetListing returns a snapshot of a listing by id
func (c *MemoryCatalog) GetListing(listingID string) (model.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	listing, ok := c.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, marketerrors.ErrListingNotFound)
	}
	return listing.Clone(), nil
}

// ReplaceListing swaps the stored entity for an updated copy. The listing
// must already exist; its type never changes after creation.
func (c *MemoryCatalog) ReplaceListing(listing model.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.listings[listing.ID]
	if !ok {
		return fmt.Errorf("replace listing %s: %w", listing.ID, marketerrors.ErrListingNotFound)
	}
	if current.Type != listing.Type {
		return fmt.Errorf("replace listing %s: %w - listing type is immutable", listing.ID, marketerrors.ErrInvalidInput)
	}

	c.listings[listing.ID] = listing.Clone()
	return nil
}

// ListListings returns snapshots of all listings matching the filter, in
// insertion order.
func (c *MemoryCatalog) ListListings(filter Filter) ([]model.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Listing, 0, len(c.order))
	for _, id := range c.order {
		l := c.listings[id]
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Type != "" && l.Type != filter.Type {
			continue
		}
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		if filter.SellerID != "" && l.SellerID != filter.SellerID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(l.Title), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, l.Clone())
	}
	return out, nil
}

// ListingsBySeller returns all listings owned by a seller
func (c *MemoryCatalog) ListingsBySeller(sellerID string) ([]model.Listing, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("listings by seller: %w - empty seller ID", marketerrors.ErrInvalidInput)
	}
	return c.ListListings(Filter{SellerID: sellerID})
}
