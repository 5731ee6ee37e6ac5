package listings

import (
	"fmt"
	"time"

	auction "auction-market/internal/auctionService"
	"auction-market/internal/catalog"
	"auction-market/internal/marketerrors"
	"auction-market/internal/models"
	"auction-market/internal/money"
	"auction-market/utils"
)

// ListingService handles listing creation and storefront queries.
type ListingService struct {
	catalog catalog.CatalogDB
}

// NewListingService creates a new ListingService instance
func NewListingService(db catalog.CatalogDB) *ListingService {
	return &ListingService{catalog: db}
}

// NewListingInput is the sell-form payload.
type NewListingInput struct {
	Title          string
	Description    string
	Price          money.Cents
	Image          string
	Category       string
	Type           models.ListingType
	SellerID       string
	PayoutMethod   string
	StepPrice      money.Cents // auctions only
	EndTime        *time.Time  // auctions only
	IsAffiliate    bool
	AffiliateLink  string
	PlatformName   string
	CommissionRate float64
}

// CreateListing validates the sell form and stores a new AVAILABLE listing.
// Auction listings start with an empty bid history and the default step
// price unless one is given.
func (s *ListingService) CreateListing(in NewListingInput) (models.Listing, error) {
	if in.Title == "" || in.SellerID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - missing title or sellerID", marketerrors.ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return models.Listing{}, fmt.Errorf("service: %w - unknown listing type %q", marketerrors.ErrInvalidInput, string(in.Type))
	}
	if in.Price <= 0 {
		return models.Listing{}, fmt.Errorf("service: %w - non-positive price", marketerrors.ErrInvalidInput)
	}

	listing := models.Listing{
		ID:             utils.GenerateID(),
		Title:          in.Title,
		Description:    in.Description,
		Price:          in.Price,
		Image:          in.Image,
		Category:       in.Category,
		Type:           in.Type,
		Status:         models.StatusAvailable,
		SellerID:       in.SellerID,
		PayoutMethod:   in.PayoutMethod,
		IsAffiliate:    in.IsAffiliate,
		AffiliateLink:  in.AffiliateLink,
		PlatformName:   in.PlatformName,
		CommissionRate: in.CommissionRate,
	}

	if in.Type == models.Auction {
		step := in.StepPrice
		if step <= 0 {
			step = auction.DefaultStepPrice
		}
		listing.Auction = &models.AuctionState{
			StepPrice: step,
			EndTime:   in.EndTime,
		}
	}

	if err := s.catalog.AddListing(listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to create listing: %w", err)
	}
	return listing, nil
}

// Browse returns AVAILABLE listings for the storefront, optionally narrowed
// by category, type and a title search term.
func (s *ListingService) Browse(category string, listingType models.ListingType, search string) ([]models.Listing, error) {
	if listingType != "" && !listingType.Valid() {
		return nil, fmt.Errorf("service: %w - unknown listing type %q", marketerrors.ErrInvalidInput, string(listingType))
	}
	return s.catalog.ListListings(catalog.Filter{
		Status:   models.StatusAvailable,
		Type:     listingType,
		Category: category,
		Search:   search,
	})
}

// GetListing returns one listing by id
func (s *ListingService) GetListing(listingID string) (models.Listing, error) {
	if listingID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - empty listing ID", marketerrors.ErrInvalidInput)
	}
	return s.catalog.GetListing(listingID)
}

// ActiveListings returns a seller's unsold inventory
func (s *ListingService) ActiveListings(sellerID string) ([]models.Listing, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("service: %w - empty seller ID", marketerrors.ErrInvalidInput)
	}
	return s.catalog.ListListings(catalog.Filter{
		Status:   models.StatusAvailable,
		SellerID: sellerID,
	})
}
