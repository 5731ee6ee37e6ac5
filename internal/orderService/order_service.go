package orders

import (
	"fmt"
	"sort"

	"auction-market/internal/catalog"
	"auction-market/internal/marketerrors"
	"auction-market/internal/models"
	"auction-market/internal/money"
	"auction-market/utils"
)

// OrderService owns the post-sale status state machine and the dashboard
// aggregates computed over it.
type OrderService struct {
	catalog catalog.CatalogDB
	locks   *catalog.KeyedMutex
}

// NewOrderService creates a new OrderService instance
func NewOrderService(db catalog.CatalogDB) *OrderService {
	return &OrderService{catalog: db, locks: catalog.NewKeyedMutex()}
}

// transitions is the legal edge set of the order state machine, keyed by the
// current status. DELIVERED is declared in the model but has no edges.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusAvailable:       {models.StatusPendingShipment},
	models.StatusPendingShipment: {models.StatusShipped},
	models.StatusShipped:         {models.StatusCompleted, models.StatusReturned},
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Checkout moves every AVAILABLE cart listing to PENDING_SHIPMENT and stamps
// the buyer on it. Cart entries whose listing is missing or already sold are
// skipped silently; the updated listings are returned.
func (s *OrderService) Checkout(buyerID string, items []models.CartItem) ([]models.Listing, error) {
	if buyerID == "" {
		return nil, fmt.Errorf("service: %w - empty buyer ID", marketerrors.ErrInvalidInput)
	}

	updated := make([]models.Listing, 0, len(items))
	for _, item := range items {
		listing, err := s.claimListing(buyerID, item.ListingID)
		if err != nil {
			return nil, err
		}
		if listing != nil {
			updated = append(updated, *listing)
		}
	}
	return updated, nil
}

// claimListing moves one AVAILABLE listing to PENDING_SHIPMENT for the
// buyer, holding the listing's key lock across the load and the replace so
// two concurrent checkouts cannot both claim it. A nil listing with nil
// error means the cart entry was skipped.
func (s *OrderService) claimListing(buyerID, listingID string) (*models.Listing, error) {
	s.locks.Lock(listingID)
	defer s.locks.Unlock(listingID)

	listing, err := s.catalog.GetListing(listingID)
	if err != nil {
		utils.Warn("checkout: cart item skipped", map[string]any{"listing_id": listingID, "error": err.Error()})
		return nil, nil
	}
	if listing.Status != models.StatusAvailable {
		utils.Warn("checkout: listing no longer available", map[string]any{"listing_id": listing.ID, "status": string(listing.Status)})
		return nil, nil
	}
	if listing.SellerID == buyerID {
		utils.Warn("checkout: buyer owns listing", map[string]any{"listing_id": listing.ID, "buyer_id": buyerID})
		return nil, nil
	}

	listing.Status = models.StatusPendingShipment
	listing.BuyerID = buyerID
	if err := s.catalog.ReplaceListing(listing); err != nil {
		return nil, fmt.Errorf("service: checkout failed for listing %s: %w", listing.ID, err)
	}
	return &listing, nil
}

// UpdateStatus applies one actor-driven transition: a buyer claims an
// AVAILABLE listing (-> PENDING_SHIPMENT), the seller confirms shipment
// (-> SHIPPED), and the buyer confirms receipt (-> COMPLETED) or requests a
// return (-> RETURNED). Nothing is mutated on failure.
func (s *OrderService) UpdateStatus(listingID string, newStatus models.OrderStatus, actorID string) (models.Listing, error) {
	if listingID == "" || actorID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - missing listingID or actorID", marketerrors.ErrInvalidInput)
	}
	if !newStatus.Valid() {
		return models.Listing{}, fmt.Errorf("service: %w - unknown status %q", marketerrors.ErrInvalidInput, string(newStatus))
	}

	// Hold the listing's key lock for the whole load-check-replace sequence;
	// concurrent transitions on the same order would otherwise both pass the
	// table check and the later replace would erase the earlier one.
	s.locks.Lock(listingID)
	defer s.locks.Unlock(listingID)

	listing, err := s.catalog.GetListing(listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}

	if !transitionAllowed(listing.Status, newStatus) {
		return models.Listing{}, fmt.Errorf("service: listing %s: %w", listingID,
			&marketerrors.IllegalTransitionError{From: string(listing.Status), To: string(newStatus)})
	}

	switch newStatus {
	case models.StatusPendingShipment:
		if actorID == listing.SellerID {
			return models.Listing{}, fmt.Errorf("service: seller cannot buy own listing %s: %w",
				listingID, marketerrors.ErrActorNotAllowed)
		}
		listing.BuyerID = actorID
	case models.StatusShipped:
		if actorID != listing.SellerID {
			return models.Listing{}, fmt.Errorf("service: only the seller can confirm shipment of %s: %w",
				listingID, marketerrors.ErrActorNotAllowed)
		}
	case models.StatusCompleted, models.StatusReturned:
		if actorID != listing.BuyerID {
			return models.Listing{}, fmt.Errorf("service: only the buyer can close out %s: %w",
				listingID, marketerrors.ErrActorNotAllowed)
		}
	}

	listing.Status = newStatus
	if err := s.catalog.ReplaceListing(listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to update status of %s: %w", listingID, err)
	}
	return listing, nil
}

// SellerSales returns a seller's sold listings (anything past AVAILABLE).
func (s *OrderService) SellerSales(sellerID string) ([]models.Listing, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("service: %w - empty seller ID", marketerrors.ErrInvalidInput)
	}

	listings, err := s.catalog.ListingsBySeller(sellerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list sales for %s: %w", sellerID, err)
	}

	sales := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Status != models.StatusAvailable {
			sales = append(sales, l)
		}
	}
	return sales, nil
}

// BuyerPurchases returns the listings a buyer has checked out.
func (s *OrderService) BuyerPurchases(buyerID string) ([]models.Listing, error) {
	if buyerID == "" {
		return nil, fmt.Errorf("service: %w - empty buyer ID", marketerrors.ErrInvalidInput)
	}

	listings, err := s.catalog.ListListings(catalog.Filter{})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list purchases for %s: %w", buyerID, err)
	}

	purchases := make([]models.Listing, 0)
	for _, l := range listings {
		if l.BuyerID == buyerID && l.Status != models.StatusAvailable {
			purchases = append(purchases, l)
		}
	}
	return purchases, nil
}

// FundsHeld sums the escrowed amount for a seller: price over every sale not
// yet COMPLETED.
func (s *OrderService) FundsHeld(sellerID string) (money.Cents, error) {
	sales, err := s.SellerSales(sellerID)
	if err != nil {
		return 0, err
	}

	var held money.Cents
	for _, l := range sales {
		if l.Status != models.StatusCompleted {
			held += l.Price
		}
	}
	return held, nil
}

// CategoryRevenue is one row of the per-category revenue breakdown.
type CategoryRevenue struct {
	Category   string      `json:"category"`
	Count      int         `json:"count"`
	Revenue    money.Cents `json:"revenue"`
	Percentage float64     `json:"percentage"`
}

// RevenueReport aggregates a seller's payable revenue: full price for
// physical sales, price x commissionRate / 100 for affiliate ones, broken
// down by category and sorted by revenue.
type RevenueReport struct {
	TotalRevenue     money.Cents       `json:"total_revenue"`
	PhysicalRevenue  money.Cents       `json:"physical_revenue"`
	AffiliateRevenue money.Cents       `json:"affiliate_revenue"`
	SoldCount        int               `json:"sold_count"`
	ActiveCount      int               `json:"active_count"`
	Categories       []CategoryRevenue `json:"categories"`
}

// Revenue computes the seller dashboard report.
func (s *OrderService) Revenue(sellerID string) (RevenueReport, error) {
	if sellerID == "" {
		return RevenueReport{}, fmt.Errorf("service: %w - empty seller ID", marketerrors.ErrInvalidInput)
	}

	listings, err := s.catalog.ListingsBySeller(sellerID)
	if err != nil {
		return RevenueReport{}, fmt.Errorf("service: failed to build revenue report for %s: %w", sellerID, err)
	}

	report := RevenueReport{}
	byCategory := make(map[string]*CategoryRevenue)
	for _, l := range listings {
		if l.Status == models.StatusAvailable {
			report.ActiveCount++
			continue
		}
		report.SoldCount++

		revenue := l.Price
		if l.IsAffiliate {
			revenue = revenue.Percent(l.CommissionRate)
			report.AffiliateRevenue += revenue
		} else {
			report.PhysicalRevenue += revenue
		}

		row, ok := byCategory[l.Category]
		if !ok {
			row = &CategoryRevenue{Category: l.Category}
			byCategory[l.Category] = row
		}
		row.Count++
		row.Revenue += revenue
	}
	report.TotalRevenue = report.PhysicalRevenue + report.AffiliateRevenue

	for _, row := range byCategory {
		if report.TotalRevenue > 0 {
			row.Percentage = float64(row.Revenue) / float64(report.TotalRevenue) * 100
		}
		report.Categories = append(report.Categories, *row)
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Revenue > report.Categories[j].Revenue
	})
	return report, nil
}
