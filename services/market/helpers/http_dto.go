package helpers

import (
	"time"

	"auction-market/internal/models"
	"auction-market/internal/money"
)

// Request DTOs. Amounts cross the boundary as decimal dollars and are
// converted to integer cents internally.

type CreateListingRequest struct {
	Title          string  `json:"title" binding:"required"`
	Description    string  `json:"description"`
	Price          float64 `json:"price" binding:"required,gt=0"`
	Image          string  `json:"image"`
	Category       string  `json:"category"`
	Type           string  `json:"type" binding:"required,oneof=FIXED_PRICE AUCTION"`
	SellerID       string  `json:"seller_id" binding:"required"`
	PayoutMethod   string  `json:"payout_method"`
	StepPrice      float64 `json:"step_price" binding:"omitempty,gt=0"`
	EndTime        string  `json:"end_time" binding:"omitempty"` // RFC3339
	IsAffiliate    bool    `json:"is_affiliate"`
	AffiliateLink  string  `json:"affiliate_link"`
	PlatformName   string  `json:"platform_name"`
	CommissionRate float64 `json:"commission_rate" binding:"omitempty,gte=0,lte=100"`
}

type PlaceBidRequest struct {
	ListingID string  `json:"listing_id" binding:"required"`
	UserID    string  `json:"user_id" binding:"required"`
	UserName  string  `json:"user_name"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

type CartItemRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,gt=0"`
}

type CheckoutRequest struct {
	BuyerID string            `json:"buyer_id" binding:"required"`
	Items   []CartItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	NewStatus string `json:"new_status" binding:"required"`
	ActorID   string `json:"actor_id" binding:"required"`
}

// Response DTOs

type BidResponse struct {
	BidID     string  `json:"bid_id"`
	ListingID string  `json:"listing_id"`
	UserID    string  `json:"user_id"`
	UserName  string  `json:"user_name"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"created_at"`
}

type AuctionStateResponse struct {
	CurrentBid float64 `json:"current_bid"`
	StepPrice  float64 `json:"step_price"`
	BidCount   int     `json:"bid_count"`
	EndTime    string  `json:"end_time,omitempty"`
}

type ListingResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description,omitempty"`
	Price          float64               `json:"price"`
	Image          string                `json:"image,omitempty"`
	Category       string                `json:"category,omitempty"`
	Type           string                `json:"type"`
	Status         string                `json:"status"`
	SellerID       string                `json:"seller_id"`
	BuyerID        string                `json:"buyer_id,omitempty"`
	PayoutMethod   string                `json:"payout_method,omitempty"`
	Auction        *AuctionStateResponse `json:"auction,omitempty"`
	IsAffiliate    bool                  `json:"is_affiliate,omitempty"`
	CommissionRate float64               `json:"commission_rate,omitempty"`
}

type MinimumBidResponse struct {
	ListingID string  `json:"listing_id"`
	Minimum   float64 `json:"minimum"`
}

type CheckoutResponse struct {
	BuyerID  string            `json:"buyer_id"`
	Orders   []ListingResponse `json:"orders"`
	CartSize int               `json:"cart_size"`
}

// ToBidResponse converts a domain bid for the wire.
func ToBidResponse(b models.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		ListingID: b.ListingID,
		UserID:    b.UserID,
		UserName:  b.UserName,
		Amount:    b.Amount.Dollars(),
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToBidResponses converts a bid history slice for the wire.
func ToBidResponses(bids []models.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidResponse(b))
	}
	return out
}

// ToListingResponse converts a domain listing for the wire.
func ToListingResponse(l models.Listing) ListingResponse {
	resp := ListingResponse{
		ID:             l.ID,
		Title:          l.Title,
		Description:    l.Description,
		Price:          l.Price.Dollars(),
		Image:          l.Image,
		Category:       l.Category,
		Type:           string(l.Type),
		Status:         string(l.Status),
		SellerID:       l.SellerID,
		BuyerID:        l.BuyerID,
		PayoutMethod:   l.PayoutMethod,
		IsAffiliate:    l.IsAffiliate,
		CommissionRate: l.CommissionRate,
	}
	if a := l.Auction; a != nil {
		ar := &AuctionStateResponse{
			CurrentBid: a.CurrentBid.Dollars(),
			StepPrice:  a.StepPrice.Dollars(),
			BidCount:   a.BidCount,
		}
		if a.EndTime != nil {
			ar.EndTime = a.EndTime.UTC().Format(time.RFC3339)
		}
		resp.Auction = ar
	}
	return resp
}

// ToListingResponses converts a listing slice for the wire.
func ToListingResponses(listings []models.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, ToListingResponse(l))
	}
	return out
}

// DollarsToCents converts a boundary dollar amount to internal cents.
func DollarsToCents(d float64) money.Cents {
	return money.FromDollars(d)
}
