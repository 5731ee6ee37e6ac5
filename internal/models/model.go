package models

import (
	"time"

	"auction-market/internal/money"
)

// ListingType distinguishes fixed-price items from auctions. It is immutable
// after the listing is created.
type ListingType string

const (
	FixedPrice ListingType = "FIXED_PRICE"
	Auction    ListingType = "AUCTION"
)

// Valid reports whether t is a known listing type.
func (t ListingType) Valid() bool {
	return t == FixedPrice || t == Auction
}

// OrderStatus is the post-sale lifecycle state of a listing.
type OrderStatus string

const (
	StatusAvailable       OrderStatus = "AVAILABLE"
	StatusPendingShipment OrderStatus = "PENDING_SHIPMENT"
	StatusShipped         OrderStatus = "SHIPPED"
	StatusDelivered       OrderStatus = "DELIVERED" // declared but unreachable, see orderService
	StatusCompleted       OrderStatus = "COMPLETED"
	StatusReturned        OrderStatus = "RETURNED"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusPendingShipment, StatusShipped,
		StatusDelivered, StatusCompleted, StatusReturned:
		return true
	}
	return false
}

// Bid represents a user's bid on an auction listing.
type Bid struct {
	BidID     string      `json:"bid_id"`
	ListingID string      `json:"listing_id"`
	UserID    string      `json:"user_id"`
	UserName  string      `json:"user_name"`
	Amount    money.Cents `json:"amount"`
	CreatedAt time.Time   `json:"created_at"`
}

// AuctionState holds the bidding state of an AUCTION listing.
// BidHistory is append-only; insertion order is chronological and the last
// entry always matches CurrentBid. CurrentBid of zero means no bids yet.
type AuctionState struct {
	CurrentBid money.Cents `json:"current_bid"`
	StepPrice  money.Cents `json:"step_price"`
	BidCount   int         `json:"bid_count"`
	BidHistory []Bid       `json:"bid_history,omitempty"`
	EndTime    *time.Time  `json:"end_time,omitempty"`
}

// Listing is a sellable unit. Once Status leaves AVAILABLE the same entity
// doubles as the order record: SellerID is the payee and BuyerID is stamped
// at checkout.
type Listing struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Price         money.Cents `json:"price"` // auction: starting price
	OriginalPrice money.Cents `json:"original_price,omitempty"`
	Image         string      `json:"image,omitempty"`
	Category      string      `json:"category"`
	Type          ListingType `json:"type"`
	Rating        float64     `json:"rating,omitempty"`
	ReviewCount   int         `json:"review_count,omitempty"`
	Status        OrderStatus `json:"status"`
	SellerID      string      `json:"seller_id"`
	BuyerID       string      `json:"buyer_id,omitempty"`
	PayoutMethod  string      `json:"payout_method,omitempty"`

	Auction *AuctionState `json:"auction,omitempty"`

	// Affiliate fields
	IsAffiliate    bool    `json:"is_affiliate,omitempty"`
	AffiliateLink  string  `json:"affiliate_link,omitempty"`
	PlatformName   string  `json:"platform_name,omitempty"`
	CommissionRate float64 `json:"commission_rate,omitempty"` // percent
}

// Clone returns a deep copy of the listing so callers can hand out snapshots
// without aliasing the bid history.
func (l Listing) Clone() Listing {
	out := l
	if l.Auction != nil {
		a := *l.Auction
		if l.Auction.BidHistory != nil {
			a.BidHistory = append([]Bid(nil), l.Auction.BidHistory...)
		}
		if l.Auction.EndTime != nil {
			t := *l.Auction.EndTime
			a.EndTime = &t
		}
		out.Auction = &a
	}
	return out
}

// CartItem is a checkout line supplied by the cart UI.
type CartItem struct {
	ListingID string `json:"listing_id"`
	Quantity  int    `json:"quantity"`
}

// User represents a marketplace participant.
type User struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}
