package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	listings "auction-market/internal/listingService"
	"auction-market/internal/marketerrors"
	model "auction-market/internal/models"
	"auction-market/internal/money"
	orders "auction-market/internal/orderService"
	"auction-market/services/market/helpers"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

type ListingServiceInterface interface {
	CreateListing(in listings.NewListingInput) (model.Listing, error)
	Browse(category string, listingType model.ListingType, search string) ([]model.Listing, error)
	GetListing(listingID string) (model.Listing, error)
	ActiveListings(sellerID string) ([]model.Listing, error)
}

type AuctionServiceInterface interface {
	PlaceBid(listingID, userID, userName string, amount money.Cents) (model.Listing, error)
	BidsForListing(listingID string) ([]model.Bid, error)
	WinningBid(listingID string) (model.Bid, error)
	NextBidFor(listingID string) (money.Cents, error)
}

type OrderServiceInterface interface {
	Checkout(buyerID string, items []model.CartItem) ([]model.Listing, error)
	UpdateStatus(listingID string, newStatus model.OrderStatus, actorID string) (model.Listing, error)
	SellerSales(sellerID string) ([]model.Listing, error)
	BuyerPurchases(buyerID string) ([]model.Listing, error)
	FundsHeld(sellerID string) (money.Cents, error)
	Revenue(sellerID string) (orders.RevenueReport, error)
}

type MarketHandler struct {
	listings ListingServiceInterface
	auctions AuctionServiceInterface
	orders   OrderServiceInterface
}

func NewMarketHandler(l ListingServiceInterface, a AuctionServiceInterface, o OrderServiceInterface) *MarketHandler {
	return &MarketHandler{listings: l, auctions: a, orders: o}
}

// CreateListingHandler handles POST /listings
func (h *MarketHandler) CreateListingHandler(c *gin.Context) {
	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	var endTime *time.Time
	if req.EndTime != "" {
		t, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			helpers.HandleBindError(c, "CreateListingHandler", fmt.Errorf("end_time: %w", err))
			return
		}
		endTime = &t
	}

	listing, err := h.listings.CreateListing(listings.NewListingInput{
		Title:          req.Title,
		Description:    req.Description,
		Price:          helpers.DollarsToCents(req.Price),
		Image:          req.Image,
		Category:       req.Category,
		Type:           model.ListingType(req.Type),
		SellerID:       req.SellerID,
		PayoutMethod:   req.PayoutMethod,
		StepPrice:      helpers.DollarsToCents(req.StepPrice),
		EndTime:        endTime,
		IsAffiliate:    req.IsAffiliate,
		AffiliateLink:  req.AffiliateLink,
		PlatformName:   req.PlatformName,
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, err, message)
		utils.Error("CreateListingHandler: failed to create listing", map[string]any{
			"seller_id": req.SellerID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToListingResponse(listing), "listing created successfully")
	helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
		"listing_id": listing.ID,
		"seller_id":  listing.SellerID,
		"type":       string(listing.Type),
	})
}

// BrowseListingsHandler handles GET /listings
func (h *MarketHandler) BrowseListingsHandler(c *gin.Context) {
	category := c.Query("category")
	listingType := model.ListingType(c.Query("type"))
	search := c.Query("q")

	result, err := h.listings.Browse(category, listingType, search)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, err, message)
		utils.Warn("BrowseListingsHandler: error browsing listings", map[string]any{"error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(result), "listings retrieved successfully")
}

// GetListingHandler handles GET /listings/:listing_id
func (h *MarketHandler) GetListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	listing, err := h.listings.GetListing(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, err, message)
		utils.Warn("GetListingHandler: error retrieving listing", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponse(listing), "listing retrieved successfully")
}

// PlaceBidHandler handles POST /bids
func (h *MarketHandler) PlaceBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	listing, err := h.auctions.PlaceBid(req.ListingID, req.UserID, req.UserName, helpers.DollarsToCents(req.Amount))
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"handler":    "PlaceBidHandler",
			"listing_id": req.ListingID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToListingResponse(listing), "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"listing_id": req.ListingID,
		"user_id":    req.UserID,
		"amount":     req.Amount,
	})
}

// GetBidsByListingHandler handles GET /listings/:listing_id/bids
func (h *MarketHandler) GetBidsByListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	bids, err := h.auctions.BidsForListing(listingID)
	if err != nil && !errors.Is(err, marketerrors.ErrNoBids) {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsByListingHandler: error retrieving bids", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByListingHandler", "bids retrieved successfully", map[string]any{
		"listing_id": listingID,
		"count":      len(bids),
	})
}

// GetWinningBidHandler handles GET /listings/:listing_id/winning
func (h *MarketHandler) GetWinningBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	bid, err := h.auctions.WinningBid(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetWinningBidHandler: error retrieving winning bid", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponse(bid), "winning bid retrieved successfully")
}

// GetMinimumNextBidHandler handles GET /listings/:listing_id/minimum
func (h *MarketHandler) GetMinimumNextBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	minimum, err := h.auctions.NextBidFor(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetMinimumNextBidHandler: error computing minimum", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	resp := helpers.MinimumBidResponse{ListingID: listingID, Minimum: minimum.Dollars()}
	utils.JSONResponse(c, http.StatusOK, resp, "minimum next bid retrieved successfully")
}

// CheckoutHandler handles POST /checkout
func (h *MarketHandler) CheckoutHandler(c *gin.Context) {
	var req helpers.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CheckoutHandler", err)
		return
	}

	cart := make([]model.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		cart = append(cart, model.CartItem{ListingID: item.ListingID, Quantity: qty})
	}

	updated, err := h.orders.Checkout(req.BuyerID, cart)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CheckoutHandler: checkout failed", map[string]any{
			"buyer_id": req.BuyerID,
			"error":    err.Error(),
		})
		return
	}

	resp := helpers.CheckoutResponse{
		BuyerID:  req.BuyerID,
		Orders:   helpers.ToListingResponses(updated),
		CartSize: 0, // cart is cleared on checkout
	}
	utils.JSONResponse(c, http.StatusOK, resp, "checkout completed, funds held in escrow")
	helpers.LogSuccess("CheckoutHandler", "checkout completed", map[string]any{
		"buyer_id": req.BuyerID,
		"orders":   len(updated),
	})
}

// UpdateOrderStatusHandler handles POST /orders/:listing_id/status
func (h *MarketHandler) UpdateOrderStatusHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	var req helpers.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateOrderStatusHandler", err)
		return
	}

	listing, err := h.orders.UpdateStatus(listingID, model.OrderStatus(req.NewStatus), req.ActorID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("UpdateOrderStatusHandler: transition rejected", map[string]any{
			"listing_id": listingID,
			"new_status": req.NewStatus,
			"actor_id":   req.ActorID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponse(listing), "order status updated successfully")
	helpers.LogSuccess("UpdateOrderStatusHandler", "order status updated successfully", map[string]any{
		"listing_id": listingID,
		"new_status": req.NewStatus,
		"actor_id":   req.ActorID,
	})
}

// GetSellerSalesHandler handles GET /users/:user_id/sales
func (h *MarketHandler) GetSellerSalesHandler(c *gin.Context) {
	userID := c.Param("user_id")
	sales, err := h.orders.SellerSales(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetSellerSalesHandler: error retrieving sales", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(sales), "sales retrieved successfully")
}

// GetBuyerPurchasesHandler handles GET /users/:user_id/purchases
func (h *MarketHandler) GetBuyerPurchasesHandler(c *gin.Context) {
	userID := c.Param("user_id")
	purchases, err := h.orders.BuyerPurchases(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBuyerPurchasesHandler: error retrieving purchases", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToListingResponses(purchases), "purchases retrieved successfully")
}

// GetSellerDashboardHandler handles GET /users/:user_id/dashboard
func (h *MarketHandler) GetSellerDashboardHandler(c *gin.Context) {
	userID := c.Param("user_id")

	held, err := h.orders.FundsHeld(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetSellerDashboardHandler: error computing funds held", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	report, err := h.orders.Revenue(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetSellerDashboardHandler: error building revenue report", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	inventory, err := h.listings.ActiveListings(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetSellerDashboardHandler: error listing active inventory", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	categories := make([]gin.H, 0, len(report.Categories))
	for _, row := range report.Categories {
		categories = append(categories, gin.H{
			"category":   row.Category,
			"count":      row.Count,
			"revenue":    row.Revenue.Dollars(),
			"percentage": row.Percentage,
		})
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"seller_id":         userID,
		"funds_held":        held.Dollars(),
		"total_revenue":     report.TotalRevenue.Dollars(),
		"physical_revenue":  report.PhysicalRevenue.Dollars(),
		"affiliate_revenue": report.AffiliateRevenue.Dollars(),
		"sold_count":        report.SoldCount,
		"active_count":      report.ActiveCount,
		"active_listings":   helpers.ToListingResponses(inventory),
		"categories":        categories,
	}, "dashboard retrieved successfully")
}
