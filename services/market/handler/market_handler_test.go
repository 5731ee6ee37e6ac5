package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-market/internal/marketerrors"
	model "auction-market/internal/models"
	"auction-market/internal/money"
	orders "auction-market/internal/orderService"
	"auction-market/services/market/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func setupHandler(t *testing.T) (*MockListingServiceInterface, *MockAuctionServiceInterface, *MockOrderServiceInterface, *gin.Engine) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockListings := NewMockListingServiceInterface(ctrl)
	mockAuctions := NewMockAuctionServiceInterface(ctrl)
	mockOrders := NewMockOrderServiceInterface(ctrl)
	h := NewMarketHandler(mockListings, mockAuctions, mockOrders)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bids", h.PlaceBidHandler)
	router.POST("/checkout", h.CheckoutHandler)
	router.POST("/orders/:listing_id/status", h.UpdateOrderStatusHandler)
	router.GET("/listings/:listing_id/bids", h.GetBidsByListingHandler)
	router.GET("/listings/:listing_id/winning", h.GetWinningBidHandler)
	router.GET("/listings/:listing_id/minimum", h.GetMinimumNextBidHandler)
	router.GET("/users/:user_id/dashboard", h.GetSellerDashboardHandler)

	return mockListings, mockAuctions, mockOrders, router
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error
	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp, w
}

func auctionListing(bid float64, count int) model.Listing {
	return model.Listing{
		ID: "l1", Title: "Leica M3", Price: money.FromDollars(1500),
		Category: "Collectibles", Type: model.Auction,
		Status: model.StatusAvailable, SellerID: "s1",
		Auction: &model.AuctionState{
			CurrentBid: money.FromDollars(bid),
			StepPrice:  money.FromDollars(50),
			BidCount:   count,
		},
	}
}

// Test PlaceBidHandler
func TestPlaceBidHandler(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(m *MockAuctionServiceInterface)
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name: "success_valid_bid",
			requestBody: helpers.PlaceBidRequest{
				ListingID: "l1", UserID: "user1", UserName: "User One", Amount: 1600,
			},
			mockSetup: func(m *MockAuctionServiceInterface) {
				m.EXPECT().
					PlaceBid("l1", "user1", "User One", money.FromDollars(1600)).
					Return(auctionListing(1600, 1), nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "bid placed successfully",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "l1", data["id"])
				a := data["auction"].(map[string]any)
				require.Equal(t, 1600.0, a["current_bid"])
				require.Equal(t, 1.0, a["bid_count"])
			},
		},
		{
			name:           "invalid_json",
			requestBody:    `{invalid json}`,
			mockSetup:      func(m *MockAuctionServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "missing_listing_id",
			requestBody:    helpers.PlaceBidRequest{UserID: "user1", Amount: 100},
			mockSetup:      func(m *MockAuctionServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "zero_amount",
			requestBody:    helpers.PlaceBidRequest{ListingID: "l1", UserID: "user1", Amount: 0},
			mockSetup:      func(m *MockAuctionServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "bid_too_low_carries_minimum",
			requestBody: helpers.PlaceBidRequest{ListingID: "l1", UserID: "user1", UserName: "User One", Amount: 1620},
			mockSetup: func(m *MockAuctionServiceInterface) {
				m.EXPECT().
					PlaceBid("l1", "user1", "User One", money.FromDollars(1620)).
					Return(model.Listing{}, fmt.Errorf("service: %w",
						&marketerrors.BidTooLowError{Proposed: money.FromDollars(1620), Minimum: money.FromDollars(1650)}))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "bid too low, minimum is 1650.00",
		},
		{
			name:        "auction_closed",
			requestBody: helpers.PlaceBidRequest{ListingID: "l1", UserID: "user1", UserName: "User One", Amount: 2000},
			mockSetup: func(m *MockAuctionServiceInterface) {
				m.EXPECT().
					PlaceBid("l1", "user1", "User One", money.FromDollars(2000)).
					Return(model.Listing{}, marketerrors.ErrAuctionClosed)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "auction has ended",
		},
		{
			name:        "listing_not_found",
			requestBody: helpers.PlaceBidRequest{ListingID: "ghost", UserID: "user1", UserName: "User One", Amount: 100},
			mockSetup: func(m *MockAuctionServiceInterface) {
				m.EXPECT().
					PlaceBid("ghost", "user1", "User One", money.FromDollars(100)).
					Return(model.Listing{}, marketerrors.ErrListingNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "listing not found",
		},
		{
			name:        "service_generic_error",
			requestBody: helpers.PlaceBidRequest{ListingID: "l1", UserID: "user1", UserName: "User One", Amount: 100},
			mockSetup: func(m *MockAuctionServiceInterface) {
				m.EXPECT().
					PlaceBid("l1", "user1", "User One", money.FromDollars(100)).
					Return(model.Listing{}, errors.New("store failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, mockAuctions, _, router := setupHandler(t)
			tc.mockSetup(mockAuctions)

			resp, w := doJSON(t, router, http.MethodPost, "/bids", tc.requestBody)

			require.Equal(t, tc.expectedStatus, w.Code)
			require.Contains(t, resp["message"], tc.expectedMsg)

			if tc.validateData != nil && w.Code == http.StatusCreated {
				tc.validateData(t, resp["data"].(map[string]any))
			}
		})
	}
}

// Test CheckoutHandler
func TestCheckoutHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, _, mockOrders, router := setupHandler(t)

		sold := model.Listing{
			ID: "a", Title: "Item A", Price: money.FromDollars(100),
			Type: model.FixedPrice, Status: model.StatusPendingShipment,
			SellerID: "s1", BuyerID: "buyer1",
		}
		mockOrders.EXPECT().
			Checkout("buyer1", []model.CartItem{{ListingID: "a", Quantity: 2}}).
			Return([]model.Listing{sold}, nil)

		resp, w := doJSON(t, router, http.MethodPost, "/checkout", helpers.CheckoutRequest{
			BuyerID: "buyer1",
			Items:   []helpers.CartItemRequest{{ListingID: "a", Quantity: 2}},
		})

		require.Equal(t, http.StatusOK, w.Code)
		data := resp["data"].(map[string]any)
		ordersData := data["orders"].([]any)
		require.Len(t, ordersData, 1)
		first := ordersData[0].(map[string]any)
		require.Equal(t, "PENDING_SHIPMENT", first["status"])
		require.Equal(t, "buyer1", first["buyer_id"])
		require.Equal(t, 0.0, data["cart_size"])
	})

	t.Run("defaults_quantity_to_one", func(t *testing.T) {
		_, _, mockOrders, router := setupHandler(t)

		mockOrders.EXPECT().
			Checkout("buyer1", []model.CartItem{{ListingID: "a", Quantity: 1}}).
			Return([]model.Listing{}, nil)

		_, w := doJSON(t, router, http.MethodPost, "/checkout",
			map[string]any{"buyer_id": "buyer1", "items": []map[string]any{{"listing_id": "a"}}})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing_buyer", func(t *testing.T) {
		_, _, _, router := setupHandler(t)

		resp, w := doJSON(t, router, http.MethodPost, "/checkout",
			map[string]any{"items": []map[string]any{{"listing_id": "a"}}})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, resp["message"], "invalid request payload")
	})

	t.Run("empty_cart", func(t *testing.T) {
		_, _, _, router := setupHandler(t)

		_, w := doJSON(t, router, http.MethodPost, "/checkout",
			map[string]any{"buyer_id": "buyer1", "items": []map[string]any{}})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// Test UpdateOrderStatusHandler
func TestUpdateOrderStatusHandler(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(m *MockOrderServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "success_ship",
			requestBody: helpers.UpdateStatusRequest{NewStatus: "SHIPPED", ActorID: "s1"},
			mockSetup: func(m *MockOrderServiceInterface) {
				m.EXPECT().
					UpdateStatus("l1", model.StatusShipped, "s1").
					Return(model.Listing{ID: "l1", Status: model.StatusShipped, Type: model.FixedPrice, SellerID: "s1"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "order status updated successfully",
		},
		{
			name:        "illegal_transition_names_both_states",
			requestBody: helpers.UpdateStatusRequest{NewStatus: "COMPLETED", ActorID: "b1"},
			mockSetup: func(m *MockOrderServiceInterface) {
				m.EXPECT().
					UpdateStatus("l1", model.StatusCompleted, "b1").
					Return(model.Listing{}, fmt.Errorf("service: %w",
						&marketerrors.IllegalTransitionError{From: "AVAILABLE", To: "COMPLETED"}))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "cannot move order from AVAILABLE to COMPLETED",
		},
		{
			name:        "wrong_actor",
			requestBody: helpers.UpdateStatusRequest{NewStatus: "COMPLETED", ActorID: "s1"},
			mockSetup: func(m *MockOrderServiceInterface) {
				m.EXPECT().
					UpdateStatus("l1", model.StatusCompleted, "s1").
					Return(model.Listing{}, marketerrors.ErrActorNotAllowed)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "action not allowed for this user",
		},
		{
			name:           "missing_actor",
			requestBody:    helpers.UpdateStatusRequest{NewStatus: "SHIPPED"},
			mockSetup:      func(m *MockOrderServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, _, mockOrders, router := setupHandler(t)
			tc.mockSetup(mockOrders)

			resp, w := doJSON(t, router, http.MethodPost, "/orders/l1/status", tc.requestBody)
			require.Equal(t, tc.expectedStatus, w.Code)
			require.Contains(t, resp["message"], tc.expectedMsg)
		})
	}
}

// Test GetBidsByListingHandler
func TestGetBidsByListingHandler(t *testing.T) {
	now := time.Now().UTC()

	t.Run("success_multiple_bids", func(t *testing.T) {
		_, mockAuctions, _, router := setupHandler(t)
		mockAuctions.EXPECT().
			BidsForListing("l1").
			Return([]model.Bid{
				{BidID: "b1", ListingID: "l1", UserID: "user1", UserName: "One", Amount: money.FromDollars(100), CreatedAt: now},
				{BidID: "b2", ListingID: "l1", UserID: "user2", UserName: "Two", Amount: money.FromDollars(150), CreatedAt: now},
			}, nil)

		resp, w := doJSON(t, router, http.MethodGet, "/listings/l1/bids", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := resp["data"].([]any)
		require.Len(t, data, 2)
		first := data[0].(map[string]any)
		require.Equal(t, 100.0, first["amount"])
		_, err := time.Parse(time.RFC3339, first["created_at"].(string))
		require.NoError(t, err)
	})

	t.Run("no_bids_is_ok_with_empty_list", func(t *testing.T) {
		_, mockAuctions, _, router := setupHandler(t)
		mockAuctions.EXPECT().
			BidsForListing("l2").
			Return(nil, marketerrors.ErrNoBids)

		resp, w := doJSON(t, router, http.MethodGet, "/listings/l2/bids", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, resp["data"].([]any), 0)
	})

	t.Run("listing_not_found", func(t *testing.T) {
		_, mockAuctions, _, router := setupHandler(t)
		mockAuctions.EXPECT().
			BidsForListing("ghost").
			Return(nil, marketerrors.ErrListingNotFound)

		_, w := doJSON(t, router, http.MethodGet, "/listings/ghost/bids", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

// Test GetWinningBidHandler
func TestGetWinningBidHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, mockAuctions, _, router := setupHandler(t)
		mockAuctions.EXPECT().
			WinningBid("l1").
			Return(model.Bid{
				BidID: "b2", ListingID: "l1", UserID: "user2", UserName: "Two",
				Amount: money.FromDollars(1650), CreatedAt: time.Now().UTC(),
			}, nil)

		resp, w := doJSON(t, router, http.MethodGet, "/listings/l1/winning", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := resp["data"].(map[string]any)
		require.Equal(t, "user2", data["user_id"])
		require.Equal(t, 1650.0, data["amount"])
	})

	t.Run("no_bids_is_not_found", func(t *testing.T) {
		_, mockAuctions, _, router := setupHandler(t)
		mockAuctions.EXPECT().
			WinningBid("l2").
			Return(model.Bid{}, marketerrors.ErrNoBids)

		resp, w := doJSON(t, router, http.MethodGet, "/listings/l2/winning", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Contains(t, resp["message"], "no bids found")
	})

	t.Run("listing_not_found", func(t *testing.T) {
		_, mockAuctions, _, router := setupHandler(t)
		mockAuctions.EXPECT().
			WinningBid("ghost").
			Return(model.Bid{}, marketerrors.ErrListingNotFound)

		_, w := doJSON(t, router, http.MethodGet, "/listings/ghost/winning", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

// Test GetMinimumNextBidHandler
func TestGetMinimumNextBidHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, mockAuctions, _, router := setupHandler(t)
		mockAuctions.EXPECT().NextBidFor("l1").Return(money.FromDollars(1650), nil)

		resp, w := doJSON(t, router, http.MethodGet, "/listings/l1/minimum", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := resp["data"].(map[string]any)
		require.Equal(t, "l1", data["listing_id"])
		require.Equal(t, 1650.0, data["minimum"])
	})

	t.Run("not_an_auction", func(t *testing.T) {
		_, mockAuctions, _, router := setupHandler(t)
		mockAuctions.EXPECT().NextBidFor("l1").Return(money.Cents(0), marketerrors.ErrNotAuction)

		_, w := doJSON(t, router, http.MethodGet, "/listings/l1/minimum", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// Test GetSellerDashboardHandler
func TestGetSellerDashboardHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockListings, _, mockOrders, router := setupHandler(t)

		mockListings.EXPECT().ActiveListings("s1").Return([]model.Listing{
			{ID: "inv1", Title: "Unsold Widget", Price: money.FromDollars(50),
				Type: model.FixedPrice, Status: model.StatusAvailable, SellerID: "s1"},
		}, nil)
		mockOrders.EXPECT().FundsHeld("s1").Return(money.FromDollars(300), nil)
		mockOrders.EXPECT().Revenue("s1").Return(orders.RevenueReport{
			TotalRevenue:     money.FromDollars(1600),
			PhysicalRevenue:  money.FromDollars(1500),
			AffiliateRevenue: money.FromDollars(100),
			SoldCount:        3,
			ActiveCount:      1,
			Categories: []orders.CategoryRevenue{
				{Category: "Electronics", Count: 2, Revenue: money.FromDollars(1100), Percentage: 68.75},
			},
		}, nil)

		resp, w := doJSON(t, router, http.MethodGet, "/users/s1/dashboard", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data := resp["data"].(map[string]any)
		require.Equal(t, 300.0, data["funds_held"])
		require.Equal(t, 1600.0, data["total_revenue"])
		require.Equal(t, 3.0, data["sold_count"])
		categories := data["categories"].([]any)
		require.Len(t, categories, 1)

		inventory := data["active_listings"].([]any)
		require.Len(t, inventory, 1)
		require.Equal(t, "inv1", inventory[0].(map[string]any)["id"])
	})

	t.Run("funds_held_error", func(t *testing.T) {
		_, _, mockOrders, router := setupHandler(t)
		mockOrders.EXPECT().FundsHeld("s1").Return(money.Cents(0), errors.New("store failure"))

		_, w := doJSON(t, router, http.MethodGet, "/users/s1/dashboard", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
