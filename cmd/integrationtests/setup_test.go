package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	auction "auction-market/internal/auctionService"
	"auction-market/internal/catalog"
	listings "auction-market/internal/listingService"
	model "auction-market/internal/models"
	orders "auction-market/internal/orderService"
	"auction-market/internal/server"

	"github.com/gin-gonic/gin"
)

// SetupTestRouter initializes the router with an in-memory catalog for
// integration testing. The competitor bot is disabled so bid histories
// contain only the bids a test places.
func SetupTestRouter(t *testing.T) *gin.Engine {
	return SetupTestRouterWithListings(t)
}

// SetupTestRouterWithListings initializes the router and seeds the catalog.
func SetupTestRouterWithListings(t *testing.T, seed ...model.Listing) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := catalog.NewMemoryCatalog()
	for _, l := range seed {
		if err := db.AddListing(l); err != nil {
			t.Fatalf("failed to seed listing %q: %v", l.ID, err)
		}
	}

	listingSvc := listings.NewListingService(db)
	auctionSvc := auction.NewAuctionService(db, auction.WithCompetitorPolicy(auction.DisabledPolicy{}))
	t.Cleanup(auctionSvc.Close)
	orderSvc := orders.NewOrderService(db)

	return server.SetupRouter(listingSvc, auctionSvc, orderSvc)
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}
