package server

import (
	handler "auction-market/services/market/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(
	listingService handler.ListingServiceInterface,
	auctionService handler.AuctionServiceInterface,
	orderService handler.OrderServiceInterface,
) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	registry := prometheus.NewRegistry()
	metrics := NewServerMetrics(registry)
	router.Use(metrics.Middleware)
	router.GET("/metrics", MetricsHandler(registry))

	marketHandler := handler.NewMarketHandler(listingService, auctionService, orderService)

	listings := router.Group("/listings")
	{
		listings.POST("", marketHandler.CreateListingHandler)
		listings.GET("", marketHandler.BrowseListingsHandler)
		listings.GET("/:listing_id", marketHandler.GetListingHandler)
		listings.GET("/:listing_id/bids", marketHandler.GetBidsByListingHandler)
		listings.GET("/:listing_id/winning", marketHandler.GetWinningBidHandler)
		listings.GET("/:listing_id/minimum", marketHandler.GetMinimumNextBidHandler)
	}

	bids := router.Group("/bids")
	{
		bids.POST("", marketHandler.PlaceBidHandler)
	}

	router.POST("/checkout", marketHandler.CheckoutHandler)

	orders := router.Group("/orders")
	{
		orders.POST("/:listing_id/status", marketHandler.UpdateOrderStatusHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/sales", marketHandler.GetSellerSalesHandler)
		users.GET("/:user_id/purchases", marketHandler.GetBuyerPurchasesHandler)
		users.GET("/:user_id/dashboard", marketHandler.GetSellerDashboardHandler)
	}

	return router
}
