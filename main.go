package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	auction "auction-market/internal/auctionService"
	"auction-market/internal/catalog"
	listings "auction-market/internal/listingService"
	model "auction-market/internal/models"
	"auction-market/internal/money"
	orders "auction-market/internal/orderService"
	"auction-market/internal/server"
)

func main() {

	db := catalog.NewMemoryCatalog()

	prepopulateListings(db)

	listingSvc := listings.NewListingService(db)
	auctionSvc := auction.NewAuctionService(db, auctionOptions()...)
	defer auctionSvc.Close()
	orderSvc := orders.NewOrderService(db)

	router := server.SetupRouter(listingSvc, auctionSvc, orderSvc)

	port := getPort()
	fmt.Printf("Starting marketplace server on %s...\n", port)
	if err := router.Run(port); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// prepopulateListings adds sample listings to the in-memory catalog
func prepopulateListings(db *catalog.MemoryCatalog) {
	in5h := time.Now().Add(5 * time.Hour)
	in30m := time.Now().Add(30 * time.Minute)

	items := []model.Listing{
		{
			ID: "1", Title: "Sony WH-1000XM5 Noise Canceling Headphones",
			Description: "Industry leading noise cancellation with two processors and 8 microphones.",
			Price:       money.FromDollars(349.99), Category: "Electronics",
			Type: model.FixedPrice, Status: model.StatusAvailable, SellerID: "system_store",
		},
		{
			ID: "2", Title: "Vintage 1970s Leica M3 Camera",
			Description: "Extremely rare collectible camera in pristine condition.",
			Price:       money.FromDollars(1500), Category: "Collectibles",
			Type: model.Auction, Status: model.StatusAvailable, SellerID: "user_collector_99",
			Auction: &model.AuctionState{StepPrice: money.FromDollars(50), EndTime: &in5h},
		},
		{
			ID: "3", Title: "MacBook Pro 14-inch (M3 Max)",
			Description: "The most advanced chips ever built for a personal computer.",
			Price:       money.FromDollars(2499), Category: "Electronics",
			Type: model.FixedPrice, Status: model.StatusAvailable, SellerID: "apple_reseller",
		},
		{
			ID: "4", Title: "Limited Edition Charizard Card (Holographic)",
			Description: "Shadowless 1st Edition PSA 10.",
			Price:       money.FromDollars(5000), Category: "Collectibles",
			Type: model.Auction, Status: model.StatusAvailable, SellerID: "card_king",
			Auction: &model.AuctionState{StepPrice: auction.DefaultStepPrice, EndTime: &in30m},
		},
	}

	for _, item := range items {
		if err := db.AddListing(item); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed listing %s: %v\n", item.ID, err)
		}
	}
}

// auctionOptions reads competitor bidder overrides from env
func auctionOptions() []auction.Option {
	var opts []auction.Option

	if v := os.Getenv("SNIPER_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			opts = append(opts, auction.WithCounterBidDelay(time.Duration(ms)*time.Millisecond))
		}
	}

	if v := os.Getenv("SNIPER_PROBABILITY"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			if p <= 0 {
				opts = append(opts, auction.WithCompetitorPolicy(auction.DisabledPolicy{}))
			} else {
				policy := auction.NewSniperPolicy()
				policy.Probability = p
				opts = append(opts, auction.WithCompetitorPolicy(policy))
			}
		}
	}

	return opts
}

// getPort returns the server port from env or defaults to ":8080"
func getPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return ":8080"
}
