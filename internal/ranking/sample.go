package ranking

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/temcen/storefront/pkg/models"
)

// SampleRanker serves a fixed sample catalog regardless of query or user. It stands in
// for the ranking service when none is configured.
type SampleRanker struct{}

func NewSampleRanker() *SampleRanker {
	return &SampleRanker{}
}

func (r *SampleRanker) Rank(_ context.Context, _ string, _ int64) ([]models.Product, error) {
	return SampleProducts(), nil
}

// SampleProducts returns a fresh copy of the sample catalog.
func SampleProducts() []models.Product {
	return []models.Product{
		{
			ID:            1001,
			Category1:     "Electronics",
			Category2:     "Phones",
			Category3:     "Smartphones",
			Title:         "iPhone 13 Pro Max",
			ProductRating: 4.5,
			SellerName:    "Apple Store",
			SellerRating:  4.8,
			Description:   "Latest iPhone model with advanced features",
			Highlights:    models.StringList{"5G ready", "A15 chip", "Pro camera system"},
			ImageLinks:    models.StringList{"https://example.com/iphone.jpg"},
			MRP:           decimal.NewFromInt(149999),
			SellingPrice:  decimal.NewFromInt(139999),
		},
		{
			ID:            1002,
			Category1:     "Fashion",
			Category2:     "Clothing",
			Category3:     "Traditional",
			Title:         "Designer Wedding Saree",
			ProductRating: 4.8,
			SellerName:    "Fashion Hub",
			SellerRating:  4.6,
			Description:   "Beautiful wedding saree with intricate designs",
			Highlights:    models.StringList{"Pure silk", "Handcrafted", "Designer piece"},
			ImageLinks:    models.StringList{"https://example.com/saree.jpg"},
			MRP:           decimal.NewFromInt(25999),
			SellingPrice:  decimal.NewFromInt(19999),
		},
		{
			ID:            1003,
			Category1:     "Fashion",
			Category2:     "Footwear",
			Category3:     "Casual",
			Title:         "Comfortable Running Shoes",
			ProductRating: 4.3,
			SellerName:    "SportsZone",
			SellerRating:  4.4,
			Description:   "Professional running shoes for athletes",
			Highlights:    models.StringList{"Cushioned sole", "Breathable mesh", "Durable"},
			ImageLinks:    models.StringList{"https://example.com/shoes.jpg"},
			MRP:           decimal.NewFromInt(8999),
			SellingPrice:  decimal.NewFromInt(6999),
		},
		{
			ID:            1004,
			Category1:     "Electronics",
			Category2:     "Laptops",
			Category3:     "Gaming",
			Title:         "Gaming Laptop Pro",
			ProductRating: 4.6,
			SellerName:    "TechMart",
			SellerRating:  4.7,
			Description:   "High-performance gaming laptop",
			Highlights:    models.StringList{"RTX 4080", "32GB RAM", "1TB SSD"},
			ImageLinks:    models.StringList{"https://example.com/laptop.jpg"},
			MRP:           decimal.NewFromInt(189999),
			SellingPrice:  decimal.NewFromInt(169999),
		},
	}
}
