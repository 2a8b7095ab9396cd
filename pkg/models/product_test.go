package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStringList(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      []string
		malformed bool
	}{
		{name: "array", raw: `["Cushioned sole", "Durable"]`, want: []string{"Cushioned sole", "Durable"}},
		{name: "empty string", raw: "", want: []string{}},
		{name: "whitespace", raw: "   ", want: []string{}},
		{name: "null", raw: "null", want: []string{}},
		{name: "empty array", raw: "[]", want: []string{}},
		{name: "truncated", raw: `["a", `, want: []string{}, malformed: true},
		{name: "not an array", raw: `{"a": 1}`, want: []string{}, malformed: true},
		{name: "wrong element type", raw: `[1, 2]`, want: []string{}, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeStringList(tt.raw)

			assert.Equal(t, tt.want, got)
			if tt.malformed {
				var malformed *MalformedFieldError
				require.True(t, errors.As(err, &malformed))
				assert.Equal(t, tt.raw, malformed.Raw)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStringList_UnmarshalJSON(t *testing.T) {
	var p struct {
		Highlights StringList `json:"highlights"`
		ImageLinks StringList `json:"image_links"`
		Missing    StringList `json:"missing"`
	}

	err := json.Unmarshal([]byte(`{"highlights": "[\"A15 Bionic\"]", "image_links": "not json"}`), &p)

	require.NoError(t, err)
	assert.Equal(t, StringList{"A15 Bionic"}, p.Highlights)
	assert.Equal(t, StringList{}, p.ImageLinks)

	encoded, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"highlights": ["A15 Bionic"], "image_links": [], "missing": []}`, string(encoded))
}

func TestProduct_DisplayHelpers(t *testing.T) {
	p := Product{
		ID:           1003,
		Category1:    "Fashion",
		Category2:    "Footwear",
		Category3:    "Sports Shoes",
		Title:        "Comfortable Running Shoes",
		ImageLinks:   StringList{"https://example.com/shoes.jpg", "https://example.com/side.jpg"},
		MRP:          decimal.NewFromInt(8999),
		SellingPrice: decimal.NewFromInt(6999),
	}

	assert.Equal(t, "Fashion > Footwear > Sports Shoes", p.CategoryPath())
	assert.Equal(t, "Comfortable...", p.ShortTitle(11))
	assert.Equal(t, "Comfortable Running Shoes", p.ShortTitle(50))
	assert.Equal(t, int64(22), p.DiscountPercent())

	image, ok := p.PrimaryImage()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/shoes.jpg", image)

	p.Category2 = ""
	assert.Equal(t, "Fashion > Sports Shoes", p.CategoryPath())
}

func TestProduct_EdgeCases(t *testing.T) {
	p := Product{Title: "Saree साड़ी"}

	assert.Equal(t, "Saree सा...", p.ShortTitle(8), "truncation counts runes")
	assert.Equal(t, int64(0), p.DiscountPercent(), "zero MRP has no discount")

	_, ok := p.PrimaryImage()
	assert.False(t, ok)

	p.MRP = decimal.NewFromInt(100)
	p.SellingPrice = decimal.NewFromInt(120)
	assert.Equal(t, int64(0), p.DiscountPercent())
}

func TestFormatter(t *testing.T) {
	tests := []struct {
		currency string
		amount   decimal.Decimal
		want     string
	}{
		{currency: "INR", amount: decimal.NewFromInt(139999), want: "₹139,999.00"},
		{currency: "usd", amount: decimal.RequireFromString("19.5"), want: "$19.50"},
		{currency: "CHF", amount: decimal.NewFromInt(5), want: "CHF 5.00"},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFormatter(tt.currency).Money(tt.amount))
		})
	}
}

func TestFormatter_View(t *testing.T) {
	p := Product{
		ID:           1001,
		Title:        "iPhone 13 Pro Max",
		MRP:          decimal.NewFromInt(149999),
		SellingPrice: decimal.NewFromInt(139999),
	}

	view := NewFormatter("INR").View(p, 6)

	assert.Equal(t, "iPhone...", view.ShortTitle)
	assert.Equal(t, "₹149,999.00", view.DisplayMRP)
	assert.Equal(t, "₹139,999.00", view.DisplayPrice)
	assert.Equal(t, int64(6), view.DiscountPercent)
	assert.Empty(t, view.PrimaryImage)
	assert.Equal(t, p.ID, view.ID)
}
