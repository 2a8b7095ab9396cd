package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Product is one catalog item as returned by the ranking service or the catalog store.
// Instances are read-only once built.
type Product struct {
	ID            int64           `json:"product_id" db:"product_id"`
	Category1     string          `json:"category_1" db:"category_1"`
	Category2     string          `json:"category_2" db:"category_2"`
	Category3     string          `json:"category_3" db:"category_3"`
	Title         string          `json:"title" db:"title"`
	ProductRating float64         `json:"product_rating" db:"product_rating"`
	SellerName    string          `json:"seller_name" db:"seller_name"`
	SellerRating  float64         `json:"seller_rating" db:"seller_rating"`
	Description   string          `json:"description" db:"description"`
	Highlights    StringList      `json:"highlights" db:"highlights"`
	ImageLinks    StringList      `json:"image_links" db:"image_links"`
	MRP           decimal.Decimal `json:"mrp" db:"mrp"`
	SellingPrice  decimal.Decimal `json:"selling_price" db:"selling_price"`
}

// CategoryPath joins the three category levels for display.
func (p Product) CategoryPath() string {
	levels := make([]string, 0, 3)
	for _, level := range []string{p.Category1, p.Category2, p.Category3} {
		if level != "" {
			levels = append(levels, level)
		}
	}
	return strings.Join(levels, " > ")
}

// ShortTitle truncates the title to n runes and appends an ellipsis.
func (p Product) ShortTitle(n int) string {
	if n <= 0 || utf8.RuneCountInString(p.Title) <= n {
		return p.Title
	}
	runes := []rune(p.Title)
	return string(runes[:n]) + "..."
}

// PrimaryImage returns the first image link, if any.
func (p Product) PrimaryImage() (string, bool) {
	if len(p.ImageLinks) == 0 {
		return "", false
	}
	return p.ImageLinks[0], true
}

// DiscountPercent is the whole-number percentage taken off the MRP.
func (p Product) DiscountPercent() int64 {
	if !p.MRP.IsPositive() || p.SellingPrice.GreaterThanOrEqual(p.MRP) {
		return 0
	}
	return p.MRP.Sub(p.SellingPrice).Div(p.MRP).Mul(decimal.NewFromInt(100)).Floor().IntPart()
}

// Formatter renders monetary display fields for a locale and currency.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// NewFormatter builds a formatter for an ISO 4217 currency code. Codes without a known
// symbol are rendered as the code followed by a space.
func NewFormatter(currencyCode string) *Formatter {
	symbol := strings.ToUpper(currencyCode) + " "
	if unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(currencyCode))); err == nil {
		if known, ok := currencySymbols[unit.String()]; ok {
			symbol = known
		} else {
			symbol = unit.String() + " "
		}
	}
	return &Formatter{
		printer: message.NewPrinter(language.English),
		symbol:  symbol,
	}
}

// Money formats an amount with digit grouping and two decimals.
func (f *Formatter) Money(amount decimal.Decimal) string {
	value, _ := amount.Round(2).Float64()
	return f.symbol + f.printer.Sprintf("%.2f", value)
}

// ProductView is a product plus the derived fields a card or detail page shows.
type ProductView struct {
	Product
	ShortTitle      string `json:"short_title"`
	CategoryPath    string `json:"category_path"`
	DisplayMRP      string `json:"display_mrp"`
	DisplayPrice    string `json:"display_price"`
	PrimaryImage    string `json:"primary_image,omitempty"`
	DiscountPercent int64  `json:"discount_percent"`
}

// View derives the display fields of p.
func (f *Formatter) View(p Product, titleLength int) ProductView {
	image, _ := p.PrimaryImage()
	return ProductView{
		Product:         p,
		ShortTitle:      p.ShortTitle(titleLength),
		CategoryPath:    p.CategoryPath(),
		DisplayMRP:      f.Money(p.MRP),
		DisplayPrice:    f.Money(p.SellingPrice),
		PrimaryImage:    image,
		DiscountPercent: p.DiscountPercent(),
	}
}

// MalformedFieldError reports a list-valued product field that could not be decoded.
type MalformedFieldError struct {
	Raw string
	Err error
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("malformed product list field %q: %v", e.Raw, e.Err)
}

func (e *MalformedFieldError) Unwrap() error {
	return e.Err
}

// DecodeStringList parses a JSON-encoded list of strings as stored in the catalog.
// Empty input and JSON null yield an empty list with no error. Anything else that is not
// a JSON array of strings yields an empty list and a *MalformedFieldError.
func DecodeStringList(raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return []string{}, nil
	}

	var values []string
	if err := json.Unmarshal([]byte(trimmed), &values); err != nil {
		return []string{}, &MalformedFieldError{Raw: raw, Err: err}
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// CheckStringList reports the *MalformedFieldError that StringList decoding turns into an
// empty list, so callers that decode JSON payloads can still log it.
func CheckStringList(data []byte) error {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		_, err = DecodeStringList(encoded)
		return err
	}
	_, err := DecodeStringList(string(data))
	return err
}

// StringList is a list field that accepts either a JSON array or a JSON string holding
// an encoded array. Malformed content decodes to an empty list; see CheckStringList.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		values, _ := DecodeStringList(encoded)
		*l = values
		return nil
	}

	values, err := DecodeStringList(string(data))
	var malformed *MalformedFieldError
	if err != nil && !errors.As(err, &malformed) {
		return err
	}
	*l = values
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}
