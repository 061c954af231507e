package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record. Stock is the only field mutated outside of
// catalog management, and only through the reservation protocol.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description,omitempty"`
	Images      []string        `json:"images,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductPatch is a partial update of a product. Nil fields are left
// untouched; a non-nil Stock is a catalog-management restock, not a
// reservation.
type ProductPatch struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Description *string          `json:"description"`
	Images      *[]string        `json:"images"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil &&
		p.Stock == nil && p.Description == nil && p.Images == nil
}

// SortOrder selects the result ordering of a catalog query.
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

// ProductFilter describes a catalog query. All present predicates are ANDed
// together. Nil price bounds mean unbounded on that side.
type ProductFilter struct {
	Search     string
	Categories []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       SortOrder
}

// Validate rejects filters whose numeric bounds cannot describe any result
// set. A valid filter may still match nothing.
func (f ProductFilter) Validate() error {
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return &InvalidFilterError{Reason: "min price must not be negative"}
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return &InvalidFilterError{Reason: "max price must not be negative"}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return &InvalidFilterError{Reason: "min price greater than max price"}
	}
	switch f.Sort {
	case SortNone, SortPriceAsc, SortPriceDesc:
	default:
		return &InvalidFilterError{Reason: "unknown sort order"}
	}
	return nil
}

// Reservation is the outcome of a successful stock reservation.
type Reservation struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Remaining int             `json:"remaining"`
}
