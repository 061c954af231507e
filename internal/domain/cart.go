package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one aggregated cart entry: the cumulative quantity requested
// for a single product. Name and Price are snapshots taken when the line was
// created or last merged, deliberately decoupled from the live product.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CheckoutLine is one requested line of a checkout call.
type CheckoutLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderLine is a priced line of a placed order.
type OrderLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Order is the record written after every line of a checkout reserved
// successfully.
type Order struct {
	ID        string          `json:"id"`
	Lines     []OrderLine     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}
