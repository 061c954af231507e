// Package store defines the persistence contracts consumed by the usecases.
// Every usecase receives an explicit store handle; there is no package-level
// connection.
package store

import (
	"context"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
)

// ProductStore persists catalog records. CompareAndDecrementStock is the
// primitive the whole reservation protocol hangs on: it must decrement
// atomically with respect to all other callers, conditioned on the stock
// still holding the observed value at write time.
type ProductStore interface {
	CreateProduct(ctx context.Context, p domain.Product) error
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	// UpdateProduct applies only the non-nil fields of the patch and returns
	// the resulting product.
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error)
	// DeleteProduct removes the product and returns its last state.
	DeleteProduct(ctx context.Context, id string) (domain.Product, error)
	// CompareAndDecrementStock subtracts qty from the product's stock only if
	// the stock still equals observed. It reports whether the swap happened;
	// false with a nil error means the caller lost the race (or the product
	// vanished) and should re-read.
	CompareAndDecrementStock(ctx context.Context, id string, observed, qty int) (bool, error)
}

// CartStore persists server-side carts keyed by a caller-supplied cart id.
type CartStore interface {
	GetCart(ctx context.Context, cartID string) ([]domain.CartLine, error)
	// UpsertCartLine merges the line into the cart: an existing line for the
	// same product has its quantity summed and its name/price snapshot
	// refreshed; otherwise the line is inserted as given. Returns the
	// post-merge line.
	UpsertCartLine(ctx context.Context, cartID string, line domain.CartLine) (domain.CartLine, error)
}

// OrderStore persists placed orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, o domain.Order) error
	GetOrder(ctx context.Context, id string) (domain.Order, error)
}

// Store is the full contract a storage driver implements.
type Store interface {
	ProductStore
	CartStore
	OrderStore
}
