// Package cart implements the cart aggregator: per-product line merging
// gated on a successful stock reservation.
package cart

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
	"github.com/matheusmosca/workout-gear-server/internal/store"
)

// Reserver is the slice of the reservation protocol the aggregator needs.
type Reserver interface {
	Reserve(ctx context.Context, productID string, qty int) (domain.Reservation, error)
}

// UseCase maintains per-cart line state. The cart is only mutated after the
// reservation succeeds, so it never holds a quantity the store cannot honor.
type UseCase struct {
	carts    store.CartStore
	reserver Reserver
}

// New creates the cart usecase.
func New(carts store.CartStore, reserver Reserver) *UseCase {
	return &UseCase{
		carts:    carts,
		reserver: reserver,
	}
}

// AddToCart reserves qty of the product and merges it into the cart.
// Repeated adds of the same product sum quantities into a single line; the
// name/price snapshot is refreshed on every merge. Returns the post-merge
// line.
func (uc *UseCase) AddToCart(ctx context.Context, cartID, productID string, qty int) (domain.CartLine, error) {
	tracer := otel.Tracer("cart")
	ctx, span := tracer.Start(ctx, "AddToCart")
	defer span.End()

	span.SetAttributes(
		attribute.String("cart.id", cartID),
		attribute.String("product.id", productID),
		attribute.Int("cart.quantity", qty),
	)

	if qty <= 0 {
		return domain.CartLine{}, domain.ErrInvalidQuantity
	}

	// Stock first. A failed reservation leaves the cart untouched.
	res, err := uc.reserver.Reserve(ctx, productID, qty)
	if err != nil {
		span.RecordError(err)
		return domain.CartLine{}, err
	}

	line, err := uc.carts.UpsertCartLine(ctx, cartID, domain.CartLine{
		ProductID: productID,
		Name:      res.Name,
		Price:     res.UnitPrice,
		Quantity:  qty,
	})
	if err != nil {
		span.RecordError(err)
		return domain.CartLine{}, err
	}
	return line, nil
}

// GetCart returns the aggregated cart lines. An unknown cart id is an empty
// cart, not an error.
func (uc *UseCase) GetCart(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	return uc.carts.GetCart(ctx, cartID)
}
