// Package inventory implements the stock reservation protocol: the atomic
// validate-and-decrement used by both cart adds and checkout.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
	"github.com/matheusmosca/workout-gear-server/internal/store"
	"github.com/matheusmosca/workout-gear-server/pkg/metrics"
)

// DefaultMaxAttempts bounds the conditional-update retry loop. A reservation
// that loses the race this many times surfaces domain.ErrConflict instead of
// spinning.
const DefaultMaxAttempts = 5

// UseCase runs reservations against a product store. Correctness is
// delegated entirely to the store's conditional decrement; no in-process
// lock is held across store calls, so any number of server instances can
// share the same store.
type UseCase struct {
	products    store.ProductStore
	maxAttempts int
}

// New creates the reservation usecase. maxAttempts <= 0 selects
// DefaultMaxAttempts.
func New(products store.ProductStore, maxAttempts int) *UseCase {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &UseCase{
		products:    products,
		maxAttempts: maxAttempts,
	}
}

// Reserve validates qty against the product's current stock and decrements
// it atomically.
//
// The check and the mutation are a single conditional update: the decrement
// only happens if the stock still holds the value read in this attempt.
// Losing the conditional write to a concurrent reserver restarts the attempt
// from the read, up to the bounded retry budget.
//
// ProductNotFound and InsufficientStock are terminal for the requested
// quantity. ErrConflict after the budget is exhausted is transient and
// eligible for caller-level retry with backoff.
func (uc *UseCase) Reserve(ctx context.Context, productID string, qty int) (domain.Reservation, error) {
	tracer := otel.Tracer("inventory")
	ctx, span := tracer.Start(ctx, "Reserve")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", productID),
		attribute.Int("reservation.quantity", qty),
	)

	if qty <= 0 {
		return domain.Reservation{}, domain.ErrInvalidQuantity
	}

	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		p, err := uc.products.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				metrics.Reservations.WithLabelValues("not_found").Inc()
			} else {
				metrics.Reservations.WithLabelValues("error").Inc()
			}
			span.RecordError(err)
			return domain.Reservation{}, err
		}

		if qty > p.Stock {
			metrics.Reservations.WithLabelValues("insufficient").Inc()
			err := &domain.InsufficientStockError{
				ProductID: productID,
				Requested: qty,
				Available: p.Stock,
			}
			span.RecordError(err)
			return domain.Reservation{}, err
		}

		swapped, err := uc.products.CompareAndDecrementStock(ctx, productID, p.Stock, qty)
		if err != nil {
			metrics.Reservations.WithLabelValues("error").Inc()
			span.RecordError(err)
			return domain.Reservation{}, err
		}
		if swapped {
			metrics.Reservations.WithLabelValues("success").Inc()
			span.SetAttributes(attribute.Int("reservation.remaining", p.Stock-qty))
			return domain.Reservation{
				ProductID: productID,
				Name:      p.Name,
				UnitPrice: p.Price,
				Quantity:  qty,
				Remaining: p.Stock - qty,
			}, nil
		}

		// Lost the race: stock moved between the read and the conditional
		// write. Re-read and try again.
		metrics.Reservations.WithLabelValues("retry").Inc()
		slog.Debug("reservation lost conditional update, retrying",
			"product_id", productID, "attempt", attempt)
	}

	metrics.Reservations.WithLabelValues("conflict").Inc()
	err := fmt.Errorf("reserve product %s: %w (after %d attempts)", productID, domain.ErrConflict, uc.maxAttempts)
	span.RecordError(err)
	return domain.Reservation{}, err
}
