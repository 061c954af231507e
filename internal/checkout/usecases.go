// Package checkout orchestrates multi-line checkouts over the reservation
// protocol.
package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
	"github.com/matheusmosca/workout-gear-server/internal/events"
	"github.com/matheusmosca/workout-gear-server/internal/store"
)

// Reserver is the slice of the reservation protocol the orchestrator needs.
type Reserver interface {
	Reserve(ctx context.Context, productID string, qty int) (domain.Reservation, error)
}

// UseCase processes checkout lines in the order supplied. A checkout is NOT
// transactional across lines: the first failing line stops processing and
// earlier decrements stay applied. Each individual line's decrement is still
// atomic via the reservation protocol.
type UseCase struct {
	reserver  Reserver
	orders    store.OrderStore
	publisher events.Publisher
}

// New creates the checkout usecase. publisher may be events.NopPublisher{}.
func New(reserver Reserver, orders store.OrderStore, publisher events.Publisher) *UseCase {
	return &UseCase{
		reserver:  reserver,
		orders:    orders,
		publisher: publisher,
	}
}

// Checkout reserves every line, then persists an order record. Failures
// carry the failing line's index, product and quantity; decrements made by
// earlier lines of the same call are not rolled back.
func (uc *UseCase) Checkout(ctx context.Context, lines []domain.CheckoutLine) (domain.Order, error) {
	tracer := otel.Tracer("checkout")
	ctx, span := tracer.Start(ctx, "Checkout")
	defer span.End()

	span.SetAttributes(attribute.Int("checkout.line_count", len(lines)))

	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCheckout
	}

	orderLines := make([]domain.OrderLine, 0, len(lines))
	total := decimal.Zero
	for i, ln := range lines {
		res, err := uc.reserver.Reserve(ctx, ln.ProductID, ln.Quantity)
		if err != nil {
			span.RecordError(err)
			return domain.Order{}, &domain.CheckoutError{
				LineIndex: i,
				ProductID: ln.ProductID,
				Quantity:  ln.Quantity,
				Err:       err,
			}
		}
		orderLines = append(orderLines, domain.OrderLine{
			ProductID: res.ProductID,
			Name:      res.Name,
			UnitPrice: res.UnitPrice,
			Quantity:  res.Quantity,
		})
		total = total.Add(res.UnitPrice.Mul(decimal.NewFromInt(int64(res.Quantity))))
	}

	order := domain.Order{
		ID:        uuid.NewString(),
		Lines:     orderLines,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.orders.CreateOrder(ctx, order); err != nil {
		// Stock is already decremented; surfacing the store failure here is
		// the documented non-transactional behavior, never a false success.
		span.RecordError(err)
		return domain.Order{}, err
	}

	span.SetAttributes(attribute.String("order.id", order.ID))

	if err := uc.publisher.PublishOrderPlaced(ctx, order); err != nil {
		// Event delivery is best-effort; the order already stands.
		slog.Warn("failed to publish order.placed event", "order_id", order.ID, "error", err)
	}

	return order, nil
}

// GetOrder returns a placed order by id.
func (uc *UseCase) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return uc.orders.GetOrder(ctx, id)
}
