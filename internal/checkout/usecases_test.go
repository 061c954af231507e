package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
	"github.com/matheusmosca/workout-gear-server/internal/inventory"
	"github.com/matheusmosca/workout-gear-server/internal/store/memory"
)

type capturingPublisher struct {
	published []domain.Order
	err       error
}

func (p *capturingPublisher) PublishOrderPlaced(_ context.Context, order domain.Order) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, order)
	return nil
}

func newFixture(t *testing.T, pub *capturingPublisher) (*UseCase, *memory.Store) {
	t.Helper()
	st := memory.New()
	now := time.Now().UTC()
	for _, p := range []domain.Product{
		{ID: "A", Name: "Dumbbell Pair", Category: "weights", Price: decimal.RequireFromString("50.00"), Stock: 5},
		{ID: "B", Name: "Jump Rope", Category: "cardio", Price: decimal.RequireFromString("12.50"), Stock: 10},
	} {
		p.CreatedAt, p.UpdatedAt = now, now
		require.NoError(t, st.CreateProduct(context.Background(), p))
	}
	return New(inventory.New(st, 0), st, pub), st
}

func TestCheckoutAllLinesSucceed(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{}
	uc, st := newFixture(t, pub)

	order, err := uc.Checkout(ctx, []domain.CheckoutLine{
		{ProductID: "A", Quantity: 2},
		{ProductID: "B", Quantity: 4},
	})
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	assert.NotEmpty(t, order.ID)

	// total = 2*50 + 4*12.50 = 150
	assert.True(t, order.Total.Equal(decimal.RequireFromString("150.00")),
		"expected total 150.00, got %s", order.Total)

	// stock decremented per line
	a, _ := st.GetProduct(ctx, "A")
	b, _ := st.GetProduct(ctx, "B")
	assert.Equal(t, 3, a.Stock)
	assert.Equal(t, 6, b.Stock)

	// order persisted and event published
	stored, err := uc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
	require.Len(t, pub.published, 1)
	assert.Equal(t, order.ID, pub.published[0].ID)
}

func TestCheckoutFirstFailureStopsWithoutRollback(t *testing.T) {
	// Lines [{A,2},{B,100}] where B has only 10: A's decrement stands, B's
	// failure is reported with its available quantity, no compensation runs.
	ctx := context.Background()
	pub := &capturingPublisher{}
	uc, st := newFixture(t, pub)

	_, err := uc.Checkout(ctx, []domain.CheckoutLine{
		{ProductID: "A", Quantity: 2},
		{ProductID: "B", Quantity: 100},
	})

	var checkoutErr *domain.CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, 1, checkoutErr.LineIndex)
	assert.Equal(t, "B", checkoutErr.ProductID)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Available)

	a, _ := st.GetProduct(ctx, "A")
	b, _ := st.GetProduct(ctx, "B")
	assert.Equal(t, 3, a.Stock, "line A's decrement must NOT be rolled back")
	assert.Equal(t, 10, b.Stock, "line B must be untouched")

	assert.Empty(t, pub.published, "no event for a failed checkout")
}

func TestCheckoutStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	uc, st := newFixture(t, &capturingPublisher{})

	_, err := uc.Checkout(ctx, []domain.CheckoutLine{
		{ProductID: "ghost", Quantity: 1},
		{ProductID: "A", Quantity: 2},
	})

	var checkoutErr *domain.CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, 0, checkoutErr.LineIndex)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	// Lines after the failure are never processed.
	a, _ := st.GetProduct(ctx, "A")
	assert.Equal(t, 5, a.Stock)
}

func TestCheckoutEmptyLines(t *testing.T) {
	uc, _ := newFixture(t, &capturingPublisher{})

	_, err := uc.Checkout(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCheckout)
}

func TestCheckoutPublishFailureDoesNotFailTheOrder(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{err: errors.New("broker down")}
	uc, _ := newFixture(t, pub)

	order, err := uc.Checkout(ctx, []domain.CheckoutLine{{ProductID: "A", Quantity: 1}})
	require.NoError(t, err)

	stored, err := uc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
}

func TestGetOrderUnknownID(t *testing.T) {
	uc, _ := newFixture(t, &capturingPublisher{})

	_, err := uc.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
