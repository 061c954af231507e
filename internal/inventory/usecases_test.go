package inventory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
	"github.com/matheusmosca/workout-gear-server/internal/store/memory"
)

func seedProduct(t *testing.T, s *memory.Store, id string, stock int) {
	t.Helper()
	err := s.CreateProduct(context.Background(), domain.Product{
		ID:        id,
		Name:      "Resistance Band",
		Category:  "bands",
		Price:     decimal.RequireFromString("19.90"),
		Stock:     stock,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestReserveSuccess(t *testing.T) {
	// Arrange
	ctx := context.Background()
	st := memory.New()
	seedProduct(t, st, "p1", 10)
	uc := New(st, 0)

	// Act
	res, err := uc.Reserve(ctx, "p1", 4)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, res.Quantity)
	assert.Equal(t, 6, res.Remaining)
	assert.Equal(t, "Resistance Band", res.Name)

	p, err := st.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 6, p.Stock)
}

func TestReserveInsufficientStockIsTerminal(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedProduct(t, st, "p1", 3)
	uc := New(st, 0)

	_, err := uc.Reserve(ctx, "p1", 5)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 5, insufficient.Requested)

	// No mutation on failure.
	p, err := st.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestReserveDrainsToZeroThenRefuses(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedProduct(t, st, "p1", 5)
	uc := New(st, 0)

	res, err := uc.Reserve(ctx, "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Remaining)

	_, err = uc.Reserve(ctx, "p1", 1)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 0, insufficient.Available)
}

func TestReserveUnknownProduct(t *testing.T) {
	st := memory.New()
	uc := New(st, 0)

	_, err := uc.Reserve(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	st := memory.New()
	seedProduct(t, st, "p1", 5)
	uc := New(st, 0)

	for _, qty := range []int{0, -3} {
		_, err := uc.Reserve(context.Background(), "p1", qty)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
}

func TestReserveRetriesAfterLostRace(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedProduct(t, st, "p1", 10)
	uc := New(st, 0)

	// Interleave one competing restock between the read and the conditional
	// write: the first attempt must fail and the second must succeed against
	// the re-read value.
	fired := false
	st.BeforeDecrement = func() {
		if fired {
			return
		}
		fired = true
		stock := 8
		_, err := st.UpdateProduct(ctx, "p1", domain.ProductPatch{Stock: &stock})
		require.NoError(t, err)
	}

	res, err := uc.Reserve(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Remaining)
}

func TestReserveConflictAfterRetryBudget(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedProduct(t, st, "p1", 50)
	uc := New(st, 3)

	// A competing writer wins every race: the stock value at write time
	// never matches the value read.
	next := 100
	st.BeforeDecrement = func() {
		stock := next
		next++
		_, err := st.UpdateProduct(ctx, "p1", domain.ProductPatch{Stock: &stock})
		require.NoError(t, err)
	}

	_, err := uc.Reserve(ctx, "p1", 2)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReserveSurfacesStoreFailure(t *testing.T) {
	st := memory.New()
	seedProduct(t, st, "p1", 5)
	st.FailWith(errors.New("connection reset"))
	uc := New(st, 0)

	_, err := uc.Reserve(context.Background(), "p1", 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

// Given more concurrent demand than stock, the aggregate of successful
// decrements must equal the initial stock exactly; everyone else must see an
// insufficient-stock failure and the stock must never go negative.
func TestReserveConcurrentDemandNeverOversells(t *testing.T) {
	const (
		initialStock = 100
		callers      = 150
	)

	ctx := context.Background()
	st := memory.New()
	seedProduct(t, st, "p1", initialStock)
	// A generous retry budget so lost races resolve to a terminal outcome
	// rather than a conflict; every CAS failure implies another caller
	// progressed.
	uc := New(st, 2*callers)

	var success, insufficient atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			_, err := uc.Reserve(gctx, "p1", 1)
			if err == nil {
				success.Add(1)
				return nil
			}
			var ins *domain.InsufficientStockError
			if errors.As(err, &ins) {
				insufficient.Add(1)
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(initialStock), success.Load())
	assert.Equal(t, int64(callers-initialStock), insufficient.Load())

	p, err := st.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.GreaterOrEqual(t, p.Stock, 0)
}
