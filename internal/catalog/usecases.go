// Package catalog implements the product query engine and the
// catalog-management operations.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
	"github.com/matheusmosca/workout-gear-server/internal/store"
)

// UseCase exposes catalog queries and management calls over a product store.
type UseCase struct {
	products store.ProductStore
}

// New creates the catalog usecase.
func New(products store.ProductStore) *UseCase {
	return &UseCase{products: products}
}

// FindProducts translates the filter into a store lookup. All present
// predicates are ANDed; an empty result is a valid outcome, not an error.
func (uc *UseCase) FindProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	tracer := otel.Tracer("catalog")
	ctx, span := tracer.Start(ctx, "FindProducts")
	defer span.End()

	if err := f.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	products, err := uc.products.ListProducts(ctx, f)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.result_count", len(products)))
	return products, nil
}

// GetProduct looks up a single product by id.
func (uc *UseCase) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return uc.products.GetProduct(ctx, id)
}

// CreateProductInput carries the fields of a new catalog record.
type CreateProductInput struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Description string
	Images      []string
}

// CreateProduct assigns an id and persists the record. Field-shape
// validation beyond the basics is the caller's concern.
func (uc *UseCase) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Product{}, fmt.Errorf("%w: product name must not be empty", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if in.Stock < 0 {
		return domain.Product{}, fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
		Images:      in.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.products.CreateProduct(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// UpdateProduct applies only the fields present on the patch. A patch with a
// Stock field is a catalog-management restock.
func (uc *UseCase) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	if patch.Price != nil && patch.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return domain.Product{}, fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidInput)
	}
	if patch.IsEmpty() {
		return uc.products.GetProduct(ctx, id)
	}
	return uc.products.UpdateProduct(ctx, id, patch)
}

// DeleteProduct removes the product and returns its last state.
func (uc *UseCase) DeleteProduct(ctx context.Context, id string) (domain.Product, error) {
	return uc.products.DeleteProduct(ctx, id)
}
