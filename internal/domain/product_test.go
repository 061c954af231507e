package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestProductFilterValidate(t *testing.T) {
	cases := []struct {
		name    string
		filter  ProductFilter
		wantErr bool
	}{
		{"empty filter", ProductFilter{}, false},
		{"both bounds ordered", ProductFilter{MinPrice: decp("10"), MaxPrice: decp("50")}, false},
		{"equal bounds", ProductFilter{MinPrice: decp("10"), MaxPrice: decp("10")}, false},
		{"one-sided min", ProductFilter{MinPrice: decp("10")}, false},
		{"one-sided max", ProductFilter{MaxPrice: decp("50")}, false},
		{"inverted bounds", ProductFilter{MinPrice: decp("50"), MaxPrice: decp("10")}, true},
		{"negative min", ProductFilter{MinPrice: decp("-1")}, true},
		{"negative max", ProductFilter{MaxPrice: decp("-1")}, true},
		{"valid sort asc", ProductFilter{Sort: SortPriceAsc}, false},
		{"valid sort desc", ProductFilter{Sort: SortPriceDesc}, false},
		{"unknown sort", ProductFilter{Sort: SortOrder("alphabetical")}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected an error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
			if tc.wantErr {
				var invalid *InvalidFilterError
				if !errors.As(err, &invalid) {
					t.Errorf("expected InvalidFilterError, got %T", err)
				}
			}
		})
	}
}

func TestInsufficientStockErrorCarriesContext(t *testing.T) {
	err := error(&InsufficientStockError{ProductID: "p1", Requested: 7, Available: 3})

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("errors.As failed for %T", err)
	}
	if insufficient.Available != 3 {
		t.Errorf("expected available 3, got %d", insufficient.Available)
	}
	if insufficient.ProductID != "p1" {
		t.Errorf("expected product p1, got %s", insufficient.ProductID)
	}
}

func TestCheckoutErrorUnwrapsCause(t *testing.T) {
	cause := &InsufficientStockError{ProductID: "p2", Requested: 100, Available: 10}
	err := error(&CheckoutError{LineIndex: 1, ProductID: "p2", Quantity: 100, Err: cause})

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatal("expected checkout error to unwrap to its cause")
	}
	if insufficient.Available != 10 {
		t.Errorf("expected available 10, got %d", insufficient.Available)
	}
}

func TestProductPatchIsEmpty(t *testing.T) {
	if !(ProductPatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
	stock := 5
	if (ProductPatch{Stock: &stock}).IsEmpty() {
		t.Error("patch with stock should not be empty")
	}
}
