package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
)

// respondError maps the core error taxonomy onto HTTP statuses in one place.
// Anything outside the taxonomy is treated as a storage failure.
func respondError(c *gin.Context, err error) {
	var insufficient *domain.InsufficientStockError
	var invalidFilter *domain.InvalidFilterError
	var checkoutErr *domain.CheckoutError

	// Checkout failures keep the line context and propagate the underlying
	// error's status code.
	if errors.As(err, &checkoutErr) {
		status := statusFor(checkoutErr.Err)
		body := gin.H{
			"error":      checkoutErr.Error(),
			"line_index": checkoutErr.LineIndex,
			"product_id": checkoutErr.ProductID,
			"quantity":   checkoutErr.Quantity,
		}
		if errors.As(checkoutErr.Err, &insufficient) {
			body["available"] = insufficient.Available
		}
		c.JSON(status, body)
		return
	}

	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      insufficient.Error(),
			"product_id": insufficient.ProductID,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
	case errors.As(err, &invalidFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidFilter.Error()})
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptyCheckout),
		errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	}
}

func statusFor(err error) int {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient),
		errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}
