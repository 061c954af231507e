package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/matheusmosca/workout-gear-server/internal/cart"
	"github.com/matheusmosca/workout-gear-server/internal/catalog"
	"github.com/matheusmosca/workout-gear-server/internal/checkout"
	"github.com/matheusmosca/workout-gear-server/internal/domain"
)

// Handlers holds the usecases behind the HTTP surface.
type Handlers struct {
	catalog  *catalog.UseCase
	cart     *cart.UseCase
	checkout *checkout.UseCase
}

// NewHandlers wires the usecases into the HTTP layer.
func NewHandlers(cat *catalog.UseCase, crt *cart.UseCase, chk *checkout.UseCase) *Handlers {
	return &Handlers{
		catalog:  cat,
		cart:     crt,
		checkout: chk,
	}
}

// ListProducts handles the filtered catalog query.
func (h *Handlers) ListProducts(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	products, err := h.catalog.FindProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

// parseFilter reads the query parameters into a domain filter. Malformed
// numeric bounds are an InvalidFilter error, not a store failure.
func parseFilter(c *gin.Context) (domain.ProductFilter, error) {
	f := domain.ProductFilter{
		Search: c.Query("search"),
	}
	if raw := c.Query("categories"); raw != "" {
		for _, cat := range strings.Split(raw, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				f.Categories = append(f.Categories, cat)
			}
		}
	}
	if raw := c.Query("min_price"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.ProductFilter{}, &domain.InvalidFilterError{Reason: "malformed min_price"}
		}
		f.MinPrice = &min
	}
	if raw := c.Query("max_price"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.ProductFilter{}, &domain.InvalidFilterError{Reason: "malformed max_price"}
		}
		f.MaxPrice = &max
	}
	f.Sort = domain.SortOrder(c.Query("sort"))
	return f, nil
}

// GetProduct handles the single-product lookup.
func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type createProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category"`
	Price       string   `json:"price" binding:"required"`
	Stock       int      `json:"stock"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// CreateProduct handles catalog-management creation.
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed price"})
		return
	}

	p, err := h.catalog.CreateProduct(c.Request.Context(), catalog.CreateProductInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       price,
		Stock:       req.Stock,
		Description: req.Description,
		Images:      req.Images,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type updateProductRequest struct {
	Name        *string   `json:"name"`
	Category    *string   `json:"category"`
	Price       *string   `json:"price"`
	Stock       *int      `json:"stock"`
	Description *string   `json:"description"`
	Images      *[]string `json:"images"`
}

// UpdateProduct handles the partial update: only fields present in the body
// are applied.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := domain.ProductPatch{
		Name:        req.Name,
		Category:    req.Category,
		Stock:       req.Stock,
		Description: req.Description,
		Images:      req.Images,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed price"})
			return
		}
		patch.Price = &price
	}

	p, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProduct handles catalog-management deletion.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	p, err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type addToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// AddToCart handles cart additions. The reservation happens before any cart
// mutation, so a failure here leaves both stock and cart untouched.
func (h *Handlers) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := h.cart.AddToCart(c.Request.Context(), c.Param("cartID"), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

// GetCart returns the aggregated cart lines.
func (h *Handlers) GetCart(c *gin.Context) {
	lines, err := h.cart.GetCart(c.Request.Context(), c.Param("cartID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cart_id": c.Param("cartID"),
		"lines":   lines,
	})
}

type checkoutRequest struct {
	Lines []domain.CheckoutLine `json:"lines" binding:"required"`
}

// Checkout handles the multi-line checkout call.
func (h *Handlers) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.checkout.Checkout(c.Request.Context(), req.Lines)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOrder returns a placed order.
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.checkout.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// HealthCheck is the liveness endpoint.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
