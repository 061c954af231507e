// Package httpapi is the thin HTTP surface over the core usecases: routing,
// input shape validation and error-to-status mapping only.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/matheusmosca/workout-gear-server/pkg/metrics"
)

// NewRouter assembles the gin engine with tracing, metrics and all routes.
func NewRouter(serviceName string, h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(observe())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Workout Gear Server!")
	})
	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/products", h.ListProducts)
		api.POST("/products", h.CreateProduct)
		api.GET("/products/:id", h.GetProduct)
		api.PATCH("/products/:id", h.UpdateProduct)
		api.DELETE("/products/:id", h.DeleteProduct)

		api.GET("/carts/:cartID", h.GetCart)
		api.POST("/carts/:cartID/items", h.AddToCart)

		api.POST("/checkout", h.Checkout)
		api.GET("/orders/:id", h.GetOrder)
	}

	return r
}
