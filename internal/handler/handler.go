package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/product-catalog/internal/domain/product"
)

// ProductService is the subset of *product.Service used by the HTTP layer.
type ProductService interface {
	Create(ctx context.Context, in product.CreateInput) (*product.Product, error)
	Find(ctx context.Context, q product.SearchQuery) (*product.SearchResult, error)
	Delete(ctx context.Context, id int64) error
}

var _ ProductService = (*product.Service)(nil)

// Handler maps the product HTTP API onto the product service.
type Handler struct {
	products ProductService

	created  metric.Int64Counter
	deleted  metric.Int64Counter
	searches metric.Int64Counter
}

// NewHandler constructs a Handler and registers its counters on meter.
func NewHandler(products ProductService, meter metric.Meter) (*Handler, error) {
	h := &Handler{products: products}

	var err error
	if h.created, err = meter.Int64Counter("catalog.products.created",
		metric.WithDescription("Number of products created"),
	); err != nil {
		return nil, errors.Wrap(err, "products created counter")
	}
	if h.deleted, err = meter.Int64Counter("catalog.products.deleted",
		metric.WithDescription("Number of products deleted"),
	); err != nil {
		return nil, errors.Wrap(err, "products deleted counter")
	}
	if h.searches, err = meter.Int64Counter("catalog.products.searches",
		metric.WithDescription("Number of product search requests"),
	); err != nil {
		return nil, errors.Wrap(err, "product searches counter")
	}

	return h, nil
}

// Routes registers the product endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/products", h.CreateProduct)
	r.Get("/products", h.FindProducts)
	r.Delete("/products/{id}", h.DeleteProduct)
}

// Router returns a chi router serving only the product endpoints.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}
