package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/product-catalog/internal/domain/product"
)

const (
	maxBodyBytes = 1 << 20

	msgBadRequest     = "Bad request"
	msgNotFound       = "Not found"
	msgInternalServer = "Internal server error"
)

// CreateProduct handles POST /products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, http.StatusBadRequest, msgBadRequest, errors.Wrap(err, "read body").Error())
		return
	}
	in, err := DecodeCreateInput(jx.DecodeBytes(body))
	if err != nil {
		WriteError(w, http.StatusBadRequest, msgBadRequest, errors.Wrap(err, "decode body").Error())
		return
	}

	p, err := h.products.Create(ctx, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.created.Add(ctx, 1, metric.WithAttributes(attribute.Int("languages", len(in.Name))))

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeCreated(e, p) })
}

// FindProducts handles GET /products. Pagination metadata is returned in the
// X-Total-Count, X-Page and X-Page-Limit headers.
func (h *Handler) FindProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	q, err := product.ParseSearchQuery(query.Get("name"), query.Get("page"), query.Get("pageLimit"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.searches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("filtered", q.Name != "")))

	res, err := h.products.Find(ctx, q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(res.Total))
	w.Header().Set("X-Page", strconv.Itoa(res.Page))
	w.Header().Set("X-Page-Limit", strconv.Itoa(res.PageLimit))
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeViews(e, res.Data) })
}

// DeleteProduct handles DELETE /products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		WriteError(w, http.StatusBadRequest, msgBadRequest, fmt.Sprintf("invalid product id %q", raw))
		return
	}

	if err := h.products.Delete(ctx, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.deleted.Add(ctx, 1)

	msg := fmt.Sprintf("Product with ID %d has been deleted successfully", id)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeMessage(e, msg) })
}

// writeServiceError maps domain errors to HTTP responses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr  *product.ValidationError
		nfErr *product.NotFoundError
	)
	switch {
	case errors.As(err, &vErr):
		WriteError(w, http.StatusBadRequest, msgBadRequest, vErr.Error())
	case errors.As(err, &nfErr):
		WriteError(w, http.StatusNotFound, msgNotFound, nfErr.Error())
	default:
		zctx.From(r.Context()).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		WriteError(w, http.StatusInternalServerError, msgInternalServer, err.Error())
	}
}
