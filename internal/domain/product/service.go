package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Service aggregates per-language translation rows into multilingual product
// views and keeps products and their translations consistent on write.
type Service struct {
	store  Store
	tracer trace.Tracer
}

// NewService creates a product Service backed by the given store.
func NewService(store Store, tracer trace.Tracer) *Service {
	return &Service{
		store:  store,
		tracer: tracer,
	}
}

// Create persists a product and one translation per language in a single
// transaction. Only the bare product is returned.
func (s *Service) Create(ctx context.Context, in CreateInput) (_ *Product, rerr error) {
	ctx, span := s.tracer.Start(ctx, "product.Create",
		trace.WithAttributes(attribute.Int("product.languages", len(in.Name))),
	)
	defer endSpan(span, &rerr)

	if err := in.Validate(); err != nil {
		return nil, err
	}
	translations := in.Translations()

	var created *Product
	err := s.store.InTx(ctx, func(ctx context.Context, repo Repository) error {
		p, err := repo.CreateProduct(ctx)
		if err != nil {
			return errors.Wrap(err, "create product")
		}
		if _, err := repo.CreateTranslations(ctx, p.ID, translations); err != nil {
			return errors.Wrapf(err, "create translations for product %d", p.ID)
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("product.id", created.ID))
	zctx.From(ctx).Debug("Product created",
		zap.Int64("product_id", created.ID),
		zap.Int("languages", len(translations)),
	)
	return created, nil
}

// Find returns the requested page of products having a translation whose name
// contains q.Name (case-insensitive). Pagination is applied over grouped
// products, and Total counts all matches.
func (s *Service) Find(ctx context.Context, q SearchQuery) (_ *SearchResult, rerr error) {
	ctx, span := s.tracer.Start(ctx, "product.Find",
		trace.WithAttributes(
			attribute.String("product.query", q.Name),
			attribute.Int("product.page", q.Page),
			attribute.Int("product.page_limit", q.PageLimit),
		),
	)
	defer endSpan(span, &rerr)

	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.PageLimit == 0 {
		q.PageLimit = DefaultPageLimit
	}
	if q.Page < 0 {
		return nil, &ValidationError{Field: "page", Reason: "must be at least 1"}
	}
	if q.PageLimit < 0 {
		return nil, &ValidationError{Field: "pageLimit", Reason: "must be at least 1"}
	}

	rows, err := s.store.SearchTranslations(ctx, q.Name)
	if err != nil {
		return nil, errors.Wrap(err, "search translations")
	}

	grouped := Group(rows)
	span.SetAttributes(attribute.Int("product.matches", len(grouped)))

	return &SearchResult{
		Data:      Paginate(grouped, q.Page, q.PageLimit),
		Total:     len(grouped),
		Page:      q.Page,
		PageLimit: q.PageLimit,
	}, nil
}

// Delete removes all translations of a product and then the product itself in
// a single transaction. It returns *NotFoundError when the product does not
// exist; a product without translations is deleted normally.
func (s *Service) Delete(ctx context.Context, id int64) (rerr error) {
	ctx, span := s.tracer.Start(ctx, "product.Delete",
		trace.WithAttributes(attribute.Int64("product.id", id)),
	)
	defer endSpan(span, &rerr)

	var removed int64
	err := s.store.InTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := repo.GetProduct(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{ProductID: id}
			}
			return errors.Wrapf(err, "get product %d", id)
		}
		translations, err := repo.ListTranslations(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "list translations of product %d", id)
		}
		if len(translations) > 0 {
			if removed, err = repo.DeleteTranslations(ctx, id); err != nil {
				return errors.Wrapf(err, "delete translations of product %d", id)
			}
		}
		if err := repo.DeleteProduct(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{ProductID: id}
			}
			return errors.Wrapf(err, "delete product %d", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	zctx.From(ctx).Debug("Product deleted",
		zap.Int64("product_id", id),
		zap.Int64("translations", removed),
	)
	return nil
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
