package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is the bare catalog entry. Names and descriptions live in its
// translations.
type Product struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Translation is one per-language name/description record of a product.
type Translation struct {
	ID           int64
	ProductID    int64
	LanguageCode string
	Name         string
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TranslationInput holds the fields supplied when creating a translation row.
type TranslationInput struct {
	LanguageCode string
	Name         string
	Description  string
}

// View is the multilingual representation of a product assembled from its
// translation rows.
type View struct {
	ProductID   int64
	Name        map[string]string
	Description map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines storage primitives over products and translations.
type Repository interface {
	CreateProduct(ctx context.Context) (*Product, error)
	CreateTranslations(ctx context.Context, productID int64, in []TranslationInput) ([]Translation, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListTranslations(ctx context.Context, productID int64) ([]Translation, error)
	// SearchTranslations returns every translation of every product having at
	// least one translation whose name contains term (case-insensitive),
	// ordered by product id then translation id.
	SearchTranslations(ctx context.Context, term string) ([]Translation, error)
	DeleteTranslations(ctx context.Context, productID int64) (int64, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Store is a Repository able to run a unit of work atomically. The Repository
// passed to fn is bound to the transaction.
type Store interface {
	Repository
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
