package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/product-catalog/internal/domain/product"
)

const (
	createProductSQL = `INSERT INTO products DEFAULT VALUES
		RETURNING product_id, created_at, updated_at`

	createTranslationsSQL = `INSERT INTO product_translations (product_id, language_code, name, description)
		SELECT $1, u.language_code, u.name, u.description
		FROM unnest($2::text[], $3::text[], $4::text[]) WITH ORDINALITY AS u(language_code, name, description, ord)
		ORDER BY u.ord
		RETURNING translation_id, product_id, language_code, name, description, created_at, updated_at`

	getProductSQL = `SELECT product_id, created_at, updated_at
		FROM products WHERE product_id = $1`

	listTranslationsSQL = `SELECT translation_id, product_id, language_code, name, description, created_at, updated_at
		FROM product_translations WHERE product_id = $1
		ORDER BY translation_id`

	// A row is returned when its own name matches, or when any translation of
	// the same product matches, so every language of a matching product is
	// present for aggregation.
	searchTranslationsSQL = `SELECT t.translation_id, t.product_id, t.language_code, t.name, t.description, t.created_at, t.updated_at
		FROM product_translations t
		WHERE t.name ILIKE $1
			OR t.product_id IN (
				SELECT s.product_id FROM product_translations s WHERE s.name ILIKE $1
			)
		ORDER BY t.product_id, t.translation_id`

	deleteTranslationsSQL = `DELETE FROM product_translations WHERE product_id = $1`

	deleteProductSQL = `DELETE FROM products WHERE product_id = $1`
)

var _ product.Store = (*ProductRepository)(nil)

// ProductRepository implements product.Store backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
	db   dbtx
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool, db: pool}
}

// InTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func (r *ProductRepository) InTx(ctx context.Context, fn func(ctx context.Context, repo product.Repository) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &ProductRepository{pool: r.pool, db: tx})
	})
}

// CreateProduct inserts an empty product row and returns its generated id and
// timestamps.
func (r *ProductRepository) CreateProduct(ctx context.Context) (*product.Product, error) {
	var p product.Product
	if err := r.db.QueryRow(ctx, createProductSQL).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	return &p, nil
}

// CreateTranslations inserts all translation rows of a product in one
// statement, preserving input order.
func (r *ProductRepository) CreateTranslations(ctx context.Context, productID int64, in []product.TranslationInput) ([]product.Translation, error) {
	var (
		langs = make([]string, len(in))
		names = make([]string, len(in))
		descs = make([]string, len(in))
	)
	for i, t := range in {
		langs[i] = t.LanguageCode
		names[i] = t.Name
		descs[i] = t.Description
	}

	rows, err := r.db.Query(ctx, createTranslationsSQL, productID, langs, names, descs)
	if err != nil {
		return nil, fmt.Errorf("creating translations for product %d: %w", productID, err)
	}
	out, err := pgx.CollectRows(rows, scanTranslation)
	if err != nil {
		return nil, fmt.Errorf("creating translations for product %d: %w", productID, err)
	}
	return out, nil
}

// GetProduct returns a single product row. It returns product.ErrNotFound
// when no row matches.
func (r *ProductRepository) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	err := r.db.QueryRow(ctx, getProductSQL, id).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// ListTranslations returns all translations of a product. A product without
// translations yields an empty slice, not an error.
func (r *ProductRepository) ListTranslations(ctx context.Context, productID int64) ([]product.Translation, error) {
	rows, err := r.db.Query(ctx, listTranslationsSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing translations for product %d: %w", productID, err)
	}
	return pgx.CollectRows(rows, scanTranslation)
}

// SearchTranslations returns every translation of every product that has a
// translation whose name contains term, ignoring case.
func (r *ProductRepository) SearchTranslations(ctx context.Context, term string) ([]product.Translation, error) {
	rows, err := r.db.Query(ctx, searchTranslationsSQL, containsPattern(term))
	if err != nil {
		return nil, fmt.Errorf("searching translations for %q: %w", term, err)
	}
	return pgx.CollectRows(rows, scanTranslation)
}

// DeleteTranslations removes all translations of a product and reports how
// many rows were deleted.
func (r *ProductRepository) DeleteTranslations(ctx context.Context, productID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteTranslationsSQL, productID)
	if err != nil {
		return 0, fmt.Errorf("deleting translations for product %d: %w", productID, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteProduct removes a product row. It returns product.ErrNotFound when
// nothing was deleted.
func (r *ProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns term into an ILIKE pattern matching it literally as a
// substring. An empty term matches everything.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func scanTranslation(row pgx.CollectableRow) (product.Translation, error) {
	var t product.Translation
	err := row.Scan(
		&t.ID, &t.ProductID, &t.LanguageCode, &t.Name, &t.Description,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}
