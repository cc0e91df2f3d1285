package product

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// --- Mock implementations ---

// memStore is an in-memory Store. InTx restores the previous state when fn
// fails, mirroring a transaction rollback.
type memStore struct {
	products     map[int64]Product
	translations []Translation
	nextID       int64
	now          time.Time

	createTranslationsErr error
	searchErr             error
	txCalls               int
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[int64]Product),
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	m.txCalls++
	products := make(map[int64]Product, len(m.products))
	for k, v := range m.products {
		products[k] = v
	}
	translations := slices.Clone(m.translations)
	nextID := m.nextID

	if err := fn(ctx, m); err != nil {
		m.products = products
		m.translations = translations
		m.nextID = nextID
		return err
	}
	return nil
}

func (m *memStore) CreateProduct(_ context.Context) (*Product, error) {
	m.nextID++
	p := Product{ID: m.nextID, CreatedAt: m.now, UpdatedAt: m.now}
	m.products[p.ID] = p
	return &p, nil
}

func (m *memStore) CreateTranslations(_ context.Context, productID int64, in []TranslationInput) ([]Translation, error) {
	if m.createTranslationsErr != nil {
		return nil, m.createTranslationsErr
	}
	out := make([]Translation, 0, len(in))
	for _, t := range in {
		m.nextID++
		row := Translation{
			ID:           m.nextID,
			ProductID:    productID,
			LanguageCode: t.LanguageCode,
			Name:         t.Name,
			Description:  t.Description,
			CreatedAt:    m.now,
			UpdatedAt:    m.now,
		}
		m.translations = append(m.translations, row)
		out = append(out, row)
	}
	return out, nil
}

func (m *memStore) GetProduct(_ context.Context, id int64) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *memStore) ListTranslations(_ context.Context, productID int64) ([]Translation, error) {
	var out []Translation
	for _, t := range m.translations {
		if t.ProductID == productID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) SearchTranslations(_ context.Context, term string) ([]Translation, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	matched := make(map[int64]bool)
	for _, t := range m.translations {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(term)) {
			matched[t.ProductID] = true
		}
	}
	var out []Translation
	for _, t := range m.translations {
		if matched[t.ProductID] {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b Translation) int {
		if a.ProductID != b.ProductID {
			return int(a.ProductID - b.ProductID)
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

func (m *memStore) DeleteTranslations(_ context.Context, productID int64) (int64, error) {
	var removed int64
	m.translations = slices.DeleteFunc(m.translations, func(t Translation) bool {
		if t.ProductID == productID {
			removed++
			return true
		}
		return false
	})
	return removed, nil
}

func (m *memStore) DeleteProduct(_ context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// --- Helpers ---

func newTestService(store *memStore) *Service {
	return NewService(store, noop.NewTracerProvider().Tracer("test"))
}

func mustCreate(t *testing.T, svc *Service, name map[string]string) *Product {
	t.Helper()
	desc := make(map[string]string, len(name))
	for lang, n := range name {
		desc[lang] = n + " description"
	}
	p, err := svc.Create(context.Background(), CreateInput{Name: name, Description: desc})
	require.NoError(t, err)
	return p
}

// --- Tests ---

func TestCreate_PersistsProductAndTranslations(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	p, err := svc.Create(context.Background(), CreateInput{
		Name:        map[string]string{"th": "ทดสอบ", "en": "Test", "de": "Prüfung"},
		Description: map[string]string{"th": "คำอธิบาย", "en": "Description", "de": "Beschreibung"},
	})
	require.NoError(t, err)

	require.Len(t, store.products, 1)
	assert.Equal(t, store.products[p.ID], *p)
	assert.Equal(t, 1, store.txCalls)

	rows, err := store.ListTranslations(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	langs := make([]string, len(rows))
	for i, row := range rows {
		langs[i] = row.LanguageCode
		assert.Equal(t, p.ID, row.ProductID)
	}
	assert.Equal(t, []string{"de", "en", "th"}, langs)
	assert.Equal(t, "Test", rows[1].Name)
	assert.Equal(t, "Description", rows[1].Description)
}

func TestCreate_ValidationError(t *testing.T) {
	tests := []struct {
		name      string
		in        CreateInput
		wantField string
	}{
		{
			name:      "empty name",
			in:        CreateInput{Description: map[string]string{"en": "d"}},
			wantField: "name",
		},
		{
			name:      "empty description",
			in:        CreateInput{Name: map[string]string{"en": "n"}},
			wantField: "description",
		},
		{
			name: "language only in name",
			in: CreateInput{
				Name:        map[string]string{"en": "n", "th": "n"},
				Description: map[string]string{"en": "d"},
			},
			wantField: "description",
		},
		{
			name: "language only in description",
			in: CreateInput{
				Name:        map[string]string{"en": "n"},
				Description: map[string]string{"en": "d", "th": "d"},
			},
			wantField: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestService(store)

			_, err := svc.Create(context.Background(), tt.in)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.Empty(t, store.products)
			assert.Empty(t, store.translations)
			assert.Zero(t, store.txCalls)
		})
	}
}

func TestCreate_TranslationFailureRollsBack(t *testing.T) {
	store := newMemStore()
	store.createTranslationsErr = errors.New("unique violation")
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), CreateInput{
		Name:        map[string]string{"en": "Test"},
		Description: map[string]string{"en": "Description"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create translations")
	assert.Empty(t, store.products, "product row must not outlive a failed create")
}

func TestFind_EmptyNameReturnsEverything(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	mustCreate(t, svc, map[string]string{"en": "Apple"})
	mustCreate(t, svc, map[string]string{"en": "Banana", "th": "กล้วย"})
	mustCreate(t, svc, map[string]string{"th": "มะม่วง"})

	result, err := svc.Find(context.Background(), SearchQuery{})
	require.NoError(t, err)

	assert.Len(t, result.Data, 3)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, DefaultPage, result.Page)
	assert.Equal(t, DefaultPageLimit, result.PageLimit)
}

func TestFind_CaseInsensitiveSubstring(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	p := mustCreate(t, svc, map[string]string{"en": "Test", "th": "ทดสอบ"})
	mustCreate(t, svc, map[string]string{"en": "Other"})

	for _, term := range []string{"test", "Tes", "ES", "Test"} {
		t.Run(term, func(t *testing.T) {
			result, err := svc.Find(context.Background(), SearchQuery{Name: term})
			require.NoError(t, err)
			require.Len(t, result.Data, 1)
			assert.Equal(t, p.ID, result.Data[0].ProductID)
			// The non-matching Thai row still belongs to the view.
			assert.Equal(t, "ทดสอบ", result.Data[0].Name["th"])
		})
	}
}

func TestFind_RoundTrip(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:        map[string]string{"en": "Product EN", "th": "สินค้า TH"},
		Description: map[string]string{"en": "Description EN", "th": "คำอธิบาย TH"},
	})
	require.NoError(t, err)

	result, err := svc.Find(context.Background(), SearchQuery{Name: "Product", Page: 1, PageLimit: 10})
	require.NoError(t, err)
	require.Len(t, result.Data, 1)

	view := result.Data[0]
	assert.Equal(t, created.ID, view.ProductID)
	assert.Equal(t, map[string]string{"en": "Product EN", "th": "สินค้า TH"}, view.Name)
	assert.Equal(t, map[string]string{"en": "Description EN", "th": "คำอธิบาย TH"}, view.Description)
	assert.Equal(t, store.now, view.CreatedAt)
}

func TestFind_Pagination(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	for i := range 25 {
		mustCreate(t, svc, map[string]string{
			"en": fmt.Sprintf("Widget %02d", i),
			"th": fmt.Sprintf("วิดเจ็ต %02d", i),
		})
	}

	tests := []struct {
		page    int
		wantLen int
	}{
		{page: 1, wantLen: 10},
		{page: 2, wantLen: 10},
		{page: 3, wantLen: 5},
		{page: 4, wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			result, err := svc.Find(context.Background(), SearchQuery{Name: "widget", Page: tt.page, PageLimit: 10})
			require.NoError(t, err)

			assert.Len(t, result.Data, tt.wantLen)
			assert.Equal(t, 25, result.Total, "total counts all matches, not the page")
			assert.Equal(t, tt.page, result.Page)
			assert.Equal(t, 10, result.PageLimit)
			assert.NotNil(t, result.Data)
		})
	}
}

func TestFind_PageFarPastEndWithHugeLimit(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		mustCreate(t, svc, map[string]string{"en": name})
	}

	q, err := ParseSearchQuery("", "5", "4611686018427387904")
	require.NoError(t, err)

	result, err := svc.Find(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, result.Data)
	assert.NotNil(t, result.Data)
	assert.Equal(t, 3, result.Total)
}

func TestFind_DeterministicOrder(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	var ids []int64
	for i := range 12 {
		p := mustCreate(t, svc, map[string]string{"en": fmt.Sprintf("Item %d", i), "fr": fmt.Sprintf("Article %d", i)})
		ids = append(ids, p.ID)
	}

	first, err := svc.Find(context.Background(), SearchQuery{Page: 1, PageLimit: 5})
	require.NoError(t, err)
	second, err := svc.Find(context.Background(), SearchQuery{Page: 2, PageLimit: 5})
	require.NoError(t, err)

	var got []int64
	for _, v := range append(first.Data, second.Data...) {
		got = append(got, v.ProductID)
	}
	assert.Equal(t, ids[:10], got)
}

func TestFind_NoMatches(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	mustCreate(t, svc, map[string]string{"en": "Test"})

	result, err := svc.Find(context.Background(), SearchQuery{Name: "NonExistent", Page: 1, PageLimit: 10})
	require.NoError(t, err)

	assert.Equal(t, &SearchResult{Data: []View{}, Total: 0, Page: 1, PageLimit: 10}, result)
}

func TestFind_StorageError(t *testing.T) {
	store := newMemStore()
	store.searchErr = errors.New("connection reset")
	svc := newTestService(store)

	result, err := svc.Find(context.Background(), SearchQuery{Name: "x"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "search translations")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDelete_RemovesTranslationsThenProduct(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	p := mustCreate(t, svc, map[string]string{"en": "Test", "th": "ทดสอบ"})
	other := mustCreate(t, svc, map[string]string{"en": "Keep"})

	require.NoError(t, svc.Delete(context.Background(), p.ID))

	assert.NotContains(t, store.products, p.ID)
	assert.Contains(t, store.products, other.ID)
	rows, err := store.ListTranslations(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Len(t, store.translations, 1)
}

func TestDelete_NotFound(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	p := mustCreate(t, svc, map[string]string{"en": "Test"})

	err := svc.Delete(context.Background(), p.ID+100)

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, p.ID+100, nfErr.ProductID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, store.products, 1)
	assert.Len(t, store.translations, 1)
}

func TestDelete_ProductWithoutTranslations(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	p, err := store.CreateProduct(context.Background())
	require.NoError(t, err)
	keep := mustCreate(t, svc, map[string]string{"en": "Keep"})

	require.NoError(t, svc.Delete(context.Background(), p.ID))

	assert.NotContains(t, store.products, p.ID)
	assert.Contains(t, store.products, keep.ID)
	assert.Len(t, store.translations, 1)
}

func TestDelete_Twice(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	p := mustCreate(t, svc, map[string]string{"en": "Test"})

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	err := svc.Delete(context.Background(), p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, store.products)
	assert.Empty(t, store.translations)
}
