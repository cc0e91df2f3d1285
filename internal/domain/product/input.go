package product

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
)

// Pagination defaults applied when the query leaves them out.
const (
	DefaultPage      = 1
	DefaultPageLimit = 10

	// MaxNameLength bounds a translated name, matching the name column.
	MaxNameLength = 255
)

// ValidationError reports malformed input rejected before reaching storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError indicates the referenced product does not exist.
type NotFoundError struct {
	ProductID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d not found", e.ProductID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// CreateInput is the payload of a product creation: per-language names and
// descriptions keyed by language code.
type CreateInput struct {
	Name        map[string]string
	Description map[string]string
}

// Validate checks that both mappings are present, share the same language
// keys, and that every key is a two-letter language code.
func (in CreateInput) Validate() error {
	if len(in.Name) == 0 {
		return &ValidationError{Field: "name", Reason: "must be a non-empty object"}
	}
	if len(in.Description) == 0 {
		return &ValidationError{Field: "description", Reason: "must be a non-empty object"}
	}
	for lang, name := range in.Name {
		if _, ok := in.Description[lang]; !ok {
			return &ValidationError{Field: "description", Reason: fmt.Sprintf("missing language %q present in name", lang)}
		}
		if err := validateLanguageCode(lang); err != nil {
			return err
		}
		if !utf8.ValidString(name) {
			return &ValidationError{Field: "name", Reason: fmt.Sprintf("name for language %q is not valid UTF-8", lang)}
		}
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Field: "name", Reason: fmt.Sprintf("empty name for language %q", lang)}
		}
		if utf8.RuneCountInString(name) > MaxNameLength {
			return &ValidationError{Field: "name", Reason: fmt.Sprintf("name for language %q exceeds %d characters", lang, MaxNameLength)}
		}
	}
	for lang, desc := range in.Description {
		if _, ok := in.Name[lang]; !ok {
			return &ValidationError{Field: "name", Reason: fmt.Sprintf("missing language %q present in description", lang)}
		}
		if !utf8.ValidString(desc) {
			return &ValidationError{Field: "description", Reason: fmt.Sprintf("description for language %q is not valid UTF-8", lang)}
		}
	}
	return nil
}

// Translations flattens the input into one row per language, sorted by
// language code.
func (in CreateInput) Translations() []TranslationInput {
	langs := make([]string, 0, len(in.Name))
	for lang := range in.Name {
		langs = append(langs, lang)
	}
	slices.Sort(langs)

	out := make([]TranslationInput, len(langs))
	for i, lang := range langs {
		out[i] = TranslationInput{
			LanguageCode: lang,
			Name:         in.Name[lang],
			Description:  in.Description[lang],
		}
	}
	return out
}

func validateLanguageCode(code string) error {
	if len(code) != 2 {
		return &ValidationError{Field: "language", Reason: fmt.Sprintf("%q is not a two-letter language code", code)}
	}
	if code != strings.ToLower(code) {
		return &ValidationError{Field: "language", Reason: fmt.Sprintf("%q must be a lowercase language code", code)}
	}
	if _, err := language.ParseBase(code); err != nil {
		return &ValidationError{Field: "language", Reason: fmt.Sprintf("%q is not a known language code", code)}
	}
	return nil
}

// SearchQuery selects a page of products whose translated name contains Name.
type SearchQuery struct {
	Name      string
	Page      int
	PageLimit int
}

// ParseSearchQuery builds a SearchQuery from raw query-string values. Empty
// page values fall back to DefaultPage and DefaultPageLimit.
func ParseSearchQuery(name, page, pageLimit string) (SearchQuery, error) {
	if !utf8.ValidString(name) {
		return SearchQuery{}, &ValidationError{Field: "name", Reason: "must be valid UTF-8"}
	}
	q := SearchQuery{Name: name, Page: DefaultPage, PageLimit: DefaultPageLimit}

	var err error
	if page != "" {
		if q.Page, err = parsePositive("page", page); err != nil {
			return SearchQuery{}, err
		}
	}
	if pageLimit != "" {
		if q.PageLimit, err = parsePositive("pageLimit", pageLimit); err != nil {
			return SearchQuery{}, err
		}
	}
	return q, nil
}

func parsePositive(field, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: "must be a number"}
	}
	if v < 1 {
		return 0, &ValidationError{Field: field, Reason: "must be at least 1"}
	}
	return v, nil
}

// SearchResult is one page of aggregated products. Total counts every
// matching product, not just the ones on this page.
type SearchResult struct {
	Data      []View
	Total     int
	Page      int
	PageLimit int
}
