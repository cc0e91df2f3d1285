package product

import (
	"cmp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchQuery(t *testing.T) {
	tests := []struct {
		name      string
		term      string
		page      string
		pageLimit string
		want      SearchQuery
		wantField string
	}{
		{
			name: "defaults",
			want: SearchQuery{Name: "q", Page: 1, PageLimit: 10},
		},
		{
			name:      "explicit values",
			page:      "3",
			pageLimit: "20",
			want:      SearchQuery{Name: "q", Page: 3, PageLimit: 20},
		},
		{
			name:      "non-numeric page",
			page:      "first",
			wantField: "page",
		},
		{
			name:      "non-numeric page limit",
			pageLimit: "ten",
			wantField: "pageLimit",
		},
		{
			name:      "zero page",
			page:      "0",
			wantField: "page",
		},
		{
			name:      "negative page limit",
			pageLimit: "-5",
			wantField: "pageLimit",
		},
		{
			name:      "page limit beyond any catalog size",
			page:      "5",
			pageLimit: "4611686018427387904",
			want:      SearchQuery{Name: "q", Page: 5, PageLimit: 4611686018427387904},
		},
		{
			name:      "invalid utf-8 term",
			term:      "\xff",
			wantField: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSearchQuery(cmp.Or(tt.term, "q"), tt.page, tt.pageLimit)
			if tt.wantField != "" {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantField, vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      CreateInput
		wantErr string
	}{
		{
			name: "valid",
			in: CreateInput{
				Name:        map[string]string{"en": "Test", "th": "ทดสอบ"},
				Description: map[string]string{"en": "Description", "th": ""},
			},
		},
		{
			name: "three-letter code",
			in: CreateInput{
				Name:        map[string]string{"eng": "Test"},
				Description: map[string]string{"eng": "Description"},
			},
			wantErr: "not a two-letter language code",
		},
		{
			name: "unknown code",
			in: CreateInput{
				Name:        map[string]string{"qq": "Test"},
				Description: map[string]string{"qq": "Description"},
			},
			wantErr: "not a known language code",
		},
		{
			name: "upper-case code",
			in: CreateInput{
				Name:        map[string]string{"EN": "Test"},
				Description: map[string]string{"EN": "Description"},
			},
			wantErr: `"EN" must be a lowercase language code`,
		},
		{
			name: "deprecated code",
			in: CreateInput{
				Name:        map[string]string{"iw": "Test", "in": "Tes"},
				Description: map[string]string{"iw": "Description", "in": "Deskripsi"},
			},
		},
		{
			name: "invalid utf-8 name",
			in: CreateInput{
				Name:        map[string]string{"en": "Te\xffst"},
				Description: map[string]string{"en": "Description"},
			},
			wantErr: "name for language \"en\" is not valid UTF-8",
		},
		{
			name: "invalid utf-8 description",
			in: CreateInput{
				Name:        map[string]string{"en": "Test"},
				Description: map[string]string{"en": "\xc3\x28"},
			},
			wantErr: "description for language \"en\" is not valid UTF-8",
		},
		{
			name: "blank name",
			in: CreateInput{
				Name:        map[string]string{"en": "  "},
				Description: map[string]string{"en": "Description"},
			},
			wantErr: "empty name",
		},
		{
			name: "name too long",
			in: CreateInput{
				Name:        map[string]string{"en": strings.Repeat("n", MaxNameLength+1)},
				Description: map[string]string{"en": "Description"},
			},
			wantErr: "exceeds 255 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Error(), tt.wantErr)
		})
	}
}

func TestCreateInput_Translations(t *testing.T) {
	in := CreateInput{
		Name:        map[string]string{"th": "ทดสอบ", "en": "Test"},
		Description: map[string]string{"th": "คำอธิบาย", "en": "Description"},
	}

	assert.Equal(t, []TranslationInput{
		{LanguageCode: "en", Name: "Test", Description: "Description"},
		{LanguageCode: "th", Name: "ทดสอบ", Description: "คำอธิบาย"},
	}, in.Translations())
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{ProductID: 7}
	assert.Equal(t, "product with ID 7 not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}
