package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{term: "", want: "%%"},
		{term: "Test", want: "%Test%"},
		{term: "50%", want: `%50\%%`},
		{term: "a_b", want: `%a\_b%`},
		{term: `back\slash`, want: `%back\\slash%`},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.term))
		})
	}
}
