package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Café del Ángel", "cafe-del-angel"},
		{"Panadería La Unión", "panaderia-la-union"},
		{"  Mi   Tienda  ", "mi-tienda"},
		{"100% Natural!", "100-natural"},
		{"ñoquis & pasta", "noquis-pasta"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}

func TestUniqueSlug(t *testing.T) {
	slug := uniqueSlug("Café del Ángel")

	assert.True(t, strings.HasPrefix(slug, "cafe-del-angel-"))
	assert.Len(t, slug, len("cafe-del-angel-")+4)

	// Suffixes are random, so repeated calls differ.
	assert.NotEqual(t, slug, uniqueSlug("Café del Ángel"))
}
