package service

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugify folds a display name into a URL-safe slug: diacritics stripped,
// lowercased, non-alphanumerics collapsed into single hyphens.
func slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// uniqueSlug appends a short random suffix so two merchants (or two
// products of one merchant) named identically still get distinct slugs.
func uniqueSlug(name string) string {
	base := slugify(name)
	suffix := uuid.New().String()[:4]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

// newOrderNumber builds a human-typeable order number: a base36 encoding
// of the creation time keeps numbers sortable, a random suffix keeps
// concurrent creations from colliding. True collisions still surface as
// a unique-constraint failure at insert.
func newOrderNumber(now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return "ORD-" + ts + "-" + suffix
}
