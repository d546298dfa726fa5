package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength matches the width of the slug columns.
const MaxSlugLength = 100

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slugify derives a URL slug from a display name: "Web Development 101" -> "web-development-101".
// The result is cut to MaxSlugLength without a trailing hyphen.
func Slugify(value string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range norm.NFKD.String(strings.ToLower(value)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}

	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}

// NormalizeSlug lowercases and validates an explicit slug.
func NormalizeSlug(value string) (string, error) {
	normalized := strings.TrimSpace(strings.ToLower(value))
	if len(normalized) > MaxSlugLength || !slugRegex.MatchString(normalized) {
		return "", fmt.Errorf("invalid slug. Use lowercase letters, numbers and single hyphens")
	}
	return normalized, nil
}
