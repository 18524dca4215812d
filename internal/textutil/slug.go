package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugLength bounds slugs so composed filenames stay well under
// filesystem limits.
const maxSlugLength = 180

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	disallowedPattern = regexp.MustCompile(`[^A-Za-z0-9._+-]+`)

	// stripMarks decomposes accented characters and drops the combining
	// marks, so "Rós" survives as "Ros" instead of "Rs".
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slug reduces a name to a filesystem-safe token: trims whitespace, strips
// diacritics, replaces path separators and whitespace runs with underscores,
// removes every character outside [A-Za-z0-9._+-], and truncates to 180
// characters.
func Slug(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if stripped, _, err := transform.String(stripMarks, name); err == nil {
		name = stripped
	}
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = whitespacePattern.ReplaceAllString(name, "_")
	name = disallowedPattern.ReplaceAllString(name, "")
	if len(name) > maxSlugLength {
		name = name[:maxSlugLength]
	}
	return name
}
