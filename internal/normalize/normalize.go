// Package normalize canonicalizes free text for matching and derives the
// stable keys and slugs used across deduplication and reconciliation.
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/zimhealth/registry-cli/internal/model"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// keySep joins key parts. Normalized text never contains a colon, so the
// separator cannot collide with content.
const keySep = "::"

// Text lowercases the input, replaces every run of non-alphanumeric
// characters with a single space, and trims. Total: empty in, empty out.
func Text(value string) string {
	cleaned := nonAlnumRe.ReplaceAllString(strings.ToLower(value), " ")
	return strings.TrimSpace(cleaned)
}

// Key joins the normalized parts with the key separator, producing an
// opaque comparable match key.
func Key(name string, localities ...string) string {
	parts := make([]string, 0, len(localities)+1)
	parts = append(parts, Text(name))
	for _, loc := range localities {
		parts = append(parts, Text(loc))
	}
	return strings.Join(parts, keySep)
}

// Slug derives a stable lowercase hyphenated id from name and locality.
// When both normalize to nothing it falls back to a content hash so the
// same degenerate input always yields the same id.
func Slug(name, locality string) string {
	slug := nonAlnumRe.ReplaceAllString(strings.ToLower(name+"-"+locality), "-")
	slug = strings.Trim(slug, "-")
	if slug != "" {
		return slug
	}
	sum := sha1.Sum([]byte(name + keySep + locality))
	return "facility-" + hex.EncodeToString(sum[:6])
}

// Phone collapses internal whitespace runs in a phone string.
func Phone(value string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(value, " "))
}

// StoreKey is the canonical-store match key for a facility: normalized
// name plus the best available locality (district, else city, else
// province). Empty when the record has no usable name.
func StoreKey(f *model.Facility) string {
	if Text(f.Name) == "" {
		return ""
	}
	locality := f.District
	if locality == "" {
		locality = f.City
	}
	if locality == "" {
		locality = f.Province
	}
	return Key(f.Name, locality)
}
