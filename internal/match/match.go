// Package match scores name similarity for duplicate detection.
package match

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/zimhealth/registry-cli/internal/normalize"
)

// Ratio returns a similarity score in [0,100] between two normalized
// names, computed from the longest-matching-blocks ratio of character
// sequences. Two empty names score 100.
func Ratio(a, b string) float64 {
	na := strings.Split(normalize.Text(a), "")
	nb := strings.Split(normalize.Text(b), "")
	return difflib.NewMatcher(na, nb).Ratio() * 100
}

// SameLocality reports whether two locality strings refer to the same
// place after normalization. Two blanks do not match: an unknown locality
// is no evidence of sameness.
func SameLocality(a, b string) bool {
	na, nb := normalize.Text(a), normalize.Text(b)
	return na != "" && na == nb
}
