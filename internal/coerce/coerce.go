// Package coerce adapts loosely-typed raw source rows into the typed
// intermediate record consumed by deduplication and schema mapping. Every
// function here is total: unusable values degrade to empty or absent,
// never to an error.
package coerce

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zimhealth/registry-cli/internal/model"
	"github.com/zimhealth/registry-cli/internal/normalize"
)

// fieldAliases maps known alternate column names onto canonical field
// names. Aliasing only fires when the canonical name is not already
// present, so the first writer within a record wins.
var fieldAliases = map[string]string{
	"provider":         "name",
	"service provider": "name",
	"premises name":    "name",
	"provider name":    "name",
	"town":             "city",
	"city/town":        "city",
	"location":         "city",
	"province/state":   "province",
	"tel":              "phone",
	"telephone":        "phone",
}

var listSplitRe = regexp.MustCompile(`[,;/]|\s{2,}`)

// truthy holds the accepted true tokens after text normalization
// ("24/7" normalizes to "24 7").
var truthy = map[string]struct{}{
	"true": {}, "yes": {}, "y": {}, "1": {},
	"24": {}, "24 7": {}, "247": {},
}

// Record coerces one raw row into the typed intermediate record and tags
// its provenance with sourceLabel when the row carries no source of its
// own.
func Record(raw model.RawRecord, sourceLabel string) model.Coerced {
	fields := fold(raw)

	for alias, target := range fieldAliases {
		v, ok := fields[alias]
		if !ok {
			continue
		}
		if _, exists := fields[target]; !exists {
			fields[target] = v
		}
	}

	c := model.Coerced{
		ID:             Str(fields["id"]),
		Name:           Str(fields["name"]),
		Category:       Str(fields["category"]),
		TypeHint:       Str(fields["type"]),
		FacilityType:   Str(fields["facility_type"]),
		Ownership:      Str(fields["ownership"]),
		RuralUrban:     Str(fields["rural_urban"]),
		Province:       Str(fields["province"]),
		District:       Str(fields["district"]),
		Ward:           Str(fields["ward"]),
		City:           Str(fields["city"]),
		Address:        Str(fields["address"]),
		EmergencyLevel: Str(fields["emergency_level"]),
		CostBand:       Str(fields["cost_band"]),
		Tier:           Str(fields["tier"]),
		Phone:          Str(fields["phone"]),
		WhatsApp:       Str(fields["whatsapp"]),
		Email:          Str(fields["email"]),
		Website:        Str(fields["website"]),
		OperatingHours: Str(fields["operating_hours"]),
		Services:       List(first(fields, "services", "specialists")),
		MedicalAids:    List(first(fields, "medical_aids", "accepted_payments")),
		Aliases:        List(fields["aliases"]),
		Links:          List(fields["links"]),
		Open24h:        Bool(first(fields, "open_24h", "open_hrs")),
		BedCount:       Int(fields["bed_count"]),
		Verified:       Bool(fields["verified"]),
		LastVerified:   Str(fields["last_verified"]),
		VerifiedText:   Str(fields["verified_text"]),
		Confidence:     confidence(Str(fields["confidence"])),
		Source:         sources(fields["source"], sourceLabel),
		Lat:            Float(first(fields, "lat", "latitude")),
		Lon:            Float(first(fields, "lon", "longitude")),
	}

	return c
}

// fold lowercases and trims the raw keys so header variants like
// "Provider Name" hit the alias table. First writer wins on collisions.
func fold(raw model.RawRecord) map[string]any {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if _, exists := fields[key]; !exists {
			fields[key] = v
		}
	}
	return fields
}

// first returns the first present, non-empty value among keys.
func first(fields map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := fields[k]; ok && !isEmpty(v) {
			return v
		}
	}
	return nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// Str renders a scalar value as a trimmed string. Lists and nil degrade
// to empty.
func Str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []string, []any, map[string]any:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// List coerces a value into a clean string slice. Sequences are trimmed
// and filtered for blanks; strings split on commas, semicolons, slashes,
// or runs of two or more spaces.
func List(v any) []string {
	var parts []string
	switch t := v.(type) {
	case []string:
		parts = t
	case []any:
		for _, item := range t {
			parts = append(parts, Str(item))
		}
	case string:
		parts = listSplitRe.Split(t, -1)
	default:
		return nil
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Bool normalizes the value's text and accepts the fixed truthy token set.
func Bool(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	default:
		_, ok := truthy[normalize.Text(Str(v))]
		return ok
	}
}

// Float attempts a locale-free float parse; unparsable values are absent.
func Float(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// Int accepts only genuine integers: integral numeric types, or a float
// with no fractional part. Strings do not count as bed evidence.
func Int(v any) *int {
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int64:
		n = int(t)
	case float64:
		if t != float64(int(t)) {
			return nil
		}
		n = int(t)
	default:
		return nil
	}
	return &n
}

func confidence(s string) model.Confidence {
	switch model.Confidence(strings.ToLower(s)) {
	case model.ConfidenceLow:
		return model.ConfidenceLow
	case model.ConfidenceHigh:
		return model.ConfidenceHigh
	default:
		return model.ConfidenceMedium
	}
}

// sources extracts the provenance labels: an existing list is cleaned, a
// scalar is promoted to a one-element list, and an absent source takes
// the loader's label when one is set.
func sources(v any, sourceLabel string) []string {
	if list := List(v); len(list) > 0 {
		return list
	}
	if s := Str(v); s != "" {
		return []string{s}
	}
	if sourceLabel != "" {
		return []string{sourceLabel}
	}
	return nil
}
