// Package merge holds the single field-merge primitive shared by the
// within-batch deduplicator and the incremental reconciler, so the two
// paths cannot drift apart. Policies:
//
//   - FirstNonEmpty: keep the existing value when present, else take the
//     incoming one.
//   - UnionSorted: set union, sorted, blanks dropped.
//   - CoordPair: coordinates fill as an atomic pair, and only when the
//     existing record lacks both.
//   - Confidence, Verified: monotonic; never downgrade, never unflip.
package merge

import (
	"sort"
	"strings"

	"github.com/zimhealth/registry-cli/internal/model"
)

// FirstNonEmpty returns existing unless it is blank.
func FirstNonEmpty(existing, incoming string) string {
	if strings.TrimSpace(existing) != "" {
		return existing
	}
	return incoming
}

// UnionSorted returns the sorted union of both slices with blanks and
// duplicates dropped. Empty union yields nil.
func UnionSorted(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, item := range list {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				seen[trimmed] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for item := range seen {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// CoordPair fills dst's coordinates from src only when dst currently has
// neither. A record that already knows where it is keeps its position.
func CoordPair(dstLat, dstLon **float64, srcLat, srcLon *float64) {
	if *dstLat != nil && *dstLon != nil {
		return
	}
	if srcLat == nil && srcLon == nil {
		return
	}
	*dstLat = srcLat
	*dstLon = srcLon
}

// Confidence escalates only.
func Confidence(existing, incoming model.Confidence) model.Confidence {
	return existing.Escalate(incoming)
}

// Verified never flips back to false.
func Verified(existing, incoming bool) bool {
	return existing || incoming
}

// descriptiveFields pairs up the plain descriptive string fields of two
// coerced records for uniform first-non-empty merging.
func descriptiveFields(dst, src *model.Coerced) [][2]*string {
	return [][2]*string{
		{&dst.FacilityType, &src.FacilityType},
		{&dst.Ownership, &src.Ownership},
		{&dst.RuralUrban, &src.RuralUrban},
		{&dst.Province, &src.Province},
		{&dst.District, &src.District},
		{&dst.Ward, &src.Ward},
		{&dst.City, &src.City},
		{&dst.Address, &src.Address},
		{&dst.EmergencyLevel, &src.EmergencyLevel},
		{&dst.CostBand, &src.CostBand},
		{&dst.Tier, &src.Tier},
		{&dst.Website, &src.Website},
		{&dst.Email, &src.Email},
		{&dst.LastVerified, &src.LastVerified},
	}
}

// Coerced merges src into dst under the shared policy: first-non-empty
// descriptive fields, set unions for services/medical aids/aliases,
// atomic coordinate fill, and first-wins contact numbers. Provenance
// (source, confidence, verified) is the caller's concern because the two
// merge paths score it differently.
func Coerced(dst, src *model.Coerced) {
	for _, pair := range descriptiveFields(dst, src) {
		*pair[0] = FirstNonEmpty(*pair[0], *pair[1])
	}

	dst.Services = UnionSorted(dst.Services, src.Services)
	dst.MedicalAids = UnionSorted(dst.MedicalAids, src.MedicalAids)
	dst.Aliases = UnionSorted(dst.Aliases, src.Aliases)

	CoordPair(&dst.Lat, &dst.Lon, src.Lat, src.Lon)

	dst.Phone = FirstNonEmpty(dst.Phone, src.Phone)
	dst.WhatsApp = FirstNonEmpty(dst.WhatsApp, src.WhatsApp)

	dst.Open24h = dst.Open24h || src.Open24h
	if dst.BedCount == nil {
		dst.BedCount = src.BedCount
	}
}

// facilityStringFields pairs the string fields of two canonical records
// for the reconciler's fill-if-empty pass. Provenance dates are excluded;
// the reconciler owns those.
func facilityStringFields(dst, src *model.Facility) [][2]*string {
	return [][2]*string{
		{&dst.ID, &src.ID},
		{&dst.Name, &src.Name},
		{&dst.FacilityType, &src.FacilityType},
		{&dst.Ownership, &src.Ownership},
		{&dst.RuralUrban, &src.RuralUrban},
		{&dst.Province, &src.Province},
		{&dst.District, &src.District},
		{&dst.Ward, &src.Ward},
		{&dst.City, &src.City},
		{&dst.Address, &src.Address},
		{&dst.EmergencyLevel, &src.EmergencyLevel},
		{&dst.CostBand, &src.CostBand},
		{&dst.Tier, &src.Tier},
		{&dst.Phone, &src.Phone},
		{&dst.WhatsApp, &src.WhatsApp},
		{&dst.Email, &src.Email},
		{&dst.Website, &src.Website},
		{&dst.LastVerified, &src.LastVerified},
		{&dst.VerifiedText, &src.VerifiedText},
	}
}

func facilitySliceFields(dst, src *model.Facility) [][2]*[]string {
	return [][2]*[]string{
		{&dst.Aliases, &src.Aliases},
		{&dst.Services, &src.Services},
		{&dst.MedicalAids, &src.MedicalAids},
		{&dst.Source, &src.Source},
		{&dst.Links, &src.Links},
	}
}

// Facility copies incoming values onto dst only where dst is currently
// empty; richer existing data is never overwritten. Booleans and the
// provenance dates are left alone. Reports whether anything changed.
func Facility(dst, src *model.Facility) bool {
	changed := false

	for _, pair := range facilityStringFields(dst, src) {
		if strings.TrimSpace(*pair[0]) == "" && strings.TrimSpace(*pair[1]) != "" {
			*pair[0] = *pair[1]
			changed = true
		}
	}

	for _, pair := range facilitySliceFields(dst, src) {
		if len(*pair[0]) == 0 && len(*pair[1]) != 0 {
			*pair[0] = append([]string(nil), *pair[1]...)
			changed = true
		}
	}

	if dst.Confidence == "" && src.Confidence != "" {
		dst.Confidence = src.Confidence
		changed = true
	}

	beforeLat, beforeLon := dst.Lat, dst.Lon
	CoordPair(&dst.Lat, &dst.Lon, src.Lat, src.Lon)
	if dst.Lat != beforeLat || dst.Lon != beforeLon {
		changed = true
	}

	return changed
}
