package schema

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zimhealth/registry-cli/internal/merge"
	"github.com/zimhealth/registry-cli/internal/model"
	"github.com/zimhealth/registry-cli/internal/normalize"
)

// Options configures a Mapper. Zero values pick the built-in defaults.
type Options struct {
	Rules   []Rule
	Trusted []string // source labels that mark a record verified
	Today   string   // ISO date stamped as last_verified; defaults to today
}

// Mapper transforms coerced records into the canonical facility shape.
type Mapper struct {
	rules   []Rule
	trusted map[string]struct{}
	today   string
	titler  cases.Caser
}

// NewMapper builds a Mapper from options.
func NewMapper(opts Options) *Mapper {
	rules := opts.Rules
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	trusted := make(map[string]struct{}, len(opts.Trusted))
	for _, s := range opts.Trusted {
		trusted[s] = struct{}{}
	}
	today := opts.Today
	if today == "" {
		today = time.Now().UTC().Format("2006-01-02")
	}
	return &Mapper{
		rules:   rules,
		trusted: trusted,
		today:   today,
		titler:  cases.Title(language.English),
	}
}

// TrustedSource reports whether the given source label is authoritative
// enough to mark a record verified.
func (m *Mapper) TrustedSource(label string) bool {
	_, ok := m.trusted[label]
	return ok
}

// AnyTrusted reports whether any of the labels is a trusted source.
func (m *Mapper) AnyTrusted(labels []string) bool {
	for _, label := range labels {
		if m.TrustedSource(label) {
			return true
		}
	}
	return false
}

// Map transforms one coerced record into the canonical facility shape.
func (m *Mapper) Map(c model.Coerced) model.Facility {
	facilityType := m.ClassifyFacilityType(&c)
	ruralUrban := m.InferRuralUrban(&c)

	services := merge.UnionSorted(c.Services, nil)
	if len(services) == 0 {
		services = merge.UnionSorted(m.DefaultServices(facilityType, c.Ownership), nil)
	}

	tier := normalizeTier(c.Tier)
	if tier == "" {
		tiered := c
		tiered.FacilityType = facilityType
		tiered.Services = services
		tier = m.TierFromRecord(&tiered)
	}

	name := c.Name
	if name == "" {
		name = "Unnamed Facility"
	}

	district := merge.FirstNonEmpty(c.District, c.City)
	city := merge.FirstNonEmpty(c.City, c.District)

	id := c.ID
	if id == "" {
		locality := district
		if locality == "" {
			locality = "zw"
		}
		id = normalize.Slug(name, locality)
	}

	emergency := c.EmergencyLevel
	if emergency == "" {
		emergency = model.EmergencyBasic
		if strings.Contains(facilityType, "Hospital") {
			emergency = model.EmergencyFull
		}
	}

	confidence := c.Confidence
	if confidence == "" {
		confidence = model.ConfidenceMedium
	}

	lastVerified := c.LastVerified
	if lastVerified == "" {
		lastVerified = m.today
	}

	phone := normalize.Phone(c.Phone)
	whatsapp := normalize.Phone(merge.FirstNonEmpty(c.WhatsApp, c.Phone))

	return model.Facility{
		ID:             id,
		Name:           name,
		Aliases:        merge.UnionSorted(c.Aliases, nil),
		FacilityType:   facilityType,
		Ownership:      m.titler.String(merge.FirstNonEmpty(c.Ownership, c.TypeHint)),
		RuralUrban:     ruralUrban,
		Province:       c.Province,
		District:       district,
		Ward:           c.Ward,
		City:           city,
		Address:        c.Address,
		Services:       services,
		Open24h:        c.Open24h || open24hFromHours(c.OperatingHours) || strings.Contains(normalize.Text(facilityType), "central"),
		EmergencyLevel: emergency,
		CostBand:       c.CostBand,
		MedicalAids:    merge.UnionSorted(c.MedicalAids, nil),
		Phone:          phone,
		WhatsApp:       whatsapp,
		Email:          c.Email,
		Website:        c.Website,
		Lat:            c.Lat,
		Lon:            c.Lon,
		Tier:           tier,
		LastVerified:   lastVerified,
		Source:         merge.UnionSorted(c.Source, nil),
		Confidence:     confidence,
		Verified:       c.Verified || m.AnyTrusted(c.Source),
		VerifiedText:   c.VerifiedText,
		Links:          merge.UnionSorted(c.Links, nil),
	}
}

// open24hFromHours reports whether free-text operating hours indicate
// round-the-clock operation.
func open24hFromHours(hours string) bool {
	return strings.Contains(normalize.Text(hours), "24")
}

// normalizeTier converts explicit tier text ("tier 2", "T2", "Tier 2")
// into the canonical form, or "" when the text is not a tier.
func normalizeTier(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	switch trimmed {
	case model.Tier1, model.Tier2, model.Tier3:
		return trimmed
	}
	compact := strings.ReplaceAll(strings.ToLower(trimmed), "tier", "")
	compact = strings.ReplaceAll(compact, " ", "")
	compact = strings.TrimPrefix(compact, "t")
	if compact != "" && strings.Trim(compact, "0123456789") == "" {
		return "Tier " + compact
	}
	return ""
}
