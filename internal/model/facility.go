// Package model defines the record types passed between pipeline stages:
// the loose raw mapping produced by source loaders, the coerced
// intermediate record, and the canonical facility shape persisted in the
// store.
package model

// Confidence grades how well-attested a facility record is.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// rank orders confidence levels for monotonic escalation.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// Escalate returns the higher of c and other. Confidence never downgrades.
func (c Confidence) Escalate(other Confidence) Confidence {
	if other.rank() > c.rank() {
		return other
	}
	return c
}

// Emergency levels a facility can provide.
const (
	EmergencyBasic = "Basic"
	EmergencyFull  = "Full"
)

// Capability tiers, Tier 1 highest.
const (
	Tier1 = "Tier 1"
	Tier2 = "Tier 2"
	Tier3 = "Tier 3"
)

// RawRecord is one loosely-typed row from a source loader: string keys,
// string/number/list values, nothing validated yet.
type RawRecord map[string]any

// Facility is the canonical record persisted in the store.
type Facility struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Aliases        []string   `json:"aliases"`
	FacilityType   string     `json:"facility_type"`
	Ownership      string     `json:"ownership,omitempty"`
	RuralUrban     string     `json:"rural_urban"`
	Province       string     `json:"province"`
	District       string     `json:"district"`
	Ward           string     `json:"ward,omitempty"`
	City           string     `json:"city"`
	Address        string     `json:"address"`
	Services       []string   `json:"services"`
	Open24h        bool       `json:"open_24h"`
	EmergencyLevel string     `json:"emergency_level"`
	CostBand       string     `json:"cost_band,omitempty"`
	MedicalAids    []string   `json:"medical_aids"`
	Phone          string     `json:"phone,omitempty"`
	WhatsApp       string     `json:"whatsapp,omitempty"`
	Email          string     `json:"email,omitempty"`
	Website        string     `json:"website,omitempty"`
	Lat            *float64   `json:"lat,omitempty"`
	Lon            *float64   `json:"lon,omitempty"`
	Tier           string     `json:"tier,omitempty"`
	LastVerified   string     `json:"last_verified,omitempty"`
	FirstSeen      string     `json:"first_seen,omitempty"`
	LastSeen       string     `json:"last_seen,omitempty"`
	Source         []string   `json:"source"`
	Confidence     Confidence `json:"confidence"`
	Verified       bool       `json:"verified"`
	VerifiedText   string     `json:"verified_text,omitempty"`
	Links          []string   `json:"links,omitempty"`
}

// Coerced is the typed intermediate record produced by the field coercer.
// Optional scalars use pointers so "absent" stays distinguishable from a
// zero value; string fields use "" for unknown.
type Coerced struct {
	ID             string
	Name           string
	Category       string // loose facility category hint from the source
	TypeHint       string // loose "type" column (public/private/mission/...)
	FacilityType   string
	Ownership      string
	RuralUrban     string
	Province       string
	District       string
	Ward           string
	City           string
	Address        string
	EmergencyLevel string
	CostBand       string
	Tier           string
	Phone          string
	WhatsApp       string
	Email          string
	Website        string
	OperatingHours string
	Services       []string
	MedicalAids    []string
	Aliases        []string
	Source         []string
	Open24h        bool
	BedCount       *int
	Lat            *float64
	Lon            *float64
	Confidence     Confidence
	Verified       bool
	LastVerified   string
	VerifiedText   string
	Links          []string
}

// Locality returns the best batch-scoped locality: district, else city.
func (c *Coerced) Locality() string {
	if c.District != "" {
		return c.District
	}
	return c.City
}
