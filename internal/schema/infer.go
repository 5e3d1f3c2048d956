package schema

import (
	"strings"

	"github.com/zimhealth/registry-cli/internal/model"
	"github.com/zimhealth/registry-cli/internal/normalize"
)

// urbanCentres are the normalized names of known urban districts/cities.
var urbanCentres = map[string]struct{}{
	"harare": {}, "bulawayo": {}, "gweru": {}, "mutare": {},
	"masvingo": {}, "kwekwe": {}, "chitungwiza": {}, "queque": {},
	"chinhoyi": {}, "bindura": {}, "victoria falls": {}, "vic falls": {},
}

// InferRuralUrban infers the rural/urban flag. An explicit value wins
// (title-cased); otherwise known urban centres, a "rural" name, or a
// clinic category decide, and an unplaced record defaults to Peri-urban.
func (m *Mapper) InferRuralUrban(c *model.Coerced) string {
	if explicit := strings.TrimSpace(c.RuralUrban); explicit != "" {
		return m.titler.String(explicit)
	}

	locality := normalize.Text(c.Locality())
	if _, ok := urbanCentres[locality]; ok {
		return "Urban"
	}
	if strings.Contains(normalize.Text(c.Name), "rural") {
		return "Rural"
	}
	if strings.Contains(normalize.Text(c.Category), "clinic") {
		return "Rural"
	}
	if locality != "" {
		return "Urban"
	}
	return "Peri-urban"
}

// DefaultServices returns the likely service set for a facility type and
// ownership. Only used for records that carry no explicit services.
func (m *Mapper) DefaultServices(facilityType, ownership string) []string {
	var services []string
	switch {
	case strings.Contains(facilityType, "Central") || strings.Contains(facilityType, "Provincial"):
		services = []string{"ER", "Maternity", "Theatre", "ICU", "Lab", "X-Ray", "Inpatient"}
	case strings.Contains(facilityType, "District"):
		services = []string{"ER", "Maternity", "Lab", "Inpatient"}
	case strings.Contains(facilityType, "Clinic"):
		services = []string{"OPD", "MCH", "Immunisation", "HIV"}
	case strings.Contains(facilityType, "Pharmacy"):
		services = []string{"Dispensary"}
	}

	if strings.Contains(strings.ToLower(ownership), "mission") && strings.Contains(facilityType, "Hospital") {
		services = []string{"ER", "Maternity", "Lab", "Inpatient"}
	}

	return services
}
