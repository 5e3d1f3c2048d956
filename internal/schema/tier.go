package schema

import (
	"strings"

	"github.com/zimhealth/registry-cli/internal/model"
	"github.com/zimhealth/registry-cli/internal/normalize"
)

// tier1Specialisms are service tags that alone qualify a facility for
// Tier 1, matched against normalized service names.
var tier1Specialisms = map[string]struct{}{
	"oncology": {}, "cardiology": {}, "neurosurgery": {}, "icu": {},
	"critical care": {}, "trauma": {}, "hematology": {}, "neonatology": {},
}

// TierFromRecord computes the capability tier from bed count, services,
// and facility-type text. Bed count only counts when it is a genuine
// integer.
func (m *Mapper) TierFromRecord(c *model.Coerced) string {
	services := make(map[string]struct{}, len(c.Services))
	for _, s := range c.Services {
		services[normalize.Text(s)] = struct{}{}
	}
	typeValue := normalize.Text(c.FacilityType)

	hasTier1 := c.BedCount != nil && *c.BedCount >= 350
	for key := range tier1Specialisms {
		if _, ok := services[key]; ok {
			hasTier1 = true
			break
		}
	}
	isCentral := strings.Contains(typeValue, "central") ||
		strings.Contains(typeValue, "referral") ||
		strings.Contains(typeValue, "teaching")
	if hasTier1 || isCentral {
		return model.Tier1
	}

	midSized := c.BedCount != nil && *c.BedCount >= 120 && *c.BedCount <= 349
	if midSized || strings.Contains(typeValue, "provincial") || strings.Contains(typeValue, "district") {
		return model.Tier2
	}

	return model.Tier3
}
