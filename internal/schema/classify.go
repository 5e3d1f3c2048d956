// Package schema maps coerced records into the canonical facility shape,
// inferring facility type, rural/urban status, default services, and tier
// from partial input. Inference only fills gaps: an explicit non-empty
// value always wins.
package schema

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/zimhealth/registry-cli/internal/model"
	"github.com/zimhealth/registry-cli/internal/normalize"
)

// Rule classifies a facility by substring match against the normalized
// name, category, and type hints. Rules are evaluated in order,
// first match wins.
type Rule struct {
	Match string `yaml:"match"`
	Label string `yaml:"label"`
}

// DefaultRules is the built-in classification table. Order matters:
// "central hospital" must fire before the bare "clinic" catch-all.
func DefaultRules() []Rule {
	return []Rule{
		{Match: "central hospital", Label: "Central Hospital"},
		{Match: "provincial hospital", Label: "Provincial Hospital"},
		{Match: "district hospital", Label: "District Hospital"},
		{Match: "mission hospital", Label: "Mission Hospital"},
		{Match: "polyclinic", Label: "Polyclinic"},
		{Match: "private hospital", Label: "Private Hospital"},
		{Match: "clinic", Label: "Clinic"},
		{Match: "pharmacy", Label: "Pharmacy"},
		{Match: "optician", Label: "Optician"},
		{Match: "dental", Label: "Dental Clinic"},
		{Match: "laboratory", Label: "Lab"},
	}
}

// LoadRules reads a replacement classification table from a YAML file, so
// new rules do not require a rebuild.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: read rules %s", path)
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, eris.Wrapf(err, "schema: parse rules %s", path)
	}
	if len(rules) == 0 {
		return nil, eris.Errorf("schema: rules file %s is empty", path)
	}
	return rules, nil
}

// fallbackLabel is returned when no rule or category hint applies.
const fallbackLabel = "Health Facility"

// ClassifyFacilityType returns the explicit facility type verbatim when
// present, else runs the rule table against the normalized name, category,
// and type hints, then falls back to coarser category heuristics.
func (m *Mapper) ClassifyFacilityType(c *model.Coerced) string {
	if explicit := strings.TrimSpace(c.FacilityType); explicit != "" {
		return explicit
	}

	name := normalize.Text(c.Name)
	category := normalize.Text(c.Category)
	typeHint := normalize.Text(c.TypeHint)

	for _, rule := range m.rules {
		if strings.Contains(name, rule.Match) ||
			strings.Contains(category, rule.Match) ||
			strings.Contains(typeHint, rule.Match) {
			return rule.Label
		}
	}

	switch {
	case strings.Contains(typeHint, "mission") || strings.Contains(typeHint, "church"):
		return "Mission Hospital"
	case strings.Contains(category, "hospital") || strings.Contains(typeHint, "hospital"):
		return "Hospital"
	case strings.Contains(category, "pharmacy"):
		return "Pharmacy"
	case strings.Contains(category, "clinic"):
		return "Clinic"
	}
	return fallbackLabel
}
