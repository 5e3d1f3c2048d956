package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zimhealth/registry-cli/internal/model"
)

func testMapper() *Mapper {
	return NewMapper(Options{
		Trusted: []string{"hpa_registered_facilities", "mcaz_pharmacies_2024", "mohcc_official"},
		Today:   "2026-08-31",
	})
}

func intp(v int) *int { return &v }

func TestClassifyFacilityType(t *testing.T) {
	m := testMapper()

	tests := []struct {
		name   string
		record model.Coerced
		want   string
	}{
		{"central hospital by name", model.Coerced{Name: "Harare Central Hospital"}, "Central Hospital"},
		{"explicit type wins verbatim", model.Coerced{Name: "Harare Central Hospital", FacilityType: "Weird Explicit"}, "Weird Explicit"},
		{"pharmacy by category", model.Coerced{Category: "pharmacy"}, "Pharmacy"},
		{"dental rule", model.Coerced{Name: "Smile Dental Surgery"}, "Dental Clinic"},
		{"laboratory rule", model.Coerced{Name: "Lancet Laboratory"}, "Lab"},
		{"mission via type hint", model.Coerced{TypeHint: "church"}, "Mission Hospital"},
		{"hospital via category fallback", model.Coerced{Category: "general hospital services"}, "Hospital"},
		{"clinic via category fallback", model.Coerced{Category: "rural clinic"}, "Clinic"},
		{"nothing matches", model.Coerced{Name: "Wellness Centre"}, "Health Facility"},
		{"ordered rules: central beats clinic", model.Coerced{Name: "Central Hospital Clinic"}, "Central Hospital"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ClassifyFacilityType(&tt.record))
		})
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- match: field hospital\n  label: Field Hospital\n"), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	m := NewMapper(Options{Rules: rules, Today: "2026-08-31"})
	assert.Equal(t, "Field Hospital", m.ClassifyFacilityType(&model.Coerced{Name: "Mbare Field Hospital"}))

	_, err = LoadRules(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestInferRuralUrban(t *testing.T) {
	m := testMapper()

	assert.Equal(t, "Urban", m.InferRuralUrban(&model.Coerced{District: "Harare"}))
	assert.Equal(t, "Rural", m.InferRuralUrban(&model.Coerced{Name: "Makumbe Rural Clinic"}))
	assert.Equal(t, "Rural", m.InferRuralUrban(&model.Coerced{Category: "clinic", District: "Somewhere"}))
	assert.Equal(t, "Urban", m.InferRuralUrban(&model.Coerced{District: "Shurugwi"}))
	assert.Equal(t, "Peri-Urban", m.InferRuralUrban(&model.Coerced{RuralUrban: "peri-urban"}))
	assert.Equal(t, "Peri-urban", m.InferRuralUrban(&model.Coerced{Name: "Somewhere Surgery"}))
	assert.Equal(t, "Urban", m.InferRuralUrban(&model.Coerced{City: "Victoria Falls"}))
}

func TestDefaultServices(t *testing.T) {
	m := testMapper()

	assert.Contains(t, m.DefaultServices("Central Hospital", ""), "ICU")
	assert.Equal(t, []string{"ER", "Maternity", "Lab", "Inpatient"}, m.DefaultServices("District Hospital", "Government"))
	assert.Contains(t, m.DefaultServices("Clinic", ""), "OPD")
	assert.Equal(t, []string{"Dispensary"}, m.DefaultServices("Pharmacy", ""))
	assert.Empty(t, m.DefaultServices("Optician", ""))

	// Mission-owned hospitals get the district set even when the type is generic.
	assert.Equal(t, []string{"ER", "Maternity", "Lab", "Inpatient"}, m.DefaultServices("Private Hospital", "Mission"))
}

func TestTierFromRecord(t *testing.T) {
	m := testMapper()

	assert.Equal(t, model.Tier1, m.TierFromRecord(&model.Coerced{BedCount: intp(400)}))
	assert.Equal(t, model.Tier3, m.TierFromRecord(&model.Coerced{BedCount: intp(50), FacilityType: "Clinic"}))
	assert.Equal(t, model.Tier1, m.TierFromRecord(&model.Coerced{Services: []string{"Oncology"}}))
	assert.Equal(t, model.Tier1, m.TierFromRecord(&model.Coerced{FacilityType: "Referral Hospital"}))
	assert.Equal(t, model.Tier2, m.TierFromRecord(&model.Coerced{BedCount: intp(200)}))
	assert.Equal(t, model.Tier2, m.TierFromRecord(&model.Coerced{FacilityType: "Provincial Hospital"}))
	assert.Equal(t, model.Tier3, m.TierFromRecord(&model.Coerced{}))
}

func TestMap_FullShape(t *testing.T) {
	m := testMapper()

	f := m.Map(model.Coerced{
		Name:           "Gweru Provincial Hospital",
		Province:       "Midlands",
		City:           "Gweru",
		District:       "Gweru",
		Address:        "Hospital Rd, Gweru",
		TypeHint:       "public",
		Ownership:      "GOVERNMENT",
		BedCount:       intp(320),
		Services:       []string{"Maternity", "ER"},
		Phone:          "+263-54-222-333",
		FacilityType:   "Provincial Hospital",
		OperatingHours: "24/7 for emergencies; outpatient 08:00-17:00",
		Source:         []string{"mohcc_official"},
	})

	assert.Equal(t, "gweru-provincial-hospital-gweru", f.ID)
	assert.Equal(t, "Provincial Hospital", f.FacilityType)
	assert.Equal(t, "Government", f.Ownership)
	assert.Equal(t, "Urban", f.RuralUrban)
	assert.Equal(t, []string{"ER", "Maternity"}, f.Services, "services sorted")
	assert.True(t, f.Open24h)
	assert.Equal(t, model.EmergencyFull, f.EmergencyLevel)
	assert.Equal(t, model.Tier2, f.Tier)
	assert.Equal(t, "+263-54-222-333", f.WhatsApp, "whatsapp defaults to phone")
	assert.Equal(t, "2026-08-31", f.LastVerified)
	assert.True(t, f.Verified, "trusted source marks verified")
	assert.Equal(t, model.ConfidenceMedium, f.Confidence)
}

func TestMap_GapFilling(t *testing.T) {
	m := testMapper()

	f := m.Map(model.Coerced{Name: "Makumbe Rural Clinic", Province: "Mashonaland East"})

	assert.Equal(t, "Clinic", f.FacilityType)
	assert.Equal(t, "Rural", f.RuralUrban)
	assert.Equal(t, []string{"HIV", "Immunisation", "MCH", "OPD"}, f.Services)
	assert.Equal(t, model.EmergencyBasic, f.EmergencyLevel)
	assert.Equal(t, model.Tier3, f.Tier)
	assert.False(t, f.Verified)
	assert.Equal(t, "makumbe-rural-clinic-zw", f.ID, "no locality falls back to zw suffix")
}

func TestMap_ExplicitValuesPreserved(t *testing.T) {
	m := testMapper()

	lat, lon := -18.364, 26.501
	f := m.Map(model.Coerced{
		ID:             "custom-id",
		Name:           "Hwange Colliery Hospital",
		District:       "Hwange",
		Tier:           "T2",
		EmergencyLevel: model.EmergencyBasic,
		Lat:            &lat,
		Lon:            &lon,
	})

	assert.Equal(t, "custom-id", f.ID)
	assert.Equal(t, model.Tier2, f.Tier, "terse tier form normalized")
	assert.Equal(t, model.EmergencyBasic, f.EmergencyLevel)
	require.NotNil(t, f.Lat)
	assert.InDelta(t, -18.364, *f.Lat, 0.0001)
}

func TestMap_CentralHospitalImpliesOpen24h(t *testing.T) {
	m := testMapper()
	f := m.Map(model.Coerced{Name: "Harare Central Hospital", District: "Harare"})
	assert.True(t, f.Open24h)
	assert.Equal(t, model.Tier1, f.Tier)
}

func TestNormalizeTier(t *testing.T) {
	assert.Equal(t, "Tier 1", normalizeTier("Tier 1"))
	assert.Equal(t, "Tier 2", normalizeTier("t2"))
	assert.Equal(t, "Tier 3", normalizeTier("TIER 3"))
	assert.Equal(t, "", normalizeTier("platinum"))
	assert.Equal(t, "", normalizeTier(""))
}
