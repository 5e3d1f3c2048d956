package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zimhealth/registry-cli/internal/model"
)

func fixtures() []model.Facility {
	return []model.Facility{
		{
			ID:           "parirenyatwa-group-of-hospitals-harare",
			Name:         "Parirenyatwa Group of Hospitals",
			FacilityType: "Central Hospital",
			Province:     "Harare",
			Tier:         model.Tier1,
			Services:     []string{"ER", "Oncology", "Maternity"},
		},
		{
			ID:           "gweru-provincial-hospital-gweru",
			Name:         "Gweru Provincial Hospital",
			FacilityType: "Provincial Hospital",
			Province:     "Midlands",
			Tier:         model.Tier2,
			Services:     []string{"ER", "Maternity"},
		},
		{
			ID:           "mkoba-polyclinic-gweru",
			Name:         "Mkoba Polyclinic",
			FacilityType: "Clinic",
			Province:     "Midlands",
			Tier:         model.Tier3,
			Services:     []string{"OPD", "MCH"},
		},
	}
}

type listResponse struct {
	Count      int              `json:"count"`
	Facilities []model.Facility `json:"facilities"`
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func listNames(t *testing.T, h http.Handler, path string) []string {
	t.Helper()
	rec := get(t, h, path)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, len(resp.Facilities), resp.Count)

	var names []string
	for _, f := range resp.Facilities {
		names = append(names, f.Name)
	}
	return names
}

func TestHealth(t *testing.T) {
	h := New(fixtures()).Handler()
	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestListFilters(t *testing.T) {
	h := New(fixtures()).Handler()

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"all sorted by name", "/api/facilities", []string{
			"Gweru Provincial Hospital", "Mkoba Polyclinic", "Parirenyatwa Group of Hospitals",
		}},
		{"by province", "/api/facilities?province=Midlands", []string{
			"Gweru Provincial Hospital", "Mkoba Polyclinic",
		}},
		{"province match is case-insensitive", "/api/facilities?province=midlands", []string{
			"Gweru Provincial Hospital", "Mkoba Polyclinic",
		}},
		{"by type", "/api/facilities?type=Central+Hospital", []string{
			"Parirenyatwa Group of Hospitals",
		}},
		{"by tier", "/api/facilities?tier=Tier+2", []string{
			"Gweru Provincial Hospital",
		}},
		{"by service substring", "/api/facilities?service=oncology", []string{
			"Parirenyatwa Group of Hospitals",
		}},
		{"combined", "/api/facilities?province=Midlands&service=maternity", []string{
			"Gweru Provincial Hospital",
		}},
		{"no match", "/api/facilities?province=Manicaland", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listNames(t, h, tt.path))
		})
	}
}

func TestListSortByProvince(t *testing.T) {
	h := New(fixtures()).Handler()
	names := listNames(t, h, "/api/facilities?sort=province")
	assert.Equal(t, []string{
		"Parirenyatwa Group of Hospitals",
		"Gweru Provincial Hospital",
		"Mkoba Polyclinic",
	}, names)
}

func TestGetByID(t *testing.T) {
	h := New(fixtures()).Handler()

	rec := get(t, h, "/api/facilities/mkoba-polyclinic-gweru")
	require.Equal(t, http.StatusOK, rec.Code)

	var f model.Facility
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "Mkoba Polyclinic", f.Name)
}

func TestGetByID_NotFound(t *testing.T) {
	h := New(fixtures()).Handler()
	rec := get(t, h, "/api/facilities/no-such-facility")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
