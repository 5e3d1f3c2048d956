package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zimhealth/registry-cli/internal/model"
	"github.com/zimhealth/registry-cli/internal/reconcile"
)

func TestLoadFacilities_AbsentFile(t *testing.T) {
	facilities, err := LoadFacilities(filepath.Join(t.TempDir(), "hospitals.json"))
	require.NoError(t, err)
	assert.Nil(t, facilities)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "hospitals.json")
	lat := -17.829
	in := []model.Facility{
		{
			ID:         "parirenyatwa-group-of-hospitals-harare",
			Name:       "Parirenyatwa Group of Hospitals",
			Province:   "Harare",
			District:   "Harare",
			Lat:        &lat,
			Source:     []string{"mohcc_official"},
			Confidence: model.ConfidenceHigh,
			Verified:   true,
		},
	}

	require.NoError(t, SaveFacilities(path, in))

	out, err := LoadFacilities(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveFacilities_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospitals.json")
	require.NoError(t, SaveFacilities(path, []model.Facility{
		{ID: "x", Name: "St Anne's Hospital", Website: "https://example.com/?a=1&b=2"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasSuffix(text, "\n"))
	assert.Contains(t, text, "  \"id\": \"x\"")
	// HTML escaping stays off so URLs survive verbatim.
	assert.Contains(t, text, "a=1&b=2")
}

func TestLoadFacilities_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospitals.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadFacilities(path)
	assert.Error(t, err)
}

func TestHistory_RecordAndList(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer h.Close()

	ctx := context.Background()
	require.NoError(t, h.Migrate(ctx))

	stats := reconcile.Stats{
		Existing: 10,
		Scraped:  4,
		Updated:  2,
		Added:    1,
		Total:    11,
		NewBySource: map[string]int{
			"mohcc_official": 1,
		},
	}

	run, err := h.RecordRun(ctx, "update", stats)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	runs, err := h.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "update", runs[0].Command)
	assert.Equal(t, 1, runs[0].Added)
	assert.Equal(t, stats, runs[0].Stats)
}

func TestHistory_ListLimit(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer h.Close()

	ctx := context.Background()
	require.NoError(t, h.Migrate(ctx))

	for i := 0; i < 5; i++ {
		_, err := h.RecordRun(ctx, "update", reconcile.Stats{})
		require.NoError(t, err)
	}

	runs, err := h.ListRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
