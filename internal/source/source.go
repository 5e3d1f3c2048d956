// Package source loads raw facility rows from files and seed scrapers.
// Loaders return loosely-typed rows; coercion and validation happen
// downstream in the pipeline.
package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/zimhealth/registry-cli/internal/model"
)

// Loader produces one batch of raw records from a single source.
type Loader interface {
	// Label identifies the source for provenance tagging.
	Label() string
	// Load reads all rows. A failed load returns an error; callers log
	// and continue with the remaining sources.
	Load(ctx context.Context) ([]model.RawRecord, error)
}

// ScanDir builds one FileSource per file in dir. A missing directory is
// not an error: the raw drop is optional and the seed scrapers still run.
func ScanDir(dir string) ([]Loader, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		zap.L().Info("source: raw dir absent, skipping", zap.String("dir", dir))
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "source: read raw dir")
	}

	var loaders []Loader
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.Contains(name, ".") {
			continue
		}
		loaders = append(loaders, NewFileSource(filepath.Join(dir, name)))
	}
	sort.Slice(loaders, func(i, j int) bool { return loaders[i].Label() < loaders[j].Label() })
	return loaders, nil
}

// Seeds returns the hand-authored scraper stubs that stand in for the
// ministry portal, private network, and places integrations until real
// feeds exist.
func Seeds() []Loader {
	return []Loader{
		ministryPortal{},
		privateNetworks{},
		googlePlacesStub{},
	}
}

type ministryPortal struct{}

func (ministryPortal) Label() string { return "ministry_portal" }

func (ministryPortal) Load(context.Context) ([]model.RawRecord, error) {
	return []model.RawRecord{
		{
			"name":            "Gweru Provincial Hospital",
			"province":        "Midlands",
			"city":            "Gweru",
			"district":        "Gweru",
			"address":         "Hospital Rd, Gweru",
			"type":            "public",
			"ownership":       "Government",
			"bed_count":       320,
			"services":        []string{"ER", "Maternity"},
			"phone":           "+263-54-222-333",
			"website":         "",
			"facility_type":   "Provincial Hospital",
			"operating_hours": "24/7 for emergencies; outpatient 08:00-17:00",
		},
	}, nil
}

type privateNetworks struct{}

func (privateNetworks) Label() string { return "private_networks" }

func (privateNetworks) Load(context.Context) ([]model.RawRecord, error) {
	return []model.RawRecord{
		{
			"name":            "Borrowdale Trauma Centre",
			"province":        "Harare",
			"city":            "Harare",
			"district":        "Harare",
			"address":         "Borrowdale Rd, Harare",
			"type":            "private",
			"ownership":       "Private",
			"bed_count":       80,
			"services":        []string{"Trauma", "ICU"},
			"phone":           "+263-4-870-000",
			"website":         "https://www.traumacentre.co.zw",
			"facility_type":   "Private Hospital",
			"operating_hours": "24/7",
		},
	}, nil
}

type googlePlacesStub struct{}

func (googlePlacesStub) Label() string { return "google_stub" }

func (googlePlacesStub) Load(context.Context) ([]model.RawRecord, error) {
	return []model.RawRecord{
		{
			"name":          "Hwange Colliery Hospital",
			"province":      "Matabeleland North",
			"city":          "Hwange",
			"district":      "Hwange",
			"address":       "Lusumbami, Hwange",
			"ownership":     "Corporate",
			"facility_type": "District Hospital",
			"services":      []string{"ER", "Maternity", "Lab"},
			"phone":         "+263 281 214 1234",
			"latitude":      -18.364,
			"longitude":     26.501,
			"source":        "google_stub",
		},
		{
			"name":          "Victoria Falls Hospital",
			"province":      "Matabeleland North",
			"city":          "Victoria Falls",
			"district":      "Victoria Falls",
			"address":       "Park Way, Victoria Falls",
			"ownership":     "Government",
			"facility_type": "District Hospital",
			"services":      []string{"ER", "Maternity", "Lab"},
			"phone":         "+263 213 284 3216",
			"latitude":      -17.926,
			"longitude":     25.842,
			"source":        "google_stub",
		},
	}, nil
}
