// Package pipeline runs the scrape pass: load every source, coerce rows
// into typed records, fuzzy-dedupe, map to the canonical schema, validate,
// and apply the cross-record post-pass.
package pipeline

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/zimhealth/registry-cli/internal/coerce"
	"github.com/zimhealth/registry-cli/internal/dedupe"
	"github.com/zimhealth/registry-cli/internal/model"
	"github.com/zimhealth/registry-cli/internal/schema"
	"github.com/zimhealth/registry-cli/internal/source"
)

// Pipeline wires the scrape stages together. Sources and stage options
// are injected so tests can run against fixture loaders.
type Pipeline struct {
	sources []source.Loader
	mapper  *schema.Mapper
	dedupe  dedupe.Options
}

// Result carries the scraped batch along with per-stage counts.
type Result struct {
	Facilities []model.Facility
	Loaded     int
	Deduped    int
	Dropped    int
	Failed     []string // labels of sources that could not be loaded
}

func New(sources []source.Loader, mapper *schema.Mapper, opts dedupe.Options) *Pipeline {
	return &Pipeline{
		sources: sources,
		mapper:  mapper,
		dedupe:  opts,
	}
}

// Run executes the scrape pass. A source that fails to load is logged
// and skipped; the pass itself never fails.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := zap.L()

	var coerced []model.Coerced
	result := &Result{}
	for _, src := range p.sources {
		records, err := src.Load(ctx)
		if err != nil {
			log.Warn("pipeline: source failed, skipping",
				zap.String("source", src.Label()),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, src.Label())
			continue
		}
		for _, raw := range records {
			coerced = append(coerced, coerce.Record(raw, src.Label()))
		}
		log.Info("pipeline: source loaded",
			zap.String("source", src.Label()),
			zap.Int("records", len(records)),
		)
	}
	result.Loaded = len(coerced)

	deduped := dedupe.Facilities(coerced, p.dedupe)
	result.Deduped = len(deduped)

	var facilities []model.Facility
	for _, record := range deduped {
		facility := p.mapper.Map(record)
		if facility.Name == "" || facility.Province == "" {
			result.Dropped++
			continue
		}
		facilities = append(facilities, facility)
	}

	postPass(facilities)

	sort.Slice(facilities, func(i, j int) bool {
		a, b := &facilities[i], &facilities[j]
		if a.Province != b.Province {
			return a.Province < b.Province
		}
		if a.District != b.District {
			return a.District < b.District
		}
		return a.Name < b.Name
	})
	result.Facilities = facilities

	log.Info("pipeline: scrape pass complete",
		zap.Int("loaded", result.Loaded),
		zap.Int("deduped", result.Deduped),
		zap.Int("dropped", result.Dropped),
		zap.Int("facilities", len(facilities)),
		zap.Strings("failed_sources", result.Failed),
	)
	return result, nil
}

// postPass applies the cross-record fixups that need the final batch:
// multi-source corroboration raises confidence, and a 24h hospital-class
// facility cannot stay on basic emergency cover.
func postPass(facilities []model.Facility) {
	for i := range facilities {
		f := &facilities[i]
		if len(f.Source) > 1 {
			f.Confidence = model.ConfidenceHigh
		}
		if f.Open24h && f.EmergencyLevel == model.EmergencyBasic && strings.Contains(f.FacilityType, "Hospital") {
			f.EmergencyLevel = model.EmergencyFull
		}
	}
}
