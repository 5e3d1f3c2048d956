// Package reconcile merges a new batch of canonical-shaped records into
// the persisted canonical store.
//
// Rules, in order of importance:
//   - never drop an existing facility;
//   - match records by the stable store key (name + best locality);
//   - only fill empty fields from the new batch, never overwrite richer
//     existing data;
//   - track first_seen/last_seen dates for provenance.
package reconcile

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/zimhealth/registry-cli/internal/merge"
	"github.com/zimhealth/registry-cli/internal/model"
	"github.com/zimhealth/registry-cli/internal/normalize"
)

// Stats summarizes one reconciliation pass for the run report.
type Stats struct {
	Existing   int `json:"existing"`
	Scraped    int `json:"scraped"`
	Historical int `json:"historical"`
	Updated    int `json:"updated"`
	Added      int `json:"added"`
	Total      int `json:"total"`

	ScrapedBySource map[string]int `json:"scraped_by_source,omitempty"`
	NewBySource     map[string]int `json:"new_by_source,omitempty"`
	UpdatedBySource map[string]int `json:"updated_by_source,omitempty"`
}

// Merge reconciles the primary batch, then a historical fallback batch,
// into the existing store. The store only grows or updates; records are
// never deleted. Output is sorted by (province, district, name) so the
// persisted store is deterministic.
func Merge(existing []model.Facility, primary, fallback []model.Facility, today string) ([]model.Facility, Stats) {
	stats := Stats{
		Existing:        len(existing),
		Scraped:         len(primary),
		Historical:      len(fallback),
		ScrapedBySource: make(map[string]int),
		NewBySource:     make(map[string]int),
		UpdatedBySource: make(map[string]int),
	}

	batch := keyDedupe(primary, fallback, stats.ScrapedBySource)

	index := make(map[string]int, len(existing))
	store := make([]model.Facility, 0, len(existing)+len(batch))
	for _, record := range existing {
		key := normalize.StoreKey(&record)
		if key != "" {
			if _, dup := index[key]; dup {
				continue
			}
			index[key] = len(store)
		}
		// Unkeyed existing records are kept as-is: the store never drops.
		store = append(store, record)
	}

	for _, incoming := range batch {
		key := normalize.StoreKey(&incoming)
		if key == "" {
			continue
		}

		if at, ok := index[key]; ok {
			if update(&store[at], &incoming, today) {
				stats.Updated++
				countSources(stats.UpdatedBySource, incoming.Source)
			}
			continue
		}

		incoming.LastSeen = today
		if incoming.FirstSeen == "" {
			incoming.FirstSeen = today
		}
		stripCorrectionLinks(&incoming)
		index[key] = len(store)
		store = append(store, incoming)
		stats.Added++
		countSources(stats.NewBySource, incoming.Source)
	}

	for i := range store {
		stripCorrectionLinks(&store[i])
	}

	sort.Slice(store, func(i, j int) bool {
		a, b := &store[i], &store[j]
		if a.Province != b.Province {
			return a.Province < b.Province
		}
		if a.District != b.District {
			return a.District < b.District
		}
		return a.Name < b.Name
	})

	stats.Total = len(store)
	zap.L().Info("reconcile: merge complete",
		zap.Int("existing", stats.Existing),
		zap.Int("updated", stats.Updated),
		zap.Int("added", stats.Added),
		zap.Int("total", stats.Total),
	)
	return store, stats
}

// update fills the existing record's empty fields from the incoming one
// and advances the provenance dates. Reports whether the record changed
// beyond last_seen.
func update(existing *model.Facility, incoming *model.Facility, today string) bool {
	changed := merge.Facility(existing, incoming)

	existing.LastSeen = today
	if existing.FirstSeen == "" {
		existing.FirstSeen = today
		changed = true
	}

	return changed
}

// keyDedupe flattens the primary batch plus the historical fallback into
// one key-unique batch, first occurrence winning, counting source
// coverage as it goes.
func keyDedupe(primary, fallback []model.Facility, bySource map[string]int) []model.Facility {
	seen := make(map[string]struct{}, len(primary)+len(fallback))
	out := make([]model.Facility, 0, len(primary)+len(fallback))
	for _, batch := range [][]model.Facility{primary, fallback} {
		for _, record := range batch {
			key := normalize.StoreKey(&record)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, record)
			countSources(bySource, record.Source)
		}
	}
	return out
}

// stripCorrectionLinks drops "suggest correction" affordances from
// records whose verification label already says they are verified, so
// confirmed listings stop inviting edits.
func stripCorrectionLinks(record *model.Facility) {
	if !strings.Contains(strings.ToLower(record.VerifiedText), "verified") {
		return
	}
	if len(record.Links) == 0 {
		return
	}

	kept := record.Links[:0]
	for _, link := range record.Links {
		if !strings.Contains(strings.ToLower(link), "suggest correction") {
			kept = append(kept, link)
		}
	}
	if len(kept) == 0 {
		record.Links = nil
	} else {
		record.Links = kept
	}
}

func countSources(counter map[string]int, labels []string) {
	if len(labels) == 0 {
		counter["unknown"]++
		return
	}
	for _, label := range labels {
		if strings.TrimSpace(label) != "" {
			counter[label]++
		}
	}
}
