// Package dedupe merges near-duplicate facilities within one batch using
// scoped fuzzy name matching. Records are only compared within the same
// province or district; alternate spellings of a merged facility are
// captured as aliases.
package dedupe

import (
	"go.uber.org/zap"

	"github.com/zimhealth/registry-cli/internal/match"
	"github.com/zimhealth/registry-cli/internal/merge"
	"github.com/zimhealth/registry-cli/internal/model"
)

// Options tunes the matching thresholds.
type Options struct {
	// Threshold is the minimum similarity score, exclusive, for two names
	// to be considered the same facility.
	Threshold float64
	// HighConfidence is the score, exclusive, above which a merge
	// escalates the record's confidence to high.
	HighConfidence float64
	// Trusted are source labels that mark a record verified.
	Trusted map[string]struct{}
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{Threshold: 88, HighConfidence: 92}
}

// Facilities folds the batch into an accumulator of canonical records,
// merging each incoming record into its best-scoring accumulated
// candidate. Candidates must share a normalized province or district;
// the highest score strictly above the threshold wins, and ties keep the
// earliest-scanned candidate.
func Facilities(batch []model.Coerced, opts Options) []model.Coerced {
	canonical := make([]model.Coerced, 0, len(batch))
	merged := 0

	for _, record := range batch {
		idx, score := bestCandidate(canonical, &record, opts.Threshold)
		if idx < 0 {
			canonical = append(canonical, newEntry(record, opts))
			continue
		}

		mergeInto(&canonical[idx], &record, score, opts)
		merged++
	}

	if merged > 0 {
		zap.L().Debug("dedupe: merged near-duplicates",
			zap.Int("input", len(batch)),
			zap.Int("merged", merged),
			zap.Int("output", len(canonical)),
		)
	}
	return canonical
}

// bestCandidate scans the accumulator for the highest-scoring candidate
// sharing a locality axis with the record. Returns -1 when none beats the
// threshold.
func bestCandidate(canonical []model.Coerced, record *model.Coerced, threshold float64) (int, float64) {
	locality := record.Locality()
	best := -1
	bestScore := 0.0

	for i := range canonical {
		existing := &canonical[i]
		sameProvince := match.SameLocality(existing.Province, record.Province)
		sameDistrict := match.SameLocality(existing.District, locality)
		if !sameProvince && !sameDistrict {
			continue
		}

		score := match.Ratio(existing.Name, record.Name)
		if score > threshold && score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best, bestScore
}

// newEntry prepares a record for the accumulator, defaulting its
// provenance fields.
func newEntry(record model.Coerced, opts Options) model.Coerced {
	record.Aliases = merge.UnionSorted(record.Aliases, nil)
	record.Source = merge.UnionSorted(record.Source, nil)
	if record.Confidence == "" {
		record.Confidence = model.ConfidenceMedium
	}
	if !record.Verified {
		record.Verified = anyTrusted(record.Source, opts.Trusted)
	}
	return record
}

// mergeInto merges the incoming record into the matched accumulator
// entry under the shared field policy, then arbitrates provenance.
func mergeInto(matched *model.Coerced, incoming *model.Coerced, score float64, opts Options) {
	matched.Aliases = merge.UnionSorted(matched.Aliases, append(incoming.Aliases, incoming.Name))
	matched.Source = merge.UnionSorted(matched.Source, incoming.Source)

	if score > opts.HighConfidence {
		matched.Confidence = merge.Confidence(matched.Confidence, model.ConfidenceHigh)
	}
	matched.Verified = merge.Verified(matched.Verified, anyTrusted(matched.Source, opts.Trusted))

	merge.Coerced(matched, incoming)
}

func anyTrusted(labels []string, trusted map[string]struct{}) bool {
	for _, label := range labels {
		if _, ok := trusted[label]; ok {
			return true
		}
	}
	return false
}
