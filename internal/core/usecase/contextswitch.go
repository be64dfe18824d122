package usecase

import (
	"math"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

// ContextSwitchDetector compares an utterance embedding against the
// precomputed trigger table to decide whether the session should change its
// active category. It runs before retrieval on every turn; a positive
// detection short-circuits the turn with the trigger's confirmation text.
type ContextSwitchDetector struct {
	table     domain.TriggerTable
	threshold float64
}

func NewContextSwitchDetector(table domain.TriggerTable, threshold float64) *ContextSwitchDetector {
	return &ContextSwitchDetector{table: table, threshold: threshold}
}

// Detect returns the best trigger whose similarity strictly exceeds the
// threshold, or nil. Triggers for the current category are ignored, and
// ties keep the earliest declared trigger.
func (d *ContextSwitchDetector) Detect(utterance []float32, current domain.Category) *domain.PreparedTrigger {
	var best *domain.PreparedTrigger
	bestScore := d.threshold

	for i := range d.table {
		trigger := &d.table[i]
		if trigger.Category == current {
			continue
		}
		if score := CosineSimilarity(utterance, trigger.Vector); score > bestScore {
			best = trigger
			bestScore = score
		}
	}
	return best
}

// CosineSimilarity returns dot(a,b)/(||a||*||b||), and 0 when either norm
// is zero or the result is not finite.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return sim
}
