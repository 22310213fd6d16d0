package services

import (
	"math"
	"sort"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
)

const (
	iqrFenceFactor = 1.5
	minStd         = 0.1
	stdEpsilon     = 1e-8
)

var histogramEdges = []float64{math.Inf(-1), -2, -1, 0, 1, 2, math.Inf(1)}

var histogramLabels = []string{
	"매우 부정 (<-2)",
	"부정 (-2~-1)",
	"약간 부정 (-1~0)",
	"약간 긍정 (0~1)",
	"긍정 (1~2)",
	"매우 긍정 (>2)",
}

// SatisfactionClassifier turns sentence scores into five relative
// satisfaction levels. Boundaries come from the run's own scores with IQR
// outliers excluded; every score, outliers included, is then labeled.
type SatisfactionClassifier struct{}

// NewSatisfactionClassifier creates a new classifier
func NewSatisfactionClassifier() *SatisfactionClassifier {
	return &SatisfactionClassifier{}
}

// Classify computes boundaries and per-score levels.
func (c *SatisfactionClassifier) Classify(scores []float64) *entities.Classification {
	out := &entities.Classification{
		Levels:    make([]int, len(scores)),
		Histogram: Histogram(scores),
	}
	if len(scores) == 0 {
		out.Outliers = []float64{}
		return out
	}

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	q1 := Percentile(sorted, 25)
	q3 := Percentile(sorted, 75)
	iqr := q3 - q1
	lower := q1 - iqrFenceFactor*iqr
	upper := q3 + iqrFenceFactor*iqr

	filtered := make([]float64, 0, len(scores))
	outliers := make([]float64, 0)
	for _, s := range scores {
		if s < lower || s > upper {
			outliers = append(outliers, s)
			continue
		}
		filtered = append(filtered, s)
	}
	if len(filtered) == 0 {
		filtered = append(filtered, scores...)
	}

	mean, std := meanStd(filtered)
	if std < stdEpsilon {
		std = minStd
	}

	out.HasBoundaries = true
	out.Boundaries = entities.SatisfactionBoundaries{
		Mean:                  mean,
		Std:                   std,
		VeryDissatisfiedUpper: mean - 1.5*std,
		DissatisfiedUpper:     mean - 0.5*std,
		NeutralUpper:          mean + 0.5*std,
		SatisfiedUpper:        mean + 1.5*std,
	}
	out.Filtered = filtered
	out.Outliers = outliers
	for i, s := range scores {
		out.Levels[i] = out.LevelFor(s)
	}
	out.BoxPlot = entities.BoxPlot{
		Min:        sorted[0],
		Q1:         q1,
		Median:     Percentile(sorted, 50),
		Q3:         q3,
		Max:        sorted[len(sorted)-1],
		LowerFence: lower,
		UpperFence: upper,
		Outliers:   outliers,
	}
	return out
}

// Percentile returns the p-th percentile of sorted values using linear
// interpolation between closest ranks.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Histogram counts scores into the fixed absolute-score bins. Each bin is
// lower-inclusive; the last bin also includes +Inf.
func Histogram(scores []float64) []entities.HistogramBin {
	bins := make([]entities.HistogramBin, len(histogramLabels))
	for i, label := range histogramLabels {
		bins[i].Label = label
	}
	for _, s := range scores {
		if math.IsNaN(s) {
			continue
		}
		idx := sort.Search(len(histogramEdges)-1, func(i int) bool {
			return s < histogramEdges[i+1]
		})
		if idx >= len(bins) {
			idx = len(bins) - 1
		}
		bins[idx].Count++
	}
	return bins
}

// LevelCounts tallies levels 1..5 with their display names.
func LevelCounts(levels []int) []entities.LevelCount {
	counts := make([]entities.LevelCount, len(entities.LevelNames))
	for i := range counts {
		counts[i] = entities.LevelCount{Level: i + 1, Label: entities.LevelName(i + 1)}
	}
	for _, l := range levels {
		if l < entities.LevelVeryDissatisfied || l > entities.LevelVerySatisfied {
			l = entities.LevelNeutral
		}
		counts[l-1].Count++
	}
	return counts
}

// meanStd returns the mean and population standard deviation.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}
