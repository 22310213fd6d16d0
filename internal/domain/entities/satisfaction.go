package entities

// Satisfaction levels, 1 (very dissatisfied) through 5 (very satisfied).
const (
	LevelVeryDissatisfied = 1
	LevelDissatisfied     = 2
	LevelNeutral          = 3
	LevelSatisfied        = 4
	LevelVerySatisfied    = 5
)

// LevelNames are the display names of levels 1..5 in order.
var LevelNames = [5]string{"매우 불만족", "불만족", "보통", "만족", "매우 만족"}

// LevelName returns the display name of a level, or the neutral name when
// the level is out of range.
func LevelName(level int) string {
	if level < LevelVeryDissatisfied || level > LevelVerySatisfied {
		return LevelNames[LevelNeutral-1]
	}
	return LevelNames[level-1]
}

// SatisfactionBoundaries are the cut-points of one classification run. Each
// upper bound is exclusive.
type SatisfactionBoundaries struct {
	Mean                  float64 `json:"mean"`
	Std                   float64 `json:"std"`
	VeryDissatisfiedUpper float64 `json:"very_dissatisfied_upper"`
	DissatisfiedUpper     float64 `json:"dissatisfied_upper"`
	NeutralUpper          float64 `json:"neutral_upper"`
	SatisfiedUpper        float64 `json:"satisfied_upper"`
}

// HistogramBin is one bin of the absolute score histogram.
type HistogramBin struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// BoxPlot summarizes the raw score distribution.
type BoxPlot struct {
	Min        float64   `json:"min"`
	Q1         float64   `json:"q1"`
	Median     float64   `json:"median"`
	Q3         float64   `json:"q3"`
	Max        float64   `json:"max"`
	LowerFence float64   `json:"lower_bound"`
	UpperFence float64   `json:"upper_bound"`
	Outliers   []float64 `json:"outliers"`
}

// Classification is the result of classifying one run's scores.
type Classification struct {
	HasBoundaries bool                   `json:"has_boundaries"`
	Boundaries    SatisfactionBoundaries `json:"boundaries"`
	Levels        []int                  `json:"levels"`
	Filtered      []float64              `json:"-"`
	Outliers      []float64              `json:"outliers"`
	Histogram     []HistogramBin         `json:"histogram"`
	BoxPlot       BoxPlot                `json:"box_plot"`
}

// LevelFor maps a score to a level using the run's boundaries. Without
// boundaries every score is neutral.
func (c *Classification) LevelFor(score float64) int {
	if c == nil || !c.HasBoundaries {
		return LevelNeutral
	}
	b := c.Boundaries
	switch {
	case score < b.VeryDissatisfiedUpper:
		return LevelVeryDissatisfied
	case score < b.DissatisfiedUpper:
		return LevelDissatisfied
	case score < b.NeutralUpper:
		return LevelNeutral
	case score < b.SatisfiedUpper:
		return LevelSatisfied
	default:
		return LevelVerySatisfied
	}
}
