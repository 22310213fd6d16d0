package entities

// CandidateScoreSet holds every sub-score of one candidate for one ranking
// call. All scores are on a 0..100 scale and rounded to two decimals.
type CandidateScoreSet struct {
	DistanceScore       float64 `json:"distance_score"`
	TimeScore           float64 `json:"time_score"`
	SentimentScore      float64 `json:"sentiment_score"`
	QuarterlyTrendScore float64 `json:"quarterly_trend_score"`
	YearlyTrendScore    float64 `json:"yearly_trend_score"`
	RankingScore        float64 `json:"ranking_score"`

	TrendReason     string `json:"trend_reason,omitempty"`
	SentimentReason string `json:"sentiment_reason,omitempty"`
}

// RankedCandidate pairs a candidate with its scores.
type RankedCandidate struct {
	Kind      CandidateKind     `json:"kind"`
	Candidate Candidate         `json:"candidate"`
	Scores    CandidateScoreSet `json:"scores"`

	// PositiveJudgments feed the praise narrative; not serialized.
	PositiveJudgments []ReviewJudgment `json:"-"`
}

// Title is a shortcut for the candidate's title.
func (r *RankedCandidate) Title() string {
	return r.Candidate.Base().Title
}

// RankingResult is the output of a ranking run.
type RankingResult struct {
	RunID  string             `json:"run_id"`
	Items  []*RankedCandidate `json:"items"`
	Report string             `json:"report"`
	Empty  bool               `json:"empty"`
}
