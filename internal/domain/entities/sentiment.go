package entities

// KeywordCount is one grouped positive keyword.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// BlogSentiment is the per-review breakdown of a sentiment analysis.
type BlogSentiment struct {
	Title              string           `json:"title"`
	Link               string           `json:"link"`
	PostDate           string           `json:"postdate,omitempty"`
	SentenceCount      int              `json:"sentence_count"`
	AverageLevel       float64          `json:"average_level"`
	PositiveCount      int              `json:"positive_count"`
	NegativeCount      int              `json:"negative_count"`
	PositivePercentage float64          `json:"positive_percentage"`
	NegativePercentage float64          `json:"negative_percentage"`
	Judgments          []ReviewJudgment `json:"judgments"`
}

// LevelCount is the number of sentences at one satisfaction level.
type LevelCount struct {
	Level int    `json:"level"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SentimentAnalysis is the satisfaction distribution of one topic.
type SentimentAnalysis struct {
	RunID   string `json:"run_id"`
	Topic   string `json:"topic"`
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`

	Blogs               []BlogSentiment `json:"blogs,omitempty"`
	AverageLevel        float64         `json:"average_level"`
	PositiveTotal       int             `json:"positive_total"`
	NegativeTotal       int             `json:"negative_total"`
	TotalScoreCount     int             `json:"total_score_count"`
	OutlierCount        int             `json:"outlier_count"`
	LevelCounts         []LevelCount    `json:"level_counts,omitempty"`
	Classification      *Classification `json:"classification,omitempty"`
	NegativeSummary     string          `json:"negative_summary,omitempty"`
	PositiveKeywords    []KeywordCount  `json:"positive_keywords"`
	DistributionSummary string          `json:"distribution_summary,omitempty"`
	OverallSummary      string          `json:"overall_summary,omitempty"`
	AspectPairs         []AspectPair    `json:"aspect_pairs,omitempty"`
}
