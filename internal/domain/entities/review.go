package entities

// BlogPost is one hit returned by the review search provider.
type BlogPost struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	BloggerName string `json:"bloggername"`
	PostDate    string `json:"postdate"`
}

// Review is a blog post accepted as relevant, with its scraped content.
type Review struct {
	Title    string   `json:"title"`
	Link     string   `json:"link"`
	PostDate string   `json:"postdate"`
	Text     string   `json:"-"`
	Images   []string `json:"images,omitempty"`

	// Judgment is set when the acquisition gate already judged the text.
	Judgment *JudgmentResult `json:"-"`
}

// Verdict is the polarity of a judged sentence.
type Verdict string

const (
	VerdictPositive Verdict = "positive"
	VerdictNegative Verdict = "negative"
)

// StrongScoreThreshold is the minimum absolute score of a strong judgment.
const StrongScoreThreshold = 1.0

// ReviewJudgment is one classified sentence. Level is assigned after the
// satisfaction boundaries for the run are known.
type ReviewJudgment struct {
	Sentence string  `json:"sentence"`
	Score    float64 `json:"score"`
	Verdict  Verdict `json:"verdict"`
	Level    int     `json:"level,omitempty"`
}

// IsStrongPositive reports a positive verdict with score >= 1.0.
func (j ReviewJudgment) IsStrongPositive() bool {
	return j.Verdict == VerdictPositive && j.Score >= StrongScoreThreshold
}

// IsStrongNegative reports a negative verdict with score <= -1.0.
func (j ReviewJudgment) IsStrongNegative() bool {
	return j.Verdict == VerdictNegative && j.Score <= -StrongScoreThreshold
}

// AspectPair links an aspect of the experience to the word describing it.
type AspectPair struct {
	Aspect    string `json:"aspect"`
	Sentiment string `json:"sentiment"`
}

// JudgmentResult is the sentiment judge's reading of one review.
type JudgmentResult struct {
	IsRelevant  bool             `json:"is_relevant"`
	Judgments   []ReviewJudgment `json:"final_judgments"`
	AspectPairs []AspectPair     `json:"aspect_sentiment_pairs"`
}

// Accepted reports whether the review carries usable sentiment.
func (r *JudgmentResult) Accepted() bool {
	return r != nil && r.IsRelevant && len(r.Judgments) > 0
}
