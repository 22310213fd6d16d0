package services

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
	"github.com/ericyum/tour-agent-backend/internal/domain/providers"
	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
	"github.com/ericyum/tour-agent-backend/pkg/config"
)

// AcquisitionState is the state of one review acquisition run.
type AcquisitionState int

const (
	AcquisitionScanning AcquisitionState = iota
	AcquisitionBreakerTripped
	AcquisitionExhausted
	AcquisitionTargetReached
)

func (s AcquisitionState) String() string {
	switch s {
	case AcquisitionScanning:
		return "scanning"
	case AcquisitionBreakerTripped:
		return "breaker_tripped"
	case AcquisitionExhausted:
		return "exhausted"
	case AcquisitionTargetReached:
		return "target_reached"
	default:
		return "unknown"
	}
}

// AcquisitionResult is the outcome of one run. Reviews never exceeds the
// requested target.
type AcquisitionResult struct {
	Reviews []entities.Review
	State   AcquisitionState
	Scanned int
	Skipped int
}

// ReviewGate decides whether a readable post is accepted. A gate may attach
// the judgment it computed so callers need not judge the text twice.
type ReviewGate func(ctx context.Context, keyword, title, text string) (bool, *entities.JudgmentResult, error)

// RelevanceGate accepts posts the relevance judge considers on-topic.
func RelevanceGate(judge providers.RelevanceJudge) ReviewGate {
	return func(ctx context.Context, keyword, title, text string) (bool, *entities.JudgmentResult, error) {
		ok, err := judge.IsRelevant(ctx, keyword, title, text)
		return ok, nil, err
	}
}

// JudgmentGate accepts posts the sentiment judge finds relevant and that
// yield at least one judgment.
func JudgmentGate(judge providers.SentimentJudge) ReviewGate {
	return func(ctx context.Context, keyword, title, text string) (bool, *entities.JudgmentResult, error) {
		res, err := judge.Judge(ctx, text, keyword, title)
		if err != nil {
			return false, nil, err
		}
		return res.Accepted(), res, nil
	}
}

// AcquisitionOptions bound one acquisition run.
type AcquisitionOptions struct {
	StartOffset      int
	PageSize         int
	ScanCap          int
	BreakerThreshold int
	MaxContentRunes  int
	AllowedLinkHost  string

	SearchTimeout time.Duration
	FetchTimeout  time.Duration
	JudgeTimeout  time.Duration
}

// DefaultAcquisitionOptions mirrors the configuration defaults.
func DefaultAcquisitionOptions() AcquisitionOptions {
	return AcquisitionOptions{
		StartOffset:      1,
		PageSize:         20,
		ScanCap:          100,
		BreakerThreshold: 3,
		MaxContentRunes:  30000,
		AllowedLinkHost:  "blog.naver.com",
	}
}

// NewAcquisitionOptions builds options from configuration.
func NewAcquisitionOptions(a config.AcquisitionConfig, r config.RankingConfig) AcquisitionOptions {
	return AcquisitionOptions{
		StartOffset:      a.StartOffset,
		PageSize:         a.PageSize,
		ScanCap:          a.ScanCap,
		BreakerThreshold: a.BreakerThreshold,
		MaxContentRunes:  a.MaxContentRunes,
		AllowedLinkHost:  a.AllowedLinkHost,
		SearchTimeout:    r.SearchTimeout,
		FetchTimeout:     r.FetchTimeout,
		JudgeTimeout:     r.JudgeTimeout,
	}
}

var (
	leadingYearPattern = regexp.MustCompile(`^\d{4}\s*년?\s*`)
	htmlTagPattern     = regexp.MustCompile(`<[^>]+>`)
)

var unreadableMarkers = []string{
	providers.UnreadableNoBody,
	"페이지에 접근하는 중 오류",
	"오류",
	"찾을 수 없습니다",
}

// NormalizeTopic strips a leading year such as "2025년 " from a topic name.
// The original name is kept when nothing else remains.
func NormalizeTopic(name string) string {
	cleaned := strings.TrimSpace(leadingYearPattern.ReplaceAllString(name, ""))
	if cleaned == "" {
		return name
	}
	return cleaned
}

// ReviewQuery is the search query used for a topic.
func ReviewQuery(topic string) string {
	return NormalizeTopic(topic) + " 후기"
}

// StripTags removes HTML tags from a search-result title.
func StripTags(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

// IsUnreadable reports whether fetched text is empty or a failure sentinel.
func IsUnreadable(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	for _, marker := range unreadableMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// ReviewAcquisitionService pulls reviews page by page and stops early after
// consecutive unproductive hits.
type ReviewAcquisitionService struct {
	search  providers.ReviewSearchProvider
	fetcher providers.ContentFetcher
	opts    AcquisitionOptions
	metrics *observability.Metrics
}

// NewReviewAcquisitionService creates a new review acquisition service
func NewReviewAcquisitionService(
	search providers.ReviewSearchProvider,
	fetcher providers.ContentFetcher,
	opts AcquisitionOptions,
	metrics *observability.Metrics,
) *ReviewAcquisitionService {
	def := DefaultAcquisitionOptions()
	if opts.StartOffset <= 0 {
		opts.StartOffset = def.StartOffset
	}
	if opts.PageSize <= 0 {
		opts.PageSize = def.PageSize
	}
	if opts.ScanCap <= 0 {
		opts.ScanCap = def.ScanCap
	}
	if opts.BreakerThreshold <= 0 {
		opts.BreakerThreshold = def.BreakerThreshold
	}
	if opts.MaxContentRunes <= 0 {
		opts.MaxContentRunes = def.MaxContentRunes
	}
	return &ReviewAcquisitionService{
		search:  search,
		fetcher: fetcher,
		opts:    opts,
		metrics: metrics,
	}
}

// Acquire gathers up to target accepted reviews for topic. Hits are examined
// strictly in page order; the consecutive-skip counter carries over between
// pages and only an accepted hit resets it.
func (s *ReviewAcquisitionService) Acquire(ctx context.Context, topic string, target int, gate ReviewGate) AcquisitionResult {
	keyword := NormalizeTopic(topic)
	query := ReviewQuery(topic)
	logger := observability.LoggerFromContext(ctx).With().
		Str("topic", topic).
		Str("query", query).
		Int("target", target).
		Logger()

	res := AcquisitionResult{State: AcquisitionScanning}
	start := s.opts.StartOffset
	skips := 0

	for res.State == AcquisitionScanning {
		switch {
		case len(res.Reviews) >= target:
			res.State = AcquisitionTargetReached
			continue
		case start >= s.opts.ScanCap:
			res.State = AcquisitionExhausted
			continue
		case ctx.Err() != nil:
			logger.Warn().Err(ctx.Err()).Msg("review acquisition cancelled")
			res.State = AcquisitionExhausted
			continue
		}

		page, err := s.searchPage(ctx, query, start)
		if err != nil {
			logger.Warn().Err(err).Int("start", start).Msg("review search failed")
			res.State = AcquisitionExhausted
			continue
		}
		if len(page) == 0 {
			res.State = AcquisitionExhausted
			continue
		}

		for _, post := range page {
			res.Scanned++
			review, ok := s.consider(ctx, keyword, post, gate)
			if !ok {
				skips++
				res.Skipped++
				if skips >= s.opts.BreakerThreshold {
					res.State = AcquisitionBreakerTripped
					break
				}
				continue
			}
			skips = 0
			res.Reviews = append(res.Reviews, review)
			if len(res.Reviews) >= target {
				res.State = AcquisitionTargetReached
				break
			}
		}
		start += s.opts.PageSize
	}

	event := logger.Debug()
	if res.State == AcquisitionBreakerTripped {
		event = logger.Info()
	}
	event.
		Str("state", res.State.String()).
		Int("scanned", res.Scanned).
		Int("skipped", res.Skipped).
		Int("accepted", len(res.Reviews)).
		Msg("review acquisition finished")
	observability.RecordAcquisition(ctx, s.metrics, res.State.String(), res.Scanned, len(res.Reviews))

	return res
}

func (s *ReviewAcquisitionService) searchPage(ctx context.Context, query string, start int) ([]entities.BlogPost, error) {
	callCtx, cancel := withTimeout(ctx, s.opts.SearchTimeout)
	defer cancel()
	begin := time.Now()
	page, err := s.search.SearchReviews(callCtx, query, s.opts.PageSize, start)
	observability.RecordCollaboratorCall(ctx, s.metrics, "review_search", time.Since(begin), err)
	return page, err
}

func (s *ReviewAcquisitionService) consider(ctx context.Context, keyword string, post entities.BlogPost, gate ReviewGate) (entities.Review, bool) {
	logger := observability.LoggerFromContext(ctx)
	if post.Link == "" || (s.opts.AllowedLinkHost != "" && !strings.Contains(post.Link, s.opts.AllowedLinkHost)) {
		return entities.Review{}, false
	}

	fetchCtx, cancel := withTimeout(ctx, s.opts.FetchTimeout)
	begin := time.Now()
	text, images := s.fetcher.Fetch(fetchCtx, post.Link)
	cancel()
	observability.RecordCollaboratorCall(ctx, s.metrics, "content_fetch", time.Since(begin), nil)
	if IsUnreadable(text) {
		logger.Debug().Str("link", post.Link).Msg("skipping unreadable post")
		return entities.Review{}, false
	}
	text = TruncateRunes(text, s.opts.MaxContentRunes)
	title := StripTags(post.Title)

	judgeCtx, cancel := withTimeout(ctx, s.opts.JudgeTimeout)
	begin = time.Now()
	ok, judgment, err := gate(judgeCtx, keyword, title, text)
	cancel()
	observability.RecordCollaboratorCall(ctx, s.metrics, "review_gate", time.Since(begin), err)
	if err != nil {
		logger.Warn().Err(err).Str("link", post.Link).Msg("review gate failed")
		return entities.Review{}, false
	}
	if !ok {
		return entities.Review{}, false
	}

	return entities.Review{
		Title:    title,
		Link:     post.Link,
		PostDate: post.PostDate,
		Text:     text,
		Images:   images,
		Judgment: judgment,
	}, true
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
