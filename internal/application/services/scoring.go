package services

import (
	"math"
	"strings"
	"time"

	"github.com/ericyum/tour-agent-backend/internal/domain/entities"
)

const (
	neutralSentimentScore = 50.0
	projectionPenalty     = 0.8
	dateLayout            = "20060102"
)

// Score weights for festivals and for places.
const (
	festivalTimeWeight      = 0.6
	festivalSentimentWeight = 0.2
	festivalQuarterlyWeight = 0.1
	festivalYearlyWeight    = 0.1

	placeDistanceWeight  = 0.3
	placeSentimentWeight = 0.4
	placeQuarterlyWeight = 0.2
	placeYearlyWeight    = 0.1
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DistanceScore maps a distance onto 0..100 relative to the farthest
// candidate. A candidate without a distance scores 0; when the farthest
// distance is 0 every located candidate scores 100.
func DistanceScore(distance *float64, maxDistance float64) float64 {
	if distance == nil {
		return 0
	}
	if maxDistance <= 0 {
		return 100
	}
	return round2((1 - *distance/maxDistance) * 100)
}

// SentimentScore aggregates judgments into 0..100. Only strong judgments
// move the score away from the neutral 50; with no judgments it stays 50.
func SentimentScore(judgments []entities.ReviewJudgment) float64 {
	var strongPos, strongNeg, total int
	for _, j := range judgments {
		switch j.Verdict {
		case entities.VerdictPositive, entities.VerdictNegative:
			total++
		default:
			continue
		}
		if j.IsStrongPositive() {
			strongPos++
		}
		if j.IsStrongNegative() {
			strongNeg++
		}
	}
	if total == 0 {
		return neutralSentimentScore
	}
	return neutralSentimentScore + 50*float64(strongPos-strongNeg)/float64(total)
}

// TimeScore rates how timely a visit is on 0..1. An ongoing event scores 1.
// An ended event is projected forward whole years until the start falls on
// or after today, and penalized because the date is assumed. Missing or unparseable dates
// score 0.
func TimeScore(period entities.Period, today time.Time) float64 {
	start, ok := parseEventDate(period.Start)
	if !ok {
		return 0
	}
	end, ok := parseEventDate(period.End)
	if !ok {
		return 0
	}
	day := civilDate(today)

	if !day.Before(start) && !day.After(end) {
		return 1.0
	}

	projected := false
	var days int
	if end.Before(day) {
		projected = true
		next := start
		for next.Before(day) {
			next = addYear(next)
		}
		days = daysBetween(day, next)
	} else {
		days = daysBetween(day, start)
	}

	score := tierScore(days)
	if projected {
		score *= projectionPenalty
	}
	return score
}

func tierScore(days int) float64 {
	switch {
	case days >= 0 && days <= 7:
		return 0.9
	case days >= 8 && days <= 30:
		return 0.6
	case days >= 31 && days <= 90:
		return 0.3
	default:
		return 0.1
	}
}

func parseEventDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// addYear moves a date one year forward; Feb 29 becomes Feb 28 in a
// non-leap year.
func addYear(t time.Time) time.Time {
	y, m, d := t.Date()
	y++
	if m == time.February && d == 29 && !isLeap(y) {
		d = 28
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func festivalRankingScore(s entities.CandidateScoreSet) float64 {
	return round2(s.TimeScore*festivalTimeWeight +
		s.SentimentScore*festivalSentimentWeight +
		s.QuarterlyTrendScore*festivalQuarterlyWeight +
		s.YearlyTrendScore*festivalYearlyWeight)
}

func placeRankingScore(s entities.CandidateScoreSet) float64 {
	return round2(s.DistanceScore*placeDistanceWeight +
		s.SentimentScore*placeSentimentWeight +
		s.QuarterlyTrendScore*placeQuarterlyWeight +
		s.YearlyTrendScore*placeYearlyWeight)
}

func meanRatio(series []entities.TrendPoint) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, p := range series {
		sum += p.Ratio
	}
	return sum / float64(len(series))
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
