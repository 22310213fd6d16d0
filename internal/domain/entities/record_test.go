package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateKinds(t *testing.T) {
	cases := []struct {
		c    Candidate
		want CandidateKind
	}{
		{&Festival{}, KindFestival},
		{&Facility{}, KindFacility},
		{&Course{}, KindCourse},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.c.Kind())
		assert.NotNil(t, tc.c.Base())
	}
}

func TestSubPointNamesSkipsEmpty(t *testing.T) {
	c := &Course{SubPoints: []SubPoint{{Seq: 1, Name: "a"}, {Seq: 2}, {Seq: 3, Name: "c"}}}
	assert.Equal(t, []string{"a", "c"}, c.SubPointNames())
}

func TestNewRecordDocument(t *testing.T) {
	r := &LocatedRecord{ContentID: "1", Title: "축제", MapX: "37.5", MapY: "127.0", FirstImage: "x.jpg"}

	doc := NewRecordDocument(KindFestival, r)

	require.Len(t, doc.Location, 2)
	assert.Equal(t, 37.5, doc.Location[0], "swapped axes are corrected before indexing")
	assert.Equal(t, 127.0, doc.Location[1])
	assert.True(t, doc.HasImage)
	assert.Equal(t, doc.ID, NewRecordDocument(KindFestival, r).ID)
	assert.NotEqual(t, doc.ID, NewRecordDocument(KindFacility, r).ID)

	assert.Nil(t, NewRecordDocument(KindFacility, &LocatedRecord{Title: "x"}).Location)
}

func TestStrongJudgments(t *testing.T) {
	assert.True(t, ReviewJudgment{Verdict: VerdictPositive, Score: 1.0}.IsStrongPositive())
	assert.False(t, ReviewJudgment{Verdict: VerdictPositive, Score: 0.9}.IsStrongPositive())
	assert.True(t, ReviewJudgment{Verdict: VerdictNegative, Score: -1.0}.IsStrongNegative())
	assert.False(t, ReviewJudgment{Verdict: VerdictNegative, Score: -0.5}.IsStrongNegative())
}

func TestJudgmentAccepted(t *testing.T) {
	var nilResult *JudgmentResult
	assert.False(t, nilResult.Accepted())
	assert.False(t, (&JudgmentResult{IsRelevant: true}).Accepted())
	assert.False(t, (&JudgmentResult{Judgments: []ReviewJudgment{{}}}).Accepted())
	assert.True(t, (&JudgmentResult{IsRelevant: true, Judgments: []ReviewJudgment{{}}}).Accepted())
}

func TestLevelFor(t *testing.T) {
	var none *Classification
	assert.Equal(t, LevelNeutral, none.LevelFor(3))

	c := &Classification{HasBoundaries: true, Boundaries: SatisfactionBoundaries{
		VeryDissatisfiedUpper: -1, DissatisfiedUpper: 0, NeutralUpper: 1, SatisfiedUpper: 2,
	}}
	assert.Equal(t, LevelVeryDissatisfied, c.LevelFor(-1.5))
	assert.Equal(t, LevelDissatisfied, c.LevelFor(-1))
	assert.Equal(t, LevelNeutral, c.LevelFor(0.5))
	assert.Equal(t, LevelSatisfied, c.LevelFor(1))
	assert.Equal(t, LevelVerySatisfied, c.LevelFor(2))
	assert.Equal(t, "보통", LevelName(9))
}
