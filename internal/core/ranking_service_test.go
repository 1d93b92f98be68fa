package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"grantmatch-backend-go/internal/logger"
	"grantmatch-backend-go/internal/models"
)

var fintechSeed = models.ScreeningAnswers{StartupName: "Acme", Industry: "Fintech", Stage: "Seed"}

func TestRank_EmptyCatalog(t *testing.T) {
	r := NewRanker(&fakeOracle{}, time.Second, 0, logger.NewTest(t))

	matches, outcome := r.Rank(context.Background(), fintechSeed, nil)
	assert.Equal(t, OutcomeEmptyCatalog, outcome)
	assert.Empty(t, matches)
	assert.NotNil(t, matches)
}

func TestRank_Unconfigured(t *testing.T) {
	f := newFixture(t)
	grants := f.seedGrants(t, 12)
	r := NewRanker(nil, time.Second, 0, logger.NewTest(t))

	matches, outcome := r.Rank(context.Background(), fintechSeed, grants)
	assert.Equal(t, OutcomeUnconfigured, outcome)
	require.Len(t, matches, 10)
	for i, m := range matches {
		assert.Equal(t, grants[i].ID, m.GrantID)
		assert.Equal(t, 85.0, m.RelevanceScore)
		assert.Equal(t, "Match based on Fintech and Seed", m.Reason)
	}
}

func TestRank_UnconfiguredReasonDefaults(t *testing.T) {
	f := newFixture(t)
	grants := f.seedGrants(t, 2)
	r := NewRanker(nil, time.Second, 0, logger.NewTest(t))

	matches, _ := r.Rank(context.Background(), models.ScreeningAnswers{}, grants)
	require.Len(t, matches, 2)
	assert.Equal(t, "Match based on sector and stage", matches[0].Reason)
}

func TestRank_OracleSuccess(t *testing.T) {
	f := newFixture(t)
	grants := f.seedGrants(t, 12)
	o := &fakeOracle{content: "```json\n[" +
		`{"grant_id": "009", "name": "ignored", "relevance_score": 93, "reason": "Strong fit"},` +
		`{"grant_id": 2, "relevance_score": 71.5, "reason": "Decent"},` +
		`{"grant_id": "999", "relevance_score": 99, "reason": "Hallucinated"}` +
		"]\n```"}
	r := NewRanker(o, time.Second, 0, logger.NewTest(t))

	matches, outcome := r.Rank(context.Background(), fintechSeed, grants)
	assert.Equal(t, OutcomeOracle, outcome)
	require.Len(t, matches, 2)

	assert.Equal(t, "9", matches[0].GrantID)
	assert.Equal(t, "Fund-09", matches[0].Name)
	assert.Equal(t, 93.0, matches[0].RelevanceScore)
	assert.Equal(t, "Strong fit", matches[0].Reason)
	assert.Equal(t, "Fintech", matches[0].Sector)

	assert.Equal(t, "2", matches[1].GrantID)
	assert.Equal(t, 71.5, matches[1].RelevanceScore)
}

func TestRank_OracleCapsAtTen(t *testing.T) {
	f := newFixture(t)
	grants := f.seedGrants(t, 12)
	content := "["
	for i := 1; i <= 12; i++ {
		if i > 1 {
			content += ","
		}
		content += `{"grant_id": "` + grants[i-1].ID + `", "relevance_score": 50, "reason": "ok"}`
	}
	content += "]"
	r := NewRanker(&fakeOracle{content: content}, time.Second, 0, logger.NewTest(t))

	matches, outcome := r.Rank(context.Background(), fintechSeed, grants)
	assert.Equal(t, OutcomeOracle, outcome)
	assert.Len(t, matches, 10)
}

func TestRank_OracleOnlySeesCandidates(t *testing.T) {
	f := newFixture(t)
	grants := f.seedGrants(t, 14)
	o := &fakeOracle{content: "[]"}
	r := NewRanker(o, time.Second, 12, logger.NewTest(t))

	_, outcome := r.Rank(context.Background(), fintechSeed, grants)
	assert.Equal(t, OutcomeOracle, outcome)
	require.Len(t, o.prompts, 1)
	assert.Contains(t, o.prompts[0], "Fund-12")
	assert.NotContains(t, o.prompts[0], "Fund-13")
}

func TestRank_OracleFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	grants := f.seedGrants(t, 4)

	cases := map[string]*fakeOracle{
		"transport error": {err: errors.New("connection reset")},
		"malformed":       {content: "I cannot help with that"},
		"wrong shape":     {content: `{"grant_id": "1"}`},
	}
	for name, o := range cases {
		t.Run(name, func(t *testing.T) {
			r := NewRanker(o, time.Second, 0, logger.NewTest(t))
			first, outcome := r.Rank(context.Background(), fintechSeed, grants)
			assert.Equal(t, OutcomeFailed, outcome)
			second, outcome := r.Rank(context.Background(), fintechSeed, grants)
			assert.Equal(t, OutcomeFailed, outcome)

			require.Len(t, first, 4)
			assert.Equal(t, []string{"1", "2", "3", "4"}, grantIDs(first))
			assert.Equal(t, grantIDs(first), grantIDs(second))
			for _, m := range first {
				assert.Equal(t, 80.0, m.RelevanceScore)
				assert.Equal(t, "Relevant for Fintech", m.Reason)
			}
		})
	}
}

func TestRank_TimeoutFallsBackWithoutLeaks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFixture(t)
	grants := f.seedGrants(t, 3)
	r := NewRanker(&fakeOracle{block: true}, 20*time.Millisecond, 0, logger.NewTest(t))

	start := time.Now()
	matches, outcome := r.Rank(context.Background(), fintechSeed, grants)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Len(t, matches, 3)
	assert.Less(t, time.Since(start), 5*time.Second)
}
