package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"grantmatch-backend-go/internal/metrics"
	"grantmatch-backend-go/internal/models"
	"grantmatch-backend-go/internal/oracle"
)

// Outcome tells how a ranking was produced.
type Outcome string

const (
	OutcomeOracle       Outcome = "oracle"
	OutcomeUnconfigured Outcome = "unconfigured"
	OutcomeFailed       Outcome = "failed"
	OutcomeEmptyCatalog Outcome = "empty_catalog"
)

const (
	maxRankedMatches   = 10
	unconfiguredScore  = 85.0
	failedScore        = 80.0
	defaultCandidates  = 12
	defaultRankTimeout = 20 * time.Second
)

type ranker struct {
	oracle        oracle.Oracle
	timeout       time.Duration
	maxCandidates int
	logger        *zap.Logger
	now           func() time.Time
}

// NewRanker wraps o with the deterministic fallback policy. A nil o means no
// oracle is configured.
func NewRanker(o oracle.Oracle, timeout time.Duration, maxCandidates int, logger *zap.Logger) Ranker {
	if timeout <= 0 {
		timeout = defaultRankTimeout
	}
	if maxCandidates <= 0 {
		maxCandidates = defaultCandidates
	}
	return &ranker{oracle: o, timeout: timeout, maxCandidates: maxCandidates, logger: logger, now: time.Now}
}

func (r *ranker) Rank(ctx context.Context, profile models.ScreeningAnswers, grants []models.Grant) ([]models.GrantMatch, Outcome) {
	if len(grants) == 0 {
		metrics.RankingOutcomes.WithLabelValues(string(OutcomeEmptyCatalog)).Inc()
		return []models.GrantMatch{}, OutcomeEmptyCatalog
	}
	if r.oracle == nil {
		metrics.RankingOutcomes.WithLabelValues(string(OutcomeUnconfigured)).Inc()
		reason := "Match based on " + orDefault(profile.Industry, "sector") + " and " + orDefault(profile.Stage, "stage")
		return r.headMatches(grants, unconfiguredScore, reason), OutcomeUnconfigured
	}

	matches, err := r.askOracle(ctx, profile, grants)
	if err != nil {
		r.logger.Warn("Ranking oracle failed, using fallback", zap.String("provider", r.oracle.Provider()), zap.Error(err))
		metrics.RankingOutcomes.WithLabelValues(string(OutcomeFailed)).Inc()
		reason := "Relevant for " + orDefault(profile.Industry, "your sector")
		return r.headMatches(grants, failedScore, reason), OutcomeFailed
	}
	metrics.RankingOutcomes.WithLabelValues(string(OutcomeOracle)).Inc()
	return matches, OutcomeOracle
}

func (r *ranker) askOracle(ctx context.Context, profile models.ScreeningAnswers, grants []models.Grant) ([]models.GrantMatch, error) {
	candidates := grants
	if len(candidates) > r.maxCandidates {
		candidates = candidates[:r.maxCandidates]
	}
	prompt, err := oracle.BuildPrompt(profile, candidates)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	content, err := r.oracle.Complete(callCtx, oracle.SystemPrompt, prompt)
	metrics.OracleDuration.WithLabelValues(r.oracle.Provider()).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	ranked, err := oracle.ParseRanking(content)
	if err != nil {
		return nil, err
	}
	if len(ranked) > maxRankedMatches {
		ranked = ranked[:maxRankedMatches]
	}

	ix := newGrantIndex(grants)
	at := r.now().UTC()
	matches := make([]models.GrantMatch, 0, len(ranked))
	for _, item := range ranked {
		g, ok := ix.lookup(item.GrantID)
		if !ok {
			r.logger.Debug("Dropping ranked grant missing from catalog", zap.String("grant_id", item.GrantID))
			continue
		}
		matches = append(matches, models.MatchFromGrant(g, item.RelevanceScore, item.Reason, at))
	}
	return matches, nil
}

func (r *ranker) headMatches(grants []models.Grant, score float64, reason string) []models.GrantMatch {
	n := len(grants)
	if n > maxRankedMatches {
		n = maxRankedMatches
	}
	at := r.now().UTC()
	out := make([]models.GrantMatch, 0, n)
	for _, g := range grants[:n] {
		out = append(out, models.MatchFromGrant(g, score, reason, at))
	}
	return out
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
