package models

import "time"

// GrantMatch is one ranked association between an account and a grant.
// SoftApproval is recomputed from the overlay every time matches are read.
type GrantMatch struct {
	GrantID         string    `json:"grant_id" firestore:"grantId"`
	Name            string    `json:"name" firestore:"name"`
	RelevanceScore  float64   `json:"relevance_score" firestore:"relevanceScore"`
	FundingAmount   string    `json:"funding_amount" firestore:"fundingAmount"`
	Deadline        string    `json:"deadline" firestore:"deadline"`
	Sector          string    `json:"sector" firestore:"sector"`
	Eligibility     string    `json:"eligibility" firestore:"eligibility"`
	ApplicationLink string    `json:"application_link" firestore:"applicationLink"`
	Stage           string    `json:"stage" firestore:"stage"`
	SoftApproval    bool      `json:"soft_approval" firestore:"-"`
	Reason          string    `json:"reason" firestore:"reason"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt"`
}

// MatchFromGrant builds a match carrying the catalog fields of g.
func MatchFromGrant(g Grant, score float64, reason string, at time.Time) GrantMatch {
	return GrantMatch{
		GrantID:         g.ID,
		Name:            g.Name,
		RelevanceScore:  score,
		FundingAmount:   g.FundingAmount,
		Deadline:        g.Deadline,
		Sector:          g.Sector,
		Eligibility:     g.Eligibility,
		ApplicationLink: g.ApplicationLink,
		Stage:           g.Stage,
		Reason:          reason,
		CreatedAt:       at,
	}
}
