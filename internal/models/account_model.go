package models

import (
	"strings"
	"time"
)

// Tier is the subscription tier (or administrative role) of an account.
type Tier string

const (
	TierFree            Tier = "free"
	TierPremium         Tier = "premium"
	TierExpert          Tier = "expert"
	TierVentureAnalyst  Tier = "venture_analyst"
	TierIncubationAdmin Tier = "incubation_admin"
	TierAdmin           Tier = "admin"
)

// AllTiers lists every tier in display order.
var AllTiers = []Tier{TierFree, TierPremium, TierExpert, TierVentureAnalyst, TierIncubationAdmin, TierAdmin}

// ParseTier normalizes s and reports whether it names a known tier.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Valid reports whether t is one of the enumerated tiers.
func (t Tier) Valid() bool {
	for _, known := range AllTiers {
		if t == known {
			return true
		}
	}
	return false
}

// IsAdministrative reports whether t is a staff role with no startup profile of its own.
func (t Tier) IsAdministrative() bool {
	return t == TierAdmin || t == TierIncubationAdmin || t == TierVentureAnalyst
}

// In reports whether t is one of the given tiers.
func (t Tier) In(tiers ...Tier) bool {
	for _, other := range tiers {
		if t == other {
			return true
		}
	}
	return false
}

// Account is the identity record of a platform user.
// The document ID is the account ID.
type Account struct {
	ID                    string         `json:"id" firestore:"-"`
	Email                 string         `json:"email" firestore:"email"`
	EmailLower            string         `json:"-" firestore:"emailLower"`
	PasswordHash          string         `json:"-" firestore:"passwordHash"`
	Name                  string         `json:"name" firestore:"name"`
	Tier                  Tier           `json:"tier" firestore:"tier"`
	HasCompletedScreening bool           `json:"has_completed_screening" firestore:"hasCompletedScreening"`
	Profile               ProfilePayload `json:"profile" firestore:"profile"`
	CouponUsed            string         `json:"coupon_used,omitempty" firestore:"couponUsed,omitempty"`
	CreatedAt             time.Time      `json:"created_at" firestore:"createdAt"`
	UpgradedAt            *time.Time     `json:"upgraded_at,omitempty" firestore:"upgradedAt,omitempty"`
	ScreeningCompletedAt  *time.Time     `json:"screening_completed_at,omitempty" firestore:"screeningCompletedAt,omitempty"`
}

// NormalizeEmail returns the lookup key used for case-insensitive email matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfilePayload holds what an account has told us about itself.
// Screening is replaced on every submission; Provenance is written at
// registration and survives re-submission.
type ProfilePayload struct {
	Screening  *ScreeningAnswers `json:"screening,omitempty" firestore:"screening,omitempty"`
	Provenance *Provenance       `json:"provenance,omitempty" firestore:"provenance,omitempty"`
}

// Provenance records where an account came from.
type Provenance struct {
	RegistrationLink string `json:"registration_link,omitempty" firestore:"registrationLink,omitempty"`
	Source           string `json:"source,omitempty" firestore:"source,omitempty"`
}

// Merge returns p updated with next. Screening answers in next replace the
// stored ones; provenance is only replaced when next carries one.
func (p ProfilePayload) Merge(next ProfilePayload) ProfilePayload {
	merged := p
	if next.Screening != nil {
		merged.Screening = next.Screening
	}
	if next.Provenance != nil {
		merged.Provenance = next.Provenance
	}
	return merged
}
