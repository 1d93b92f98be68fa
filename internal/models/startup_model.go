package models

import "time"

// Startup is the firmographic projection of an account.
// The document ID equals the owning account ID.
type Startup struct {
	ID                   string    `json:"id" firestore:"-"`
	AccountID            string    `json:"account_id" firestore:"accountId"`
	Email                string    `json:"email" firestore:"email"`
	EmailLower           string    `json:"-" firestore:"emailLower"`
	Name                 string    `json:"name" firestore:"name"`
	FounderName          string    `json:"founder_name" firestore:"founderName"`
	EntityType           string    `json:"entity_type" firestore:"entityType"`
	Location             string    `json:"location" firestore:"location"`
	YearOfIncorporation  int       `json:"year_of_incorporation,omitempty" firestore:"yearOfIncorporation,omitempty"`
	Industry             string    `json:"industry" firestore:"industry"`
	OwnershipType        string    `json:"ownership_type,omitempty" firestore:"ownershipType,omitempty"`
	CompanySize          int       `json:"company_size" firestore:"companySize"`
	Revenue              float64   `json:"revenue" firestore:"revenue"`
	FundingNeed          float64   `json:"funding_need,omitempty" firestore:"fundingNeed,omitempty"`
	Description          string    `json:"description" firestore:"description"`
	ContactEmail         string    `json:"contact_email" firestore:"contactEmail"`
	ContactPhone         string    `json:"contact_phone" firestore:"contactPhone"`
	Stage                string    `json:"stage" firestore:"stage"`
	Stability            string    `json:"stability" firestore:"stability"`
	Demographic          string    `json:"demographic" firestore:"demographic"`
	TrackRecord          int       `json:"track_record" firestore:"trackRecord"`
	PastGrantExperience  string    `json:"past_grant_experience" firestore:"pastGrantExperience"`
	PastGrantDescription string    `json:"past_grant_description,omitempty" firestore:"pastGrantDescription,omitempty"`
	Tier                 Tier      `json:"tier" firestore:"tier"` // mirrored from Account.Tier
	CreatedAt            time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt            time.Time `json:"updated_at" firestore:"updatedAt"`
}

// ApplyScreening overwrites the firmographic fields from a screening
// submission. Identifiers and the mirrored tier are left untouched.
func (s *Startup) ApplyScreening(a ScreeningAnswers) {
	s.Name = a.StartupName
	s.FounderName = a.FounderName
	s.EntityType = a.EntityType
	s.Location = a.Location
	s.YearOfIncorporation = a.YearOfIncorporation
	s.Industry = a.Industry
	s.OwnershipType = a.OwnershipType
	s.CompanySize = a.CompanySize
	s.Revenue = a.Revenue
	s.FundingNeed = a.FundingNeed
	s.Description = a.Description
	s.ContactEmail = a.ContactEmail
	s.ContactPhone = a.ContactPhone
	s.Stage = a.Stage
	s.Stability = a.Stability
	s.Demographic = a.Demographic
	s.TrackRecord = a.TrackRecord
	s.PastGrantExperience = a.PastGrantExperience
	s.PastGrantDescription = a.PastGrantDescription
}
