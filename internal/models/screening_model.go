package models

// ScreeningAnswers is the combined two-page screening questionnaire.
type ScreeningAnswers struct {
	StartupName          string  `json:"startup_name" firestore:"startupName" binding:"required"`
	FounderName          string  `json:"founder_name" firestore:"founderName" binding:"required"`
	EntityType           string  `json:"entity_type" firestore:"entityType" binding:"required"`
	Location             string  `json:"location" firestore:"location" binding:"required"`
	Industry             string  `json:"industry" firestore:"industry" binding:"required"`
	CompanySize          int     `json:"company_size" firestore:"companySize"`
	Description          string  `json:"description" firestore:"description" binding:"required"`
	ContactEmail         string  `json:"contact_email" firestore:"contactEmail" binding:"required,email"`
	ContactPhone         string  `json:"contact_phone" firestore:"contactPhone" binding:"required"`
	Stage                string  `json:"stage" firestore:"stage" binding:"required"`
	Revenue              float64 `json:"revenue" firestore:"revenue"`
	Stability            string  `json:"stability" firestore:"stability" binding:"required"`
	Demographic          string  `json:"demographic" firestore:"demographic" binding:"required"`
	TrackRecord          int     `json:"track_record" firestore:"trackRecord"`
	PastGrantExperience  string  `json:"past_grant_experience" firestore:"pastGrantExperience" binding:"required"`
	PastGrantDescription string  `json:"past_grant_description,omitempty" firestore:"pastGrantDescription,omitempty"`

	// Optional firmographics carried onto the startup profile.
	YearOfIncorporation int     `json:"year_of_incorporation,omitempty" firestore:"yearOfIncorporation,omitempty"`
	OwnershipType       string  `json:"ownership_type,omitempty" firestore:"ownershipType,omitempty"`
	FundingNeed         float64 `json:"funding_need,omitempty" firestore:"fundingNeed,omitempty"`
}
