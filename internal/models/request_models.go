package models

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=6"`
	RegistrationLink string `json:"registration_link,omitempty"`
	Source           string `json:"source,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RedeemCouponRequest is the body of POST /coupons/redeem.
type RedeemCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// ChangeTierRequest is the body of PUT /users/:id/tier.
type ChangeTierRequest struct {
	Tier string `json:"tier" binding:"required"`
}

// CreateGrantRequest is the body of POST /admin/grants.
type CreateGrantRequest struct {
	Name            string `json:"name" binding:"required"`
	FundingAmount   string `json:"funding_amount"`
	Deadline        string `json:"deadline"`
	Sector          string `json:"sector"`
	Eligibility     string `json:"eligibility"`
	ApplicationLink string `json:"application_link"`
	Stage           string `json:"stage"`
	Region          string `json:"region"`
	FundingType     string `json:"funding_type"`
	Description     string `json:"description"`
	SoftApproval    bool   `json:"soft_approval"`
}

// CreateTrackingRequest is the body of POST /tracking.
type CreateTrackingRequest struct {
	StartupID string `json:"startup_id" binding:"required"`
	GrantID   string `json:"grant_id" binding:"required"`
	Status    string `json:"status"`
	Progress  string `json:"progress"`
	Notes     string `json:"notes"`
}

// UpdateTrackingRequest is the body of PUT /tracking/:id.
// Nil fields are left untouched.
type UpdateTrackingRequest struct {
	Status          *string  `json:"status,omitempty"`
	Progress        *string  `json:"progress,omitempty"`
	AppliedDate     *string  `json:"applied_date,omitempty"`
	ApprovedDate    *string  `json:"approved_date,omitempty"`
	DisbursedDate   *string  `json:"disbursed_date,omitempty"`
	RejectedDate    *string  `json:"rejected_date,omitempty"`
	DisbursedAmount *float64 `json:"disbursed_amount,omitempty"`
	ScreenshotPath  *string  `json:"screenshot_path,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}
