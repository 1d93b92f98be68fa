package models

import "time"

// TrackingStatus is the lifecycle label of a tracking entry.
type TrackingStatus string

const (
	StatusDraft     TrackingStatus = "Draft"
	StatusApplied   TrackingStatus = "Applied"
	StatusApproved  TrackingStatus = "Approved"
	StatusDisbursed TrackingStatus = "Disbursed"
	StatusRejected  TrackingStatus = "Rejected"
)

// AllStatuses lists every tracking status in lifecycle order.
var AllStatuses = []TrackingStatus{StatusDraft, StatusApplied, StatusApproved, StatusDisbursed, StatusRejected}

// Valid reports whether s is one of the known statuses.
func (s TrackingStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s in strict mode.
func (s TrackingStatus) Terminal() bool {
	return s == StatusDisbursed || s == StatusRejected
}

// TrackingEntry is the state of one (startup, grant) application effort.
type TrackingEntry struct {
	ID              string         `json:"id" firestore:"-"`
	UserID          string         `json:"user_id" firestore:"userId"` // analyst/expert/admin that owns the entry
	StartupID       string         `json:"startup_id" firestore:"startupId"`
	GrantID         string         `json:"grant_id" firestore:"grantId"`
	GrantKey        string         `json:"-" firestore:"grantKey"` // canonical grant id, used for uniqueness
	Status          TrackingStatus `json:"status" firestore:"status"`
	Progress        string         `json:"progress" firestore:"progress"`
	AppliedDate     string         `json:"applied_date" firestore:"appliedDate"`
	ApprovedDate    string         `json:"approved_date" firestore:"approvedDate"`
	DisbursedDate   string         `json:"disbursed_date" firestore:"disbursedDate"`
	RejectedDate    string         `json:"rejected_date" firestore:"rejectedDate"`
	DisbursedAmount *float64       `json:"disbursed_amount,omitempty" firestore:"disbursedAmount,omitempty"`
	ScreenshotPath  string         `json:"screenshot_path" firestore:"screenshotPath"`
	Notes           string         `json:"notes" firestore:"notes"`
	CreatedAt       time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time      `json:"updated_at" firestore:"updatedAt"`
}

// TrackingView is a tracking entry joined with display names.
type TrackingView struct {
	TrackingEntry
	GrantName   string `json:"grant_name"`
	StartupName string `json:"startup_name,omitempty"`
	AnalystName string `json:"analyst_name,omitempty"`
}
