package models

import "time"

// Notification kinds.
const (
	NotificationTierChanged     = "TIER_CHANGED"
	NotificationTrackingCreated = "TRACKING_CREATED"
	NotificationTrackingStatus  = "TRACKING_STATUS"
)

// Notification is an event addressed to one account.
type Notification struct {
	ID        string            `json:"id" firestore:"-"`
	AccountID string            `json:"account_id" firestore:"accountId"`
	Kind      string            `json:"kind" firestore:"kind"`
	Title     string            `json:"title" firestore:"title"`
	Message   string            `json:"message" firestore:"message"`
	Read      bool              `json:"read" firestore:"read"`
	Details   map[string]string `json:"details,omitempty" firestore:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at" firestore:"createdAt"`
}
