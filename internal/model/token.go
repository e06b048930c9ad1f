package model

import "time"

type TokenStatus string

const (
	TokenStatusWaiting   TokenStatus = "waiting"
	TokenStatusCalled    TokenStatus = "called"
	TokenStatusCompleted TokenStatus = "completed"
)

// MinutesPerToken is the flat per-visit wait estimate.
const MinutesPerToken = 15

// TokenEntry is a slot in the daily visit queue.
type TokenEntry struct {
	ID            ID          `json:"id"`
	AppointmentID ID          `json:"appointment_id"`
	TokenNumber   int         `json:"token_number"`
	QueueDate     time.Time   `json:"queue_date"`
	Status        TokenStatus `json:"status"`
	EstimatedTime int         `json:"estimated_time"`
}

type AssignTokenRequest struct {
	AppointmentID ID `json:"appointment_id" binding:"required,gt=0"`
}
