package model

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID              ID                `json:"id"`
	PatientID       ID                `json:"patient_id"`
	DoctorID        ID                `json:"doctor_id"`
	AppointmentDate time.Time         `json:"appointment_date"`
	Status          AppointmentStatus `json:"status"`
	Reason          *string           `json:"reason,omitempty"`
	TokenNumber     *int              `json:"token_number"`
	CreatedAt       time.Time         `json:"created_at"`
}

func (a Appointment) Clone() Appointment {
	a.Reason = cloneString(a.Reason)
	a.TokenNumber = cloneInt(a.TokenNumber)
	return a
}

// PatientRef and DoctorRef expose the ownership keys used by the access filter.
func (a Appointment) PatientRef() ID { return a.PatientID }
func (a Appointment) DoctorRef() ID  { return a.DoctorID }

type CreateAppointmentRequest struct {
	PatientID       ID        `json:"patient_id"`
	DoctorID        ID        `json:"doctor_id" binding:"required,gt=0"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Reason          *string   `json:"reason" binding:"omitempty,max=1000"`
}

// AppointmentUpdate is a partial update; nil fields are left untouched.
type AppointmentUpdate struct {
	Status          *AppointmentStatus `json:"status" binding:"omitempty,appointment_status"`
	TokenNumber     *int               `json:"token_number" binding:"omitempty,gt=0"`
	AppointmentDate *time.Time         `json:"appointment_date"`
	Reason          *string            `json:"reason" binding:"omitempty,max=1000"`
}

// Apply merges u into a.
func (u AppointmentUpdate) Apply(a *Appointment) {
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.TokenNumber != nil {
		a.TokenNumber = cloneInt(u.TokenNumber)
	}
	if u.AppointmentDate != nil {
		a.AppointmentDate = *u.AppointmentDate
	}
	if u.Reason != nil {
		a.Reason = cloneString(u.Reason)
	}
}
