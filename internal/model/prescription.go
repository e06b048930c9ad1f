package model

import "time"

type Medication struct {
	Name      string `json:"name" binding:"required"`
	Dosage    string `json:"dosage" binding:"required"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// Prescription is immutable once created.
type Prescription struct {
	ID            ID           `json:"id"`
	AppointmentID ID           `json:"appointment_id"`
	DoctorID      ID           `json:"doctor_id"`
	PatientID     ID           `json:"patient_id"`
	Diagnosis     string       `json:"diagnosis"`
	Medications   []Medication `json:"medications"`
	Instructions  *string      `json:"instructions,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (p Prescription) Clone() Prescription {
	if p.Medications != nil {
		meds := make([]Medication, len(p.Medications))
		copy(meds, p.Medications)
		p.Medications = meds
	}
	p.Instructions = cloneString(p.Instructions)
	return p
}

func (p Prescription) PatientRef() ID { return p.PatientID }
func (p Prescription) DoctorRef() ID  { return p.DoctorID }

type CreatePrescriptionRequest struct {
	AppointmentID ID           `json:"appointment_id" binding:"required,gt=0"`
	DoctorID      ID           `json:"doctor_id"`
	PatientID     ID           `json:"patient_id" binding:"required,gt=0"`
	Diagnosis     string       `json:"diagnosis" binding:"required"`
	Medications   []Medication `json:"medications" binding:"required,min=1,dive"`
	Instructions  *string      `json:"instructions"`
}
