package model

import "time"

type LabTestPriority string

const (
	LabTestPriorityNormal    LabTestPriority = "normal"
	LabTestPriorityUrgent    LabTestPriority = "urgent"
	LabTestPriorityEmergency LabTestPriority = "emergency"
)

func (p LabTestPriority) Valid() bool {
	switch p {
	case LabTestPriorityNormal, LabTestPriorityUrgent, LabTestPriorityEmergency:
		return true
	}
	return false
}

type LabTestStatus string

const (
	LabTestStatusRequested  LabTestStatus = "requested"
	LabTestStatusInProgress LabTestStatus = "in_progress"
	LabTestStatusCompleted  LabTestStatus = "completed"
)

func (s LabTestStatus) Valid() bool {
	switch s {
	case LabTestStatusRequested, LabTestStatusInProgress, LabTestStatusCompleted:
		return true
	}
	return false
}

type LabTest struct {
	ID             ID              `json:"id"`
	AppointmentID  *ID             `json:"appointment_id,omitempty"`
	DoctorID       ID              `json:"doctor_id"`
	PatientID      ID              `json:"patient_id"`
	TestType       string          `json:"test_type"`
	Priority       LabTestPriority `json:"priority"`
	Status         LabTestStatus   `json:"status"`
	RequestedAt    time.Time       `json:"requested_at"`
	CompletedAt    *time.Time      `json:"completed_at"`
	LabAssistantID *ID             `json:"lab_assistant_id"`
	ReportURL      *string         `json:"report_url"`
	Remarks        *string         `json:"remarks"`
}

func (t LabTest) Clone() LabTest {
	t.AppointmentID = cloneID(t.AppointmentID)
	t.CompletedAt = cloneTime(t.CompletedAt)
	t.LabAssistantID = cloneID(t.LabAssistantID)
	t.ReportURL = cloneString(t.ReportURL)
	t.Remarks = cloneString(t.Remarks)
	return t
}

func (t LabTest) PatientRef() ID { return t.PatientID }
func (t LabTest) DoctorRef() ID  { return t.DoctorID }

// HasReport reports whether a completed report is attached.
func (t LabTest) HasReport() bool {
	return t.Status == LabTestStatusCompleted && t.ReportURL != nil && *t.ReportURL != ""
}

type CreateLabTestRequest struct {
	AppointmentID *ID             `json:"appointment_id" binding:"omitempty,gt=0"`
	DoctorID      ID              `json:"doctor_id"`
	PatientID     ID              `json:"patient_id" binding:"required,gt=0"`
	TestType      string          `json:"test_type" binding:"required"`
	Priority      LabTestPriority `json:"priority" binding:"required,priority"`
}

// LabTestUpdate is a partial update; nil fields are left untouched.
type LabTestUpdate struct {
	Status         *LabTestStatus `json:"status" binding:"omitempty,labtest_status"`
	Remarks        *string        `json:"remarks"`
	CompletedAt    *time.Time     `json:"completed_at"`
	LabAssistantID *ID            `json:"-"`
	ReportURL      *string        `json:"-"`
}

// Apply merges u into t.
func (u LabTestUpdate) Apply(t *LabTest) {
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Remarks != nil {
		t.Remarks = cloneString(u.Remarks)
	}
	if u.CompletedAt != nil {
		t.CompletedAt = cloneTime(u.CompletedAt)
	}
	if u.LabAssistantID != nil {
		t.LabAssistantID = cloneID(u.LabAssistantID)
	}
	if u.ReportURL != nil {
		t.ReportURL = cloneString(u.ReportURL)
	}
}

// CompletesTest reports whether applying u moves the test to completed.
func (u LabTestUpdate) CompletesTest() bool {
	return u.Status != nil && *u.Status == LabTestStatusCompleted
}

type UploadReportRequest struct {
	ReportURL string `json:"report_url" binding:"required"`
}
