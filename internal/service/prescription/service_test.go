package prescription

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository/memory"
	"github.com/jwalitptl/clinic-ops/internal/service/access"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

func setup(t *testing.T) (*Service, *memory.Store, *model.User, *model.Doctor, *model.Appointment) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	patient, err := store.CreateUser(ctx, &model.User{Username: "p", Email: "p@example.com", Role: model.RolePatient})
	require.NoError(t, err)
	docUser, err := store.CreateUser(ctx, &model.User{Username: "d", Email: "d@example.com", Role: model.RoleDoctor})
	require.NoError(t, err)
	doc, err := store.CreateDoctor(ctx, &model.Doctor{UserID: docUser.ID, Specialty: "Cardiology"})
	require.NoError(t, err)
	apt, err := store.CreateAppointment(ctx, &model.Appointment{PatientID: patient.ID, DoctorID: doc.ID})
	require.NoError(t, err)

	return NewService(store, access.NewFilter(store, access.DefaultCacheConfig())), store, patient, doc, apt
}

func TestCreatePrescription(t *testing.T) {
	svc, _, patient, doc, apt := setup(t)
	ctx := context.Background()

	meds := []model.Medication{{Name: "Atorvastatin", Dosage: "10mg", Frequency: "daily", Duration: "30 days"}}
	p, err := svc.CreatePrescription(ctx, &model.CreatePrescriptionRequest{
		AppointmentID: apt.ID,
		DoctorID:      doc.ID,
		PatientID:     patient.ID,
		Diagnosis:     "Hyperlipidaemia",
		Medications:   meds,
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, meds, p.Medications)

	// the caller's slice is not shared with the stored record
	meds[0].Dosage = "80mg"
	list, err := svc.ListPrescriptions(ctx, model.Identity{UserID: doc.UserID, Role: model.RoleDoctor})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "10mg", list[0].Medications[0].Dosage)
}

func TestCreatePrescriptionValidation(t *testing.T) {
	svc, store, patient, doc, apt := setup(t)
	ctx := context.Background()
	other, err := store.CreateUser(ctx, &model.User{Username: "q", Email: "q@example.com", Role: model.RolePatient})
	require.NoError(t, err)

	meds := []model.Medication{{Name: "Aspirin", Dosage: "75mg"}}
	tests := []struct {
		name string
		req  model.CreatePrescriptionRequest
	}{
		{"no medications", model.CreatePrescriptionRequest{AppointmentID: apt.ID, DoctorID: doc.ID, PatientID: patient.ID, Diagnosis: "x"}},
		{"unknown appointment", model.CreatePrescriptionRequest{AppointmentID: 999999, DoctorID: doc.ID, PatientID: patient.ID, Diagnosis: "x", Medications: meds}},
		{"someone else's appointment", model.CreatePrescriptionRequest{AppointmentID: apt.ID, DoctorID: doc.ID, PatientID: other.ID, Diagnosis: "x", Medications: meds}},
		{"unknown doctor", model.CreatePrescriptionRequest{AppointmentID: apt.ID, DoctorID: 999999, PatientID: patient.ID, Diagnosis: "x", Medications: meds}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePrescription(ctx, &tt.req)
			assert.ErrorIs(t, err, errors.ValidationError)
		})
	}
}
