package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-ops/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *model.User) (*model.User, error)
		GetUser(ctx context.Context, id model.ID) (*model.User, error)
		GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	}

	DoctorRepository interface {
		CreateDoctor(ctx context.Context, doctor *model.Doctor) (*model.Doctor, error)
		GetDoctor(ctx context.Context, id model.ID) (*model.Doctor, error)
		GetDoctorByUserID(ctx context.Context, userID model.ID) (*model.Doctor, error)
		ListDoctors(ctx context.Context) ([]*model.Doctor, error)
		SetDoctorActive(ctx context.Context, id model.ID, active bool) (*model.Doctor, error)
	}

	AppointmentRepository interface {
		CreateAppointment(ctx context.Context, appointment *model.Appointment) (*model.Appointment, error)
		GetAppointment(ctx context.Context, id model.ID) (*model.Appointment, error)
		UpdateAppointment(ctx context.Context, id model.ID, update model.AppointmentUpdate) (*model.Appointment, error)
		ListAppointments(ctx context.Context) ([]*model.Appointment, error)
	}

	PrescriptionRepository interface {
		CreatePrescription(ctx context.Context, prescription *model.Prescription) (*model.Prescription, error)
		ListPrescriptions(ctx context.Context) ([]*model.Prescription, error)
	}

	LabTestRepository interface {
		CreateLabTest(ctx context.Context, labTest *model.LabTest) (*model.LabTest, error)
		GetLabTest(ctx context.Context, id model.ID) (*model.LabTest, error)
		UpdateLabTest(ctx context.Context, id model.ID, update model.LabTestUpdate) (*model.LabTest, error)
		ListLabTests(ctx context.Context) ([]*model.LabTest, error)
	}

	TokenRepository interface {
		CreateToken(ctx context.Context, token *model.TokenEntry) (*model.TokenEntry, error)
		ListTokens(ctx context.Context, from, to time.Time) ([]*model.TokenEntry, error)
	}

	// Tx is the unit of work handed to RunInTransaction. Writes become
	// visible only when the transaction function returns nil.
	Tx interface {
		UserRepository
		DoctorRepository
		AppointmentRepository
		LabTestRepository
		TokenRepository
		Now() time.Time
	}

	Transactor interface {
		RunInTransaction(ctx context.Context, fn func(tx Tx) error) error
	}

	// Store is the full entity store.
	Store interface {
		UserRepository
		DoctorRepository
		AppointmentRepository
		PrescriptionRepository
		LabTestRepository
		TokenRepository
		Transactor
		Now() time.Time
	}
)
