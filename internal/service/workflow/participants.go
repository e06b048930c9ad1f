package workflow

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

// ParticipantReader is what CheckParticipants needs from the store.
type ParticipantReader interface {
	GetUser(ctx context.Context, id model.ID) (*model.User, error)
	GetDoctor(ctx context.Context, id model.ID) (*model.Doctor, error)
}

// CheckParticipants verifies that patientID names a patient-role user and
// doctorID an existing doctor profile. Dangling references are validation
// errors, not NotFound: the caller supplied them in a payload.
func CheckParticipants(ctx context.Context, r ParticipantReader, patientID, doctorID model.ID) (*model.Doctor, error) {
	patient, err := r.GetUser(ctx, patientID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.BadRequest(fmt.Sprintf("patient %d does not exist", patientID), nil)
		}
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}
	if patient.Role != model.RolePatient {
		return nil, errors.BadRequest(fmt.Sprintf("user %d is not a patient", patientID), nil)
	}

	doctor, err := r.GetDoctor(ctx, doctorID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.BadRequest(fmt.Sprintf("doctor %d does not exist", doctorID), nil)
		}
		return nil, fmt.Errorf("failed to load doctor: %w", err)
	}
	return doctor, nil
}
