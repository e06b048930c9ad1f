package prescription

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository"
	"github.com/jwalitptl/clinic-ops/internal/service/access"
	"github.com/jwalitptl/clinic-ops/internal/service/workflow"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

// Service issues prescriptions. Prescriptions are never updated after
// creation.
type Service struct {
	store  repository.Store
	filter *access.Filter
}

func NewService(store repository.Store, filter *access.Filter) *Service {
	return &Service{store: store, filter: filter}
}

func (s *Service) CreatePrescription(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if len(req.Medications) == 0 {
		return nil, errors.BadRequest("at least one medication is required", nil)
	}
	if _, err := workflow.CheckParticipants(ctx, s.store, req.PatientID, req.DoctorID); err != nil {
		return nil, err
	}
	apt, err := s.store.GetAppointment(ctx, req.AppointmentID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.BadRequest(fmt.Sprintf("appointment %d does not exist", req.AppointmentID), nil)
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}
	if apt.PatientID != req.PatientID {
		return nil, errors.BadRequest(fmt.Sprintf("appointment %d belongs to another patient", apt.ID), nil)
	}

	p, err := s.store.CreatePrescription(ctx, &model.Prescription{
		AppointmentID: req.AppointmentID,
		DoctorID:      req.DoctorID,
		PatientID:     req.PatientID,
		Diagnosis:     req.Diagnosis,
		Medications:   req.Medications,
		Instructions:  req.Instructions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}

	log.Info().
		Int64("prescription_id", p.ID).
		Int64("appointment_id", p.AppointmentID).
		Int("medications", len(p.Medications)).
		Msg("prescription issued")
	return p, nil
}

// ListPrescriptions returns the prescriptions visible to the caller.
func (s *Service) ListPrescriptions(ctx context.Context, id model.Identity) ([]*model.Prescription, error) {
	return s.filter.Prescriptions(ctx, id)
}
