package appointment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository"
	"github.com/jwalitptl/clinic-ops/internal/service/access"
	"github.com/jwalitptl/clinic-ops/internal/service/workflow"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
	"github.com/jwalitptl/clinic-ops/pkg/event"
)

type Service struct {
	store  repository.Store
	filter *access.Filter
	policy workflow.TransitionPolicy
	events event.Publisher
}

func NewService(store repository.Store, filter *access.Filter, policy workflow.TransitionPolicy, events event.Publisher) *Service {
	if policy == nil {
		policy = workflow.Unchecked{}
	}
	if events == nil {
		events = event.Discard{}
	}
	return &Service{
		store:  store,
		filter: filter,
		policy: policy,
		events: events,
	}
}

// CreateAppointment books a visit. New appointments are always scheduled
// and carry no token.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	doctor, err := workflow.CheckParticipants(ctx, s.store, req.PatientID, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsActive {
		return nil, errors.BadRequest(fmt.Sprintf("doctor %d is not accepting appointments", doctor.ID), nil)
	}

	apt, err := s.store.CreateAppointment(ctx, &model.Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		Reason:          req.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	log.Info().
		Int64("appointment_id", apt.ID).
		Int64("patient_id", apt.PatientID).
		Int64("doctor_id", apt.DoctorID).
		Msg("appointment created")
	s.events.Emit(ctx, event.AppointmentCreated, apt)
	return apt, nil
}

// ListAppointments returns the appointments visible to the caller.
func (s *Service) ListAppointments(ctx context.Context, id model.Identity) ([]*model.Appointment, error) {
	return s.filter.Appointments(ctx, id)
}

// UpdateAppointment merges update into the appointment. Status changes go
// through the configured transition policy.
func (s *Service) UpdateAppointment(ctx context.Context, id model.ID, update model.AppointmentUpdate) (*model.Appointment, error) {
	if update.TokenNumber != nil {
		return nil, errors.BadRequest("token numbers are assigned through the token queue", nil)
	}

	var updated *model.Appointment
	err := s.store.RunInTransaction(ctx, func(tx repository.Tx) error {
		current, err := tx.GetAppointment(ctx, id)
		if err != nil {
			return err
		}
		if update.Status != nil {
			if err := s.policy.CheckAppointment(current.Status, *update.Status); err != nil {
				return err
			}
		}
		updated, err = tx.UpdateAppointment(ctx, id, update)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment %d: %w", id, err)
	}
	return updated, nil
}
