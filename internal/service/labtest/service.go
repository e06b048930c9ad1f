package labtest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository"
	"github.com/jwalitptl/clinic-ops/internal/service/access"
	"github.com/jwalitptl/clinic-ops/internal/service/workflow"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
	"github.com/jwalitptl/clinic-ops/pkg/event"
	"github.com/jwalitptl/clinic-ops/pkg/metrics"
)

type Service struct {
	store   repository.Store
	filter  *access.Filter
	policy  workflow.TransitionPolicy
	events  event.Publisher
	metrics *metrics.Metrics
}

func NewService(store repository.Store, filter *access.Filter, policy workflow.TransitionPolicy, events event.Publisher, m *metrics.Metrics) *Service {
	if policy == nil {
		policy = workflow.Unchecked{}
	}
	if events == nil {
		events = event.Discard{}
	}
	return &Service{
		store:   store,
		filter:  filter,
		policy:  policy,
		events:  events,
		metrics: m,
	}
}

// CreateLabTest files a lab request. The test starts out requested with no
// completion data.
func (s *Service) CreateLabTest(ctx context.Context, req *model.CreateLabTestRequest) (*model.LabTest, error) {
	if !req.Priority.Valid() {
		return nil, errors.BadRequest(fmt.Sprintf("unknown priority %q", req.Priority), nil)
	}
	if _, err := workflow.CheckParticipants(ctx, s.store, req.PatientID, req.DoctorID); err != nil {
		return nil, err
	}
	if req.AppointmentID != nil {
		if _, err := s.store.GetAppointment(ctx, *req.AppointmentID); err != nil {
			if errors.IsNotFound(err) {
				return nil, errors.BadRequest(fmt.Sprintf("appointment %d does not exist", *req.AppointmentID), nil)
			}
			return nil, fmt.Errorf("failed to load appointment: %w", err)
		}
	}

	test, err := s.store.CreateLabTest(ctx, &model.LabTest{
		AppointmentID: req.AppointmentID,
		DoctorID:      req.DoctorID,
		PatientID:     req.PatientID,
		TestType:      req.TestType,
		Priority:      req.Priority,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lab test: %w", err)
	}

	log.Info().
		Int64("lab_test_id", test.ID).
		Str("priority", string(test.Priority)).
		Msg("lab test requested")
	return test, nil
}

// ListLabTests returns the lab tests visible to the caller.
func (s *Service) ListLabTests(ctx context.Context, id model.Identity) ([]*model.LabTest, error) {
	return s.filter.LabTests(ctx, id)
}

// UpdateLabTest applies a lab user's update. Completion data is only
// written when the update completes the test: the actor becomes the lab
// assistant and a missing timestamp is stamped with the store clock.
func (s *Service) UpdateLabTest(ctx context.Context, actor model.Identity, id model.ID, update model.LabTestUpdate) (*model.LabTest, error) {
	update.ReportURL = nil
	return s.apply(ctx, actor, id, update)
}

// UploadReport attaches a report and completes the test in one update.
func (s *Service) UploadReport(ctx context.Context, actor model.Identity, id model.ID, reportURL string) (*model.LabTest, error) {
	reportURL = strings.TrimSpace(reportURL)
	if reportURL == "" {
		return nil, errors.BadRequest("report url is required", nil)
	}
	completed := model.LabTestStatusCompleted
	return s.apply(ctx, actor, id, model.LabTestUpdate{
		Status:    &completed,
		ReportURL: &reportURL,
	})
}

func (s *Service) apply(ctx context.Context, actor model.Identity, id model.ID, update model.LabTestUpdate) (*model.LabTest, error) {
	var (
		updated      *model.LabTest
		justComplete bool
	)
	err := s.store.RunInTransaction(ctx, func(tx repository.Tx) error {
		current, err := tx.GetLabTest(ctx, id)
		if err != nil {
			return err
		}
		if update.Status != nil {
			if err := s.policy.CheckLabTest(current.Status, *update.Status); err != nil {
				return err
			}
		}

		if update.CompletesTest() {
			assistant := actor.UserID
			update.LabAssistantID = &assistant
			if update.CompletedAt == nil {
				now := tx.Now()
				update.CompletedAt = &now
			}
		} else {
			update.LabAssistantID = nil
			update.CompletedAt = nil
		}

		updated, err = tx.UpdateLabTest(ctx, id, update)
		justComplete = update.CompletesTest() && current.Status != model.LabTestStatusCompleted
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update lab test %d: %w", id, err)
	}

	if justComplete {
		s.metrics.LabTestCompleted()
		log.Info().
			Int64("lab_test_id", updated.ID).
			Int64("lab_assistant_id", actor.UserID).
			Bool("has_report", updated.HasReport()).
			Msg("lab test completed")
		s.events.Emit(ctx, event.LabTestCompleted, updated)
	}
	return updated, nil
}
