package token

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository"
	"github.com/jwalitptl/clinic-ops/pkg/event"
	"github.com/jwalitptl/clinic-ops/pkg/metrics"
)

type Service struct {
	store   repository.Store
	events  event.Publisher
	metrics *metrics.Metrics
}

func NewService(store repository.Store, events event.Publisher, m *metrics.Metrics) *Service {
	if events == nil {
		events = event.Discard{}
	}
	return &Service{
		store:   store,
		events:  events,
		metrics: m,
	}
}

// Assignment is the outcome of AssignToken.
type Assignment struct {
	Token       *model.TokenEntry  `json:"token"`
	Appointment *model.Appointment `json:"appointment"`
}

// TodayQueue lists the entries queued for the current local day.
func (s *Service) TodayQueue(ctx context.Context) ([]*model.TokenEntry, error) {
	start, end := model.DayWindow(s.store.Now())
	tokens, err := s.store.ListTokens(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list token queue: %w", err)
	}
	return tokens, nil
}

// AssignToken gives the appointment the next token of the day and confirms
// it. Counting, queue insertion and the appointment update commit together,
// so a missing appointment leaves no queue entry behind and concurrent
// callers never share a number.
func (s *Service) AssignToken(ctx context.Context, appointmentID model.ID) (*Assignment, error) {
	var out Assignment
	err := s.store.RunInTransaction(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetAppointment(ctx, appointmentID); err != nil {
			return err
		}

		now := tx.Now()
		start, end := model.DayWindow(now)
		today, err := tx.ListTokens(ctx, start, end)
		if err != nil {
			return err
		}
		number := len(today) + 1

		out.Token, err = tx.CreateToken(ctx, &model.TokenEntry{
			AppointmentID: appointmentID,
			TokenNumber:   number,
			QueueDate:     now,
			Status:        model.TokenStatusWaiting,
			EstimatedTime: number * model.MinutesPerToken,
		})
		if err != nil {
			return err
		}

		confirmed := model.AppointmentStatusConfirmed
		out.Appointment, err = tx.UpdateAppointment(ctx, appointmentID, model.AppointmentUpdate{
			Status:      &confirmed,
			TokenNumber: &number,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign token to appointment %d: %w", appointmentID, err)
	}

	s.metrics.TokenAssigned()
	log.Info().
		Int64("appointment_id", appointmentID).
		Int("token_number", out.Token.TokenNumber).
		Int("estimated_time", out.Token.EstimatedTime).
		Msg("token assigned")
	s.events.Emit(ctx, event.TokenAssigned, out)
	return &out, nil
}
