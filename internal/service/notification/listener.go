// Package notification turns domain events into patient emails.
package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/internal/email"
	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/pkg/event"
	"github.com/jwalitptl/clinic-ops/pkg/messaging"
)

// UserReader resolves the recipient of a notification.
type UserReader interface {
	GetUser(ctx context.Context, id model.ID) (*model.User, error)
}

type Listener struct {
	broker messaging.Broker
	users  UserReader
	email  email.Service
}

func NewListener(broker messaging.Broker, users UserReader, emailSvc email.Service) *Listener {
	return &Listener{
		broker: broker,
		users:  users,
		email:  emailSvc,
	}
}

type tokenAssigned struct {
	Token       model.TokenEntry  `json:"token"`
	Appointment model.Appointment `json:"appointment"`
}

// Run subscribes to the patient-facing events and blocks until ctx is done
// and in-flight messages are handled.
func (l *Listener) Run(ctx context.Context) error {
	handlers := map[event.EventType]func(context.Context, *event.Event) error{
		event.TokenAssigned:    l.onTokenAssigned,
		event.LabTestCompleted: l.onLabTestCompleted,
	}

	var wg sync.WaitGroup
	for eventType, handle := range handlers {
		ch, err := l.broker.Subscribe(ctx, string(eventType))
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
		}
		wg.Add(1)
		go func(eventType event.EventType, ch <-chan []byte, handle func(context.Context, *event.Event) error) {
			defer wg.Done()
			for msg := range ch {
				l.dispatch(ctx, eventType, msg, handle)
			}
		}(eventType, ch, handle)
	}

	log.Info().Msg("notification listener started")
	wg.Wait()
	return nil
}

func (l *Listener) dispatch(ctx context.Context, eventType event.EventType, msg []byte, handle func(context.Context, *event.Event) error) {
	evt, err := event.Parse(msg)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("malformed event")
		return
	}
	if err := handle(ctx, evt); err != nil {
		// Log error but continue processing
		log.Error().Err(err).
			Str("event_type", string(evt.Type)).
			Str("event_id", evt.ID.String()).
			Msg("notification failed")
	}
}

func (l *Listener) onTokenAssigned(ctx context.Context, evt *event.Event) error {
	var payload tokenAssigned
	if err := evt.Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	body := fmt.Sprintf(
		"Your appointment on %s is confirmed.\nToken number: %d\nEstimated wait: %d minutes\n",
		payload.Appointment.AppointmentDate.Format("Mon 2 Jan 2006 15:04"),
		payload.Token.TokenNumber,
		payload.Token.EstimatedTime,
	)
	return l.notify(ctx, payload.Appointment.PatientID, fmt.Sprintf("Token #%d assigned", payload.Token.TokenNumber), body)
}

func (l *Listener) onLabTestCompleted(ctx context.Context, evt *event.Event) error {
	var test model.LabTest
	if err := evt.Decode(&test); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	body := fmt.Sprintf("Your %s results are ready.\n", test.TestType)
	if test.HasReport() {
		body += fmt.Sprintf("Report: %s\n", *test.ReportURL)
	}
	return l.notify(ctx, test.PatientID, "Lab results ready", body)
}

func (l *Listener) notify(ctx context.Context, patientID model.ID, subject, body string) error {
	patient, err := l.users.GetUser(ctx, patientID)
	if err != nil {
		return fmt.Errorf("failed to load patient %d: %w", patientID, err)
	}
	if patient.Email == "" {
		log.Debug().Int64("user_id", patientID).Msg("patient has no email, skipping notification")
		return nil
	}
	greeting := fmt.Sprintf("Hello %s,\n\n", patient.Name())
	return l.email.Send(ctx, patient.Email, subject, greeting+body)
}
