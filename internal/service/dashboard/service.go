// Package dashboard computes the per-role summary cards. Figures are
// clinic-wide for the current local day; none of them are scoped to the
// calling user.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

const (
	// FlatVisitFee is the per-appointment revenue estimate.
	FlatVisitFee = 50
	// AverageTurnaround is a fixed placeholder until request-to-completion
	// times are tracked.
	AverageTurnaround = "2.4h"
)

// Reader is the slice of the store the aggregator reads.
type Reader interface {
	repository.DoctorRepository
	repository.AppointmentRepository
	repository.PrescriptionRepository
	repository.LabTestRepository
	Now() time.Time
}

type Service struct {
	store Reader
}

func NewService(store Reader) *Service {
	return &Service{store: store}
}

// Stats returns the summary for role. The concrete type matches the role.
func (s *Service) Stats(ctx context.Context, role model.Role) (model.DashboardStats, error) {
	switch role {
	case model.RolePatient:
		return seal(s.patientStats(ctx))
	case model.RoleDoctor:
		return seal(s.doctorStats(ctx))
	case model.RoleAdmin:
		return seal(s.adminStats(ctx))
	case model.RoleLab:
		return seal(s.labStats(ctx))
	default:
		return nil, errors.BadRequest(fmt.Sprintf("no dashboard for role %q", role), nil)
	}
}

func seal[T model.DashboardStats](stats T, err error) (model.DashboardStats, error) {
	if err != nil {
		return nil, err
	}
	return stats, nil
}

type day struct{ start, end time.Time }

func (s *Service) today() day {
	start, end := model.DayWindow(s.store.Now())
	return day{start: start, end: end}
}

func (d day) contains(t time.Time) bool { return model.InWindow(t, d.start, d.end) }

func (s *Service) todayAppointments(ctx context.Context, d day) ([]*model.Appointment, error) {
	all, err := s.store.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	out := make([]*model.Appointment, 0, len(all))
	for _, a := range all {
		if d.contains(a.AppointmentDate) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) todayLabTests(ctx context.Context, d day) (today []*model.LabTest, total int, err error) {
	all, err := s.store.ListLabTests(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list lab tests: %w", err)
	}
	today = make([]*model.LabTest, 0, len(all))
	for _, t := range all {
		if d.contains(t.RequestedAt) {
			today = append(today, t)
		}
	}
	return today, len(all), nil
}

func countAppointments(list []*model.Appointment, status model.AppointmentStatus) int {
	n := 0
	for _, a := range list {
		if a.Status == status {
			n++
		}
	}
	return n
}

func countLabTests(list []*model.LabTest, pred func(*model.LabTest) bool) int {
	n := 0
	for _, t := range list {
		if pred(t) {
			n++
		}
	}
	return n
}

func hasStatus(status model.LabTestStatus) func(*model.LabTest) bool {
	return func(t *model.LabTest) bool { return t.Status == status }
}

func (s *Service) patientStats(ctx context.Context) (model.PatientStats, error) {
	d := s.today()
	apts, err := s.todayAppointments(ctx, d)
	if err != nil {
		return model.PatientStats{}, err
	}
	tests, _, err := s.todayLabTests(ctx, d)
	if err != nil {
		return model.PatientStats{}, err
	}
	prescriptions, err := s.store.ListPrescriptions(ctx)
	if err != nil {
		return model.PatientStats{}, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return model.PatientStats{
		UpcomingAppointments: len(apts),
		PendingReports:       countLabTests(tests, (*model.LabTest).HasReport),
		Prescriptions:        len(prescriptions),
	}, nil
}

func (s *Service) doctorStats(ctx context.Context) (model.DoctorStats, error) {
	d := s.today()
	apts, err := s.todayAppointments(ctx, d)
	if err != nil {
		return model.DoctorStats{}, err
	}
	tests, _, err := s.todayLabTests(ctx, d)
	if err != nil {
		return model.DoctorStats{}, err
	}
	return model.DoctorStats{
		TodayAppointments: len(apts),
		PendingLabs:       countLabTests(tests, hasStatus(model.LabTestStatusRequested)),
		Completed:         countAppointments(apts, model.AppointmentStatusCompleted),
	}, nil
}

func (s *Service) adminStats(ctx context.Context) (model.AdminStats, error) {
	d := s.today()
	doctors, err := s.store.ListDoctors(ctx)
	if err != nil {
		return model.AdminStats{}, fmt.Errorf("failed to list doctors: %w", err)
	}
	apts, err := s.todayAppointments(ctx, d)
	if err != nil {
		return model.AdminStats{}, err
	}
	return model.AdminStats{
		TotalDoctors:      len(doctors),
		TodayAppointments: len(apts),
		Revenue:           len(apts) * FlatVisitFee,
		PendingApprovals:  countAppointments(apts, model.AppointmentStatusScheduled),
	}, nil
}

func (s *Service) labStats(ctx context.Context) (model.LabStats, error) {
	tests, total, err := s.todayLabTests(ctx, s.today())
	if err != nil {
		return model.LabStats{}, err
	}
	return model.LabStats{
		PendingTests:   countLabTests(tests, hasStatus(model.LabTestStatusRequested)),
		CompletedToday: countLabTests(tests, hasStatus(model.LabTestStatusCompleted)),
		WeeklyTotal:    total,
		AverageTat:     AverageTurnaround,
	}, nil
}
