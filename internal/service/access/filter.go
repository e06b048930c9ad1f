package access

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

// Reader is the slice of the entity store the filter reads from.
type Reader interface {
	repository.DoctorRepository
	repository.AppointmentRepository
	repository.PrescriptionRepository
	repository.LabTestRepository
}

type CacheConfig struct {
	Expiration      time.Duration
	CleanupInterval time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Expiration:      30 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

// Filter projects store collections onto what a caller may see.
type Filter struct {
	store   Reader
	doctors *cache.Cache
}

func NewFilter(store Reader, cfg CacheConfig) *Filter {
	return &Filter{
		store:   store,
		doctors: cache.New(cfg.Expiration, cfg.CleanupInterval),
	}
}

// Appointments returns the appointments visible to id.
func (f *Filter) Appointments(ctx context.Context, id model.Identity) ([]*model.Appointment, error) {
	scope := PolicyFor(id.Role).Appointments
	if scope == ScopeNone {
		return []*model.Appointment{}, nil
	}
	who, err := f.resolve(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	all, err := f.store.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return narrow(all, scope, who), nil
}

// Prescriptions returns the prescriptions visible to id.
func (f *Filter) Prescriptions(ctx context.Context, id model.Identity) ([]*model.Prescription, error) {
	scope := PolicyFor(id.Role).Prescriptions
	if scope == ScopeNone {
		return []*model.Prescription{}, nil
	}
	who, err := f.resolve(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	all, err := f.store.ListPrescriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return narrow(all, scope, who), nil
}

// LabTests returns the lab tests visible to id.
func (f *Filter) LabTests(ctx context.Context, id model.Identity) ([]*model.LabTest, error) {
	scope := PolicyFor(id.Role).LabTests
	if scope == ScopeNone {
		return []*model.LabTest{}, nil
	}
	who, err := f.resolve(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	all, err := f.store.ListLabTests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab tests: %w", err)
	}
	return narrow(all, scope, who), nil
}

// ActiveDoctors lists doctors open for booking.
func (f *Filter) ActiveDoctors(ctx context.Context) ([]*model.Doctor, error) {
	all, err := f.store.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	out := make([]*model.Doctor, 0, len(all))
	for _, d := range all {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *Filter) resolve(ctx context.Context, id model.Identity, scope Scope) (subject, error) {
	who := subject{userID: id.UserID}
	if scope != ScopeOwnDoctor {
		return who, nil
	}
	doctorID, ok, err := f.doctorFor(ctx, id.UserID)
	if err != nil {
		return who, err
	}
	who.doctorID, who.hasDoctor = doctorID, ok
	return who, nil
}

// doctorFor resolves the doctor profile of a user. Only hits are cached:
// profiles are never deleted and never change owner.
func (f *Filter) doctorFor(ctx context.Context, userID model.ID) (model.ID, bool, error) {
	key := strconv.FormatInt(userID, 10)
	if cached, found := f.doctors.Get(key); found {
		return cached.(model.ID), true, nil
	}

	doctor, err := f.store.GetDoctorByUserID(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			log.Debug().Int64("user_id", userID).Msg("doctor caller has no profile, returning empty set")
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to resolve doctor profile: %w", err)
	}

	f.doctors.Set(key, doctor.ID, cache.DefaultExpiration)
	return doctor.ID, true, nil
}
