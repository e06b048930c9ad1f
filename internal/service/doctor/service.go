package doctor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository"
	"github.com/jwalitptl/clinic-ops/internal/service/access"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

type Service struct {
	store  repository.Store
	filter *access.Filter
}

func NewService(store repository.Store, filter *access.Filter) *Service {
	return &Service{store: store, filter: filter}
}

// CreateDoctor attaches a clinical profile to an existing doctor-role user.
func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	var created *model.Doctor
	err := s.store.RunInTransaction(ctx, func(tx repository.Tx) error {
		var err error
		created, err = CreateProfile(ctx, tx, req.UserID, req.DoctorProfile)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	log.Info().
		Int64("doctor_id", created.ID).
		Int64("user_id", created.UserID).
		Str("specialty", created.Specialty).
		Msg("doctor profile created")
	return created, nil
}

// CreateProfile creates the doctor row inside an open transaction. The user
// must exist, hold the doctor role and not have a profile yet.
func CreateProfile(ctx context.Context, tx repository.Tx, userID model.ID, profile model.DoctorProfile) (*model.Doctor, error) {
	u, err := tx.GetUser(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.BadRequest(fmt.Sprintf("user %d does not exist", userID), nil)
		}
		return nil, err
	}
	if u.Role != model.RoleDoctor {
		return nil, errors.BadRequest(fmt.Sprintf("user %d does not have the doctor role", userID), nil)
	}
	if _, err := tx.GetDoctorByUserID(ctx, userID); err == nil {
		return nil, errors.NewConflict(fmt.Sprintf("user %d already has a doctor profile", userID))
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	return tx.CreateDoctor(ctx, &model.Doctor{
		UserID:        userID,
		Specialty:     profile.Specialty,
		Department:    profile.Department,
		LicenseNumber: profile.LicenseNumber,
		Experience:    profile.Experience,
	})
}

// ListDoctors returns the doctors open for booking.
func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	return s.filter.ActiveDoctors(ctx)
}

func (s *Service) GetDoctorByUserID(ctx context.Context, userID model.ID) (*model.Doctor, error) {
	d, err := s.store.GetDoctorByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor for user %d: %w", userID, err)
	}
	return d, nil
}

// SetActive opens or closes a doctor for booking. Inactive doctors keep
// their history.
func (s *Service) SetActive(ctx context.Context, id model.ID, active bool) (*model.Doctor, error) {
	d, err := s.store.SetDoctorActive(ctx, id, active)
	if err != nil {
		return nil, fmt.Errorf("failed to update doctor %d: %w", id, err)
	}
	log.Info().Int64("doctor_id", id).Bool("active", active).Msg("doctor availability changed")
	return d, nil
}
