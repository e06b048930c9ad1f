package user

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository"
	"github.com/jwalitptl/clinic-ops/internal/service/doctor"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
	"github.com/jwalitptl/clinic-ops/pkg/security"
)

type Service struct {
	store  repository.Store
	hasher security.PasswordHasher
}

func NewService(store repository.Store, hasher security.PasswordHasher) *Service {
	return &Service{store: store, hasher: hasher}
}

// CreateUser registers a user. A doctor registration that carries a profile
// gets its doctor row in the same transaction, so neither exists without
// the other.
func (s *Service) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	role, err := model.ParseRole(string(req.Role))
	if err != nil {
		return nil, errors.BadRequest(err.Error(), nil)
	}
	if req.Doctor != nil && role != model.RoleDoctor {
		return nil, errors.BadRequest("doctor profile supplied for a non-doctor user", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if stderrors.Is(err, security.ErrPasswordTooShort) {
			return nil, errors.BadRequest(err.Error(), nil)
		}
		return nil, errors.Internal(err)
	}

	var created *model.User
	err = s.store.RunInTransaction(ctx, func(tx repository.Tx) error {
		var err error
		created, err = tx.CreateUser(ctx, &model.User{
			Username:     strings.TrimSpace(req.Username),
			Email:        strings.TrimSpace(req.Email),
			Role:         role,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		if req.Doctor != nil {
			_, err = doctor.CreateProfile(ctx, tx, created.ID, *req.Doctor)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Int64("user_id", created.ID).
		Str("username", created.Username).
		Str("role", created.Role.String()).
		Msg("user created")
	return created, nil
}

func (s *Service) GetUser(ctx context.Context, id model.ID) (*model.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return u, nil
}

// Authenticate checks a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized(nil)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, errors.Unauthorized(err)
	}
	return u, nil
}
