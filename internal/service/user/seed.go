package user

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func sampleUsers(password string) []model.CreateUserRequest {
	return []model.CreateUserRequest{
		{Username: "patient1", Password: password, Email: "patient@example.com", Role: model.RolePatient,
			FirstName: "John", LastName: "Doe", Phone: strPtr("123-456-7890")},
		{Username: "doctor1", Password: password, Email: "doctor@example.com", Role: model.RoleDoctor,
			FirstName: "Dr. Sarah", LastName: "Wilson", Phone: strPtr("123-456-7891"),
			Doctor: &model.DoctorProfile{
				Specialty:     "Cardiology",
				Department:    "Cardiology",
				LicenseNumber: strPtr("DOC123"),
				Experience:    intPtr(5),
			}},
		{Username: "admin1", Password: password, Email: "admin@example.com", Role: model.RoleAdmin,
			FirstName: "Admin", LastName: "User", Phone: strPtr("123-456-7892")},
		{Username: "lab1", Password: password, Email: "lab@example.com", Role: model.RoleLab,
			FirstName: "Lab", LastName: "Assistant", Phone: strPtr("123-456-7893")},
	}
}

// Seed creates one user per role. doctor1 gets a Cardiology profile.
func (s *Service) Seed(ctx context.Context, password string) ([]*model.User, error) {
	reqs := sampleUsers(password)
	out := make([]*model.User, 0, len(reqs))
	for i := range reqs {
		u, err := s.CreateUser(ctx, &reqs[i])
		if err != nil {
			return out, fmt.Errorf("failed to seed %s: %w", reqs[i].Username, err)
		}
		out = append(out, u)
	}
	log.Info().Int("users", len(out)).Msg("sample data loaded")
	return out, nil
}
