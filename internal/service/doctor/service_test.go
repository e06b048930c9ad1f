package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository/memory"
	"github.com/jwalitptl/clinic-ops/internal/service/access"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewService(store, access.NewFilter(store, access.DefaultCacheConfig())), store
}

func TestCreateDoctorRequiresDoctorRole(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	patient, err := store.CreateUser(ctx, &model.User{Username: "p", Email: "p@example.com", Role: model.RolePatient})
	require.NoError(t, err)
	docUser, err := store.CreateUser(ctx, &model.User{Username: "d", Email: "d@example.com", Role: model.RoleDoctor})
	require.NoError(t, err)

	profile := model.DoctorProfile{Specialty: "Cardiology", Department: "Cardiology"}

	_, err = svc.CreateDoctor(ctx, &model.CreateDoctorRequest{UserID: patient.ID, DoctorProfile: profile})
	assert.ErrorIs(t, err, errors.ValidationError)

	_, err = svc.CreateDoctor(ctx, &model.CreateDoctorRequest{UserID: 999999, DoctorProfile: profile})
	assert.ErrorIs(t, err, errors.ValidationError)

	d, err := svc.CreateDoctor(ctx, &model.CreateDoctorRequest{UserID: docUser.ID, DoctorProfile: profile})
	require.NoError(t, err)
	assert.True(t, d.IsActive)
	assert.Equal(t, "Cardiology", d.Specialty)

	_, err = svc.CreateDoctor(ctx, &model.CreateDoctorRequest{UserID: docUser.ID, DoctorProfile: profile})
	assert.ErrorIs(t, err, errors.ConflictError)

	got, err := svc.GetDoctorByUserID(ctx, docUser.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}

func TestListDoctorsHidesInactive(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	var ids []model.ID
	for _, name := range []string{"a", "b", "c"} {
		u, err := store.CreateUser(ctx, &model.User{Username: name, Email: name + "@example.com", Role: model.RoleDoctor})
		require.NoError(t, err)
		d, err := svc.CreateDoctor(ctx, &model.CreateDoctorRequest{UserID: u.ID, DoctorProfile: model.DoctorProfile{Specialty: "GP", Department: "General"}})
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}

	_, err := svc.SetActive(ctx, ids[1], false)
	require.NoError(t, err)

	list, err := svc.ListDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[0], list[0].ID)
	assert.Equal(t, ids[2], list[1].ID)

	all, err := store.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.SetActive(ctx, 999999, true)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetDoctorByUserIDMissing(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.GetDoctorByUserID(context.Background(), 42)
	assert.True(t, errors.IsNotFound(err))
}
