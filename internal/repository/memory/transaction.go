package memory

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository"
)

var _ repository.Tx = (*transaction)(nil)

// transaction works on a private copy of the store state; the caller holds
// the store's write lock for its whole lifetime.
type transaction struct {
	state state
	now   time.Time
}

func (tx *transaction) Now() time.Time { return tx.now }

func (tx *transaction) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	return tx.state.createUser(user, tx.now)
}

func (tx *transaction) GetUser(_ context.Context, id model.ID) (*model.User, error) {
	return tx.state.getUser(id)
}

func (tx *transaction) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	return tx.state.getUserByUsername(username)
}

func (tx *transaction) CreateDoctor(_ context.Context, doctor *model.Doctor) (*model.Doctor, error) {
	return tx.state.createDoctor(doctor), nil
}

func (tx *transaction) GetDoctor(_ context.Context, id model.ID) (*model.Doctor, error) {
	return tx.state.getDoctor(id)
}

func (tx *transaction) GetDoctorByUserID(_ context.Context, userID model.ID) (*model.Doctor, error) {
	return tx.state.getDoctorByUserID(userID)
}

func (tx *transaction) ListDoctors(_ context.Context) ([]*model.Doctor, error) {
	return tx.state.listDoctors(), nil
}

func (tx *transaction) SetDoctorActive(_ context.Context, id model.ID, active bool) (*model.Doctor, error) {
	return tx.state.setDoctorActive(id, active)
}

func (tx *transaction) CreateAppointment(_ context.Context, appointment *model.Appointment) (*model.Appointment, error) {
	return tx.state.createAppointment(appointment, tx.now), nil
}

func (tx *transaction) GetAppointment(_ context.Context, id model.ID) (*model.Appointment, error) {
	return tx.state.getAppointment(id)
}

func (tx *transaction) UpdateAppointment(_ context.Context, id model.ID, update model.AppointmentUpdate) (*model.Appointment, error) {
	return tx.state.updateAppointment(id, update)
}

func (tx *transaction) ListAppointments(_ context.Context) ([]*model.Appointment, error) {
	return tx.state.listAppointments(), nil
}

func (tx *transaction) CreateLabTest(_ context.Context, labTest *model.LabTest) (*model.LabTest, error) {
	return tx.state.createLabTest(labTest, tx.now), nil
}

func (tx *transaction) GetLabTest(_ context.Context, id model.ID) (*model.LabTest, error) {
	return tx.state.getLabTest(id)
}

func (tx *transaction) UpdateLabTest(_ context.Context, id model.ID, update model.LabTestUpdate) (*model.LabTest, error) {
	return tx.state.updateLabTest(id, update)
}

func (tx *transaction) ListLabTests(_ context.Context) ([]*model.LabTest, error) {
	return tx.state.listLabTests(), nil
}

func (tx *transaction) CreateToken(_ context.Context, token *model.TokenEntry) (*model.TokenEntry, error) {
	return tx.state.createToken(token, tx.now), nil
}

func (tx *transaction) ListTokens(_ context.Context, from, to time.Time) ([]*model.TokenEntry, error) {
	return tx.state.listTokens(from, to), nil
}
