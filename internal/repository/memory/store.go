// Package memory provides the process-lifetime entity store. All records
// live in maps guarded by one lock and share a single id counter.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
	"github.com/jwalitptl/clinic-ops/pkg/metrics"
)

var _ repository.Store = (*Store)(nil)

type state struct {
	nextID        model.ID
	users         map[model.ID]model.User
	doctors       map[model.ID]model.Doctor
	appointments  map[model.ID]model.Appointment
	prescriptions map[model.ID]model.Prescription
	labTests      map[model.ID]model.LabTest
	tokens        map[model.ID]model.TokenEntry
}

func newState() state {
	return state{
		nextID:        1,
		users:         make(map[model.ID]model.User),
		doctors:       make(map[model.ID]model.Doctor),
		appointments:  make(map[model.ID]model.Appointment),
		prescriptions: make(map[model.ID]model.Prescription),
		labTests:      make(map[model.ID]model.LabTest),
		tokens:        make(map[model.ID]model.TokenEntry),
	}
}

// clone copies the collections. Stored values are never mutated in place,
// so a map-level copy is enough to isolate a transaction.
func (st state) clone() state {
	out := state{
		nextID:        st.nextID,
		users:         make(map[model.ID]model.User, len(st.users)),
		doctors:       make(map[model.ID]model.Doctor, len(st.doctors)),
		appointments:  make(map[model.ID]model.Appointment, len(st.appointments)),
		prescriptions: make(map[model.ID]model.Prescription, len(st.prescriptions)),
		labTests:      make(map[model.ID]model.LabTest, len(st.labTests)),
		tokens:        make(map[model.ID]model.TokenEntry, len(st.tokens)),
	}
	for k, v := range st.users {
		out.users[k] = v
	}
	for k, v := range st.doctors {
		out.doctors[k] = v
	}
	for k, v := range st.appointments {
		out.appointments[k] = v
	}
	for k, v := range st.prescriptions {
		out.prescriptions[k] = v
	}
	for k, v := range st.labTests {
		out.labTests[k] = v
	}
	for k, v := range st.tokens {
		out.tokens[k] = v
	}
	return out
}

func (st *state) allocID() model.ID {
	id := st.nextID
	st.nextID++
	return id
}

// Store implements repository.Store in process memory.
type Store struct {
	mu      sync.RWMutex
	state   state
	nowFn   func() time.Time
	metrics *metrics.Metrics
}

type Option func(*Store)

// WithClock overrides the time source used for default timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		s.nowFn = fn
	}
}

// WithMetrics records store operations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		state: newState(),
		nowFn: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Now() time.Time {
	return s.nowFn()
}

func (s *Store) write(op string, fn func(st *state, now time.Time) error) error {
	start := time.Now()
	s.mu.Lock()
	err := fn(&s.state, s.nowFn())
	s.mu.Unlock()
	s.metrics.ObserveStoreOperation(op, start, err)
	return err
}

func (s *Store) read(op string, fn func(st *state) error) error {
	start := time.Now()
	s.mu.RLock()
	err := fn(&s.state)
	s.mu.RUnlock()
	s.metrics.ObserveStoreOperation(op, start, err)
	return err
}

// RunInTransaction executes fn under the exclusive lock against a copy of the
// store and commits the copy only when fn succeeds.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx repository.Tx) error) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone(), now: s.nowFn()}
	err := fn(tx)
	if err == nil {
		s.state = tx.state
	}
	s.metrics.ObserveStoreOperation("transaction", start, err)
	return err
}

// Users

func (s *Store) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	var out *model.User
	err := s.write("create_user", func(st *state, now time.Time) error {
		var err error
		out, err = st.createUser(user, now)
		return err
	})
	return out, err
}

func (s *Store) GetUser(_ context.Context, id model.ID) (*model.User, error) {
	var out *model.User
	err := s.read("get_user", func(st *state) error {
		var err error
		out, err = st.getUser(id)
		return err
	})
	return out, err
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	var out *model.User
	err := s.read("get_user_by_username", func(st *state) error {
		var err error
		out, err = st.getUserByUsername(username)
		return err
	})
	return out, err
}

func (st *state) createUser(in *model.User, now time.Time) (*model.User, error) {
	for _, u := range st.users {
		if u.Username == in.Username {
			return nil, errors.NewConflict(fmt.Sprintf("username %q already taken", in.Username))
		}
		if strings.EqualFold(u.Email, in.Email) {
			return nil, errors.NewConflict(fmt.Sprintf("email %q already registered", in.Email))
		}
	}
	u := in.Clone()
	u.ID = st.allocID()
	u.CreatedAt = now
	st.users[u.ID] = u
	out := u.Clone()
	return &out, nil
}

func (st *state) getUser(id model.ID) (*model.User, error) {
	u, ok := st.users[id]
	if !ok {
		return nil, errors.NotFound("user", fmt.Errorf("id %d", id))
	}
	out := u.Clone()
	return &out, nil
}

func (st *state) getUserByUsername(username string) (*model.User, error) {
	for _, u := range st.users {
		if u.Username == username {
			out := u.Clone()
			return &out, nil
		}
	}
	return nil, errors.NotFound("user", fmt.Errorf("username %q", username))
}

// Doctors

func (s *Store) CreateDoctor(_ context.Context, doctor *model.Doctor) (*model.Doctor, error) {
	var out *model.Doctor
	err := s.write("create_doctor", func(st *state, _ time.Time) error {
		out = st.createDoctor(doctor)
		return nil
	})
	return out, err
}

func (s *Store) GetDoctor(_ context.Context, id model.ID) (*model.Doctor, error) {
	var out *model.Doctor
	err := s.read("get_doctor", func(st *state) error {
		var err error
		out, err = st.getDoctor(id)
		return err
	})
	return out, err
}

func (s *Store) GetDoctorByUserID(_ context.Context, userID model.ID) (*model.Doctor, error) {
	var out *model.Doctor
	err := s.read("get_doctor_by_user", func(st *state) error {
		var err error
		out, err = st.getDoctorByUserID(userID)
		return err
	})
	return out, err
}

func (s *Store) ListDoctors(_ context.Context) ([]*model.Doctor, error) {
	var out []*model.Doctor
	err := s.read("list_doctors", func(st *state) error {
		out = st.listDoctors()
		return nil
	})
	return out, err
}

func (s *Store) SetDoctorActive(_ context.Context, id model.ID, active bool) (*model.Doctor, error) {
	var out *model.Doctor
	err := s.write("set_doctor_active", func(st *state, _ time.Time) error {
		var err error
		out, err = st.setDoctorActive(id, active)
		return err
	})
	return out, err
}

func (st *state) createDoctor(in *model.Doctor) *model.Doctor {
	d := in.Clone()
	d.ID = st.allocID()
	d.IsActive = true
	st.doctors[d.ID] = d
	out := d.Clone()
	return &out
}

func (st *state) setDoctorActive(id model.ID, active bool) (*model.Doctor, error) {
	d, ok := st.doctors[id]
	if !ok {
		return nil, errors.NotFound("doctor", fmt.Errorf("id %d", id))
	}
	d = d.Clone()
	d.IsActive = active
	st.doctors[id] = d
	out := d.Clone()
	return &out, nil
}

func (st *state) getDoctor(id model.ID) (*model.Doctor, error) {
	d, ok := st.doctors[id]
	if !ok {
		return nil, errors.NotFound("doctor", fmt.Errorf("id %d", id))
	}
	out := d.Clone()
	return &out, nil
}

func (st *state) getDoctorByUserID(userID model.ID) (*model.Doctor, error) {
	// lowest id wins if a user was given more than one profile
	var found *model.Doctor
	for _, d := range st.doctors {
		if d.UserID == userID && (found == nil || d.ID < found.ID) {
			c := d.Clone()
			found = &c
		}
	}
	if found == nil {
		return nil, errors.NotFound("doctor", fmt.Errorf("user id %d", userID))
	}
	return found, nil
}

func (st *state) listDoctors() []*model.Doctor {
	out := make([]*model.Doctor, 0, len(st.doctors))
	for _, d := range st.doctors {
		c := d.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Appointments

func (s *Store) CreateAppointment(_ context.Context, appointment *model.Appointment) (*model.Appointment, error) {
	var out *model.Appointment
	err := s.write("create_appointment", func(st *state, now time.Time) error {
		out = st.createAppointment(appointment, now)
		return nil
	})
	return out, err
}

func (s *Store) GetAppointment(_ context.Context, id model.ID) (*model.Appointment, error) {
	var out *model.Appointment
	err := s.read("get_appointment", func(st *state) error {
		var err error
		out, err = st.getAppointment(id)
		return err
	})
	return out, err
}

func (s *Store) UpdateAppointment(_ context.Context, id model.ID, update model.AppointmentUpdate) (*model.Appointment, error) {
	var out *model.Appointment
	err := s.write("update_appointment", func(st *state, _ time.Time) error {
		var err error
		out, err = st.updateAppointment(id, update)
		return err
	})
	return out, err
}

func (s *Store) ListAppointments(_ context.Context) ([]*model.Appointment, error) {
	var out []*model.Appointment
	err := s.read("list_appointments", func(st *state) error {
		out = st.listAppointments()
		return nil
	})
	return out, err
}

func (st *state) createAppointment(in *model.Appointment, now time.Time) *model.Appointment {
	a := in.Clone()
	a.ID = st.allocID()
	a.Status = model.AppointmentStatusScheduled
	a.TokenNumber = nil
	a.CreatedAt = now
	st.appointments[a.ID] = a
	out := a.Clone()
	return &out
}

func (st *state) getAppointment(id model.ID) (*model.Appointment, error) {
	a, ok := st.appointments[id]
	if !ok {
		return nil, errors.NotFound("appointment", fmt.Errorf("id %d", id))
	}
	out := a.Clone()
	return &out, nil
}

func (st *state) updateAppointment(id model.ID, update model.AppointmentUpdate) (*model.Appointment, error) {
	a, ok := st.appointments[id]
	if !ok {
		return nil, errors.NotFound("appointment", fmt.Errorf("id %d", id))
	}
	a = a.Clone()
	update.Apply(&a)
	st.appointments[id] = a
	out := a.Clone()
	return &out, nil
}

func (st *state) listAppointments() []*model.Appointment {
	out := make([]*model.Appointment, 0, len(st.appointments))
	for _, a := range st.appointments {
		c := a.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Prescriptions

func (s *Store) CreatePrescription(_ context.Context, prescription *model.Prescription) (*model.Prescription, error) {
	var out *model.Prescription
	err := s.write("create_prescription", func(st *state, now time.Time) error {
		p := prescription.Clone()
		p.ID = st.allocID()
		p.CreatedAt = now
		st.prescriptions[p.ID] = p
		c := p.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (s *Store) ListPrescriptions(_ context.Context) ([]*model.Prescription, error) {
	var out []*model.Prescription
	err := s.read("list_prescriptions", func(st *state) error {
		out = make([]*model.Prescription, 0, len(st.prescriptions))
		for _, p := range st.prescriptions {
			c := p.Clone()
			out = append(out, &c)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

// Lab tests

func (s *Store) CreateLabTest(_ context.Context, labTest *model.LabTest) (*model.LabTest, error) {
	var out *model.LabTest
	err := s.write("create_lab_test", func(st *state, now time.Time) error {
		out = st.createLabTest(labTest, now)
		return nil
	})
	return out, err
}

func (s *Store) GetLabTest(_ context.Context, id model.ID) (*model.LabTest, error) {
	var out *model.LabTest
	err := s.read("get_lab_test", func(st *state) error {
		var err error
		out, err = st.getLabTest(id)
		return err
	})
	return out, err
}

func (s *Store) UpdateLabTest(_ context.Context, id model.ID, update model.LabTestUpdate) (*model.LabTest, error) {
	var out *model.LabTest
	err := s.write("update_lab_test", func(st *state, _ time.Time) error {
		var err error
		out, err = st.updateLabTest(id, update)
		return err
	})
	return out, err
}

func (s *Store) ListLabTests(_ context.Context) ([]*model.LabTest, error) {
	var out []*model.LabTest
	err := s.read("list_lab_tests", func(st *state) error {
		out = st.listLabTests()
		return nil
	})
	return out, err
}

func (st *state) createLabTest(in *model.LabTest, now time.Time) *model.LabTest {
	t := in.Clone()
	t.ID = st.allocID()
	t.Status = model.LabTestStatusRequested
	t.RequestedAt = now
	t.CompletedAt = nil
	t.LabAssistantID = nil
	t.ReportURL = nil
	t.Remarks = nil
	st.labTests[t.ID] = t
	out := t.Clone()
	return &out
}

func (st *state) getLabTest(id model.ID) (*model.LabTest, error) {
	t, ok := st.labTests[id]
	if !ok {
		return nil, errors.NotFound("lab test", fmt.Errorf("id %d", id))
	}
	out := t.Clone()
	return &out, nil
}

func (st *state) updateLabTest(id model.ID, update model.LabTestUpdate) (*model.LabTest, error) {
	t, ok := st.labTests[id]
	if !ok {
		return nil, errors.NotFound("lab test", fmt.Errorf("id %d", id))
	}
	t = t.Clone()
	update.Apply(&t)
	st.labTests[id] = t
	out := t.Clone()
	return &out, nil
}

func (st *state) listLabTests() []*model.LabTest {
	out := make([]*model.LabTest, 0, len(st.labTests))
	for _, t := range st.labTests {
		c := t.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Token queue

func (s *Store) CreateToken(_ context.Context, token *model.TokenEntry) (*model.TokenEntry, error) {
	var out *model.TokenEntry
	err := s.write("create_token", func(st *state, now time.Time) error {
		out = st.createToken(token, now)
		return nil
	})
	return out, err
}

func (s *Store) ListTokens(_ context.Context, from, to time.Time) ([]*model.TokenEntry, error) {
	var out []*model.TokenEntry
	err := s.read("list_tokens", func(st *state) error {
		out = st.listTokens(from, to)
		return nil
	})
	return out, err
}

func (st *state) createToken(in *model.TokenEntry, now time.Time) *model.TokenEntry {
	t := *in
	t.ID = st.allocID()
	if t.QueueDate.IsZero() {
		t.QueueDate = now
	}
	st.tokens[t.ID] = t
	out := t
	return &out
}

func (st *state) listTokens(from, to time.Time) []*model.TokenEntry {
	out := make([]*model.TokenEntry, 0)
	for _, t := range st.tokens {
		if model.InWindow(t.QueueDate, from, to) {
			c := t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
