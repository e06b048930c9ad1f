package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-ops/internal/handler"
	appointmentHandler "github.com/jwalitptl/clinic-ops/internal/handler/appointment"
	authHandler "github.com/jwalitptl/clinic-ops/internal/handler/auth"
	dashboardHandler "github.com/jwalitptl/clinic-ops/internal/handler/dashboard"
	doctorHandler "github.com/jwalitptl/clinic-ops/internal/handler/doctor"
	labtestHandler "github.com/jwalitptl/clinic-ops/internal/handler/labtest"
	prescriptionHandler "github.com/jwalitptl/clinic-ops/internal/handler/prescription"
	tokenHandler "github.com/jwalitptl/clinic-ops/internal/handler/token"
	userHandler "github.com/jwalitptl/clinic-ops/internal/handler/user"
	"github.com/jwalitptl/clinic-ops/internal/middleware"
	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/repository/memory"
	"github.com/jwalitptl/clinic-ops/internal/service/access"
	"github.com/jwalitptl/clinic-ops/internal/service/appointment"
	"github.com/jwalitptl/clinic-ops/internal/service/dashboard"
	"github.com/jwalitptl/clinic-ops/internal/service/doctor"
	"github.com/jwalitptl/clinic-ops/internal/service/labtest"
	"github.com/jwalitptl/clinic-ops/internal/service/prescription"
	"github.com/jwalitptl/clinic-ops/internal/service/token"
	"github.com/jwalitptl/clinic-ops/internal/service/user"
	"github.com/jwalitptl/clinic-ops/internal/service/workflow"
	"github.com/jwalitptl/clinic-ops/pkg/auth"
	"github.com/jwalitptl/clinic-ops/pkg/metrics"
	"github.com/jwalitptl/clinic-ops/pkg/security"
)

const seedPassword = "password123"

var testNow = time.Date(2024, 3, 14, 10, 30, 0, 0, time.Local)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	tokens map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("test", reg)
	store := memory.New(memory.WithClock(func() time.Time { return testNow }), memory.WithMetrics(m))
	filter := access.NewFilter(store, access.DefaultCacheConfig())
	jwt := auth.NewJWTService("router-test-secret", "clinic-ops", time.Hour)

	users := user.NewService(store, security.NewBcryptHasher(bcrypt.MinCost))
	doctors := doctor.NewService(store, filter)
	_, err := users.Seed(context.Background(), seedPassword)
	require.NoError(t, err)

	r := NewRouter(
		middleware.NewAuthMiddleware(jwt),
		handler.NewHandler(reg),
		m,
		RouterConfig{AllowedOrigins: []string{"*"}, MetricsPath: "/metrics"},
		authHandler.NewHandler(users, jwt, time.Hour),
		userHandler.NewHandler(users),
		doctorHandler.NewHandler(doctors),
		appointmentHandler.NewHandler(appointment.NewService(store, filter, workflow.Unchecked{}, nil)),
		prescriptionHandler.NewHandler(prescription.NewService(store, filter), doctors),
		labtestHandler.NewHandler(labtest.NewService(store, filter, workflow.Unchecked{}, nil, m), doctors),
		tokenHandler.NewHandler(token.NewService(store, nil, m)),
		dashboardHandler.NewHandler(dashboard.NewService(store)),
	)
	r.Setup()

	ts := &testServer{t: t, engine: r.Engine(), tokens: map[string]string{}}
	for _, name := range []string{"patient1", "doctor1", "admin1", "lab1"} {
		ts.tokens[name] = ts.login(name)
	}
	return ts
}

func (ts *testServer) do(method, path, as string, body interface{}) (int, envelope) {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+ts.tokens[as])
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (ts *testServer) login(username string) string {
	ts.t.Helper()
	code, env := ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": seedPassword,
	})
	require.Equal(ts.t, http.StatusOK, code, username)

	var resp authHandler.TokenResponse
	require.NoError(ts.t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(ts.t, resp.AccessToken)
	return resp.AccessToken
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestClinicWorkflow(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(http.MethodGet, "/api/v1/doctors", "", nil)
	require.Equal(t, http.StatusOK, code)
	doctors := decode[[]model.Doctor](t, env)
	require.Len(t, doctors, 1)
	doc := doctors[0]
	assert.Equal(t, "Cardiology", doc.Specialty)

	// Patient books for themselves whatever patient_id says.
	code, env = ts.do(http.MethodPost, "/api/v1/appointments", "patient1", map[string]interface{}{
		"patient_id":       999,
		"doctor_id":        doc.ID,
		"appointment_date": testNow.Add(time.Hour),
		"reason":           "checkup",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	apt := decode[model.Appointment](t, env)
	assert.NotEqual(t, model.ID(999), apt.PatientID)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Nil(t, apt.TokenNumber)

	code, env = ts.do(http.MethodPost, "/api/v1/token-queue/assign", "admin1", map[string]interface{}{
		"appointment_id": apt.ID,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	assignment := decode[token.Assignment](t, env)
	assert.Equal(t, 1, assignment.Token.TokenNumber)
	assert.Equal(t, 15, assignment.Token.EstimatedTime)
	assert.Equal(t, model.AppointmentStatusConfirmed, assignment.Appointment.Status)

	code, env = ts.do(http.MethodGet, "/api/v1/token-queue", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.TokenEntry](t, env), 1)

	code, env = ts.do(http.MethodPost, "/api/v1/prescriptions", "doctor1", map[string]interface{}{
		"appointment_id": apt.ID,
		"patient_id":     apt.PatientID,
		"diagnosis":      "Hypertension",
		"medications": []map[string]string{
			{"name": "Amlodipine", "dosage": "5mg", "frequency": "daily", "duration": "30 days"},
		},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	rx := decode[model.Prescription](t, env)
	assert.Equal(t, doc.ID, rx.DoctorID)

	code, env = ts.do(http.MethodPost, "/api/v1/lab-tests", "doctor1", map[string]interface{}{
		"appointment_id": apt.ID,
		"patient_id":     apt.PatientID,
		"test_type":      "Lipid panel",
		"priority":       "urgent",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	lt := decode[model.LabTest](t, env)
	assert.Equal(t, model.LabTestStatusRequested, lt.Status)

	code, env = ts.do(http.MethodPatch, fmt.Sprintf("/api/v1/lab-tests/%d", lt.ID), "lab1", map[string]interface{}{
		"status":  "completed",
		"remarks": "normal",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	lt = decode[model.LabTest](t, env)
	assert.Equal(t, model.LabTestStatusCompleted, lt.Status)
	require.NotNil(t, lt.CompletedAt)
	assert.NotNil(t, lt.LabAssistantID)

	code, env = ts.do(http.MethodGet, "/api/v1/prescriptions", "patient1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Prescription](t, env), 1)

	code, env = ts.do(http.MethodGet, "/api/v1/dashboard/stats", "admin1", nil)
	require.Equal(t, http.StatusOK, code)
	stats := decode[model.AdminStats](t, env)
	assert.Equal(t, model.AdminStats{TotalDoctors: 1, TodayAppointments: 1, Revenue: 50}, stats)
}

func TestLabReportUpload(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(http.MethodGet, "/api/v1/doctors", "", nil)
	require.Equal(t, http.StatusOK, code)
	doc := decode[[]model.Doctor](t, env)[0]

	code, env = ts.do(http.MethodPost, "/api/v1/appointments", "patient1", map[string]interface{}{
		"doctor_id":        doc.ID,
		"appointment_date": testNow.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	apt := decode[model.Appointment](t, env)

	code, env = ts.do(http.MethodPost, "/api/v1/lab-tests", "doctor1", map[string]interface{}{
		"patient_id": apt.PatientID,
		"test_type":  "CBC",
		"priority":   "normal",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	lt := decode[model.LabTest](t, env)
	path := fmt.Sprintf("/api/v1/lab-tests/%d", lt.ID)

	// A completion timestamp is ignored until the test completes.
	code, env = ts.do(http.MethodPatch, path, "lab1", map[string]interface{}{
		"status":       "in_progress",
		"completed_at": testNow,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	lt = decode[model.LabTest](t, env)
	assert.Equal(t, model.LabTestStatusInProgress, lt.Status)
	assert.Nil(t, lt.CompletedAt)
	assert.Nil(t, lt.LabAssistantID)

	code, _ = ts.do(http.MethodPost, path+"/report", "lab1", map[string]string{"report_url": "/reports/cbc.pdf"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = ts.do(http.MethodPost, path+"/upload", "lab1", map[string]string{"report_url": "/reports/cbc.pdf"})
	require.Equal(t, http.StatusOK, code, env.Message)
	lt = decode[model.LabTest](t, env)
	assert.Equal(t, model.LabTestStatusCompleted, lt.Status)
	require.NotNil(t, lt.ReportURL)
	assert.Equal(t, "/reports/cbc.pdf", *lt.ReportURL)
	require.NotNil(t, lt.CompletedAt)
	assert.True(t, testNow.Equal(*lt.CompletedAt))
	assert.NotNil(t, lt.LabAssistantID)

	code, env = ts.do(http.MethodPost, path+"/upload", "doctor1", map[string]string{"report_url": "/x.pdf"})
	assert.Equal(t, http.StatusForbidden, code, env.Message)
}

func TestRoleGates(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		as     string
		body   interface{}
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/appointments", "", nil, http.StatusUnauthorized},
		{"patient creates doctor", http.MethodPost, "/api/v1/doctors", "patient1", map[string]interface{}{"user_id": 1}, http.StatusForbidden},
		{"lab writes prescription", http.MethodPost, "/api/v1/prescriptions", "lab1", map[string]interface{}{}, http.StatusForbidden},
		{"doctor assigns token", http.MethodPost, "/api/v1/token-queue/assign", "doctor1", map[string]interface{}{"appointment_id": 1}, http.StatusForbidden},
		{"doctor updates lab test", http.MethodPatch, "/api/v1/lab-tests/1", "doctor1", map[string]interface{}{"status": "completed"}, http.StatusForbidden},
		{"patient reads other user", http.MethodGet, "/api/v1/users/9999", "patient1", nil, http.StatusForbidden},
		{"public doctor list", http.MethodGet, "/api/v1/doctors", "", nil, http.StatusOK},
		{"public token queue", http.MethodGet, "/api/v1/token-queue", "", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := ts.do(tt.method, tt.path, tt.as, tt.body)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	t.Run("unknown appointment", func(t *testing.T) {
		code, _ := ts.do(http.MethodPatch, "/api/v1/appointments/9999", "admin1", map[string]string{"status": "cancelled"})
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("token for unknown appointment", func(t *testing.T) {
		code, _ := ts.do(http.MethodPost, "/api/v1/token-queue/assign", "admin1", map[string]int{"appointment_id": 9999})
		assert.Equal(t, http.StatusNotFound, code)

		_, env := ts.do(http.MethodGet, "/api/v1/token-queue", "", nil)
		assert.Equal(t, "[]", string(env.Data))
		require.NotNil(t, env.Count)
		assert.Equal(t, 0, *env.Count)
	})

	t.Run("missing doctor id", func(t *testing.T) {
		code, _ := ts.do(http.MethodPost, "/api/v1/appointments", "patient1", map[string]interface{}{
			"appointment_date": testNow,
		})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("bad path id", func(t *testing.T) {
		code, _ := ts.do(http.MethodPatch, "/api/v1/appointments/abc", "admin1", map[string]string{"status": "cancelled"})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("unknown lab priority", func(t *testing.T) {
		code, _ := ts.do(http.MethodPost, "/api/v1/lab-tests", "doctor1", map[string]interface{}{
			"patient_id": 1,
			"test_type":  "CBC",
			"priority":   "whenever",
		})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("wrong password", func(t *testing.T) {
		code, _ := ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "admin1",
			"password": "not-the-password",
		})
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("duplicate doctor profile", func(t *testing.T) {
		_, env := ts.do(http.MethodGet, "/api/v1/doctors", "", nil)
		doc := decode[[]model.Doctor](t, env)[0]
		code, _ := ts.do(http.MethodPost, "/api/v1/doctors", "admin1", map[string]interface{}{
			"user_id":    doc.UserID,
			"specialty":  "Cardiology",
			"department": "Cardiology",
		})
		assert.Equal(t, http.StatusConflict, code)
	})
}

func TestRegisterOnlyPatients(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]interface{}{
		"username":   "jane",
		"password":   "s3cretpass",
		"email":      "jane@example.com",
		"first_name": "Jane",
		"last_name":  "Roe",
	}

	body["role"] = "admin"
	code, _ := ts.do(http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusForbidden, code)

	body["role"] = "patient"
	code, env := ts.do(http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, code, env.Message)
	resp := decode[authHandler.TokenResponse](t, env)
	assert.Equal(t, model.RolePatient, resp.User.Role)
	assert.NotContains(t, string(env.Data), "password")

	code, _ = ts.do(http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}
