package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ops/internal/handler"
	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/service/appointment"
	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r handler.Routes) {
	appointments := r.Protected.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", r.Auth.RequireRole(model.RolePatient, model.RoleAdmin), h.CreateAppointment)
		appointments.PATCH("/:id", h.UpdateAppointment)
	}
}

// CreateAppointment books a visit. Patients always book for themselves;
// admins book on behalf of the patient named in the body.
func (h *Handler) CreateAppointment(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if caller.Role == model.RolePatient {
		req.PatientID = caller.UserID
	} else if req.PatientID <= 0 {
		handler.Fail(c, errors.BadRequest("patient_id is required", nil))
		return
	}

	apt, err := h.service.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	list, err := h.service.ListAppointments(c.Request.Context(), caller)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewListResponse(list))
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.AppointmentUpdate
	if !handler.BindJSON(c, &req) {
		return
	}

	apt, err := h.service.UpdateAppointment(c.Request.Context(), id, req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}
