package prescription

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ops/internal/handler"
	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/service/prescription"
)

type Handler struct {
	svc     *prescription.Service
	doctors handler.DoctorLookup
}

func NewHandler(svc *prescription.Service, doctors handler.DoctorLookup) *Handler {
	return &Handler{svc: svc, doctors: doctors}
}

func (h *Handler) RegisterRoutes(r handler.Routes) {
	prescriptions := r.Protected.Group("/prescriptions")
	{
		prescriptions.GET("", h.ListPrescriptions)
		prescriptions.POST("", r.Auth.RequireRole(model.RoleDoctor), h.CreatePrescription)
	}
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	list, err := h.svc.ListPrescriptions(c.Request.Context(), caller)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewListResponse(list))
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	d, ok := handler.CallerDoctor(c, h.doctors)
	if !ok {
		return
	}
	req.DoctorID = d.ID

	p, err := h.svc.CreatePrescription(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}
