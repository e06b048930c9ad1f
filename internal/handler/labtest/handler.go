package labtest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-ops/internal/handler"
	"github.com/jwalitptl/clinic-ops/internal/model"
	"github.com/jwalitptl/clinic-ops/internal/service/labtest"
)

type Handler struct {
	svc     *labtest.Service
	doctors handler.DoctorLookup
}

func NewHandler(svc *labtest.Service, doctors handler.DoctorLookup) *Handler {
	return &Handler{svc: svc, doctors: doctors}
}

func (h *Handler) RegisterRoutes(r handler.Routes) {
	labTests := r.Protected.Group("/lab-tests")
	{
		labTests.GET("", h.ListLabTests)
		labTests.POST("", r.Auth.RequireRole(model.RoleDoctor), h.CreateLabTest)
		labTests.PATCH("/:id", r.Auth.RequireRole(model.RoleLab), h.UpdateLabTest)
		labTests.POST("/:id/upload", r.Auth.RequireRole(model.RoleLab), h.UploadReport)
	}
}

func (h *Handler) ListLabTests(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	list, err := h.svc.ListLabTests(c.Request.Context(), caller)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewListResponse(list))
}

func (h *Handler) CreateLabTest(c *gin.Context) {
	var req model.CreateLabTestRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	d, ok := handler.CallerDoctor(c, h.doctors)
	if !ok {
		return
	}
	req.DoctorID = d.ID

	lt, err := h.svc.CreateLabTest(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(lt))
}

func (h *Handler) UpdateLabTest(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.LabTestUpdate
	if !handler.BindJSON(c, &req) {
		return
	}

	lt, err := h.svc.UpdateLabTest(c.Request.Context(), caller, id, req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(lt))
}

// UploadReport attaches the stored report location and completes the test.
func (h *Handler) UploadReport(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UploadReportRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	lt, err := h.svc.UploadReport(c.Request.Context(), caller, id, req.ReportURL)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(lt))
}
