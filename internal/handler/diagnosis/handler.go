package diagnosis

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinicmgr/clinic-api/internal/handler"
	"github.com/clinicmgr/clinic-api/internal/middleware"
	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/service/diagnosis"
)

type Handler struct {
	service *diagnosis.Service
}

func NewHandler(service *diagnosis.Service) *Handler {
	return &Handler{service: service}
}

func identityOrAbort(c *gin.Context) (model.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
	}
	return id, ok
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid id"))
		return 0, false
	}
	return id, true
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	diagnoses := r.Group("/diagnoses")
	{
		diagnoses.POST("", h.CreateDiagnosis)
		diagnoses.GET("", h.ListDiagnoses)
		diagnoses.GET("/:id", h.GetDiagnosis)
		diagnoses.PATCH("/:id", h.UpdateDiagnosis)
		diagnoses.DELETE("/:id", h.DeleteDiagnosis)
	}
}

func (h *Handler) CreateDiagnosis(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req model.DiagnosisCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) ListDiagnoses(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	diagnoses, err := h.service.List(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(diagnoses))
}

func (h *Handler) GetDiagnosis(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}
	diagID, ok := pathID(c)
	if !ok {
		return
	}

	diag, err := h.service.Get(c.Request.Context(), id, diagID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(diag))
}

func (h *Handler) UpdateDiagnosis(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}
	diagID, ok := pathID(c)
	if !ok {
		return
	}

	var req model.DiagnosisUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, diagID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteDiagnosis(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}
	diagID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, diagID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, &handler.Response{Status: "success", Message: "diagnosis deleted"})
}
