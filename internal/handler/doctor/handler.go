package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicmgr/clinic-api/internal/handler"
	"github.com/clinicmgr/clinic-api/internal/middleware"
	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/service/doctor"
)

type Handler struct {
	service *doctor.Service
}

func NewHandler(service *doctor.Service) *Handler {
	return &Handler{service: service}
}

func identityOrAbort(c *gin.Context) (model.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
	}
	return id, ok
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("", h.CreateDoctor)
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:username", h.GetDoctor)
		doctors.PATCH("/:username", h.UpdateDoctor)
		doctors.DELETE("/:username", h.DeleteDoctor)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req model.DoctorCreate
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

func (h *Handler) ListDoctors(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	doctors, err := h.service.List(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	d, err := h.service.Get(c.Request.Context(), id, c.Param("username"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(d))
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	var req model.DoctorUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, c.Param("username"), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, c.Param("username")); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, &handler.Response{Status: "success", Message: "doctor deleted"})
}
