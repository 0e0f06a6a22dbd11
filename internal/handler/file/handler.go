package file

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinicmgr/clinic-api/internal/handler"
	"github.com/clinicmgr/clinic-api/internal/middleware"
	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/internal/service/file"
)

type Handler struct {
	service *file.Service
}

func NewHandler(service *file.Service) *Handler {
	return &Handler{service: service}
}

func identityOrAbort(c *gin.Context) (model.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
	}
	return id, ok
}

// RegisterRoutes wires the file endpoints. There is no update route; file
// rows are immutable once written.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		files.POST("", h.UploadFile)
		files.GET("", h.ListFiles)
		files.GET("/:id", h.GetFile)
		files.DELETE("/:id", h.DeleteFile)
	}
}

// UploadFile accepts a multipart form with the payload under "file" and
// ownership links as form fields.
func (h *Handler) UploadFile(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	// The role gate runs before form binding so a forbidden caller gets
	// 403 regardless of what the body looks like.
	if err := policy.Authorize(id, policy.ResourceFile, policy.ActionCreate); err != nil {
		handler.RespondError(c, err)
		return
	}

	var req model.FileUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("file payload is required"))
		return
	}

	payload, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("failed to read file payload"))
		return
	}
	defer payload.Close()

	created, err := h.service.Upload(c.Request.Context(), id, &req,
		header.Filename, header.Header.Get("Content-Type"), payload)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) ListFiles(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	files, err := h.service.List(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(files))
}

func (h *Handler) GetFile(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid id"))
		return
	}

	f, err := h.service.Get(c.Request.Context(), id, fileID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(f))
}

func (h *Handler) DeleteFile(c *gin.Context) {
	id, ok := identityOrAbort(c)
	if !ok {
		return
	}

	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid id"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, fileID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, &handler.Response{Status: "success", Message: "file deleted"})
}
