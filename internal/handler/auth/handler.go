package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicmgr/clinic-api/internal/handler"
	"github.com/clinicmgr/clinic-api/internal/middleware"
	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/service/auth"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes wires the endpoints reachable without a token.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/token", h.Login)
		authGroup.POST("/users", h.CreateUser)
	}
}

// RegisterProtectedRoutes wires the endpoints behind authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/users/me", h.Me)
	}
}

// Login exchanges a credential pair for an access token. Credentials are
// accepted as form fields or JSON.
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("username and password are required"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
		}
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateUser provisions an account. The response carries the public
// identity fields only, never the credential digest.
func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	user, err := h.service.CreateAccount(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(model.Identity{
		Username: user.Username,
		Role:     user.Role,
	}))
}

// Me echoes the identity resolved from the presented token.
func (h *Handler) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(id))
}
