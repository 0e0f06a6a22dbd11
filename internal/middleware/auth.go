package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinicmgr/clinic-api/internal/handler"
	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/service/auth"
)

const contextIdentity = "identity"

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate resolves the bearer token into an identity and stores it in
// the request context. Missing, malformed, and invalid tokens all produce
// the same 401 with a WWW-Authenticate challenge.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}

		id, err := m.authService.ValidateToken(raw)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(contextIdentity, *id)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
	c.Abort()
}

// IdentityFrom extracts the authenticated identity set by Authenticate.
func IdentityFrom(c *gin.Context) (model.Identity, bool) {
	v, ok := c.Get(contextIdentity)
	if !ok {
		return model.Identity{}, false
	}
	id, ok := v.(model.Identity)
	return id, ok
}
