package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/platform/ctxutil"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
	"github.com/yungbote/shadownav-backend/internal/services"
)

// AccessTokenCookie is where the auth exchange parks the backend JWT for
// browser clients; the Authorization header wins when both are present.
const AccessTokenCookie = "access_token"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, fmt.Errorf("Invalid or missing JWT"))
			return
		}

		memberID, err := am.authService.Verify(token)
		if err != nil {
			am.log.Debug("token rejected", "error", err.Error())
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, fmt.Errorf("Invalid or missing JWT"))
			return
		}

		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: memberID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return ""
}
