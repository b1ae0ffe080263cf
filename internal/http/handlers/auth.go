package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shadownav-backend/internal/http/middleware"
	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Exchange verifies a Memberstack token and answers with a backend JWT,
// both in the body and as an HttpOnly cookie.
func (ah *AuthHandler) Exchange(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("invalid json"))
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("token required"))
		return
	}

	result, err := ah.authService.Exchange(c.Request.Context(), token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Set-Cookie", fmt.Sprintf(
		"%s=%s; HttpOnly; Secure; SameSite=Strict; Path=/; Max-Age=%d",
		middleware.AccessTokenCookie, result.Token, result.ExpiresIn,
	))
	response.RespondOK(c, gin.H{
		"ok":         true,
		"member_id":  result.MemberID,
		"token_type": "Bearer",
		"expires_in": result.ExpiresIn,
	})
}
