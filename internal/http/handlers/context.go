package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/shadownav-backend/internal/platform/ctxutil"
)

// currentUserID returns the authenticated member id set by RequireAuth.
// Empty means the route was wired without the auth middleware.
func currentUserID(c *gin.Context) string {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		return ""
	}
	return rd.UserID
}
