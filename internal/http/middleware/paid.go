package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/platform/ctxutil"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
	"github.com/yungbote/shadownav-backend/internal/services"
)

type PaidMiddleware struct {
	log          *logger.Logger
	entitlements services.EntitlementService
}

func NewPaidMiddleware(log *logger.Logger, entitlements services.EntitlementService) *PaidMiddleware {
	return &PaidMiddleware{log: log.With("middleware", "PaidMiddleware"), entitlements: entitlements}
}

// RequirePaid gates curriculum and LLM routes behind the paid flag. Runs
// after RequireAuth.
func (pm *PaidMiddleware) RequirePaid() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == "" {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, fmt.Errorf("Invalid or missing JWT"))
			return
		}

		paid, err := pm.entitlements.Paid(c.Request.Context(), rd.UserID)
		if err != nil {
			pm.log.Error("paid flag lookup failed", "user_id", rd.UserID, "error", err.Error())
			response.AbortError(c, http.StatusInternalServerError, response.CodeInternalError, fmt.Errorf("internal error"))
			return
		}
		if !paid {
			response.AbortError(c, http.StatusForbidden, response.CodeForbidden, fmt.Errorf("Paid access required"))
			return
		}
		c.Next()
	}
}
