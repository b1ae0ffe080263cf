package handlers

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shadownav-backend/internal/clients/memberstack"
	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
	"github.com/yungbote/shadownav-backend/internal/services"
	"github.com/yungbote/shadownav-backend/internal/utils"
)

const adminTokenHeader = "X-PAID-ADMIN-TOKEN"

type EntitlementHandler struct {
	log          *logger.Logger
	entitlements services.EntitlementService
	adminMembers map[string]bool
	adminToken   string
}

func NewEntitlementHandler(log *logger.Logger, entitlements services.EntitlementService) *EntitlementHandler {
	log = log.With("handler", "EntitlementHandler")
	admins := map[string]bool{}
	for _, id := range strings.Split(utils.GetEnv("ADMIN_MEMBER_IDS", "", log), ",") {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = true
		}
	}
	return &EntitlementHandler{
		log:          log,
		entitlements: entitlements,
		adminMembers: admins,
		adminToken:   utils.GetEnv("PAID_ADMIN_TOKEN", "", log),
	}
}

func (eh *EntitlementHandler) Paid(c *gin.Context) {
	paid, err := eh.entitlements.Paid(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "paid": paid})
}

type setPaidRequest struct {
	UserID string `json:"user_id"`
	Paid   *bool  `json:"paid"`
}

// SetPaid toggles entitlement for a member. Restricted to the allowlisted
// admin members and gated on a shared header token.
func (eh *EntitlementHandler) SetPaid(c *gin.Context) {
	caller := currentUserID(c)
	if !eh.adminMembers[caller] {
		response.RespondError(c, http.StatusForbidden, response.CodeForbidden, fmt.Errorf("admin access required"))
		return
	}
	if eh.adminToken == "" {
		eh.log.Error("PAID_ADMIN_TOKEN is not configured")
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternalError, fmt.Errorf("admin endpoint not configured"))
		return
	}
	provided := strings.TrimSpace(c.GetHeader(adminTokenHeader))
	if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(eh.adminToken)) != 1 {
		response.RespondError(c, http.StatusForbidden, response.CodeForbidden, fmt.Errorf("invalid admin token"))
		return
	}

	var req setPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("invalid json"))
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if !memberstack.ValidMemberID(userID) {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("invalid user_id format"))
		return
	}
	paid := true
	if req.Paid != nil {
		paid = *req.Paid
	}

	if err := eh.entitlements.SetPaid(c.Request.Context(), userID, paid); err != nil {
		respondServiceError(c, err)
		return
	}
	eh.log.Info("entitlement updated by admin", "admin", caller, "user_id", userID, "paid", paid)
	response.RespondOK(c, gin.H{"ok": true, "user_id": userID, "paid": paid})
}
