package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/services"
)

type RunHandler struct {
	runService services.RunService
}

func NewRunHandler(runService services.RunService) *RunHandler {
	return &RunHandler{runService: runService}
}

func (rh *RunHandler) Start(c *gin.Context) {
	run, err := rh.runService.Start(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "run": formatRun(run)})
}

func (rh *RunHandler) Restart(c *gin.Context) {
	run, err := rh.runService.Restart(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "run": formatRun(run)})
}

func (rh *RunHandler) List(c *gin.Context) {
	runs, err := rh.runService.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "runs": formatRunList(runs)})
}
