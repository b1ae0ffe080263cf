package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/services"
)

const (
	defaultMessagesLimit = 500
	maxMessagesLimit     = 2000
)

type ThreadHandler struct {
	threadService services.ThreadService
}

func NewThreadHandler(threadService services.ThreadService) *ThreadHandler {
	return &ThreadHandler{threadService: threadService}
}

// Start returns the active thread or opens the next curriculum slot.
func (th *ThreadHandler) Start(c *gin.Context) {
	run, thread, err := th.threadService.Start(c.Request.Context(), currentUserID(c))
	if err != nil {
		// An exhausted curriculum is a client error, but the completed run
		// still travels in the body so the client can render the terminal
		// state without a second request.
		if errors.Is(err, services.ErrRunCompleted) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  response.APIError{Message: err.Error(), Code: response.CodeBadRequest},
				"run":    formatRun(run),
				"thread": nil,
			})
			return
		}
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "run": formatRun(run), "thread": thread})
}

func (th *ThreadHandler) Close(c *gin.Context) {
	run, thread, err := th.threadService.Close(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "run": formatRun(run), "thread": thread})
}

// State reports the latest run with its active thread and last message.
// Every field may be null; a completed run carries no thread.
func (th *ThreadHandler) State(c *gin.Context) {
	run, thread, last, err := th.threadService.State(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	body := gin.H{"ok": true, "run": formatRun(run), "thread": thread}
	if last != nil {
		body["last_message"] = formatMessage(last)
	} else {
		body["last_message"] = nil
	}
	response.RespondOK(c, body)
}

func (th *ThreadHandler) List(c *gin.Context) {
	var runNo *int
	if raw := strings.TrimSpace(c.Query("run_no")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("run_no must be an integer"))
			return
		}
		runNo = &n
	}

	run, threads, err := th.threadService.List(c.Request.Context(), currentUserID(c), runNo)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "run": formatRun(run), "threads": threads})
}

func (th *ThreadHandler) Messages(c *gin.Context) {
	threadID, err := uuid.Parse(strings.TrimSpace(c.Query("thread_id")))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("thread_id required"))
		return
	}
	limit := clampInt(c.Query("limit"), 1, maxMessagesLimit, defaultMessagesLimit)

	run, thread, messages, err := th.threadService.Messages(c.Request.Context(), currentUserID(c), threadID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]*messageDetail, 0, len(messages))
	for _, m := range messages {
		out = append(out, formatMessage(m))
	}
	response.RespondOK(c, gin.H{"ok": true, "run": formatRun(run), "thread": thread, "messages": out})
}
