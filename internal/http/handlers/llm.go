package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/services"
)

type LLMHandler struct {
	llmService services.LLMService
}

func NewLLMHandler(llmService services.LLMService) *LLMHandler {
	return &LLMHandler{llmService: llmService}
}

func (lh *LLMHandler) Ping(c *gin.Context) {
	model, pong, err := lh.llmService.Ping(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "model": model, "pong": pong})
}

func (lh *LLMHandler) Respond(c *gin.Context) {
	var req struct {
		Input string `json:"input"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("invalid json"))
		return
	}
	input := strings.TrimSpace(req.Input)
	if input == "" || utf8.RuneCountInString(input) > maxMessageLength {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("input required (<= %d chars)", maxMessageLength))
		return
	}

	model, output, err := lh.llmService.Respond(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "model": model, "output_text": output})
}
