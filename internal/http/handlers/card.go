package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/services"
)

type CardHandler struct {
	cardService services.CardService
}

func NewCardHandler(cardService services.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

func (ch *CardHandler) GetContextCard(c *gin.Context) {
	threadID, err := uuid.Parse(strings.TrimSpace(c.Query("thread_id")))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("thread_id required"))
		return
	}

	run, thread, card, err := ch.cardService.GetContextCard(c.Request.Context(), currentUserID(c), threadID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "run": formatRun(run), "thread": thread, "card": formatCard(card)})
}

type upsertContextCardRequest struct {
	ThreadID string `json:"thread_id"`
	encryptedPayloadRequest
}

func (ch *CardHandler) UpsertContextCard(c *gin.Context) {
	var req upsertContextCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("invalid json"))
		return
	}
	threadID, err := uuid.Parse(strings.TrimSpace(req.ThreadID))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("thread_id required"))
		return
	}
	payload, err := req.validate()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, err)
		return
	}

	run, thread, card, err := ch.cardService.UpsertContextCard(c.Request.Context(), currentUserID(c), threadID, payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "run": formatRun(run), "thread": thread, "card": formatCard(card)})
}

func (ch *CardHandler) GetStep2MetaCard(c *gin.Context) {
	run, card, err := ch.cardService.GetStep2MetaCard(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "run": formatRun(run), "card": formatCard(card)})
}

func (ch *CardHandler) UpsertStep2MetaCard(c *gin.Context) {
	var req encryptedPayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("invalid json"))
		return
	}
	payload, err := req.validate()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, err)
		return
	}

	run, card, err := ch.cardService.UpsertStep2MetaCard(c.Request.Context(), currentUserID(c), payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "run": formatRun(run), "card": formatCard(card)})
}
