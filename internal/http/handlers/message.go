package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/services"
)

type MessageHandler struct {
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

type appendRequest struct {
	ThreadID        string `json:"thread_id"`
	Role            string `json:"role"`
	ClientMessageID string `json:"client_message_id"`
	encryptedPayloadRequest
}

// Append stores one encrypted turn on the active thread. Replays of the
// same client_message_id return the stored row unchanged.
func (mh *MessageHandler) Append(c *gin.Context) {
	var req appendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("invalid json"))
		return
	}

	threadID, err := uuid.Parse(strings.TrimSpace(req.ThreadID))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("thread_id required"))
		return
	}
	role := strings.TrimSpace(req.Role)
	if role != "user" && role != "assistant" {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("role must be 'user' or 'assistant'"))
		return
	}
	clientMessageID := strings.TrimSpace(req.ClientMessageID)
	if clientMessageID == "" || utf8.RuneCountInString(clientMessageID) > maxClientMessageIDLength {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("client_message_id required (<= %d chars)", maxClientMessageIDLength))
		return
	}
	payload, err := req.validate()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, err)
		return
	}

	result, err := mh.messageService.Append(c.Request.Context(), currentUserID(c), threadID, role, clientMessageID, payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{
		"ok":        true,
		"run":       formatRun(result.Run),
		"thread":    result.Thread,
		"thread_id": result.Thread.ID,
		"status":    result.Status,
		"message": gin.H{
			"role":              result.Message.Role,
			"client_message_id": result.Message.ClientMessageID,
		},
	})
}

type chatRequest struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// Chat forwards plaintext to the model and returns the reply without
// persisting either side of the exchange. action:"next" short-circuits to
// the canned transition reply for the slot.
func (mh *MessageHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("invalid json"))
		return
	}

	if action := strings.TrimSpace(req.Action); action != "" {
		if action != "next" {
			response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("action must be 'next'"))
			return
		}
		result, err := mh.messageService.Next(c.Request.Context(), currentUserID(c))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondChat(c, result)
		return
	}

	// The limit counts characters, not UTF-8 bytes.
	message := strings.TrimSpace(req.Message)
	if message == "" || utf8.RuneCountInString(message) > maxMessageLength {
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Errorf("message required (<= %d chars)", maxMessageLength))
		return
	}

	result, err := mh.messageService.Chat(c.Request.Context(), currentUserID(c), message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondChat(c, result)
}

func respondChat(c *gin.Context, result *services.ChatResult) {
	response.RespondOK(c, gin.H{
		"ok":        true,
		"run":       formatRun(result.Run),
		"thread":    result.Thread,
		"thread_id": result.Thread.ID,
		"reply":     result.Reply,
	})
}
