package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/shadownav-backend/internal/clients/memberstack"
	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/http/response"
	"github.com/yungbote/shadownav-backend/internal/services"
)

// respondServiceError translates service errors to the HTTP envelope. All
// state-machine violations are client errors; only dependency failures and
// the unexpected become 5xx.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrActiveRunExists),
		errors.Is(err, services.ErrRunExists),
		errors.Is(err, services.ErrNoActiveRun),
		errors.Is(err, services.ErrNoActiveThread),
		errors.Is(err, services.ErrActiveThreadExists),
		errors.Is(err, services.ErrRunCompleted),
		errors.Is(err, services.ErrStaleThread),
		errors.Is(err, services.ErrThreadNotFound),
		errors.Is(err, services.ErrCardNotFound),
		errors.Is(err, services.ErrWebhookRejected):
		response.RespondError(c, http.StatusBadRequest, response.CodeBadRequest, err)
	case errors.Is(err, memberstack.ErrVerificationFailed):
		response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, err)
	default:
		var upstreamErr *services.UpstreamError
		if errors.As(err, &upstreamErr) {
			response.RespondError(c, http.StatusBadGateway, response.CodeUpstreamError, err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternalError, err)
	}
}

type runDetail struct {
	ID     uuid.UUID `json:"id"`
	RunNo  int       `json:"run_no"`
	Status string    `json:"status"`
}

func formatRun(r *types.Run) *runDetail {
	if r == nil {
		return nil
	}
	return &runDetail{ID: r.ID, RunNo: r.RunNo, Status: r.Status}
}

type runListItem struct {
	ID        uuid.UUID `json:"id"`
	RunNo     int       `json:"run_no"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func formatRunList(runs []*types.Run) []runListItem {
	out := make([]runListItem, 0, len(runs))
	for _, r := range runs {
		out = append(out, runListItem{
			ID:        r.ID,
			RunNo:     r.RunNo,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return out
}

type messageDetail struct {
	Role            string    `json:"role"`
	ClientMessageID string    `json:"client_message_id"`
	Ciphertext      string    `json:"ciphertext"`
	IV              string    `json:"iv"`
	Alg             string    `json:"alg"`
	V               int       `json:"v"`
	KID             *string   `json:"kid"`
	Seq             int64     `json:"seq"`
	CreatedAt       time.Time `json:"created_at"`
}

func formatMessage(m *types.Message) *messageDetail {
	if m == nil {
		return nil
	}
	return &messageDetail{
		Role:            m.Role,
		ClientMessageID: m.ClientMessageID,
		Ciphertext:      m.Ciphertext,
		IV:              m.IV,
		Alg:             m.Alg,
		V:               m.V,
		KID:             m.KID,
		Seq:             m.Seq,
		CreatedAt:       m.CreatedAt,
	}
}

type cardPayload struct {
	Ciphertext string  `json:"ciphertext"`
	IV         string  `json:"iv"`
	Alg        string  `json:"alg"`
	V          int     `json:"v"`
	KID        *string `json:"kid"`
}

func formatCard(card *types.Card) *cardPayload {
	if card == nil {
		return nil
	}
	return &cardPayload{
		Ciphertext: card.Ciphertext,
		IV:         card.IV,
		Alg:        card.Alg,
		V:          card.V,
		KID:        card.KID,
	}
}
