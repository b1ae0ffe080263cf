package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/shadownav-backend/internal/domain"
)

func SeedRun(tb testing.TB, ctx context.Context, tx *gorm.DB, userID string, runNo int, status string) *types.Run {
	tb.Helper()
	r := &types.Run{
		ID:     uuid.New(),
		UserID: userID,
		RunNo:  runNo,
		Status: status,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed run: %v", err)
	}
	return r
}

func SeedThread(tb testing.TB, ctx context.Context, tx *gorm.DB, run *types.Run, slot types.Slot, status string) *types.Thread {
	tb.Helper()
	th := &types.Thread{
		ID:         uuid.New(),
		RunID:      run.ID,
		UserID:     run.UserID,
		Step:       slot.Step,
		QuestionNo: slot.QuestionNo(),
		SessionNo:  slot.SessionNo(),
		Status:     status,
	}
	if err := tx.WithContext(ctx).Create(th).Error; err != nil {
		tb.Fatalf("seed thread: %v", err)
	}
	return th
}

func SeedMessage(tb testing.TB, ctx context.Context, tx *gorm.DB, th *types.Thread, seq int64, role string) *types.Message {
	tb.Helper()
	m := &types.Message{
		ID:              uuid.New(),
		RunID:           th.RunID,
		ThreadID:        th.ID,
		UserID:          th.UserID,
		Seq:             seq,
		Role:            role,
		ClientMessageID: fmt.Sprintf("cmid-%d", seq),
		Ciphertext:      "ct",
		IV:              "iv",
		Alg:             "AES-GCM",
		V:               1,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed message: %v", err)
	}
	return m
}

func EncryptedPayload(n int) types.EncryptedPayload {
	return types.EncryptedPayload{
		Ciphertext: fmt.Sprintf("ct-%d", n),
		IV:         fmt.Sprintf("iv-%d", n),
		Alg:        "AES-GCM",
		V:          1,
	}
}
