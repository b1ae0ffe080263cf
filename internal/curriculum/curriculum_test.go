package curriculum

import (
	"strings"
	"testing"

	types "github.com/yungbote/shadownav-backend/internal/domain"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Questions() != 5 {
		t.Fatalf("questions: %d", cfg.Questions())
	}
	if cfg.Sessions() != 30 {
		t.Fatalf("sessions: %d", cfg.Sessions())
	}
}

func TestSystemPromptCarriesSlotNumber(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.SystemPrompt(types.Step1Slot(3)); !strings.Contains(got, "Q3") {
		t.Fatalf("step1 prompt: %q", got)
	}
	if got := cfg.SystemPrompt(types.Step2Slot(12)); !strings.Contains(got, "Session 12") {
		t.Fatalf("step2 prompt: %q", got)
	}
	if got := cfg.SystemPrompt(types.Slot{}); got != cfg.Fallback.SystemPrompt {
		t.Fatalf("fallback prompt: %q", got)
	}
}

func TestNextReplyCarriesSlotNumber(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.NextReply(types.Step1Slot(2)); !strings.Contains(got, "Q2") {
		t.Fatalf("step1 next reply: %q", got)
	}
	if got := cfg.NextReply(types.Step2Slot(30)); !strings.Contains(got, "Session 30") {
		t.Fatalf("step2 next reply: %q", got)
	}
}
