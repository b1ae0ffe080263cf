package services

import (
	"context"

	"github.com/yungbote/shadownav-backend/internal/clients/openai"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

const respondSystemPrompt = "あなたは簡潔に自己紹介や質問に答えるAIです。必ず日本語で、1文だけで答えてください。"

// LLMService exposes direct model access for diagnostics.
type LLMService interface {
	Ping(ctx context.Context) (model, pong string, err error)
	Respond(ctx context.Context, input string) (model, output string, err error)
}

type llmService struct {
	log *logger.Logger
	llm openai.Client
}

func NewLLMService(log *logger.Logger, llm openai.Client) LLMService {
	return &llmService{log: log.With("service", "LLMService"), llm: llm}
}

func (s *llmService) Ping(ctx context.Context) (string, string, error) {
	pong, err := s.llm.Ping(ctx)
	if err != nil {
		return "", "", upstream("openai", err)
	}
	return s.llm.Model(), pong, nil
}

func (s *llmService) Respond(ctx context.Context, input string) (string, string, error) {
	out, err := s.llm.Respond(ctx, respondSystemPrompt, input)
	if err != nil {
		return "", "", upstream("openai", err)
	}
	return s.llm.Model(), out, nil
}
