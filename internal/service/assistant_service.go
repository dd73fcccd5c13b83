package service

import (
	"context"
	"errors"
	"fmt"

	"simbah-be/internal/constant"
	"simbah-be/internal/dto"
	"simbah-be/internal/pkg/logger"
	"simbah-be/pkg/llm"
)

type IAssistantService interface {
	Reply(ctx context.Context, message string) (*dto.AssistantResponse, error)
}

// assistantService is a lightweight LLM proxy for the admin UI. Without a
// configured credential it falls back to a canned reply instead of failing.
type assistantService struct {
	llmProvider llm.LLMProvider
	log         logger.ILogger
}

func NewAssistantService(llmProvider llm.LLMProvider, log logger.ILogger) IAssistantService {
	return &assistantService{
		llmProvider: llmProvider,
		log:         log,
	}
}

func (s *assistantService) Reply(ctx context.Context, message string) (*dto.AssistantResponse, error) {
	text, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: constant.AssistantSystemPrompt},
		{Role: "user", Content: message},
	}, llm.WithTemperature(0.2), llm.WithMaxTokens(512))

	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			s.log.Warn("ASSISTANT", "LLM proxy failed, using fallback", map[string]interface{}{"error": err.Error()})
		}
		return &dto.AssistantResponse{Reply: fmt.Sprintf(constant.AssistantFallbackReply, message)}, nil
	}

	return &dto.AssistantResponse{Reply: text}, nil
}
