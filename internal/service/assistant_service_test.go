package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"simbah-be/internal/pkg/logger"
	"simbah-be/pkg/llm"
)

type scriptedChat struct {
	reply   string
	err     error
	history []llm.Message
}

func (s *scriptedChat) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	s.history = history
	return s.reply, s.err
}

func (s *scriptedChat) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "system", Content: prompt}}, opts...)
}

func TestAssistantReply(t *testing.T) {
	chat := &scriptedChat{reply: "Stok jahe merah bisa dicek di menu Produk."}
	svc := NewAssistantService(chat, logger.NewNop())

	res, err := svc.Reply(context.Background(), "bagaimana cara cek stok jahe?")
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	if res.Reply != chat.reply {
		t.Errorf("reply = %q", res.Reply)
	}
	if len(chat.history) != 2 || chat.history[0].Role != "system" || chat.history[1].Role != "user" {
		t.Errorf("unexpected message history: %+v", chat.history)
	}
}

func TestAssistantFallbackWithoutCredential(t *testing.T) {
	chat := &scriptedChat{err: llm.ErrNotConfigured}
	svc := NewAssistantService(chat, logger.NewNop())

	res, err := svc.Reply(context.Background(), "halo")
	if err != nil {
		t.Fatalf("fallback path must not error: %v", err)
	}
	if !strings.Contains(res.Reply, `"halo"`) {
		t.Errorf("fallback reply %q does not echo the question", res.Reply)
	}
	if !strings.Contains(res.Reply, "MISTRAL_API_KEY") {
		t.Errorf("fallback reply %q does not point at the missing credential", res.Reply)
	}
}

func TestAssistantFallbackOnUpstreamError(t *testing.T) {
	chat := &scriptedChat{err: errors.New("mistral error: status 503")}
	svc := NewAssistantService(chat, logger.NewNop())

	res, err := svc.Reply(context.Background(), "halo")
	if err != nil {
		t.Fatalf("fallback path must not error: %v", err)
	}
	if res.Reply == "" {
		t.Errorf("expected a fallback reply")
	}
}
