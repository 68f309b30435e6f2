package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/mattjoyce/airaware/internal/config"
)

func TestNewChatModelRejectsUnknownProvider(t *testing.T) {
	_, err := NewChatModel(context.Background(), config.LLMConfig{Provider: "gemini"})
	if err == nil || !strings.Contains(err.Error(), "unsupported llm provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}

func TestNewChatModelOllamaNeedsModel(t *testing.T) {
	_, err := NewChatModel(context.Background(), config.LLMConfig{Provider: "ollama"})
	if err == nil || !strings.Contains(err.Error(), "llm.model") {
		t.Fatalf("expected missing model error, got %v", err)
	}
}
