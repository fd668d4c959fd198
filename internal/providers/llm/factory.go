package llm

import (
	"context"
	"errors"
	"os"
	"strings"
)

// ErrNotConfigured means no text generation backend has credentials. Callers
// treat this as "backend unavailable" and refuse requests up front rather
// than opening a stream that can only fail.
var ErrNotConfigured = errors.New("no text generation backend configured")

// NewFromEnv returns a Client based on environment variables.
// Supported providers:
// - LLM_PROVIDER=anthropic|openai|gemini
// - For Anthropic: ANTHROPIC_TOKEN (or ANTHROPIC_API_KEY), optional LLM_MODEL
// - For OpenAI:    OPENAI_API_KEY, optional LLM_MODEL
// - For Gemini:    GOOGLE_API_KEY, optional LLM_MODEL
// If nothing is configured, returns ErrNotConfigured.
func NewFromEnv(ctx context.Context) (Client, error) {
	prov := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	switch prov {
	case "anthropic":
		if key := anthropicKey(); key != "" {
			return &AnthropicClient{APIKey: key, Model: getModelWithDefault("LLM_MODEL", "claude-3-5-haiku-latest")}, nil
		}
	case "openai":
		if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
			return &OpenAIClient{APIKey: key, Model: getModelWithDefault("LLM_MODEL", "gpt-4o-mini"), BaseURL: strings.TrimRight(os.Getenv("OPENAI_API_BASE"), "/")}, nil
		}
	case "gemini":
		if key := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); key != "" {
			return NewGeminiClient(ctx, key, getModelWithDefault("LLM_MODEL", "gemini-1.5-flash"))
		}
	}

	// Auto-detect by API key presence if provider not specified
	if key := anthropicKey(); key != "" {
		return &AnthropicClient{APIKey: key, Model: getModelWithDefault("LLM_MODEL", "claude-3-5-haiku-latest")}, nil
	}
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return &OpenAIClient{APIKey: key, Model: getModelWithDefault("LLM_MODEL", "gpt-4o-mini"), BaseURL: strings.TrimRight(os.Getenv("OPENAI_API_BASE"), "/")}, nil
	}
	if key := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); key != "" {
		return NewGeminiClient(ctx, key, getModelWithDefault("LLM_MODEL", "gemini-1.5-flash"))
	}

	return nil, ErrNotConfigured
}

func anthropicKey() string {
	if key := strings.TrimSpace(os.Getenv("ANTHROPIC_TOKEN")); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
}

func getModelWithDefault(envKey, def string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	return def
}
