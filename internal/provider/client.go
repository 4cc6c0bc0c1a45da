package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ChatMessage is one role/content turn in a conversation, independent of
// any wire format — wire clients adapt it to the shape their provider
// expects.
type ChatMessage struct {
	Role    string
	Content string
}

// LlmClient is the uniform contract every wire adapter satisfies: given a
// model id and a message history, produce the assistant's reply text.
type LlmClient interface {
	Generate(ctx context.Context, modelID string, messages []ChatMessage) (string, error)
}

// NewClient builds the wire adapter matching def.ApiFormat, wired with
// apiKey resolved from the vault at def.Auth.VaultKey.
func NewClient(def ProviderDef, apiKey string) (LlmClient, error) {
	httpClient := &http.Client{Timeout: 120 * time.Second}
	switch def.ApiFormat {
	case ApiFormatOpenAI:
		return &openAIClient{def: def, apiKey: apiKey, http: httpClient}, nil
	case ApiFormatGemini:
		return &geminiClient{def: def, apiKey: apiKey, http: httpClient}, nil
	case ApiFormatAnthropic:
		return newAnthropicClient(def, apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported api format %q for provider %s", def.ApiFormat, def.ID)
	}
}
