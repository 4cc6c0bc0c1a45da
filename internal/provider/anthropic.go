package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mattsolo1/moxxy/internal/merr"
)

// anthropicClient is the one wire adapter that rides on a real provider SDK
// rather than a hand-rolled net/http call, since anthropic-sdk-go is
// already part of the dependency surface the teacher carries indirectly.
type anthropicClient struct {
	def    ProviderDef
	client anthropic.Client
}

func newAnthropicClient(def ProviderDef, apiKey string) *anthropicClient {
	return &anthropicClient{
		def:    def,
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

const anthropicMaxTokens = 4096

func (c *anthropicClient) Generate(ctx context.Context, modelID string, messages []ChatMessage) (string, error) {
	var systemBlocks []anthropic.TextBlockParam
	var turns []anthropic.MessageParam

	for _, m := range messages {
		if m.Role == "system" {
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: m.Content})
			continue
		}
		if m.Role == "assistant" {
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: anthropicMaxTokens,
		System:    systemBlocks,
		Messages:  turns,
	})
	if err != nil {
		return "", fmt.Errorf("%w: anthropic request: %v", merr.ErrProvider, err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
