package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mattsolo1/moxxy/internal/merr"
)

// openAIClient is the plain passthrough wire adapter: ChatMessage maps
// one-to-one onto the OpenAI chat-completions request shape. zai and any
// other provider registered with api_format "openai" reuse this client —
// only base_url and auth differ.
type openAIClient struct {
	def    ProviderDef
	apiKey string
	http   *http.Client
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Generate(ctx context.Context, modelID string, messages []ChatMessage) (string, error) {
	reqMessages := make([]openAIMessage, len(messages))
	for i, m := range messages {
		reqMessages[i] = openAIMessage{Role: m.Role, Content: m.Content}
	}

	body, err := json.Marshal(openAIRequest{Model: modelID, Messages: reqMessages})
	if err != nil {
		return "", fmt.Errorf("marshal openai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.def.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	applyAuth(req, c.def.Auth, c.apiKey)
	for k, v := range c.def.ExtraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: openai request: %v", merr.ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s returned %d: %s", merr.ErrProvider, c.def.Name, resp.StatusCode, string(respBody))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal openai response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

// applyAuth attaches the provider's credential to req according to auth.Type.
func applyAuth(req *http.Request, auth AuthConfig, apiKey string) {
	switch auth.Type {
	case AuthTypeBearer:
		req.Header.Set("Authorization", "Bearer "+apiKey)
	case AuthTypeHeader:
		name := auth.HeaderName
		if name == "" {
			name = "Authorization"
		}
		req.Header.Set(name, apiKey)
	case AuthTypeQueryParam:
		q := req.URL.Query()
		name := auth.ParamName
		if name == "" {
			name = "key"
		}
		q.Set(name, apiKey)
		req.URL.RawQuery = q.Encode()
	}
}
