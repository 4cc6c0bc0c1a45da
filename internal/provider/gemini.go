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

// geminiClient adapts ChatMessage history to Gemini's generateContent
// shape, which has no "system" role of its own and requires strictly
// alternating user/model turns.
type geminiClient struct {
	def    ProviderDef
	apiKey string
	http   *http.Client
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// buildGeminiRequest implements the exact remapping rule the original
// Gemini wire adapter uses: leading system messages accumulate into
// system_instruction; a system message appearing after the first
// non-system turn is injected as a "[SYSTEM] "-prefixed user turn instead,
// merged into the previous user turn when possible; consecutive
// same-role turns are merged to satisfy Gemini's strict alternation
// requirement.
func buildGeminiRequest(messages []ChatMessage) geminiRequest {
	var contents []geminiContent
	var systemInstruction *geminiContent
	pastFirstNonSystem := false

	mergeOrAppend := func(role, text string) {
		if len(contents) > 0 && contents[len(contents)-1].Role == role {
			last := &contents[len(contents)-1]
			last.Parts[0].Text = last.Parts[0].Text + "\n" + text
			return
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: text}}})
	}

	for _, m := range messages {
		if m.Role == "system" {
			if !pastFirstNonSystem {
				if systemInstruction == nil {
					systemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}
				} else {
					systemInstruction.Parts[0].Text += "\n" + m.Content
				}
				continue
			}
			mergeOrAppend("user", "[SYSTEM] "+m.Content)
			continue
		}

		pastFirstNonSystem = true
		geminiRole := "user"
		if m.Role == "assistant" {
			geminiRole = "model"
		}
		mergeOrAppend(geminiRole, m.Content)
	}

	return geminiRequest{SystemInstruction: systemInstruction, Contents: contents}
}

func (c *geminiClient) Generate(ctx context.Context, modelID string, messages []ChatMessage) (string, error) {
	req := buildGeminiRequest(messages)

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.def.BaseURL, modelID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	applyAuth(httpReq, c.def.Auth, c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: gemini request: %v", merr.ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s returned %d: %s", merr.ErrProvider, c.def.Name, resp.StatusCode, string(respBody))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
