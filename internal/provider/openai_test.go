package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAIClientGenerateSendsBearerAuthAndParsesReply(t *testing.T) {
	var gotAuth string
	var gotReq openAIRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openAIResponse{
			Choices: []struct {
				Message openAIMessage `json:"message"`
			}{{Message: openAIMessage{Role: "assistant", Content: "hello back"}}},
		})
	}))
	defer srv.Close()

	def := ProviderDef{ID: "openai", Name: "OpenAI", BaseURL: srv.URL, Auth: AuthConfig{Type: AuthTypeBearer}}
	client, err := NewClient(def, "test-key")
	require.NoError(t, err)

	out, err := client.Generate(context.Background(), "gpt-4o", []ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	require.Equal(t, "hello back", out)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "gpt-4o", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
}

func TestOpenAIClientGenerateSurfacesProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid key"}`))
	}))
	defer srv.Close()

	def := ProviderDef{ID: "openai", Name: "OpenAI", BaseURL: srv.URL, Auth: AuthConfig{Type: AuthTypeBearer}}
	client, err := NewClient(def, "bad-key")
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "gpt-4o", []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
}

func TestNewClientRejectsUnknownApiFormat(t *testing.T) {
	_, err := NewClient(ProviderDef{ID: "weird", ApiFormat: "carrier-pigeon"}, "k")
	require.Error(t, err)
}
