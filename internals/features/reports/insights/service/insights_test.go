package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanisa_backend/internals/helpers/apperr"
)

func completionServer(t *testing.T, status int, body any, gotPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if gotPrompt != nil && len(req.Messages) > 0 {
			*gotPrompt = req.Messages[len(req.Messages)-1].Content
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateInsightsReturnsFirstChoice(t *testing.T) {
	var prompt string
	srv := completionServer(t, http.StatusOK, map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-test",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]any{"role": "assistant", "content": "# Highlights\n\n- Attendance grew"}, "finish_reason": "stop"},
			{"index": 1, "message": map[string]any{"role": "assistant", "content": "second"}, "finish_reason": "stop"},
		},
	}, &prompt)

	g := NewGenerator("sk-test", srv.URL+"/v1", "gpt-test")
	in, err := g.GenerateInsights(context.Background(), sampleData())
	require.NoError(t, err)

	assert.Equal(t, "# Highlights\n\n- Attendance grew", in.Text)
	assert.Contains(t, in.HTML, "<h1>Highlights</h1>")
	assert.Contains(t, in.HTML, "<li>Attendance grew</li>")
	assert.Equal(t, "gpt-test", in.Model)
	assert.Equal(t, BuildPrompt(sampleData()), prompt)
}

func TestGenerateInsightsSurfacesUpstreamError(t *testing.T) {
	srv := completionServer(t, http.StatusInternalServerError, map[string]any{
		"error": map[string]any{"message": "model overloaded", "type": "server_error"},
	}, nil)

	g := NewGenerator("sk-test", srv.URL+"/v1", "gpt-test")
	_, err := g.GenerateInsights(context.Background(), sampleData())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Contains(t, err.Error(), "model overloaded")
}

type emptyCompleter struct{}

func (emptyCompleter) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, nil
}

func TestGenerateInsightsEmptyChoices(t *testing.T) {
	g := NewGeneratorWithClient(emptyCompleter{}, "")
	_, err := g.GenerateInsights(context.Background(), sampleData())
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
}

func TestGenerateInsightsWithoutKey(t *testing.T) {
	g := NewGenerator("", "", "")
	_, err := g.GenerateInsights(context.Background(), sampleData())
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
