package service

import (
	"bytes"
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"kanisa_backend/internals/helpers/apperr"
	"kanisa_backend/internals/helpers/logger"
)

var ErrNoAPIKey = errors.New("completion API key is not configured")

// Completer is the subset of *openai.Client used here.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Insights struct {
	Text   string `json:"text"`
	HTML   string `json:"html"`
	Model  string `json:"model"`
	Prompt string `json:"-"`
}

type Generator struct {
	client Completer
	model  string
	md     goldmark.Markdown
}

// NewGenerator returns a generator whose calls fail with ErrNoAPIKey when
// apiKey is empty. baseURL points at any OpenAI-compatible endpoint.
func NewGenerator(apiKey, baseURL, model string) *Generator {
	var client Completer
	if strings.TrimSpace(apiKey) != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		client = openai.NewClientWithConfig(cfg)
	}
	return NewGeneratorWithClient(client, model)
}

func NewGeneratorWithClient(client Completer, model string) *Generator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Generator{
		client: client,
		model:  model,
		// raw HTML in the completion stays escaped
		md: goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps())),
	}
}

// GenerateInsights sends one prompt and returns the first choice.
// It does not retry.
func (g *Generator) GenerateInsights(ctx context.Context, data ReportData) (*Insights, error) {
	if g.client == nil {
		return nil, apperr.Internal("report insights are disabled", ErrNoAPIKey).WithHint("set OPENAI_API_KEY")
	}
	prompt := BuildPrompt(data)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You write concise, encouraging reports for church leadership."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.4,
	})
	if err != nil {
		logger.L.Error("[INSIGHTS] completion failed", zap.String("model", g.model), zap.Error(err))
		return nil, apperr.Upstream("completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperr.Upstream("completion returned no choices", nil)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	var html bytes.Buffer
	if err := g.md.Convert([]byte(text), &html); err != nil {
		return nil, apperr.Internal("failed to render insights", err)
	}
	model := resp.Model
	if model == "" {
		model = g.model
	}
	logger.L.Info("[INSIGHTS] generated",
		zap.String("model", model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return &Insights{Text: text, HTML: html.String(), Model: model, Prompt: prompt}, nil
}
