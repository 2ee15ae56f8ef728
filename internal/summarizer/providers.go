package summarizer

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// Provider identifies a text-generation backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
)

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[Provider]string{
	ProviderOpenAI: "gpt-3.5-turbo",
	ProviderClaude: "claude-3-haiku-20240307",
	ProviderGemini: "gemini-pro",
	ProviderGroq:   "llama-3.3-70b-versatile",
}

const (
	systemInstruction = "You are a helpful assistant that summarizes news articles concisely."
	groqBaseURL       = "https://api.groq.com/openai/v1"

	generateTemperature = 0.7
	generateMaxTokens   = 100
)

// GenerateFunc produces completion text for a prompt. Each provider's
// request/response shape is hidden behind this one signature.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// newGenerator builds the generate function for the configured provider.
// Groq speaks the OpenAI wire protocol, so it reuses the OpenAI client with
// a different base URL.
func newGenerator(ctx context.Context, provider Provider, apiKey, model string) (GenerateFunc, error) {
	switch provider {
	case ProviderOpenAI:
		return openAIGenerator(openai.NewClient(apiKey), model), nil

	case ProviderGroq:
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = groqBaseURL
		return openAIGenerator(openai.NewClientWithConfig(cfg), model), nil

	case ProviderClaude:
		return claudeGenerator(anthropic.NewClient(apiKey), model), nil

	case ProviderGemini:
		client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return geminiGenerator(client, model), nil

	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", provider)
	}
}

func openAIGenerator(client *openai.Client, model string) GenerateFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemInstruction,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: generateTemperature,
			MaxTokens:   generateMaxTokens,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no response choices")
		}
		return resp.Choices[0].Message.Content, nil
	}
}

func claudeGenerator(client *anthropic.Client, model string) GenerateFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
			Model: anthropic.Model(model),
			Messages: []anthropic.Message{
				{
					Role: anthropic.RoleUser,
					Content: []anthropic.MessageContent{
						anthropic.NewTextMessageContent(prompt),
					},
				},
			},
			MaxTokens: generateMaxTokens,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Content) == 0 || resp.Content[0].Text == nil {
			return "", fmt.Errorf("no response content")
		}
		return *resp.Content[0].Text, nil
	}
}

func geminiGenerator(client *genai.Client, model string) GenerateFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) > 0 && len(resp.Candidates[0].Content.Parts) > 0 {
			if text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
				return string(text), nil
			}
		}
		return "", fmt.Errorf("no response candidates")
	}
}
