package tools

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = "gpt-4o"

// OpenAIReplier generates chatbot replies with the Chat Completions API.
type OpenAIReplier struct {
	client *openai.Client
	model  string
}

func NewOpenAIReplier(apiKey, model string) *OpenAIReplier {
	return NewOpenAIReplierWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAIReplierWithConfig allows pointing the client at another base URL.
func NewOpenAIReplierWithConfig(cfg openai.ClientConfig, model string) *OpenAIReplier {
	if strings.TrimSpace(model) == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIReplier{client: openai.NewClientWithConfig(cfg), model: model}
}

func systemPrompt(task, businessContext string) string {
	return fmt.Sprintf("You are an AI assistant designed to help with %s. Use this context: %s",
		strings.TrimSpace(task), strings.TrimSpace(businessContext))
}

// GenerateReply returns the assistant text for userText. An empty answer is
// returned as "" so the caller can fall back to its default.
func (r *OpenAIReplier) GenerateReply(ctx context.Context, task, businessContext, userText string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(task, businessContext)},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
