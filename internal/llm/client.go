package llm

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// Gateway is the chat completion surface the detectors talk to. It is
// satisfied by *openai.Client and by scripted fakes in tests.
type Gateway interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient creates an OpenAI client from the OPENAI_API_KEY environment variable
func NewClient() (*openai.Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return openai.NewClient(apiKey), nil
}

// DefaultModel returns the model to use when none was requested,
// from OPENAI_MODEL or a vision-capable default
func DefaultModel() string {
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		return model
	}
	return openai.GPT4oMini
}
