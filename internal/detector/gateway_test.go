package detector

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

var errFakeGateway = fmt.Errorf("gateway unreachable")

// fakeGateway replays scripted chat completion responses and records every
// request it receives
type fakeGateway struct {
	responses []openai.ChatCompletionResponse
	err       error
	requests  []openai.ChatCompletionRequest
}

func (f *fakeGateway) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	if len(f.responses) == 0 {
		return openai.ChatCompletionResponse{}, fmt.Errorf("fake gateway: no scripted response left")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func assistantResponse(msg openai.ChatCompletionMessage) openai.ChatCompletionResponse {
	msg.Role = openai.ChatMessageRoleAssistant
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: msg}},
	}
}

func toolCall(id, name, arguments string) openai.ToolCall {
	return openai.ToolCall{
		ID:   id,
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      name,
			Arguments: arguments,
		},
	}
}
