package detector

import (
	"context"
	"log/slog"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// emptyLookupPayload is what a failed or fruitless lookup reports back to
// the LLM. A miss is data, not a fault.
const emptyLookupPayload = `{"numFound":0,"docs":[]}`

// resolveFunc executes one tool invocation and returns the serialized result
// payload to hand back to the LLM
type resolveFunc func(ctx context.Context, call openai.ToolCall) (string, error)

// dispatchToolCalls runs every tool call concurrently and waits for all of
// them, then builds one tool-result message per call. The returned messages
// are in the same order the model issued the calls, regardless of which
// lookup finished first, and each carries the originating call's ID. A
// failing resolver does not abort its peers; its call resolves to an empty
// result set.
func dispatchToolCalls(ctx context.Context, calls []openai.ToolCall, resolve resolveFunc) []openai.ChatCompletionMessage {
	payloads := make([]string, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call openai.ToolCall) {
			defer wg.Done()

			payload, err := resolve(ctx, call)
			if err != nil {
				slog.Warn("Tool call failed, reporting empty result", "tool", call.Function.Name, "id", call.ID, "err", err)
				payload = emptyLookupPayload
			}
			payloads[i] = payload
		}(i, call)
	}
	wg.Wait()

	results := make([]openai.ChatCompletionMessage, len(calls))
	for i, call := range calls {
		results[i] = openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			ToolCallID: call.ID,
			Name:       call.Function.Name,
			Content:    payloads[i],
		}
	}
	return results
}
