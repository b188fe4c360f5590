package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/shelfscan/shelfscan/internal/llm"
	"github.com/shelfscan/shelfscan/internal/models"
	"github.com/shelfscan/shelfscan/internal/openlibrary"
)

const toolCallingSystemPrompt = "You are a helpful assistant who identifies all of the books in an image. " +
	"Use the provided tool to get information about a book given the title and author. " +
	"Only return results where there is a good match between the book in the image and the book info from the tool."

// toolCallingDetector drives the two-phase detection protocol. The first
// round-trip offers the LLM a lookup tool so it decides which books are worth
// verifying; the lookups run concurrently and their results are appended to
// the transcript; the second round-trip forces a structured report over the
// full conversation.
type toolCallingDetector struct {
	llm     llm.Gateway
	model   string
	library *openlibrary.Client
}

func (d *toolCallingDetector) run(ctx context.Context, img Image) (models.Result, error) {
	conversation := newTranscript(toolCallingSystemPrompt, img)

	resp, err := d.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    d.model,
		Messages: conversation,
		Tools:    []openai.Tool{lookupBookDefinition},
	})
	if err != nil {
		return models.Result{}, fmt.Errorf("failed to identify books in image: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Result{}, fmt.Errorf("no choices returned from LLM")
	}

	assistant := resp.Choices[0].Message
	if len(assistant.ToolCalls) == 0 {
		// The model saw no books worth looking up. Its free text is the
		// explanation, surface it as-is.
		message := assistant.Content
		if message == "" {
			message = "No books detected"
		}
		return models.Result{Message: message}, nil
	}

	// Validate every requested call against the lookup schema before any
	// lookup runs. A bad name or payload here is the model breaking the
	// contract, not a lookup miss.
	candidates := make(map[string]models.Candidate, len(assistant.ToolCalls))
	for _, call := range assistant.ToolCalls {
		candidate, err := parseLookupArgs(call)
		if err != nil {
			return models.Result{}, err
		}
		candidates[call.ID] = candidate
	}

	slog.Info("LLM requested book lookups", "count", len(assistant.ToolCalls))

	conversation = conversation.append(assistant)

	toolResults := dispatchToolCalls(ctx, assistant.ToolCalls, func(ctx context.Context, call openai.ToolCall) (string, error) {
		candidate := candidates[call.ID]
		result, err := d.library.Search(ctx, candidate.Title, candidate.Author)
		if err != nil {
			return "", err
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return "", fmt.Errorf("failed to serialize lookup result: %w", err)
		}
		return string(payload), nil
	})
	conversation = conversation.append(toolResults...)

	return d.finalize(ctx, conversation)
}

// finalize issues the second round-trip with the report schema forced and
// parses the structured answer
func (d *toolCallingDetector) finalize(ctx context.Context, conversation transcript) (models.Result, error) {
	resp, err := d.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:      d.model,
		Messages:   conversation,
		Tools:      []openai.Tool{reportFoundBooksDefinition},
		ToolChoice: forceTool(reportFoundBooks),
	})
	if err != nil {
		return models.Result{}, fmt.Errorf("failed to collect final book report: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Result{}, fmt.Errorf("no choices returned from LLM")
	}

	message := resp.Choices[0].Message
	if len(message.ToolCalls) == 0 {
		return models.Result{}, fmt.Errorf("model ignored forced %s tool choice: %w", reportFoundBooks, ErrProtocol)
	}

	books, err := parseReport(message.ToolCalls[0].Function.Arguments)
	if err != nil {
		return models.Result{}, err
	}

	return models.Result{Books: books}, nil
}
