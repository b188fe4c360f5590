package detector

import (
	"context"
	"fmt"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func TestDispatchPreservesInvocationOrder(t *testing.T) {
	calls := []openai.ToolCall{
		toolCall("call_1", lookupBookTool, `{"title":"A","author":"Unknown"}`),
		toolCall("call_2", lookupBookTool, `{"title":"B","author":"Unknown"}`),
		toolCall("call_3", lookupBookTool, `{"title":"C","author":"Unknown"}`),
	}

	// The first call finishes last, the last call first
	results := dispatchToolCalls(context.Background(), calls, func(ctx context.Context, call openai.ToolCall) (string, error) {
		switch call.ID {
		case "call_1":
			time.Sleep(60 * time.Millisecond)
		case "call_2":
			time.Sleep(30 * time.Millisecond)
		}
		return fmt.Sprintf("result for %s", call.ID), nil
	})

	if len(results) != len(calls) {
		t.Fatalf("Expected %d results, got %d", len(calls), len(results))
	}

	for i, call := range calls {
		msg := results[i]
		if msg.Role != openai.ChatMessageRoleTool {
			t.Errorf("Result %d: expected role tool, got %q", i, msg.Role)
		}
		if msg.ToolCallID != call.ID {
			t.Errorf("Result %d: expected tool call ID %s, got %s", i, call.ID, msg.ToolCallID)
		}
		if expected := fmt.Sprintf("result for %s", call.ID); msg.Content != expected {
			t.Errorf("Result %d: expected content %q, got %q", i, expected, msg.Content)
		}
	}
}

func TestDispatchFailureDoesNotAffectPeers(t *testing.T) {
	calls := []openai.ToolCall{
		toolCall("call_1", lookupBookTool, `{"title":"A","author":"Unknown"}`),
		toolCall("call_2", lookupBookTool, `{"title":"B","author":"Unknown"}`),
		toolCall("call_3", lookupBookTool, `{"title":"C","author":"Unknown"}`),
	}

	results := dispatchToolCalls(context.Background(), calls, func(ctx context.Context, call openai.ToolCall) (string, error) {
		if call.ID == "call_2" {
			return "", fmt.Errorf("lookup exploded")
		}
		return "ok", nil
	})

	if results[0].Content != "ok" || results[2].Content != "ok" {
		t.Errorf("Peer results corrupted by failure: %q, %q", results[0].Content, results[2].Content)
	}
	if results[1].Content != emptyLookupPayload {
		t.Errorf("Expected failed call to resolve to empty payload, got %q", results[1].Content)
	}
	if results[1].ToolCallID != "call_2" {
		t.Errorf("Expected failed result to keep its call ID, got %s", results[1].ToolCallID)
	}
}

func TestDispatchNoCalls(t *testing.T) {
	results := dispatchToolCalls(context.Background(), nil, func(ctx context.Context, call openai.ToolCall) (string, error) {
		t.Fatal("resolver should not run")
		return "", nil
	})
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}
