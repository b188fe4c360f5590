package detector

import (
	"context"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/shelfscan/shelfscan/internal/models"
)

func TestToolCallingDetectorFullProtocol(t *testing.T) {
	gateway := &fakeGateway{
		responses: []openai.ChatCompletionResponse{
			// Round-trip 1: the model asks to verify two books
			assistantResponse(openai.ChatCompletionMessage{
				ToolCalls: []openai.ToolCall{
					toolCall("call_1", lookupBookTool, `{"title":"Dune","author":"Unknown"}`),
					toolCall("call_2", lookupBookTool, `{"title":"Sapiens","author":"Yuval Noah Harari"}`),
				},
			}),
			// Round-trip 2: the forced report, one record without authors
			assistantResponse(openai.ChatCompletionMessage{
				ToolCalls: []openai.ToolCall{
					toolCall("call_3", reportFoundBooks, `{"books":[
						{"title":"Dune","author_name":["Frank Herbert"],"ratings_average":4.25},
						{"title":"Sapiens"}
					]}`),
				},
			}),
		},
	}
	library := newLibraryServer(t, map[string][]models.Book{
		"Dune":    {{Title: "Dune", Authors: []string{"Frank Herbert"}, AverageRating: rating(4.25)}},
		"Sapiens": {{Title: "Sapiens", Authors: []string{"Yuval Noah Harari"}}},
	})

	det, err := New(StrategyToolCalling, gateway, "gpt-4o-mini", library)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result := det.DetectBooks(context.Background(), ImageFromBytes([]byte("fake jpeg")))

	if result.Message != "" {
		t.Fatalf("Unexpected message: %q", result.Message)
	}
	if len(result.Books) != 2 {
		t.Fatalf("Expected 2 books, got %d", len(result.Books))
	}
	if result.Books[0].Title != "Dune" || result.Books[1].Title != "Sapiens" {
		t.Errorf("Unexpected books: %+v", result.Books)
	}
	// Optional fields stay absent when the report omits them
	if result.Books[1].Authors != nil || result.Books[1].AverageRating != nil {
		t.Errorf("Expected bare record for Sapiens, got %+v", result.Books[1])
	}

	if len(gateway.requests) != 2 {
		t.Fatalf("Expected 2 round-trips, got %d", len(gateway.requests))
	}

	// Round-trip 1 offers the lookup tool without forcing it
	first := gateway.requests[0]
	if len(first.Tools) != 1 || first.Tools[0].Function.Name != lookupBookTool {
		t.Errorf("Unexpected tools on first request: %+v", first.Tools)
	}
	if first.ToolChoice != nil {
		t.Errorf("First round-trip must not force a tool, got %+v", first.ToolChoice)
	}

	// Round-trip 2 sees the whole transcript: system, user image, assistant
	// tool calls, then one tool result per call in invocation order
	second := gateway.requests[1]
	if len(second.Messages) != 4+1 {
		t.Fatalf("Expected 5 transcript turns, got %d", len(second.Messages))
	}
	roles := []string{
		openai.ChatMessageRoleSystem,
		openai.ChatMessageRoleUser,
		openai.ChatMessageRoleAssistant,
		openai.ChatMessageRoleTool,
		openai.ChatMessageRoleTool,
	}
	for i, role := range roles {
		if second.Messages[i].Role != role {
			t.Errorf("Turn %d: expected role %s, got %s", i, role, second.Messages[i].Role)
		}
	}
	if second.Messages[3].ToolCallID != "call_1" || second.Messages[4].ToolCallID != "call_2" {
		t.Errorf("Tool results out of order: %s, %s", second.Messages[3].ToolCallID, second.Messages[4].ToolCallID)
	}
	if !strings.Contains(second.Messages[3].Content, "Frank Herbert") {
		t.Errorf("Lookup result missing from tool turn: %q", second.Messages[3].Content)
	}
	if len(second.Tools) != 1 || second.Tools[0].Function.Name != reportFoundBooks {
		t.Errorf("Unexpected tools on second request: %+v", second.Tools)
	}
	if second.ToolChoice == nil {
		t.Error("Second round-trip must force the report tool")
	}
}

func TestToolCallingDetectorNoBooks(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "model explains itself",
			content:  "That photo shows a coffee mug, not books.",
			expected: "That photo shows a coffee mug, not books.",
		},
		{
			name:     "model stays silent",
			content:  "",
			expected: "No books detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &fakeGateway{
				responses: []openai.ChatCompletionResponse{
					assistantResponse(openai.ChatCompletionMessage{Content: tt.content}),
				},
			}
			det, err := New(StrategyToolCalling, gateway, "gpt-4o-mini", newLibraryServer(t, nil))
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			result := det.DetectBooks(context.Background(), ImageFromBytes([]byte("blank")))

			if len(result.Books) != 0 {
				t.Errorf("Expected no books, got %+v", result.Books)
			}
			if result.Message != tt.expected {
				t.Errorf("Expected message %q, got %q", tt.expected, result.Message)
			}
			if len(gateway.requests) != 1 {
				t.Errorf("Expected no second round-trip, got %d requests", len(gateway.requests))
			}
		})
	}
}

func TestToolCallingDetectorLookupFailureBecomesEmptyResult(t *testing.T) {
	gateway := &fakeGateway{
		responses: []openai.ChatCompletionResponse{
			assistantResponse(openai.ChatCompletionMessage{
				ToolCalls: []openai.ToolCall{
					toolCall("call_1", lookupBookTool, `{"title":"Dune","author":"Unknown"}`),
				},
			}),
			assistantResponse(openai.ChatCompletionMessage{
				ToolCalls: []openai.ToolCall{
					toolCall("call_2", reportFoundBooks, `{"books":[]}`),
				},
			}),
		},
	}
	// A library whose endpoint always errors
	library := newFailingLibraryServer(t)

	det, err := New(StrategyToolCalling, gateway, "gpt-4o-mini", library)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result := det.DetectBooks(context.Background(), ImageFromBytes([]byte("fake jpeg")))

	if strings.HasPrefix(result.Message, "Error:") {
		t.Fatalf("Lookup failure should not abort the call, got %q", result.Message)
	}

	second := gateway.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != openai.ChatMessageRoleTool || last.Content != emptyLookupPayload {
		t.Errorf("Expected empty lookup payload in tool turn, got %q", last.Content)
	}
}

func TestToolCallingDetectorProtocolViolations(t *testing.T) {
	tests := []struct {
		name      string
		responses []openai.ChatCompletionResponse
	}{
		{
			name: "unexpected tool name in round-trip 1",
			responses: []openai.ChatCompletionResponse{
				assistantResponse(openai.ChatCompletionMessage{
					ToolCalls: []openai.ToolCall{
						toolCall("call_1", "somethingElse", `{"title":"Dune","author":"Unknown"}`),
					},
				}),
			},
		},
		{
			name: "missing required argument",
			responses: []openai.ChatCompletionResponse{
				assistantResponse(openai.ChatCompletionMessage{
					ToolCalls: []openai.ToolCall{
						toolCall("call_1", lookupBookTool, `{"title":"Dune"}`),
					},
				}),
			},
		},
		{
			name: "forced report ignored",
			responses: []openai.ChatCompletionResponse{
				assistantResponse(openai.ChatCompletionMessage{
					ToolCalls: []openai.ToolCall{
						toolCall("call_1", lookupBookTool, `{"title":"Dune","author":"Unknown"}`),
					},
				}),
				assistantResponse(openai.ChatCompletionMessage{Content: "here you go!"}),
			},
		},
		{
			name: "final payload does not match schema",
			responses: []openai.ChatCompletionResponse{
				assistantResponse(openai.ChatCompletionMessage{
					ToolCalls: []openai.ToolCall{
						toolCall("call_1", lookupBookTool, `{"title":"Dune","author":"Unknown"}`),
					},
				}),
				assistantResponse(openai.ChatCompletionMessage{
					ToolCalls: []openai.ToolCall{
						toolCall("call_2", reportFoundBooks, `{"books": 42}`),
					},
				}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &fakeGateway{responses: tt.responses}
			library := newLibraryServer(t, map[string][]models.Book{
				"Dune": {{Title: "Dune"}},
			})

			det, err := New(StrategyToolCalling, gateway, "gpt-4o-mini", library)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			result := det.DetectBooks(context.Background(), ImageFromBytes([]byte("fake jpeg")))

			if len(result.Books) != 0 {
				t.Errorf("Expected no books, got %+v", result.Books)
			}
			if !strings.HasPrefix(result.Message, "Error: ") {
				t.Errorf("Expected error message, got %q", result.Message)
			}
		})
	}
}
