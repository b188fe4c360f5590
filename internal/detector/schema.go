package detector

import (
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/shelfscan/shelfscan/internal/models"
)

// Tool names offered to the LLM
const (
	lookupBookTool      = "lookupBook"
	reportFoundBooks    = "reportFoundBooks"
	foundBookCandidates = "foundBooks"
)

// lookupBookDefinition describes the per-book lookup capability attached to
// the first round-trip of the tool-calling strategy. The LLM decides which
// candidates are worth verifying and calls this once per book it sees.
var lookupBookDefinition = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        lookupBookTool,
		Description: "Get information about a book given the title and author. Call this whenever you see a book in the image.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"title": {
					Type:        jsonschema.String,
					Description: "The title of the book",
				},
				"author": {
					Type:        jsonschema.String,
					Description: "The author of the book, or \"Unknown\" if not legible",
				},
			},
			Required: []string{"title", "author"},
		},
	},
}

// reportFoundBooksDefinition describes the final forced answer of the
// tool-calling strategy: every verified book with its enriched metadata.
var reportFoundBooksDefinition = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        reportFoundBooks,
		Description: "Report all the books that were found in the image",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"books": {
					Type: jsonschema.Array,
					Items: &jsonschema.Definition{
						Type: jsonschema.Object,
						Properties: map[string]jsonschema.Definition{
							"title": {
								Type:        jsonschema.String,
								Description: "The title of the book",
							},
							"author_name": {
								Type:        jsonschema.Array,
								Description: "The authors of the book",
								Items:       &jsonschema.Definition{Type: jsonschema.String},
							},
							"ratings_average": {
								Type:        jsonschema.Number,
								Description: "The average rating of the book",
							},
						},
						Required: []string{"title"},
					},
				},
			},
			Required: []string{"books"},
		},
	},
}

// foundBookCandidatesDefinition is the simple strategy's forced response
// schema: bare title/author pairs read off the image, before any lookup.
var foundBookCandidatesDefinition = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        foundBookCandidates,
		Description: "Report all the books that were found in the image",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"books": {
					Type: jsonschema.Array,
					Items: &jsonschema.Definition{
						Type: jsonschema.Object,
						Properties: map[string]jsonschema.Definition{
							"title": {
								Type:        jsonschema.String,
								Description: "The title of the book",
							},
							"author": {
								Type:        jsonschema.String,
								Description: "The author of the book",
							},
						},
						Required: []string{"title", "author"},
					},
				},
			},
			Required: []string{"books"},
		},
	},
}

// forceTool constrains a request so the model must answer by invoking the
// named tool rather than replying with free text
func forceTool(name string) any {
	return openai.ToolChoice{
		Type:     openai.ToolTypeFunction,
		Function: openai.ToolFunction{Name: name},
	}
}

// parseLookupArgs validates one lookupBook invocation against its schema.
// A call with the wrong name or a payload missing a required argument is a
// protocol violation.
func parseLookupArgs(call openai.ToolCall) (models.Candidate, error) {
	if call.Function.Name != lookupBookTool {
		return models.Candidate{}, fmt.Errorf("unexpected tool call %q: %w", call.Function.Name, ErrProtocol)
	}

	var args struct {
		Title  *string `json:"title"`
		Author *string `json:"author"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return models.Candidate{}, fmt.Errorf("malformed %s arguments: %v: %w", lookupBookTool, err, ErrProtocol)
	}
	if args.Title == nil || args.Author == nil {
		return models.Candidate{}, fmt.Errorf("%s arguments missing required title or author: %w", lookupBookTool, ErrProtocol)
	}

	return models.Candidate{Title: *args.Title, Author: *args.Author}, nil
}

// parseCandidates decodes the simple strategy's forced foundBooks payload
func parseCandidates(arguments string) ([]models.Candidate, error) {
	var payload struct {
		Books []models.Candidate `json:"books"`
	}
	if err := json.Unmarshal([]byte(arguments), &payload); err != nil {
		return nil, fmt.Errorf("malformed %s payload: %v: %w", foundBookCandidates, err, ErrProtocol)
	}
	return payload.Books, nil
}

// parseReport decodes the final reportFoundBooks payload. A record without
// authors or a rating is valid, those fields are optional.
func parseReport(arguments string) ([]models.Book, error) {
	var payload struct {
		Books []models.Book `json:"books"`
	}
	if err := json.Unmarshal([]byte(arguments), &payload); err != nil {
		return nil, fmt.Errorf("malformed %s payload: %v: %w", reportFoundBooks, err, ErrProtocol)
	}
	return payload.Books, nil
}
