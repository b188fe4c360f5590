package detector

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/shelfscan/shelfscan/internal/llm"
	"github.com/shelfscan/shelfscan/internal/models"
	"github.com/shelfscan/shelfscan/internal/openlibrary"
)

const simpleSystemPrompt = "You are a helpful assistant who identifies all of the books in an image. " +
	"Identify the titles and authors. Check carefully to make sure the book is actually there. " +
	"If you aren't sure about the author, report it as \"Unknown\"."

// simpleDetector asks the LLM for title/author candidates in a single forced
// tool response, then enriches every candidate from Open Library in parallel.
// Candidates the lookup cannot confirm are dropped.
type simpleDetector struct {
	llm     llm.Gateway
	model   string
	library *openlibrary.Client
}

func (d *simpleDetector) run(ctx context.Context, img Image) (models.Result, error) {
	candidates, message, err := d.findCandidates(ctx, img)
	if err != nil {
		return models.Result{}, err
	}
	if len(candidates) == 0 {
		if message == "" {
			message = "No books found"
		}
		return models.Result{Message: message}, nil
	}

	slog.Info("LLM identified book candidates", "count", len(candidates))

	// Look up every candidate concurrently. A lookup miss drops that
	// candidate; a lookup fault aborts the whole call.
	matches := make([]*models.Book, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, candidate := range candidates {
		g.Go(func() error {
			book, err := d.library.FirstMatch(gctx, candidate.Title, candidate.Author)
			if err != nil {
				return err
			}
			if book == nil {
				slog.Info("No catalog match for candidate", "title", candidate.Title, "author", candidate.Author)
				return nil
			}
			matches[i] = book
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Result{}, err
	}

	books := make([]models.Book, 0, len(matches))
	for _, book := range matches {
		if book != nil {
			books = append(books, *book)
		}
	}

	return models.Result{Books: books}, nil
}

// findCandidates runs the single LLM round-trip. The response is constrained
// to the foundBooks schema, but a model that declines to call it is reporting
// "no books", not failing: its free text becomes the result message.
func (d *simpleDetector) findCandidates(ctx context.Context, img Image) ([]models.Candidate, string, error) {
	resp, err := d.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:      d.model,
		Messages:   newTranscript(simpleSystemPrompt, img),
		Tools:      []openai.Tool{foundBookCandidatesDefinition},
		ToolChoice: forceTool(foundBookCandidates),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to identify books in image: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, "", fmt.Errorf("no choices returned from LLM")
	}

	message := resp.Choices[0].Message
	if len(message.ToolCalls) == 0 {
		return nil, message.Content, nil
	}

	candidates, err := parseCandidates(message.ToolCalls[0].Function.Arguments)
	if err != nil {
		return nil, "", err
	}
	return candidates, "", nil
}
