package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shelfscan/shelfscan/internal/models"
)

// DefaultBaseURL is the public Open Library endpoint
const DefaultBaseURL = "https://openlibrary.org"

// UnknownAuthor is the sentinel the LLM is instructed to use when it cannot
// read an author off the spine or cover. It means "no author constraint",
// not a literal search term.
const UnknownAuthor = "Unknown"

// searchLimit caps how many candidate records one search returns
const searchLimit = 3

// Client searches the Open Library catalog by title and author. It holds no
// state across calls and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// SearchResult represents the Open Library search API response
type SearchResult struct {
	NumFound int           `json:"numFound"`
	Docs     []models.Book `json:"docs"`
}

// NewClient creates a client for the public Open Library API
func NewClient() *Client {
	return NewClientWithBaseURL(DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a specific endpoint.
// Used by tests to point at a local server.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Search queries Open Library for books matching the given title and author,
// returning at most three ranked records. The author filter is omitted when
// author is empty or the "Unknown" sentinel. An empty result is not an error.
func (c *Client) Search(ctx context.Context, title, author string) (SearchResult, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", searchLimit))
	params.Set("title", title)
	if author != "" && author != UnknownAuthor {
		params.Set("author", author)
	}

	searchURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to search Open Library: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return SearchResult{}, fmt.Errorf("open Library returned status %d: %s", resp.StatusCode, string(body))
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SearchResult{}, fmt.Errorf("failed to decode Open Library response: %w", err)
	}

	return result, nil
}

// FirstMatch returns the highest-ranked record for the given title and
// author, or nil when the search finds nothing. A nil record is an expected
// outcome, it usually means the candidate was hallucinated or unverifiable.
func (c *Client) FirstMatch(ctx context.Context, title, author string) (*models.Book, error) {
	result, err := c.Search(ctx, title, author)
	if err != nil {
		return nil, err
	}

	// The first result is assumed to be the correct one. That is not always
	// true, but taking it unverified also drops some hallucinations on the
	// floor when the search comes back empty.
	if len(result.Docs) == 0 {
		return nil, nil
	}

	book := result.Docs[0]
	return &book, nil
}
