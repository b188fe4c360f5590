package models

import "time"

// Book is one bibliographic record. The JSON tags follow the Open Library
// search response, so the same type serves the search results, the payloads
// sent back to the LLM as tool results, and the LLM's final structured answer.
type Book struct {
	Title         string   `json:"title"`
	Authors       []string `json:"author_name,omitempty"`
	AverageRating *float64 `json:"ratings_average,omitempty"`
}

// Candidate is a book hypothesis proposed by the LLM before any lookup has
// confirmed it. It only lives for the duration of one detection call.
type Candidate struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Result is the terminal output of one detection call. Exactly one of Books
// or Message is meaningful: Books when detection produced records, Message
// when it produced a human-readable status or error instead.
type Result struct {
	Books   []Book `json:"books"`
	Message string `json:"message,omitempty"`
}

// DetectionSession records one detection run served over the HTTP API
type DetectionSession struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"` // "upload" or "url"
	Strategy  string    `json:"strategy"`
	Model     string    `json:"model,omitempty"`
	Result    Result    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}
