package eval

import (
	"testing"

	"github.com/shelfscan/shelfscan/internal/models"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "lowercases and strips punctuation",
			title:    "Sapiens: A Brief History of Humankind",
			expected: "sapiens a brief history of humankind",
		},
		{
			name:     "collapses whitespace",
			title:    "  Daisy Jones   &  The Six ",
			expected: "daisy jones the six",
		},
		{
			name:     "empty stays empty",
			title:    "!!!",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeTitle(tt.title); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTitlesMatch(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{name: "exact", a: "Dune", b: "Dune", expected: true},
		{name: "case and punctuation", a: "dune!", b: "Dune", expected: true},
		{name: "subtitle containment", a: "Sapiens", b: "Sapiens: A Brief History of Humankind", expected: true},
		{name: "different books", a: "Dune", b: "Sapiens", expected: false},
		{name: "empty never matches", a: "", b: "Dune", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titlesMatch(tt.a, tt.b); got != tt.expected {
				t.Errorf("titlesMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestScoreDetection(t *testing.T) {
	expected := []string{"Dune", "Sapiens", "Project Hail Mary"}
	detected := []models.Book{
		{Title: "Dune"},
		{Title: "Sapiens: A Brief History of Humankind"},
		{Title: "The Martian"},
	}

	score := ScoreDetection(expected, detected)

	if len(score.Matched) != 2 {
		t.Errorf("Expected 2 matches, got %v", score.Matched)
	}
	if len(score.Missing) != 1 || score.Missing[0] != "Project Hail Mary" {
		t.Errorf("Unexpected missing: %v", score.Missing)
	}
	if len(score.Extra) != 1 || score.Extra[0] != "The Martian" {
		t.Errorf("Unexpected extra: %v", score.Extra)
	}
	if score.Precision < 0.66 || score.Precision > 0.67 {
		t.Errorf("Unexpected precision: %f", score.Precision)
	}
	if score.Recall < 0.66 || score.Recall > 0.67 {
		t.Errorf("Unexpected recall: %f", score.Recall)
	}
}

func TestScoreDetectionEmptyCases(t *testing.T) {
	score := ScoreDetection(nil, nil)
	if score.Precision != 0 || score.Recall != 0 || score.F1 != 0 {
		t.Errorf("Expected zero score for empty inputs, got %+v", score)
	}

	score = ScoreDetection([]string{"Dune"}, nil)
	if score.Recall != 0 || len(score.Missing) != 1 {
		t.Errorf("Expected full miss, got %+v", score)
	}
}
