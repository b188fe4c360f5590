package eval

import (
	"strings"
	"unicode"

	"github.com/shelfscan/shelfscan/internal/models"
)

// Score measures one detection run against the labeled titles
type Score struct {
	Precision float64  `json:"precision" yaml:"precision"`
	Recall    float64  `json:"recall" yaml:"recall"`
	F1        float64  `json:"f1" yaml:"f1"`
	Matched   []string `json:"matched" yaml:"matched"`
	Missing   []string `json:"missing" yaml:"missing"`
	Extra     []string `json:"extra" yaml:"extra"`
}

// ScoreDetection compares detected books against the expected titles.
// Matching is by normalized title, with containment accepted either way so
// subtitle differences ("Sapiens: A Brief History of Humankind" vs "Sapiens")
// do not count as misses.
func ScoreDetection(expectedTitles []string, detected []models.Book) Score {
	score := Score{
		Matched: []string{},
		Missing: []string{},
		Extra:   []string{},
	}

	used := make([]bool, len(detected))
	for _, expected := range expectedTitles {
		found := false
		for i, book := range detected {
			if used[i] {
				continue
			}
			if titlesMatch(expected, book.Title) {
				used[i] = true
				found = true
				score.Matched = append(score.Matched, expected)
				break
			}
		}
		if !found {
			score.Missing = append(score.Missing, expected)
		}
	}

	for i, book := range detected {
		if !used[i] {
			score.Extra = append(score.Extra, book.Title)
		}
	}

	if len(detected) > 0 {
		score.Precision = float64(len(score.Matched)) / float64(len(detected))
	}
	if len(expectedTitles) > 0 {
		score.Recall = float64(len(score.Matched)) / float64(len(expectedTitles))
	}
	if score.Precision+score.Recall > 0 {
		score.F1 = 2 * score.Precision * score.Recall / (score.Precision + score.Recall)
	}

	return score
}

// titlesMatch reports whether two titles refer to the same book
func titlesMatch(a, b string) bool {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

// normalizeTitle lowercases a title and strips punctuation so cosmetic
// differences between the label and the catalog record do not matter
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
