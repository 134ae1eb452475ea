package analyzer

import "strings"

// Categories assigned to corpus documents by name markers.
const (
	CategoryPurana      = "Purana"
	CategoryGita        = "Gita"
	CategoryMahabharata = "Mahabharata"
	CategorySastra      = "Sastra"
	CategorySaiBaba     = "SaiBaba"
	CategorySpiritual   = "Spiritual"
)

// categoryMarkers is checked in order; the first marker found in the
// lowercased name decides the category. "mahabharat" also matches
// "mahabharata".
var categoryMarkers = []struct {
	category string
	markers  []string
}{
	{CategoryPurana, []string{"purana", "bhagavata", "vishnu", "shiva", "devi"}},
	{CategoryGita, []string{"gita", "bhagavad"}},
	{CategoryMahabharata, []string{"mahabharat"}},
	{CategorySastra, []string{"sastra", "shastra", "artha", "kama", "dharma"}},
	{CategorySaiBaba, []string{"sai", "baba", "vahini", "sathya", "sathyam", "shivam", "sundaram"}},
}

// Categorize assigns a category from markers in the document name.
func Categorize(name string) string {
	n := strings.ToLower(name)
	for _, group := range categoryMarkers {
		for _, marker := range group.markers {
			if strings.Contains(n, marker) {
				return group.category
			}
		}
	}
	return CategorySpiritual
}
