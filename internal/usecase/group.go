package usecase

import "shastra/internal/domain"

// CategoryGroup holds the retrieved passages for one source category,
// in their ranked order.
type CategoryGroup struct {
	Category string
	Passages []domain.RetrievedPassage
}

// GroupByCategory splits ranked passages into per-category groups.
// Group order follows the first appearance of each category, so the
// strongest category leads. Passages without a category fall under
// "uncategorized".
func GroupByCategory(passages []domain.RetrievedPassage) []CategoryGroup {
	byName := make(map[string]int, len(passages))
	groups := make([]CategoryGroup, 0, 4)
	for _, p := range passages {
		category := p.Category
		if category == "" {
			category = "uncategorized"
		}
		idx, ok := byName[category]
		if !ok {
			idx = len(groups)
			byName[category] = idx
			groups = append(groups, CategoryGroup{Category: category})
		}
		groups[idx].Passages = append(groups[idx].Passages, p)
	}
	return groups
}
