package search

import (
	"strings"

	"github.com/nikbrunner/tablemap/internal/model"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Item           *model.QueryItem
	Index          int
	MatchedIndexes []int
	Score          int
}

// itemTexts implements fuzzy.Source over query items.
// Each item is matched as its file name followed by its tables.
type itemTexts []*model.QueryItem

func (it itemTexts) String(i int) string {
	return SearchText(*it[i])
}

func (it itemTexts) Len() int {
	return len(it)
}

// SearchText returns the text an item is matched against.
func SearchText(item model.QueryItem) string {
	if len(item.Tables) == 0 {
		return item.SourceName
	}
	return item.SourceName + " " + strings.Join(item.Tables, " ")
}

// FuzzySearchItems searches items by file name and table names using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzySearchItems(items []model.QueryItem, query string) []SearchResult {
	if query == "" {
		return nil
	}

	texts := make(itemTexts, len(items))
	for i := range items {
		texts[i] = &items[i]
	}

	matches := fuzzy.FindFrom(query, texts)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Item:           texts[m.Index],
			Index:          m.Index,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
