// Package rank orders history entries against a fuzzy query.
package rank

import (
	"cmp"
	"slices"

	"github.com/sahilm/fuzzy"

	"go.klb.dev/clipdeck/internal/history"
)

// Result is one entry that matched a query.
type Result struct {
	Entry history.Entry
	Score int
	// Matched holds byte offsets into Entry.Content of the matched characters.
	// Empty for pass-through results.
	Matched []int
}

// entrySource adapts a slice of entries to fuzzy.Source.
type entrySource []history.Entry

func (s entrySource) String(i int) string { return s[i].Content }
func (s entrySource) Len() int            { return len(s) }

// Search ranks entries against query.
//
// An empty query returns every entry in the given order with score 0. A
// non-empty query keeps only entries whose content contains the query as a
// fuzzy subsequence, sorted by score descending. Equal scores keep their
// input order, so for a history snapshot ties go to the more recent entry.
func Search(query string, entries []history.Entry) []Result {
	if query == "" {
		out := make([]Result, len(entries))
		for i, e := range entries {
			out[i] = Result{Entry: e}
		}
		return out
	}

	matches := fuzzy.FindFromNoSort(query, entrySource(entries))
	out := make([]Result, len(matches))
	for i, m := range matches {
		out[i] = Result{
			Entry:   entries[m.Index],
			Score:   m.Score,
			Matched: m.MatchedIndexes,
		}
	}
	// FindFromNoSort yields matches in source order; a stable sort keeps that
	// order among equal scores.
	slices.SortStableFunc(out, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}
