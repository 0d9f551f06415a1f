package project

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Field says which project field a search query matched.
type Field string

const (
	FieldName     Field = "name"
	FieldNickname Field = "nickname"
)

// Match is one ranked search result. MatchedIndexes are rune positions
// within the matched field, for highlighting.
type Match struct {
	Project        Project `json:"project"`
	Score          int     `json:"score"`
	Field          Field   `json:"field,omitempty"`
	MatchedIndexes []int   `json:"matched_indexes,omitempty"`
}

// Search ranks projects against the query with Sublime-style fuzzy
// scoring over both name and nickname, keeping whichever field scored
// higher per project. A blank query returns every project in recency
// order with zero scores.
func (r *Registry) Search(query string) []Match {
	projects := r.List()

	if strings.TrimSpace(query) == "" {
		out := make([]Match, len(projects))
		for i, p := range projects {
			out[i] = Match{Project: p}
		}
		return out
	}

	names := make([]string, len(projects))
	nicknames := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
		nicknames[i] = p.Nickname
	}

	best := make(map[int]Match)
	for _, m := range fuzzy.Find(query, names) {
		best[m.Index] = Match{
			Project:        projects[m.Index],
			Score:          m.Score,
			Field:          FieldName,
			MatchedIndexes: m.MatchedIndexes,
		}
	}
	for _, m := range fuzzy.Find(query, nicknames) {
		if cur, ok := best[m.Index]; ok && cur.Score >= m.Score {
			continue
		}
		best[m.Index] = Match{
			Project:        projects[m.Index],
			Score:          m.Score,
			Field:          FieldNickname,
			MatchedIndexes: m.MatchedIndexes,
		}
	}

	out := make([]Match, 0, len(best))
	for _, m := range best {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].Project.LastOpened.Equal(out[j].Project.LastOpened) {
			return out[i].Project.LastOpened.After(out[j].Project.LastOpened)
		}
		return out[i].Project.Name < out[j].Project.Name
	})
	return out
}
