package accounting

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const searchLimit = 20

// SearchKind selects the records a search runs over.
type SearchKind string

const (
	SearchAccounts    SearchKind = "account"
	SearchCostCenters SearchKind = "cost_center"
)

// SearchHit is one ranked search result.
type SearchHit struct {
	Value    string     `json:"value"`
	Title    string     `json:"title"`
	Kind     SearchKind `json:"kind"`
	Distance int        `json:"distance"`
}

type candidate struct {
	value  string
	title  string
	labels []string
}

// Search finds accounts or cost centers whose name, title or number contains
// the query, or is within a small edit distance of it. Substring matches rank
// ahead of fuzzy ones; ties sort by distance then value.
func (s *Service) Search(ctx context.Context, company, query string, kind SearchKind) ([]SearchHit, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, fmt.Errorf("%w: q is required", ErrValidation)
	}
	if kind == "" {
		kind = SearchAccounts
	}
	if kind != SearchAccounts && kind != SearchCostCenters {
		return nil, fmt.Errorf("%w: kind must be account or cost_center", ErrValidation)
	}
	chart, err := s.chart(ctx, company)
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	switch kind {
	case SearchCostCenters:
		for _, cc := range chart.CostCenters {
			candidates = append(candidates, candidate{value: cc.Name, title: cc.Name, labels: []string{cc.Name}})
		}
	default:
		for _, a := range chart.Accounts {
			candidates = append(candidates, candidate{
				value:  a.Name,
				title:  a.Title(),
				labels: []string{a.Name, a.AccountName, a.Title(), a.AccountNumber},
			})
		}
	}
	return rank(candidates, query, kind), nil
}

func rank(candidates []candidate, query string, kind SearchKind) []SearchHit {
	type scored struct {
		hit       SearchHit
		substring bool
	}
	maxDistance := len([]rune(query)) / 3
	if maxDistance < 1 {
		maxDistance = 1
	}

	var out []scored
	for _, c := range candidates {
		best, substring := -1, false
		for _, label := range c.labels {
			if label == "" {
				continue
			}
			lower := strings.ToLower(label)
			d := levenshtein.ComputeDistance(query, lower)
			if strings.Contains(lower, query) {
				if !substring || d < best {
					best, substring = d, true
				}
				continue
			}
			if !substring && d <= maxDistance && (best < 0 || d < best) {
				best = d
			}
		}
		if best < 0 {
			continue
		}
		out = append(out, scored{hit: SearchHit{Value: c.value, Title: c.title, Kind: kind, Distance: best}, substring: substring})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].substring != out[j].substring {
			return out[i].substring
		}
		if out[i].hit.Distance != out[j].hit.Distance {
			return out[i].hit.Distance < out[j].hit.Distance
		}
		return out[i].hit.Value < out[j].hit.Value
	})
	if len(out) > searchLimit {
		out = out[:searchLimit]
	}
	hits := make([]SearchHit, 0, len(out))
	for _, s := range out {
		hits = append(hits, s.hit)
	}
	return hits
}
