// Package dedup drops low quality and near-duplicate items before they become posts.
package dedup

import (
	"strings"

	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/samber/lo"
)

const (
	MinTitleLength      = 10
	SimilarityThreshold = 0.8
	// RecentWindow is how many stored posts a batch is compared against.
	RecentWindow = 100
)

// Rejection explains why an item was dropped.
type Rejection struct {
	Item       domain.RawItem
	Reason     string
	Similarity float64
}

type Filter struct {
	minTitleLength int
	threshold      float64
}

func New() *Filter {
	return &Filter{
		minTitleLength: MinTitleLength,
		threshold:      SimilarityThreshold,
	}
}

// Filter returns the items that are long enough and not more than the
// threshold similar to a recent title or to an item accepted earlier in the batch.
func (f *Filter) Filter(items []domain.RawItem, recentTitles []string) ([]domain.RawItem, []Rejection) {
	seen := lo.Map(recentTitles, func(t string, _ int) []string { return tokens(t) })

	var (
		accepted []domain.RawItem
		rejected []Rejection
	)
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if len([]rune(title)) < f.minTitleLength {
			rejected = append(rejected, Rejection{Item: item, Reason: "title too short"})
			continue
		}

		words := tokens(title)
		maxSim := 0.0
		for _, other := range seen {
			if s := jaccard(words, other); s > maxSim {
				maxSim = s
			}
		}
		if maxSim > f.threshold {
			rejected = append(rejected, Rejection{Item: item, Reason: "similar to existing post", Similarity: maxSim})
			continue
		}

		item.Similarity = maxSim
		accepted = append(accepted, item)
		seen = append(seen, words)
	}

	return accepted, rejected
}

// Similarity is the token-set Jaccard index of two titles.
func Similarity(a, b string) float64 {
	return jaccard(tokens(a), tokens(b))
}

func tokens(s string) []string {
	return lo.Uniq(strings.Fields(strings.ToLower(s)))
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := len(lo.Intersect(a, b))
	return float64(inter) / float64(len(a)+len(b)-inter)
}
