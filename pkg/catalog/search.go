package catalog

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// DefaultLimit caps a search result set when the caller passes no limit.
const DefaultLimit = 50

// Fuzzy phase constants. These are fixed heuristics, kept for parity with
// expected outputs; do not re-derive them.
const (
	fuzzyThreshold = 0.6
	tokenWeight    = 0.6
	charWeight     = 0.4
)

// Searcher answers ranked name queries over an aggregated item set. The
// prefix phase runs on a patricia trie holding every full normalized name
// plus every name token; the fuzzy phase is only consulted when the prefix
// phase comes up empty.
type Searcher struct {
	items []*GroupedItem
	trie  *patricia.Trie
}

// NewSearcher indexes items in aggregation order. The order matters: fuzzy
// ties keep it, so searching is stable across identical loads.
func NewSearcher(items []*GroupedItem) *Searcher {
	s := &Searcher{
		items: items,
		trie:  patricia.NewTrie(),
	}
	for ord, g := range items {
		if g.NormalizedName == "" {
			continue
		}
		s.insert(g.NormalizedName, ord)
		for _, tok := range strings.Fields(g.NormalizedName) {
			if tok != g.NormalizedName {
				s.insert(tok, ord)
			}
		}
	}
	return s
}

func (s *Searcher) insert(key string, ord int) {
	prefix := patricia.Prefix(key)
	if item := s.trie.Get(prefix); item != nil {
		s.trie.Set(prefix, append(item.([]int), ord))
		return
	}
	s.trie.Insert(prefix, []int{ord})
}

// Search returns ranked, deduplicated matches capped at limit. An empty or
// whitespace query returns nothing. When any prefix match exists the fuzzy
// phase is never consulted, even if a near-duplicate elsewhere would score
// higher.
func (s *Searcher) Search(query string, limit int) []*GroupedItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	if results := s.prefixPhase(query); len(results) > 0 {
		if len(results) > limit {
			results = results[:limit]
		}
		return results
	}
	results := s.fuzzyPhase(query)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// prefixPhase collects every item whose normalized name, or any of its name
// tokens, starts with the query, sorted by (name, station, tier).
func (s *Searcher) prefixPhase(query string) []*GroupedItem {
	seen := make(map[string]struct{})
	var results []*GroupedItem

	err := s.trie.VisitSubtree(patricia.Prefix(query), func(p patricia.Prefix, item patricia.Item) error {
		for _, ord := range item.([]int) {
			g := s.items[ord]
			if _, dup := seen[g.NormalizedName]; dup {
				continue
			}
			seen[g.NormalizedName] = struct{}{}
			results = append(results, g)
		}
		return nil
	})
	if err != nil {
		log.Errorf("visiting trie subtree: %v", err)
		return nil
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.NormalizedName != b.NormalizedName {
			return a.NormalizedName < b.NormalizedName
		}
		as, at := a.firstStation()
		bs, bt := b.firstStation()
		if as != bs {
			return as < bs
		}
		return at < bt
	})
	return results
}

// fuzzyPhase scores every item against the query and keeps the ones at or
// above the threshold, descending by score with ties in aggregation order.
func (s *Searcher) fuzzyPhase(query string) []*GroupedItem {
	type scored struct {
		item  *GroupedItem
		score float64
	}

	var kept []scored
	seen := make(map[string]struct{})
	for _, g := range s.items {
		if g.NormalizedName == "" {
			continue
		}
		if _, dup := seen[g.NormalizedName]; dup {
			continue
		}
		seen[g.NormalizedName] = struct{}{}

		if sc := Similarity(query, g.NormalizedName); sc >= fuzzyThreshold {
			kept = append(kept, scored{g, sc})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	results := make([]*GroupedItem, len(kept))
	for i, k := range kept {
		results[i] = k.item
	}
	return results
}

// Similarity scores two normalized strings in [0,1]. Exact equality is 1.
// Otherwise the score blends token overlap (share of query tokens appearing
// literally among the target's tokens) with distinct-character-set overlap,
// both ratios against the larger of the two sets and clamped to 0 when a
// set is empty. A heuristic, not an edit distance.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	return tokenWeight*tokenOverlap(a, b) + charWeight*charSetOverlap(a, b)
}

func tokenOverlap(a, b string) float64 {
	at := strings.Fields(a)
	bt := strings.Fields(b)
	denom := len(at)
	if len(bt) > denom {
		denom = len(bt)
	}
	if denom == 0 {
		return 0
	}

	bset := make(map[string]struct{}, len(bt))
	for _, t := range bt {
		bset[t] = struct{}{}
	}
	hits := 0
	for _, t := range at {
		if _, ok := bset[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(denom)
}

func charSetOverlap(a, b string) float64 {
	aset := runeSet(a)
	bset := runeSet(b)
	denom := len(aset)
	if len(bset) > denom {
		denom = len(bset)
	}
	if denom == 0 {
		return 0
	}

	shared := 0
	for r := range aset {
		if _, ok := bset[r]; ok {
			shared++
		}
	}
	return float64(shared) / float64(denom)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}
