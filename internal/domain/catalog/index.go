package catalog

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	// MinQueryLength is the shortest query that is searched at all.
	MinQueryLength = 2
	// Threshold is the worst score still reported as a match.
	Threshold = 0.3
	// DefaultLimit caps the number of matches returned by Search.
	DefaultLimit = 20
)

// Index is an immutable fuzzy index over medicine names and is safe for
// concurrent use.
type Index struct {
	medicines []Medicine
	names     []string
}

func NewIndex(medicines []Medicine) *Index {
	idx := &Index{
		medicines: make([]Medicine, 0, len(medicines)),
		names:     make([]string, 0, len(medicines)),
	}
	for _, m := range medicines {
		name := strings.ToLower(strings.TrimSpace(m.Name))
		if name == "" {
			continue
		}
		idx.medicines = append(idx.medicines, m)
		idx.names = append(idx.names, name)
	}
	return idx
}

func (idx *Index) Len() int { return len(idx.medicines) }

// Search returns up to limit medicines whose name matches q within Threshold,
// best first. Ties keep catalog order. A limit <= 0 means DefaultLimit.
func (idx *Index) Search(q string, limit int) []Match {
	q = strings.ToLower(strings.TrimSpace(q))
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var matches []Match
	for i, name := range idx.names {
		s := score(q, name)
		if s > Threshold {
			continue
		}
		matches = append(matches, Match{Medicine: idx.medicines[i], Score: s})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// score compares q against the best aligned part of name: the edit distance
// to the closest window of similar length, relative to the query length.
func score(q, name string) float64 {
	if strings.Contains(name, q) {
		return 0
	}
	qr, nr := []rune(q), []rune(name)
	n := len(qr)

	if len(nr) <= n {
		d := levenshtein.ComputeDistance(q, name)
		return ratio(d, n)
	}

	best := n
	for _, w := range []int{n - 1, n, n + 1} {
		if w < 1 || w > len(nr) {
			continue
		}
		for start := 0; start+w <= len(nr); start++ {
			if d := levenshtein.ComputeDistance(q, string(nr[start:start+w])); d < best {
				best = d
			}
		}
	}
	return ratio(best, n)
}

func ratio(d, n int) float64 {
	if n == 0 {
		return 1
	}
	r := float64(d) / float64(n)
	if r > 1 {
		return 1
	}
	return r
}
