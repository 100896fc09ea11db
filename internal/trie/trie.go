// Package trie implements the fuzzy, Unicode-aware trie matcher that sits
// at the center of the pipeline's city/town/block resolution stages (§4.1).
// Nodes are individually allocated and linked through rune-keyed child
// maps; the layout is grounded on the pack's Aho-Corasick automaton
// (other_examples, itgcl/ahocorasick), generalized
// here from exact multi-pattern scanning to single-target maximal-prefix
// matching with virtual administrative suffixes and a single fuzzy
// wildcard rune per branch.
package trie

import (
	"sort"
	"sync"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

type node[V any] struct {
	values []V
	child  map[rune]*node[V]
}

// TrieAddressFinder is a character trie keyed by normalized administrative
// names, with dictionary rows as values. Safe for concurrent Find calls
// once construction (Append) has finished; the pipeline's initialization
// barrier (§5) is what enforces that ordering, not this type itself.
type TrieAddressFinder[V any] struct {
	mu   sync.RWMutex
	root *node[V]
	size int
}

// New creates an empty trie.
func New[V any]() *TrieAddressFinder[V] {
	return &TrieAddressFinder[V]{root: &node[V]{child: make(map[rune]*node[V])}}
}

// Append inserts key -> value. Multiple values may share a key; all are
// kept at the terminal and returned together by Find.
func (t *TrieAddressFinder[V]) Append(key string, value V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.root
	for _, r := range key {
		c, ok := n.child[r]
		if !ok {
			c = &node[V]{child: make(map[rune]*node[V])}
			n.child[r] = c
		}
		n = c
	}
	n.values = append(n.values, value)
	t.size++
}

// Len returns the number of (key, value) pairs inserted.
func (t *TrieAddressFinder[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Match is one result of Find. Depth is the number of target runes
// genuinely consumed by stored trie characters; Extension is the length of
// any virtual administrative suffix consumed past the terminal (0 or 1,
// since every suffix in ExtraChallenges is a single rune); Unmatched is the
// CharNode tail starting right after Depth+Extension, still carrying its
// original provenance.
type Match[V any] struct {
	Info      V
	Depth     int
	Extension int
	Key       string
	Unmatched *addr.CharNode
}

// FindOptions configures a Find call (§4.1).
type FindOptions[V any] struct {
	// Target is the residual address to match a prefix of.
	Target *addr.CharNode
	// ExtraChallenges are runes the matcher may virtually append at a
	// terminal without the rune counting toward Depth — administrative
	// suffixes like 区, 町, 市, 村.
	ExtraChallenges []rune
	// PartialMatches, when true, returns every terminal encountered along
	// the walk rather than only the deepest.
	PartialMatches bool
	// Fuzzy, if non-zero, is a single wildcard rune: a step matches if the
	// target rune equals the stored rune or equals Fuzzy. At most one
	// wildcard substitution is made per walk branch.
	Fuzzy rune
	// Preferred, if set, reports whether an info value should be favored
	// in the ordering — used to implement "non-null rsdt_addr_flg
	// preferred" for town/residence rows without the generic trie needing
	// to know about that field.
	Preferred func(info V) bool
}

// Find returns the maximal (or, with PartialMatches, every) match of
// Target's prefix against the trie, ordered per §4.1: depth descending,
// then shorter virtual extension, then Preferred, then lexicographic key,
// with any remaining ties left in stable walk order.
func (t *TrieAddressFinder[V]) Find(opts FindOptions[V]) []Match[V] {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if opts.Target.IsEmpty() {
		return nil
	}
	targetRunes := []rune(opts.Target.String())

	var results []Match[V]
	keyBuf := make([]rune, 0, len(targetRunes))

	var walk func(n *node[V], pos int, usedWildcard bool)
	walk = func(n *node[V], pos int, usedWildcard bool) {
		if len(n.values) > 0 {
			ext := extensionLength(targetRunes, pos, opts.ExtraChallenges)
			key := string(keyBuf)
			for _, v := range n.values {
				results = append(results, Match[V]{
					Info:      v,
					Depth:     pos,
					Extension: ext,
					Key:       key,
					Unmatched: opts.Target.Tail(pos + ext),
				})
			}
		}
		if pos >= len(targetRunes) {
			return
		}

		r := targetRunes[pos]
		if c, ok := n.child[r]; ok {
			keyBuf = append(keyBuf, r)
			walk(c, pos+1, usedWildcard)
			keyBuf = keyBuf[:len(keyBuf)-1]
		}

		if opts.Fuzzy != 0 && r == opts.Fuzzy && !usedWildcard {
			candidates := make([]rune, 0, len(n.child))
			for cr := range n.child {
				if cr == r {
					continue
				}
				candidates = append(candidates, cr)
			}
			sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
			for _, cr := range candidates {
				c := n.child[cr]
				keyBuf = append(keyBuf, cr)
				walk(c, pos+1, true)
				keyBuf = keyBuf[:len(keyBuf)-1]
			}
		}
	}
	walk(t.root, 0, false)

	if !opts.PartialMatches {
		results = deepestOnly(results)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Depth != results[j].Depth {
			return results[i].Depth > results[j].Depth
		}
		if results[i].Extension != results[j].Extension {
			return results[i].Extension < results[j].Extension
		}
		if opts.Preferred != nil {
			pi, pj := opts.Preferred(results[i].Info), opts.Preferred(results[j].Info)
			if pi != pj {
				return pi
			}
		}
		return results[i].Key < results[j].Key
	})
	return results
}

func extensionLength(target []rune, pos int, extra []rune) int {
	if pos >= len(target) || len(extra) == 0 {
		return 0
	}
	for _, e := range extra {
		if target[pos] == e {
			return 1
		}
	}
	return 0
}

func deepestOnly[V any](results []Match[V]) []Match[V] {
	if len(results) == 0 {
		return results
	}
	maxDepth := results[0].Depth
	for _, r := range results[1:] {
		if r.Depth > maxDepth {
			maxDepth = r.Depth
		}
	}
	out := results[:0]
	for _, r := range results {
		if r.Depth == maxDepth {
			out = append(out, r)
		}
	}
	return out
}
