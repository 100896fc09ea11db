package addr

import (
	"regexp"
	"strings"
)

// charNode is one rune of a CharNode chain. Nodes live in a contiguous,
// append-only arena; next is an index into that arena rather than a
// pointer, which keeps the chain cycle-free and makes cloning a chain for
// speculative branching an O(1) copy of the head index instead of a deep
// copy of the nodes themselves.
type charNode struct {
	r        rune
	orig     int  // rune offset in the original input, -1 if synthesized by a rewrite
	inserted bool // true if a normalization step inserted this rune
	consumed bool // true once a trie match has consumed this rune
	next     int  // index of the next node, -1 at chain end
}

// CharNode is a linked chain of characters with per-rune provenance. It is
// the residual-address representation a Query carries as tempAddress: every
// rewrite it undergoes preserves enough bookkeeping that an unmatched tail
// can still be traced back to its original input position.
type CharNode struct {
	arena *[]charNode
	head  int
}

// NewCharNode builds a fresh chain from a string, one node per rune, each
// node's provenance pointing at its own position in s.
func NewCharNode(s string) *CharNode {
	runes := []rune(s)
	arena := make([]charNode, len(runes))
	head := -1
	for i, r := range runes {
		next := i + 1
		if i == len(runes)-1 {
			next = -1
		}
		arena[i] = charNode{r: r, orig: i, next: next}
	}
	if len(runes) > 0 {
		head = 0
	}
	return &CharNode{arena: &arena, head: head}
}

// IsEmpty reports whether the chain has no runes left.
func (c *CharNode) IsEmpty() bool {
	return c == nil || c.head == -1
}

// String renders the chain back to a plain string.
func (c *CharNode) String() string {
	if c.IsEmpty() {
		return ""
	}
	var sb strings.Builder
	a := *c.arena
	for i := c.head; i != -1; i = a[i].next {
		sb.WriteRune(a[i].r)
	}
	return sb.String()
}

// Len returns the number of runes remaining in the chain.
func (c *CharNode) Len() int {
	if c.IsEmpty() {
		return 0
	}
	n := 0
	a := *c.arena
	for i := c.head; i != -1; i = a[i].next {
		n++
	}
	return n
}

// Clone returns a chain sharing the same backing arena. Safe because nodes
// are never mutated in place once appended — only ever copied into a new
// arena by ReplaceAll/MarkConsumed — so two CharNode values can point at the
// same arena and diverge independently from there.
func (c *CharNode) Clone() *CharNode {
	if c == nil {
		return nil
	}
	return &CharNode{arena: c.arena, head: c.head}
}

// Tail returns the sub-chain starting at the given rune depth, used by the
// trie matcher to hand back the unmatched remainder of a target (§4.1).
func (c *CharNode) Tail(depth int) *CharNode {
	if c.IsEmpty() {
		return &CharNode{head: -1}
	}
	a := *c.arena
	idx := c.head
	for i := 0; i < depth && idx != -1; i++ {
		idx = a[idx].next
	}
	return &CharNode{arena: c.arena, head: idx}
}

// Provenance returns, for each remaining rune in order, the original input
// index it traces back to (-1 if the rune was synthesized by a rewrite).
func (c *CharNode) Provenance() []int {
	if c.IsEmpty() {
		return nil
	}
	a := *c.arena
	out := make([]int, 0, c.Len())
	for i := c.head; i != -1; i = a[i].next {
		out = append(out, a[i].orig)
	}
	return out
}

// MarkConsumed returns a chain identical to c but with the first depth
// runes flagged as consumed by a match. Non-destructive: c is left
// untouched.
func (c *CharNode) MarkConsumed(depth int) *CharNode {
	if c.IsEmpty() || depth <= 0 {
		return c.Clone()
	}
	orig := *c.arena
	newArena := make([]charNode, 0, c.Len())
	head, link := -1, -1
	i := 0
	for idx := c.head; idx != -1; idx = orig[idx].next {
		n := orig[idx]
		if i < depth {
			n.consumed = true
		}
		n.next = -1
		newArena = append(newArena, n)
		ni := len(newArena) - 1
		if link >= 0 {
			newArena[link].next = ni
		}
		if head == -1 {
			head = ni
		}
		link = ni
		i++
	}
	return &CharNode{arena: &newArena, head: head}
}

// ReplaceAll performs a non-destructive regex rewrite over the chain's
// text: runs the pattern does not touch keep their original provenance,
// replacement text is appended as synthesized nodes. The receiver is left
// unmodified; the result is a chain over a freshly built arena. This is the
// CharNode analogue of the trie/normalizer "suffix-strip" and patch-rewrite
// stages (§4.2, §4.3 step 6), which must not lose the ability to map a
// still-unmatched tail back to its original position in the input line.
func (c *CharNode) ReplaceAll(re *regexp.Regexp, repl string) *CharNode {
	return c.rewrite(re, func(s string, loc []int) string {
		return string(re.ExpandString(nil, repl, s, loc))
	})
}

// ReplaceAllFunc is ReplaceAll with the replacement computed from the
// matched text itself, the CharNode analogue of
// regexp.ReplaceAllStringFunc — used by kan-to-num, where the digit value
// substituted for a run of kanji numerals depends on what the run says.
func (c *CharNode) ReplaceAllFunc(re *regexp.Regexp, repl func(match string) string) *CharNode {
	return c.rewrite(re, func(s string, loc []int) string {
		return repl(s[loc[0]:loc[1]])
	})
}

// rewrite is the shared engine behind ReplaceAll/ReplaceAllFunc: runs the
// pattern does not touch keep their original provenance, and each match's
// replacement text (computed by expand) becomes synthesized nodes.
func (c *CharNode) rewrite(re *regexp.Regexp, expand func(s string, loc []int) string) *CharNode {
	if c.IsEmpty() {
		return c.Clone()
	}
	s := c.String()
	locs := re.FindAllSubmatchIndex([]byte(s), -1)
	if len(locs) == 0 {
		return c.Clone()
	}

	orig := *c.arena
	chainIdx := make([]int, 0, c.Len())
	for i := c.head; i != -1; i = orig[i].next {
		chainIdx = append(chainIdx, i)
	}

	// Map every byte offset in s to the rune index it starts (regex match
	// boundaries always land on rune boundaries for well-formed UTF-8
	// patterns over well-formed UTF-8 text).
	byteToRune := make([]int, len(s)+1)
	ri := 0
	for bi := range s {
		byteToRune[bi] = ri
		ri++
	}
	byteToRune[len(s)] = ri

	newArena := make([]charNode, 0, len(chainIdx))
	head, link := -1, -1
	appendNode := func(n charNode) {
		n.next = -1
		newArena = append(newArena, n)
		idx := len(newArena) - 1
		if link >= 0 {
			newArena[link].next = idx
		}
		if head == -1 {
			head = idx
		}
		link = idx
	}

	pos := 0
	for _, loc := range locs {
		mStart := byteToRune[loc[0]]
		mEnd := byteToRune[loc[1]]

		for pos < mStart {
			appendNode(orig[chainIdx[pos]])
			pos++
		}

		for _, r := range expand(s, loc) {
			appendNode(charNode{r: r, orig: -1, inserted: true})
		}
		pos = mEnd
	}
	for pos < len(chainIdx) {
		appendNode(orig[chainIdx[pos]])
		pos++
	}

	return &CharNode{arena: &newArena, head: head}
}

// MapRunes returns a chain with every rune passed through f, one-for-one,
// preserving each node's provenance — used for script folds like
// to-hiragana and JIS-kanji that never change the rune count.
func (c *CharNode) MapRunes(f func(r rune) rune) *CharNode {
	if c.IsEmpty() {
		return c.Clone()
	}
	orig := *c.arena
	newArena := make([]charNode, 0, c.Len())
	head, link := -1, -1
	for i := c.head; i != -1; i = orig[i].next {
		n := orig[i]
		n.r = f(n.r)
		n.next = -1
		newArena = append(newArena, n)
		idx := len(newArena) - 1
		if link >= 0 {
			newArena[link].next = idx
		}
		if head == -1 {
			head = idx
		}
		link = idx
	}
	return &CharNode{arena: &newArena, head: head}
}
