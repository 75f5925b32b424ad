package textutil

import "sort"

// MatchBlock is a maximal run where a[A:A+Size] == b[B:B+Size].
type MatchBlock struct {
	A, B, Size int
}

// SequenceMatcher computes Ratcliff/Obershelp similarity between two rune
// sequences. There is no junk predicate, but when b has 200 or more runes,
// popular elements (more than 1% of b) are left out of the index and matches
// are extended over them afterwards. b is indexed once, so comparing many
// candidates against one query should keep the query as b and swap a with
// SetSeq1.
//
// A matcher is not safe for concurrent use.
type SequenceMatcher struct {
	a, b       []rune
	b2j        map[rune][]int
	fullBCount map[rune]int
	blocks     []MatchBlock
}

// NewSequenceMatcher returns a matcher comparing a against b.
func NewSequenceMatcher(a, b string) *SequenceMatcher {
	m := &SequenceMatcher{}
	m.SetSeq2(b)
	m.SetSeq1(a)
	return m
}

// SetSeq1 replaces the first sequence, keeping the index of b.
func (m *SequenceMatcher) SetSeq1(a string) {
	m.a = []rune(a)
	m.blocks = nil
}

// SetSeq2 replaces the second sequence and rebuilds its index.
func (m *SequenceMatcher) SetSeq2(b string) {
	m.b = []rune(b)
	m.blocks = nil
	m.fullBCount = nil
	m.chainB()
}

// chainB builds the element -> positions index for b. Sequences of 200 or more
// elements drop "popular" elements, those occurring in more than 1% of b.
func (m *SequenceMatcher) chainB() {
	m.b2j = make(map[rune][]int, len(m.b))
	for j, r := range m.b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	n := len(m.b)
	if n >= 200 {
		ntest := n/100 + 1
		for r, positions := range m.b2j {
			if len(positions) > ntest {
				delete(m.b2j, r)
			}
		}
	}
}

func (m *SequenceMatcher) findLongestMatch(alo, ahi, blo, bhi int) MatchBlock {
	besti, bestj, bestsize := alo, blo, 0
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	// Popular elements are absent from b2j; extend over them on both ends.
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}
	return MatchBlock{A: besti, B: bestj, Size: bestsize}
}

// MatchingBlocks returns the non-overlapping matching runs in ascending order,
// with adjacent runs merged and a zero-size sentinel at (len(a), len(b)).
func (m *SequenceMatcher) MatchingBlocks() []MatchBlock {
	if m.blocks != nil {
		return m.blocks
	}
	la, lb := len(m.a), len(m.b)
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, la, 0, lb}}
	var found []MatchBlock
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x := m.findLongestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if x.Size == 0 {
			continue
		}
		found = append(found, x)
		if s.alo < x.A && s.blo < x.B {
			queue = append(queue, span{s.alo, x.A, s.blo, x.B})
		}
		if x.A+x.Size < s.ahi && x.B+x.Size < s.bhi {
			queue = append(queue, span{x.A + x.Size, s.ahi, x.B + x.Size, s.bhi})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].A != found[j].A {
			return found[i].A < found[j].A
		}
		return found[i].B < found[j].B
	})

	merged := make([]MatchBlock, 0, len(found)+1)
	var cur MatchBlock
	for _, blk := range found {
		if cur.Size > 0 && cur.A+cur.Size == blk.A && cur.B+cur.Size == blk.B {
			cur.Size += blk.Size
			continue
		}
		if cur.Size > 0 {
			merged = append(merged, cur)
		}
		cur = blk
	}
	if cur.Size > 0 {
		merged = append(merged, cur)
	}
	merged = append(merged, MatchBlock{A: la, B: lb})
	m.blocks = merged
	return merged
}

// Ratio returns 2*M/T where M counts matched elements and T is the combined
// length. Two empty sequences have ratio 1.
func (m *SequenceMatcher) Ratio() float64 {
	matches := 0
	for _, blk := range m.MatchingBlocks() {
		matches += blk.Size
	}
	return calculateRatio(matches, len(m.a)+len(m.b))
}

// QuickRatio is an upper bound on Ratio computed from element multisets.
func (m *SequenceMatcher) QuickRatio() float64 {
	if m.fullBCount == nil {
		m.fullBCount = make(map[rune]int, len(m.b))
		for _, r := range m.b {
			m.fullBCount[r]++
		}
	}
	avail := make(map[rune]int, len(m.a))
	matches := 0
	for _, r := range m.a {
		n, ok := avail[r]
		if !ok {
			n = m.fullBCount[r]
		}
		avail[r] = n - 1
		if n > 0 {
			matches++
		}
	}
	return calculateRatio(matches, len(m.a)+len(m.b))
}

// RealQuickRatio is an upper bound on Ratio computed from lengths alone.
func (m *SequenceMatcher) RealQuickRatio() float64 {
	la, lb := len(m.a), len(m.b)
	return calculateRatio(min(la, lb), la+lb)
}

// Ratio is a convenience wrapper comparing two strings once.
func Ratio(a, b string) float64 {
	return NewSequenceMatcher(a, b).Ratio()
}

func calculateRatio(matches, length int) float64 {
	if length == 0 {
		return 1.0
	}
	return 2.0 * float64(matches) / float64(length)
}
