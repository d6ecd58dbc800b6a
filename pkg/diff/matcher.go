// Package diff computes edit scripts between two sequences.
//
// Matcher is a longest-common-subsequence style sequence matcher in the
// family of text-diff tools: it repeatedly finds the longest contiguous
// matching block, recurses on both sides of it, and turns the resulting
// matching blocks into equal/delete/insert/replace opcodes.
//
// Elements are represented by hashes. Because different elements can
// share a hash, a match is only accepted when the caller's equality
// function confirms it.
package diff

import "sort"

// Tag identifies the kind of an Opcode.
type Tag byte

const (
	// Equal means a[I1:I2] == b[J1:J2].
	Equal Tag = 'e'
	// Delete means a[I1:I2] should be deleted. J1 == J2.
	Delete Tag = 'd'
	// Insert means b[J1:J2] should be inserted at a[I1:I1]. I1 == I2.
	Insert Tag = 'i'
	// Replace means a[I1:I2] should be replaced by b[J1:J2].
	Replace Tag = 'r'
)

func (t Tag) String() string {
	switch t {
	case Equal:
		return "equal"
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// Opcode describes how to turn a[I1:I2] into b[J1:J2].
type Opcode struct {
	Tag    Tag
	I1, I2 int
	J1, J2 int
}

// Match is a matching block: a[A:A+Size] == b[B:B+Size].
type Match struct {
	A, B, Size int
}

// Matcher compares two hashed sequences.
type Matcher struct {
	a, b    []uint64
	eq      func(i, j int) bool
	b2j     map[uint64][]int
	blocks  []Match
	opcodes []Opcode
}

// NewMatcher creates a matcher for sequences a and b. eq(i, j) confirms
// that a[i] and b[j] are equal once their hashes matched; nil means hashes
// are trusted.
func NewMatcher(a, b []uint64, eq func(i, j int) bool) *Matcher {
	m := &Matcher{a: a, b: b, eq: eq}
	m.b2j = make(map[uint64][]int, len(b))
	for j, h := range b {
		m.b2j[h] = append(m.b2j[h], j)
	}
	return m
}

func (m *Matcher) equal(i, j int) bool {
	return m.eq == nil || m.eq(i, j)
}

// longestMatch finds the longest matching block in a[alo:ahi] and
// b[blo:bhi]. Ties go to the block that starts earliest in a, then in b.
func (m *Matcher) longestMatch(alo, ahi, blo, bhi int) Match {
	best := Match{A: alo, B: blo}
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			if !m.equal(i, j) {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.Size {
				best = Match{A: i - k + 1, B: j - k + 1, Size: k}
			}
		}
		j2len = next
	}
	return best
}

// MatchingBlocks returns the matching blocks in increasing order, followed
// by a zero-size sentinel at (len(a), len(b)). Adjacent blocks are merged.
func (m *Matcher) MatchingBlocks() []Match {
	if m.blocks != nil {
		return m.blocks
	}
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	var found []Match
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
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

	var blocks []Match
	var cur Match
	for _, x := range found {
		if cur.Size > 0 && cur.A+cur.Size == x.A && cur.B+cur.Size == x.B {
			cur.Size += x.Size
			continue
		}
		if cur.Size > 0 {
			blocks = append(blocks, cur)
		}
		cur = x
	}
	if cur.Size > 0 {
		blocks = append(blocks, cur)
	}
	blocks = append(blocks, Match{A: len(m.a), B: len(m.b)})
	m.blocks = blocks
	return blocks
}

// Opcodes returns the edit script turning a into b. Consecutive opcodes
// cover both sequences without gaps.
func (m *Matcher) Opcodes() []Opcode {
	if m.opcodes != nil {
		return m.opcodes
	}
	i, j := 0, 0
	ops := []Opcode{}
	for _, blk := range m.MatchingBlocks() {
		var tag Tag
		switch {
		case i < blk.A && j < blk.B:
			tag = Replace
		case i < blk.A:
			tag = Delete
		case j < blk.B:
			tag = Insert
		}
		if tag != 0 {
			ops = append(ops, Opcode{Tag: tag, I1: i, I2: blk.A, J1: j, J2: blk.B})
		}
		i, j = blk.A+blk.Size, blk.B+blk.Size
		if blk.Size > 0 {
			ops = append(ops, Opcode{Tag: Equal, I1: blk.A, I2: i, J1: blk.B, J2: j})
		}
	}
	m.opcodes = ops
	return ops
}

// Ratio returns a similarity measure in [0, 1]: 2*M/T where M is the number
// of matched elements and T the total number of elements.
func (m *Matcher) Ratio() float64 {
	total := len(m.a) + len(m.b)
	if total == 0 {
		return 1
	}
	matched := 0
	for _, blk := range m.MatchingBlocks() {
		matched += blk.Size
	}
	return 2 * float64(matched) / float64(total)
}
