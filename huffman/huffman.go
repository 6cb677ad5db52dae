// Package huffman builds optimal prefix codes from byte frequencies.
//
// The alphabet is the set of byte values observed in the input plus the
// newline byte, which is always counted at least once. The forced newline
// guarantees a decodable newline code exists and keeps the alphabet from
// collapsing to a single symbol for empty or uniform input.
package huffman

import (
	"container/heap"
	"errors"
	"fmt"
)

// maxCodeLen is the widest codeword representable in a Codeword's uint64.
// Reaching it would require Fibonacci-distributed frequencies over an input
// of more than 10^12 bytes.
const maxCodeLen = 64

// ErrCodeTooLong indicates a tree deeper than 64 levels.
var ErrCodeTooLong = errors.New("codeword longer than 64 bits")

// FreqTable maps each byte value to its occurrence count.
type FreqTable [256]uint64

// CountFrequencies scans input and returns its frequency table.
// The newline byte is counted once more than it appears, so the sum of all
// counts is len(input)+1.
func CountFrequencies(input []byte) *FreqTable {
	var freqs FreqTable
	for _, b := range input {
		freqs[b]++
	}
	freqs['\n']++
	return &freqs
}

// Symbols returns the byte values with a non-zero count, in ascending order.
func (f *FreqTable) Symbols() []byte {
	symbols := make([]byte, 0, 16)
	for i, count := range f {
		if count > 0 {
			symbols = append(symbols, byte(i))
		}
	}
	return symbols
}

// Total returns the sum of all counts.
func (f *FreqTable) Total() uint64 {
	var total uint64
	for _, count := range f {
		total += count
	}
	return total
}

// Node is a Huffman tree node. Leaves carry a symbol and its frequency;
// internal nodes carry the sum of their children's weights.
type Node struct {
	Symbol      byte
	Leaf        bool
	Weight      uint64
	Left, Right *Node

	// seq is the insertion sequence number, the secondary heap key.
	// Leaves are seeded in ascending symbol order and internal nodes are
	// numbered as they are created, so equal weights always order the same
	// way regardless of map or heap internals.
	seq int
}

type nodeHeap []*Node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].Weight != h[j].Weight {
		return h[i].Weight < h[j].Weight
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(*Node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	*h = old[:n-1]
	return node
}

// BuildTree constructs the Huffman tree for freqs by repeatedly merging the
// two lowest-weight nodes. Ties break on insertion sequence, and the first
// node popped becomes the left child, so the tree shape is deterministic.
// The caller owns the returned root; nothing retains it after code
// generation.
func BuildTree(freqs *FreqTable) (*Node, error) {
	h := make(nodeHeap, 0, 16)
	seq := 0
	for i, count := range freqs {
		if count == 0 {
			continue
		}
		h = append(h, &Node{Symbol: byte(i), Leaf: true, Weight: count, seq: seq})
		seq++
	}
	if len(h) == 0 {
		return nil, errors.New("empty frequency table")
	}
	heap.Init(&h)

	for h.Len() > 1 {
		left := heap.Pop(&h).(*Node)
		right := heap.Pop(&h).(*Node)
		parent := &Node{
			Weight: left.Weight + right.Weight,
			Left:   left,
			Right:  right,
			seq:    seq,
		}
		seq++
		heap.Push(&h, parent)
	}
	return heap.Pop(&h).(*Node), nil
}

// Codeword is a prefix code as its bit pattern and length. The code occupies
// the low Len bits of Bits and is emitted most-significant-bit first.
type Codeword struct {
	Bits uint64
	Len  uint8
}

// String renders the codeword as '0'/'1' characters, root to leaf.
func (c Codeword) String() string {
	buf := make([]byte, c.Len)
	for i := range buf {
		buf[i] = '0' + byte(c.Bits>>(c.Len-1-uint8(i))&1)
	}
	return string(buf)
}

// Code is a symbol-to-codeword table. A zero Len marks an absent symbol.
type Code struct {
	words [256]Codeword
}

// NewCode walks the tree and assigns every leaf its root-to-leaf path,
// "0" on left descent and "1" on right. The resulting set is prefix-free by
// construction. A single-leaf tree assigns the lone symbol codeword "0" so
// that no symbol ever receives an empty codeword.
func NewCode(root *Node) (*Code, error) {
	if root == nil {
		return nil, errors.New("nil tree root")
	}
	code := &Code{}
	if err := code.assign(root, 0, 0); err != nil {
		return nil, err
	}
	return code, nil
}

func (c *Code) assign(node *Node, bits uint64, depth uint8) error {
	if node.Leaf {
		if depth == 0 {
			// Lone symbol: the tree has no depth, force a one-bit code.
			c.words[node.Symbol] = Codeword{Bits: 0, Len: 1}
			return nil
		}
		c.words[node.Symbol] = Codeword{Bits: bits, Len: depth}
		return nil
	}
	if depth == maxCodeLen {
		return fmt.Errorf("%w at symbol depth %d", ErrCodeTooLong, depth+1)
	}
	if err := c.assign(node.Left, bits<<1, depth+1); err != nil {
		return err
	}
	return c.assign(node.Right, bits<<1|1, depth+1)
}

// Lookup returns the codeword for sym and whether sym is in the table.
func (c *Code) Lookup(sym byte) (Codeword, bool) {
	w := c.words[sym]
	return w, w.Len > 0
}

// Set records the codeword for sym, replacing any previous entry.
func (c *Code) Set(sym byte, w Codeword) {
	c.words[sym] = w
}

// Symbols returns the byte values present in the table, in ascending order.
func (c *Code) Symbols() []byte {
	symbols := make([]byte, 0, 16)
	for i, w := range c.words {
		if w.Len > 0 {
			symbols = append(symbols, byte(i))
		}
	}
	return symbols
}

// EncodedLen returns the total bit length of encoding input with this code.
// The second return reports the first input byte without a codeword, if any.
func (c *Code) EncodedLen(input []byte) (uint64, bool) {
	var total uint64
	for _, b := range input {
		w := c.words[b]
		if w.Len == 0 {
			return total, false
		}
		total += uint64(w.Len)
	}
	return total, true
}

// WeightedLength returns the weighted path length of the code under freqs:
// the sum over symbols of frequency times codeword length. Huffman's merge
// strategy minimizes this quantity.
func (c *Code) WeightedLength(freqs *FreqTable) uint64 {
	var total uint64
	for i, count := range freqs {
		total += count * uint64(c.words[i].Len)
	}
	return total
}
