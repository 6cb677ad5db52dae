package huffpress

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/seiflotfy/huffpress/huffman"
)

// Code table artifact format:
//
//	#bits:<decimal total bit length>
//	<symbol-or-escape>:<codeword as '0'/'1' characters>
//	...
//
// One record per symbol, one line per record. The newline symbol is escaped
// as the two characters `\n` since the format is itself line-oriented; every
// other symbol is written as its literal byte. Records split at the LAST
// colon on the line so that a literal ':' symbol round-trips. The #bits
// header carries the exact encoded bit length, which lets the decoder stop
// before trailing pad bits; artifacts written with WithLegacyTable omit it.
const bitsHeaderField = "#bits"

var (
	// ErrMalformedRecord indicates a code table line that cannot be parsed:
	// missing separator, bad symbol field, or a non-binary codeword.
	ErrMalformedRecord = errors.New("malformed code table record")
	// ErrInvalidTable indicates a structurally broken code table: duplicate
	// symbols, duplicate headers, or codewords that violate prefix-freeness.
	ErrInvalidTable = errors.New("invalid code table")
)

// appendCodeTable serializes code as the artifact text, one record per
// symbol in ascending symbol order. bitLen is recorded in the #bits header
// unless legacy is set.
func appendCodeTable(dst []byte, code *huffman.Code, bitLen uint64, legacy bool) []byte {
	if !legacy {
		dst = append(dst, bitsHeaderField...)
		dst = append(dst, ':')
		dst = strconv.AppendUint(dst, bitLen, 10)
		dst = append(dst, '\n')
	}
	for _, sym := range code.Symbols() {
		if sym == '\n' {
			dst = append(dst, '\\', 'n')
		} else {
			dst = append(dst, sym)
		}
		dst = append(dst, ':')
		word, _ := code.Lookup(sym)
		for i := word.Len; i > 0; i-- {
			dst = append(dst, '0'+byte(word.Bits>>(i-1)&1))
		}
		dst = append(dst, '\n')
	}
	return dst
}

// decodeNode is one node of the codeword trie the decoder walks bit by bit.
// Emitting at a leaf and restarting from the root is exactly the incremental
// prefix match over a prefix-free table.
type decodeNode struct {
	left, right *decodeNode
	leaf        bool
	symbol      byte
}

// codeTable is the decoder-side view of a parsed artifact.
type codeTable struct {
	root    *decodeNode
	entries int
	bitLen  uint64
	// hasBitLen reports whether the artifact carried a #bits header.
	// Without it the decoder falls back to the legacy padding rule.
	hasBitLen bool
}

// parseCodeTable parses the artifact into a codeword trie. Malformed records
// are rejected outright rather than skipped, so a damaged table can never
// silently drop symbols.
func parseCodeTable(artifact []byte) (*codeTable, error) {
	table := &codeTable{root: &decodeNode{}}

	lines := bytes.Split(artifact, []byte{'\n'})
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		sep := bytes.LastIndexByte(line, ':')
		if sep < 0 {
			return nil, fmt.Errorf("line %d: %w: missing separator", i+1, ErrMalformedRecord)
		}
		field, value := line[:sep], line[sep+1:]

		if string(field) == bitsHeaderField {
			if table.hasBitLen {
				return nil, fmt.Errorf("line %d: %w: duplicate %s header", i+1, ErrInvalidTable, bitsHeaderField)
			}
			bitLen, err := strconv.ParseUint(string(value), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: bad %s value %q", i+1, ErrMalformedRecord, bitsHeaderField, value)
			}
			table.bitLen = bitLen
			table.hasBitLen = true
			continue
		}

		var sym byte
		switch {
		case len(field) == 1:
			sym = field[0]
		case string(field) == `\n`:
			sym = '\n'
		default:
			return nil, fmt.Errorf("line %d: %w: bad symbol field %q", i+1, ErrMalformedRecord, field)
		}

		if len(value) == 0 {
			return nil, fmt.Errorf("line %d: %w: empty codeword for symbol %q", i+1, ErrMalformedRecord, sym)
		}
		if err := table.insert(sym, value); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	if table.entries == 0 {
		return nil, fmt.Errorf("%w: no symbol records", ErrInvalidTable)
	}
	return table, nil
}

// insert adds one codeword to the trie. Passing through or landing on an
// occupied node means the new codeword is a prefix of an existing one or
// vice versa.
func (t *codeTable) insert(sym byte, codeword []byte) error {
	node := t.root
	for _, c := range codeword {
		if node.leaf {
			return fmt.Errorf("%w: codeword for symbol %q extends the codeword of %q", ErrInvalidTable, sym, node.symbol)
		}
		switch c {
		case '0':
			if node.left == nil {
				node.left = &decodeNode{}
			}
			node = node.left
		case '1':
			if node.right == nil {
				node.right = &decodeNode{}
			}
			node = node.right
		default:
			return fmt.Errorf("%w: codeword for symbol %q contains %q", ErrMalformedRecord, sym, c)
		}
	}
	if node.leaf {
		return fmt.Errorf("%w: symbols %q and %q share a codeword", ErrInvalidTable, node.symbol, sym)
	}
	if node.left != nil || node.right != nil {
		return fmt.Errorf("%w: codeword for symbol %q is a prefix of another codeword", ErrInvalidTable, sym)
	}
	node.leaf = true
	node.symbol = sym
	t.entries++
	return nil
}
