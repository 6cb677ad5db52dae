// Package huffpress is a lossless text compressor built on static Huffman
// coding. It derives a prefix-free code from the byte frequencies of the
// whole input, packs the encoded bitstream MSB-first into bytes, and
// reverses the process exactly given the code table artifact produced
// alongside the packed stream.
//
// The codec is two-pass and synchronous: the input is fully scanned before
// any code is fixed. It is not an adaptive or arithmetic coder, and its
// symbol domain is single byte values.
package huffpress

import (
	"encoding/binary"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/seiflotfy/huffpress/bitio"
	"github.com/seiflotfy/huffpress/huffman"
)

var (
	// ErrUnmatchedBits indicates packed bits that match no codeword in the
	// table: a corrupted stream or a table/stream mismatch.
	ErrUnmatchedBits = errors.New("unmatched bits in packed stream")
	// ErrLengthMismatch indicates a packed stream whose size disagrees with
	// the bit length recorded in the code table artifact.
	ErrLengthMismatch = errors.New("packed stream length mismatch")
)

// Config holds configuration for the codec.
type Config struct {
	LegacyTable bool // omit the #bits header from the code table artifact
	CacheSize   int  // number of cached code tables (0 = disabled)
}

// Option is a functional option for configuring the codec.
type Option func(*Config)

// WithLegacyTable writes code table artifacts without the #bits header, for
// interoperability with readers of the original format. Without the header
// a decoder cannot always tell trailing pad bits from real data: a codeword
// consisting entirely of '0' bits is indistinguishable from padding, and
// such a table may decode to spurious trailing symbols.
func WithLegacyTable() Option {
	return func(c *Config) {
		c.LegacyTable = true
	}
}

// WithCodeCache keeps an LRU cache of the n most recently built code tables,
// keyed by frequency table. Compressing many inputs with identical frequency
// distributions then skips tree construction.
func WithCodeCache(n int) Option {
	return func(c *Config) {
		c.CacheSize = n
	}
}

// Encoder compresses inputs, optionally reusing cached code tables.
type Encoder struct {
	config Config
	cache  *lru.Cache[string, *huffman.Code]
}

// NewEncoder creates a new encoder with the given options.
func NewEncoder(opts ...Option) *Encoder {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &Encoder{config: cfg}
	if cfg.CacheSize > 0 {
		if cache, err := lru.New[string, *huffman.Code](cfg.CacheSize); err == nil {
			e.cache = cache
		}
	}
	return e
}

// freqKey serializes a frequency table into a cache key. The symbol byte
// followed by its uvarint count is uniquely parseable, so equal keys imply
// equal tables.
func freqKey(freqs *huffman.FreqTable) string {
	key := make([]byte, 0, 128)
	for i, count := range freqs {
		if count == 0 {
			continue
		}
		key = append(key, byte(i))
		key = binary.AppendUvarint(key, count)
	}
	return string(key)
}

func (e *Encoder) codeFor(freqs *huffman.FreqTable) (*huffman.Code, error) {
	var key string
	if e.cache != nil {
		key = freqKey(freqs)
		if code, ok := e.cache.Get(key); ok {
			return code, nil
		}
	}
	root, err := huffman.BuildTree(freqs)
	if err != nil {
		return nil, err
	}
	code, err := huffman.NewCode(root)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Add(key, code)
	}
	return code, nil
}

// Compress encodes input and returns the packed byte stream together with
// the code table artifact needed to decode it. Empty input is valid and
// yields an empty packed stream with a degenerate single-symbol table.
func (e *Encoder) Compress(input []byte) (packed, table []byte, err error) {
	freqs := huffman.CountFrequencies(input)
	code, err := e.codeFor(freqs)
	if err != nil {
		return nil, nil, err
	}

	w := bitio.NewWriter(len(input)/2 + 1)
	for i, b := range input {
		word, ok := code.Lookup(b)
		if !ok {
			return nil, nil, fmt.Errorf("no codeword for symbol %q at offset %d", b, i)
		}
		w.WriteBits(word.Bits, word.Len)
	}

	table = appendCodeTable(nil, code, w.BitsWritten(), e.config.LegacyTable)
	return w.Bytes(), table, nil
}

// CompressArchive compresses input into a single-stream Archive binding the
// packed bytes and the code table artifact together.
func (e *Encoder) CompressArchive(input []byte) (*Archive, error) {
	packed, table, err := e.Compress(input)
	if err != nil {
		return nil, err
	}
	return &Archive{Packed: packed, Table: table}, nil
}

// Compress encodes input with a fresh default Encoder.
func Compress(input []byte) (packed, table []byte, err error) {
	return NewEncoder().Compress(input)
}

// Decompress expands a packed byte stream using its code table artifact and
// returns the original input exactly.
func Decompress(packed, table []byte) ([]byte, error) {
	parsed, err := parseCodeTable(table)
	if err != nil {
		return nil, err
	}
	return decode(packed, parsed)
}

// decode walks the codeword trie bit by bit, emitting a symbol at every
// leaf and restarting from the root. With a recorded bit length it stops
// there and treats the remainder as padding; otherwise it accepts only an
// all-zero partial tail of fewer than 8 bits past the last full codeword.
func decode(packed []byte, table *codeTable) ([]byte, error) {
	if table.hasBitLen {
		if want := (table.bitLen + 7) / 8; want != uint64(len(packed)) {
			return nil, fmt.Errorf("%w: table records %d bits but stream has %d bytes",
				ErrLengthMismatch, table.bitLen, len(packed))
		}
	}

	r := bitio.NewReader(packed)
	out := make([]byte, 0, len(packed)*2)
	node := table.root
	pending := 0
	zeros := true
	for {
		if table.hasBitLen && r.BitsRead() == table.bitLen {
			break
		}
		bit, ok := r.ReadBit()
		if !ok {
			break
		}
		if bit == 0 {
			node = node.left
		} else {
			node = node.right
			zeros = false
		}
		pending++
		if node == nil {
			return nil, fmt.Errorf("%w at bit %d", ErrUnmatchedBits, r.BitsRead())
		}
		if node.leaf {
			out = append(out, node.symbol)
			node = table.root
			pending = 0
			zeros = true
		}
	}

	if pending > 0 {
		if table.hasBitLen {
			return nil, fmt.Errorf("%w: stream ends mid-codeword at recorded bit length %d",
				ErrUnmatchedBits, table.bitLen)
		}
		if !zeros || pending >= 8 {
			return nil, fmt.Errorf("%w: %d trailing bits match no codeword", ErrUnmatchedBits, pending)
		}
	}
	return out, nil
}
