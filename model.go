package huffpress

import (
	"errors"
	"fmt"

	"github.com/seiflotfy/huffpress/bitio"
	"github.com/seiflotfy/huffpress/huffman"
)

var (
	// ErrUntrainedModel indicates Compress was called before a model was trained.
	ErrUntrainedModel = errors.New("model is not trained")
	// ErrUnknownSymbol indicates an input byte with no codeword in the model.
	ErrUnknownSymbol = errors.New("symbol not present in model")
)

// Model is a reusable trained code table: train once on representative
// sample text, then compress many inputs without rebuilding the tree. Inputs
// may only contain bytes that occurred in the sample (the newline byte is
// always available, since training forces it into the alphabet).
type Model struct {
	config Config
	code   *huffman.Code
}

// NewModel creates an empty model with the provided options.
func NewModel(opts ...Option) *Model {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Model{config: cfg}
}

// TrainModel trains a reusable model from sample text.
func TrainModel(sample []byte, opts ...Option) (*Model, error) {
	m := NewModel(opts...)
	if err := m.Train(sample); err != nil {
		return nil, err
	}
	return m, nil
}

// Train builds the code table for subsequent Compress calls.
func (m *Model) Train(sample []byte) error {
	freqs := huffman.CountFrequencies(sample)
	root, err := huffman.BuildTree(freqs)
	if err != nil {
		return err
	}
	code, err := huffman.NewCode(root)
	if err != nil {
		return err
	}
	m.code = code
	return nil
}

// Trained reports whether the model is ready for Compress.
func (m *Model) Trained() bool {
	return m.code != nil
}

// Compress encodes input with the trained code table and returns the packed
// stream and the code table artifact.
func (m *Model) Compress(input []byte) (packed, table []byte, err error) {
	if m.code == nil {
		return nil, nil, ErrUntrainedModel
	}

	w := bitio.NewWriter(len(input)/2 + 1)
	for i, b := range input {
		word, ok := m.code.Lookup(b)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q at offset %d", ErrUnknownSymbol, b, i)
		}
		w.WriteBits(word.Bits, word.Len)
	}

	table = appendCodeTable(nil, m.code, w.BitsWritten(), m.config.LegacyTable)
	return w.Bytes(), table, nil
}

// CompressArchive compresses input into a single-stream Archive.
func (m *Model) CompressArchive(input []byte) (*Archive, error) {
	packed, table, err := m.Compress(input)
	if err != nil {
		return nil, err
	}
	return &Archive{Packed: packed, Table: table}, nil
}
