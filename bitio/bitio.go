// Package bitio packs and unpacks bit sequences into byte slices,
// most-significant-bit first. The final byte of a packed stream is
// zero-padded on its low bits when the bit count is not a multiple of 8.
package bitio

// Writer accumulates bits MSB-first and flushes whole bytes into its buffer.
// The zero value is ready to use.
type Writer struct {
	buf   []byte
	accum uint64 // pending bits, left-aligned at bit 63
	nbits uint   // number of pending bits; always < 8 between calls
	total uint64 // bits written so far, padding excluded
}

// NewWriter returns a Writer with capacity for roughly nbytes of output.
func NewWriter(nbytes int) *Writer {
	return &Writer{buf: make([]byte, 0, nbytes)}
}

// WriteBits appends the low n bits of bits, most significant first.
// n may be up to 64.
func (w *Writer) WriteBits(bits uint64, n uint8) {
	if n > 32 {
		w.write32(uint32(bits>>32), uint(n)-32)
		w.write32(uint32(bits), 32)
		return
	}
	w.write32(uint32(bits), uint(n))
}

func (w *Writer) write32(bits uint32, n uint) {
	if n == 0 {
		return
	}
	w.accum |= (uint64(bits) & (1<<n - 1)) << (64 - n - w.nbits)
	w.nbits += n
	w.total += uint64(n)
	for w.nbits >= 8 {
		w.buf = append(w.buf, byte(w.accum>>56))
		w.accum <<= 8
		w.nbits -= 8
	}
}

// BitsWritten returns the number of bits written, not counting padding.
func (w *Writer) BitsWritten() uint64 {
	return w.total
}

// Bytes flushes any partial byte, zero-padding its trailing bits, and
// returns the packed stream.
func (w *Writer) Bytes() []byte {
	if w.nbits > 0 {
		w.buf = append(w.buf, byte(w.accum>>56))
		w.accum = 0
		w.nbits = 0
	}
	return w.buf
}

// Reader reads a packed stream back one bit at a time, MSB-first within
// each byte, reconstituting the same logical sequence the Writer produced
// including any trailing pad bits.
type Reader struct {
	data []byte
	pos  uint64 // bit index of the next bit to read
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBit returns the next bit (0 or 1) and false once the stream is
// exhausted.
func (r *Reader) ReadBit() (byte, bool) {
	if r.pos >= uint64(len(r.data))*8 {
		return 0, false
	}
	b := r.data[r.pos>>3] >> (7 - r.pos&7) & 1
	r.pos++
	return b, true
}

// BitsRead returns the number of bits consumed so far.
func (r *Reader) BitsRead() uint64 {
	return r.pos
}

// Remaining returns the number of unread bits, pad bits included.
func (r *Reader) Remaining() uint64 {
	return uint64(len(r.data))*8 - r.pos
}
