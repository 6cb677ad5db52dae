package bitio

import (
	"bytes"
	"testing"
)

// Codewords "0", "10", "11" over the sequence AABC pack to the bit pattern
// 0 0 10 11, i.e. a single byte 00101100 with two zero pad bits.
func TestPackAABC(t *testing.T) {
	w := NewWriter(1)
	w.WriteBits(0b0, 1)  // A
	w.WriteBits(0b0, 1)  // A
	w.WriteBits(0b10, 2) // B
	w.WriteBits(0b11, 2) // C

	if got := w.BitsWritten(); got != 6 {
		t.Errorf("bits written: expected 6, got %d", got)
	}
	if got := w.Bytes(); !bytes.Equal(got, []byte{0b00101100}) {
		t.Errorf("packed bytes: expected [0x2c], got %x", got)
	}
}

func TestWriteBitsAcrossByteBoundary(t *testing.T) {
	w := NewWriter(2)
	w.WriteBits(0xFF, 8)
	w.WriteBits(0b1, 1)

	if got := w.BitsWritten(); got != 9 {
		t.Errorf("bits written: expected 9, got %d", got)
	}
	if got := w.Bytes(); !bytes.Equal(got, []byte{0xFF, 0x80}) {
		t.Errorf("packed bytes: expected [ff 80], got %x", got)
	}
}

func TestWriteBitsFullWidth(t *testing.T) {
	w := NewWriter(8)
	w.WriteBits(0xAAAA_AAAA_AAAA_AAAA, 64)

	want := bytes.Repeat([]byte{0xAA}, 8)
	if got := w.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("packed bytes: expected %x, got %x", want, got)
	}
}

func TestWriterEmpty(t *testing.T) {
	w := NewWriter(0)
	if got := w.Bytes(); len(got) != 0 {
		t.Errorf("expected empty output, got %x", got)
	}
	if got := w.BitsWritten(); got != 0 {
		t.Errorf("bits written: expected 0, got %d", got)
	}
}

func TestReaderMSBFirst(t *testing.T) {
	r := NewReader([]byte{0b10110010})

	want := []byte{1, 0, 1, 1, 0, 0, 1, 0}
	for i, wantBit := range want {
		bit, ok := r.ReadBit()
		if !ok {
			t.Fatalf("bit %d: unexpected end of stream", i)
		}
		if bit != wantBit {
			t.Errorf("bit %d: expected %d, got %d", i, wantBit, bit)
		}
	}
	if _, ok := r.ReadBit(); ok {
		t.Error("expected end of stream after 8 bits")
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter(16)
	pattern := []struct {
		bits uint64
		n    uint8
	}{
		{0b1, 1},
		{0b0110, 4},
		{0x1FF, 9},
		{0b0000001, 7},
		{0xDEADBEEF, 32},
	}
	var wantBits []byte
	for _, p := range pattern {
		w.WriteBits(p.bits, p.n)
		for i := p.n; i > 0; i-- {
			wantBits = append(wantBits, byte(p.bits>>(i-1)&1))
		}
	}

	r := NewReader(w.Bytes())
	for i, want := range wantBits {
		bit, ok := r.ReadBit()
		if !ok {
			t.Fatalf("bit %d: unexpected end of stream", i)
		}
		if bit != want {
			t.Errorf("bit %d: expected %d, got %d", i, want, bit)
		}
	}
	if got := r.BitsRead(); got != uint64(len(wantBits)) {
		t.Errorf("bits read: expected %d, got %d", len(wantBits), got)
	}

	// Only zero pad bits may remain.
	for r.Remaining() > 0 {
		bit, _ := r.ReadBit()
		if bit != 0 {
			t.Error("pad bits must be zero")
		}
	}
}

func TestReaderEmpty(t *testing.T) {
	r := NewReader(nil)
	if _, ok := r.ReadBit(); ok {
		t.Error("expected no bits from empty reader")
	}
	if got := r.Remaining(); got != 0 {
		t.Errorf("remaining: expected 0, got %d", got)
	}
}
