package huffpress

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func buildArchive(t *testing.T, input []byte) []byte {
	t.Helper()
	archive, err := NewEncoder().CompressArchive(input)
	if err != nil {
		t.Fatalf("CompressArchive: %v", err)
	}
	var buf bytes.Buffer
	n, err := archive.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Fatalf("WriteTo reported %d bytes, wrote %d", n, buf.Len())
	}
	return buf.Bytes()
}

func TestArchiveRoundTrip(t *testing.T) {
	input := []byte("so much depends\nupon\na red wheel\nbarrow\n")
	data := buildArchive(t, input)

	var loaded Archive
	n, err := loaded.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if n != int64(len(data)) {
		t.Errorf("ReadFrom consumed %d bytes, expected %d", n, len(data))
	}

	output, err := loaded.Decompress()
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(output, input) {
		t.Errorf("round trip mismatch: expected %q, got %q", input, output)
	}
}

func TestArchiveEmptyInput(t *testing.T) {
	data := buildArchive(t, nil)

	var loaded Archive
	if _, err := loaded.ReadFrom(bytes.NewReader(data)); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	output, err := loaded.Decompress()
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(output) != 0 {
		t.Errorf("expected empty output, got %q", output)
	}
}

func TestArchiveBadMagic(t *testing.T) {
	data := buildArchive(t, []byte("payload"))
	copy(data[:4], "NOPE")

	var loaded Archive
	if _, err := loaded.ReadFrom(bytes.NewReader(data)); err == nil {
		t.Error("expected error for bad magic, got nil")
	}
}

func TestArchiveUnsupportedVersion(t *testing.T) {
	data := buildArchive(t, []byte("payload"))
	binary.LittleEndian.PutUint16(data[4:6], 9)

	var loaded Archive
	_, err := loaded.ReadFrom(bytes.NewReader(data))
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("expected version error, got %v", err)
	}
}

func TestArchiveTruncated(t *testing.T) {
	data := buildArchive(t, []byte("truncate me please"))

	var loaded Archive
	if _, err := loaded.ReadFrom(bytes.NewReader(data[:len(data)-3])); err == nil {
		t.Error("expected error for truncated archive, got nil")
	}
}

// Readers must skip stages they do not know, using the length framing.
func TestArchiveUnknownStageSkipped(t *testing.T) {
	input := []byte("forward compatible")
	data := buildArchive(t, input)

	// Bump the stage count and append an extra stage record.
	count := binary.LittleEndian.Uint16(data[6:8])
	binary.LittleEndian.PutUint16(data[6:8], count+1)

	extra := []byte("extra metadata")
	data = append(data, byte(len("comment")))
	data = binary.LittleEndian.AppendUint16(data, 0)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(extra)))
	data = append(data, "comment"...)
	data = append(data, extra...)

	var loaded Archive
	if _, err := loaded.ReadFrom(bytes.NewReader(data)); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	output, err := loaded.Decompress()
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(output, input) {
		t.Errorf("round trip mismatch: expected %q, got %q", input, output)
	}
}

func TestArchiveMissingStage(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(archiveMagic)
	binary.Write(&buf, binary.LittleEndian, archiveVersion)
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	if _, err := writeStage(&buf, stageCodeTable, nil, []byte("a:0\n")); err != nil {
		t.Fatalf("writeStage: %v", err)
	}

	var loaded Archive
	_, err := loaded.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err == nil || !strings.Contains(err.Error(), "missing required stage") {
		t.Errorf("expected missing stage error, got %v", err)
	}
}

func TestArchiveRejectsBrokenTable(t *testing.T) {
	broken := &Archive{Packed: []byte{0x00}, Table: []byte("not a table\n")}
	var buf bytes.Buffer
	if _, err := broken.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	var loaded Archive
	if _, err := loaded.ReadFrom(&buf); err == nil {
		t.Error("expected error for broken code table, got nil")
	}
}
