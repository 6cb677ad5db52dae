package huffpress

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	archiveMagic   = "HPRS"
	archiveVersion = uint16(1)

	stageCodeTable = "code_table"
	stagePayload   = "payload"

	// stagePayloadParamMSBZeroPad marks MSB-first bit packing with a
	// zero-padded final byte, the only packing this version produces.
	stagePayloadParamMSBZeroPad = uint8(1)

	maxArchiveStages     = 64
	maxStagePayloadBytes = 1 << 30 // 1 GiB
)

// Wire format (version 1):
//
//	magic[4] = "HPRS"
//	version  = uint16 little-endian
//	stageCnt = uint16 little-endian
//	repeat stageCnt times:
//	  nameLen  = uint8
//	  paramLen = uint16 little-endian
//	  dataLen  = uint32 little-endian
//	  name     = nameLen bytes
//	  params   = paramLen bytes
//	  payload  = dataLen bytes
//
// Required stage names:
//
//	code_table, payload
//
// Unknown stages are skipped via dataLen framing.
type wireStageHeader struct {
	name     string
	paramLen uint16
	dataLen  uint32
}

// Archive binds a packed byte stream and its code table artifact into one
// self-describing stream. The raw two-artifact form has no magic, version,
// or length framing; the archive supplies all three.
type Archive struct {
	Packed []byte // packed bit stream, MSB-first, final byte zero-padded
	Table  []byte // code table artifact text, including the #bits header
}

// Decompress expands the archive back to the original input.
func (a *Archive) Decompress() ([]byte, error) {
	return Decompress(a.Packed, a.Table)
}

func writeBytes(w io.Writer, b []byte) (int64, error) {
	n, err := w.Write(b)
	if err != nil {
		return int64(n), err
	}
	if n != len(b) {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

func writeStage(w io.Writer, name string, params []byte, payload []byte) (int64, error) {
	if len(name) == 0 || len(name) > 255 {
		return 0, fmt.Errorf("invalid stage name length: %d", len(name))
	}
	if len(payload) > maxStagePayloadBytes {
		return 0, fmt.Errorf("stage payload too large for %q: %d", name, len(payload))
	}

	var total int64

	if err := binary.Write(w, binary.LittleEndian, uint8(len(name))); err != nil {
		return total, err
	}
	total++

	if err := binary.Write(w, binary.LittleEndian, uint16(len(params))); err != nil {
		return total, err
	}
	total += 2

	if err := binary.Write(w, binary.LittleEndian, uint32(len(payload))); err != nil {
		return total, err
	}
	total += 4

	n, err := writeBytes(w, []byte(name))
	total += n
	if err != nil {
		return total, err
	}

	n, err = writeBytes(w, params)
	total += n
	if err != nil {
		return total, err
	}

	n, err = writeBytes(w, payload)
	total += n
	return total, err
}

func readStageHeader(r io.Reader) (wireStageHeader, int64, error) {
	var total int64
	var nameLen uint8
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return wireStageHeader{}, total, err
	}
	total++
	if nameLen == 0 {
		return wireStageHeader{}, total, fmt.Errorf("stage name length must be > 0")
	}

	var paramLen uint16
	if err := binary.Read(r, binary.LittleEndian, &paramLen); err != nil {
		return wireStageHeader{}, total, err
	}
	total += 2

	var dataLen uint32
	if err := binary.Read(r, binary.LittleEndian, &dataLen); err != nil {
		return wireStageHeader{}, total, err
	}
	total += 4
	if dataLen > uint32(maxStagePayloadBytes) {
		return wireStageHeader{}, total, fmt.Errorf("stage payload too large: %d", dataLen)
	}

	nameBytes := make([]byte, int(nameLen))
	n, err := io.ReadFull(r, nameBytes)
	total += int64(n)
	if err != nil {
		return wireStageHeader{}, total, err
	}

	return wireStageHeader{
		name:     string(nameBytes),
		paramLen: paramLen,
		dataLen:  dataLen,
	}, total, nil
}

// WriteTo serializes the Archive to an io.Writer.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	stages := []struct {
		name    string
		params  []byte
		payload []byte
	}{
		{
			name:    stageCodeTable,
			params:  nil,
			payload: a.Table,
		},
		{
			name:    stagePayload,
			params:  []byte{stagePayloadParamMSBZeroPad},
			payload: a.Packed,
		},
	}

	var total int64
	n, err := writeBytes(w, []byte(archiveMagic))
	total += n
	if err != nil {
		return total, err
	}

	if err := binary.Write(w, binary.LittleEndian, archiveVersion); err != nil {
		return total, err
	}
	total += 2

	if err := binary.Write(w, binary.LittleEndian, uint16(len(stages))); err != nil {
		return total, err
	}
	total += 2

	for _, stage := range stages {
		n, err := writeStage(w, stage.name, stage.params, stage.payload)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadFrom deserializes an Archive from an io.Reader.
func (a *Archive) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	var magic [4]byte
	n, err := io.ReadFull(r, magic[:])
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("read archive magic: %w", err)
	}
	if string(magic[:]) != archiveMagic {
		return total, fmt.Errorf("invalid archive magic: %q", string(magic[:]))
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return total, fmt.Errorf("read archive version: %w", err)
	}
	total += 2
	if version != archiveVersion {
		return total, fmt.Errorf("unsupported archive version: %d", version)
	}

	var stageCount uint16
	if err := binary.Read(r, binary.LittleEndian, &stageCount); err != nil {
		return total, fmt.Errorf("read stage count: %w", err)
	}
	total += 2
	if stageCount == 0 || stageCount > maxArchiveStages {
		return total, fmt.Errorf("invalid stage count: %d", stageCount)
	}

	var tmp Archive
	seenStages := make(map[string]bool, stageCount)

	for i := 0; i < int(stageCount); i++ {
		headerOffset := total
		header, n, err := readStageHeader(r)
		total += n
		if err != nil {
			return total, fmt.Errorf("read stage header at offset %d (stage index %d): %w", headerOffset, i, err)
		}
		if seenStages[header.name] {
			return total, fmt.Errorf("duplicate stage %q at stage index %d", header.name, i)
		}

		params := make([]byte, int(header.paramLen))
		nParams, err := io.ReadFull(r, params)
		total += int64(nParams)
		if err != nil {
			return total, fmt.Errorf("read stage %q params (stage index %d): %w", header.name, i, err)
		}

		switch header.name {
		case stageCodeTable, stagePayload:
			payload := make([]byte, int(header.dataLen))
			nPayload, err := io.ReadFull(r, payload)
			total += int64(nPayload)
			if err != nil {
				return total, fmt.Errorf("read stage %q payload (stage index %d): %w", header.name, i, err)
			}

			switch header.name {
			case stageCodeTable:
				if len(params) != 0 {
					return total, fmt.Errorf("invalid %s params: %v", stageCodeTable, params)
				}
				tmp.Table = payload
			case stagePayload:
				if len(params) != 1 || params[0] != stagePayloadParamMSBZeroPad {
					return total, fmt.Errorf("invalid %s params: %v", stagePayload, params)
				}
				tmp.Packed = payload
			}
			seenStages[header.name] = true

		default:
			skipped, err := io.CopyN(io.Discard, r, int64(header.dataLen))
			total += skipped
			if err != nil {
				return total, fmt.Errorf("skip unknown stage %q (stage index %d): %w", header.name, i, err)
			}
		}
	}

	for _, stageName := range []string{stageCodeTable, stagePayload} {
		if !seenStages[stageName] {
			return total, fmt.Errorf("missing required stage %q", stageName)
		}
	}
	if _, err := parseCodeTable(tmp.Table); err != nil {
		return total, fmt.Errorf("invalid archive code table: %w", err)
	}

	*a = tmp
	return total, nil
}
