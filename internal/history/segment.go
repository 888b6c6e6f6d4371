// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

// Package history implements the append-only, compressed on-disk segment
// store: load-on-startup into the Time-Series Store and flush-on-interval
// from the Sampler, grounded on pkg/filestore/blockstore.go's
// write-cache-then-periodic-flush shape, generalized from its sqlite cache
// table into a length-prefixed gzip segment stream.
package history

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
)

// Magic identifies a segment file; FormatVersion bumps whenever the header
// or the per-record payload shape changes incompatibly.
const (
	Magic         = "ZNTH"
	FormatVersion = uint16(1)
)

// SegmentHeader is the fixed-size preamble written at the start of every
// segment file.
type SegmentHeader struct {
	Magic         [4]byte
	FormatVersion uint16
	TickPeriodMs  uint32
	SchemaHash    uint64
	FirstTickWall int64
	Count         uint32
}

func newHeader(tickPeriodMs uint32, schemaHash uint64, firstTickWall int64) SegmentHeader {
	var h SegmentHeader
	copy(h.Magic[:], Magic)
	h.FormatVersion = FormatVersion
	h.TickPeriodMs = tickPeriodMs
	h.SchemaHash = schemaHash
	h.FirstTickWall = firstTickWall
	return h
}

func writeHeader(w io.Writer, h SegmentHeader) error {
	return binary.Write(w, binary.LittleEndian, h)
}

func readHeader(r io.Reader) (SegmentHeader, error) {
	var h SegmentHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, err
	}
	if string(h.Magic[:]) != Magic {
		return h, fmt.Errorf("history: bad segment magic %q", h.Magic[:])
	}
	return h, nil
}

// Record is the serialisable, flattened subset of a Snapshot the segment
// stream carries: only the scalar metric ids the Time-Series Store tracks
// (process history is never replayed).
type Record struct {
	Tick      int64
	WallClock int64 // unix millis
	Values    map[string]float64
}

// writeSegment gob-encodes records, gzips the payload, and writes
// header+payload to w as one length-prefixed frame the way blockstore.go
// writes its own length-prefixed cache entries.
func writeSegment(w io.Writer, tickPeriodMs uint32, schemaHash uint64, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	var payload bytes.Buffer
	gz := gzip.NewWriter(&payload)
	enc := gob.NewEncoder(gz)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			gz.Close()
			return fmt.Errorf("history: encode record: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("history: close gzip writer: %w", err)
	}

	h := newHeader(tickPeriodMs, schemaHash, records[0].WallClock)
	h.Count = uint32(len(records))
	if err := writeHeader(w, h); err != nil {
		return fmt.Errorf("history: write header: %w", err)
	}
	var payloadLen uint32 = uint32(payload.Len())
	if err := binary.Write(w, binary.LittleEndian, payloadLen); err != nil {
		return fmt.Errorf("history: write payload length: %w", err)
	}
	if _, err := w.Write(payload.Bytes()); err != nil {
		return fmt.Errorf("history: write payload: %w", err)
	}
	return nil
}

// ErrSchemaMismatch signals a segment whose schema_hash doesn't match the
// running build: kept on disk but skipped at load time.
var ErrSchemaMismatch = errors.New("history: segment schema_hash mismatch")

// readSegment reads one segment's header and records. If the header's
// FormatVersion or SchemaHash doesn't match expectations the caller passes,
// it returns ErrSchemaMismatch with the header still populated so the
// caller can log which segment was skipped.
func readSegment(r io.Reader, wantSchemaHash uint64) (SegmentHeader, []Record, error) {
	h, err := readHeader(r)
	if err != nil {
		return h, nil, fmt.Errorf("history: read header: %w", err)
	}
	if h.FormatVersion != FormatVersion || h.SchemaHash != wantSchemaHash {
		return h, nil, ErrSchemaMismatch
	}
	var payloadLen uint32
	if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
		return h, nil, fmt.Errorf("history: read payload length: %w", err)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return h, nil, fmt.Errorf("history: read payload: %w", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return h, nil, fmt.Errorf("history: open gzip reader: %w", err)
	}
	defer gz.Close()

	dec := gob.NewDecoder(gz)
	records := make([]Record, 0, h.Count)
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return h, nil, fmt.Errorf("history: decode record: %w", err)
		}
		records = append(records, rec)
	}
	return h, records, nil
}

// segmentSize stats a file's size on disk for retention accounting.
func segmentSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
