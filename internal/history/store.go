// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexflint/go-filemutex"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// DefaultFlushInterval is the default flush_interval,
// grounded on pkg/filestore/blockstore.go's DefaultFlushTime shape (a
// package constant consumed by a background flusher loop).
const DefaultFlushInterval = 30 * time.Second

// DefaultRetentionBytes is the default total-byte-cap retention policy
// (default 64 MiB).
const DefaultRetentionBytes = 64 * 1024 * 1024

var warningCount = &atomic.Int32{}
var flushErrorCount = &atomic.Int32{}

// FlushStats mirrors the observability FileStore.FlushCache returns, so
// callers/tests can assert on flush outcomes without parsing log output.
type FlushStats struct {
	RecordsWritten int
	BytesWritten   int64
}

// Stats reports the running totals the flusher and retention sweep have
// accumulated since process start, for the shutdown log line.
type Stats struct {
	Warnings    int32
	FlushErrors int32
}

// Stats returns the current warning/flush-error counters.
func (s *Store) Stats() Stats {
	return Stats{
		Warnings:    warningCount.Load(),
		FlushErrors: flushErrorCount.Load(),
	}
}

// Store owns one history directory: the append buffer, the flush worker,
// retention, and the single-instance directory lock.
type Store struct {
	dir          string
	tickPeriodMs uint32
	schemaHash   uint64
	retentionCap int64

	mu     sync.Mutex
	buffer []Record

	lock *filemutex.FileMutex

	stopFlush atomic.Bool
}

// Open acquires the directory lock, ensures dir exists, and returns a
// Store ready to buffer records. Exactly one Zenith process may hold a
// given history directory at a time (single
// instance), the same concern pkg/wavebase.AcquireWaveLock solves with a
// raw unix.Flock — this uses the cross-platform filemutex library
// waveterm itself already depends on.
func Open(dir string, tickPeriodMs uint32, schemaHash uint64, retentionCap int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("history: cannot create %q: %w", dir, err)
	}
	lockPath := filepath.Join(dir, ".zenith.lock")
	fm, err := filemutex.New(lockPath)
	if err != nil {
		return nil, fmt.Errorf("history: cannot create lock file: %w", err)
	}
	if err := fm.TryLock(); err != nil {
		return nil, fmt.Errorf("history: another zenith instance holds %q: %w", dir, err)
	}
	if retentionCap <= 0 {
		retentionCap = DefaultRetentionBytes
	}
	return &Store{
		dir:          dir,
		tickPeriodMs: tickPeriodMs,
		schemaHash:   schemaHash,
		retentionCap: retentionCap,
		lock:         fm,
	}, nil
}

// Close stops the flusher loop and releases the directory lock. Callers
// should Flush before Close.
func (s *Store) Close() error {
	s.StopFlusher()
	if s.lock != nil {
		return s.lock.Close()
	}
	return nil
}

// Append buffers one record for the next flush. Never blocks on IO.
func (s *Store) Append(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = append(s.buffer, rec)
}

// segmentFilename returns a timestamp-monotone filename (
// "<unix_millis>.seg").
func segmentFilename(firstTickWallMs int64) string {
	return fmt.Sprintf("%d.seg", firstTickWallMs)
}

// Flush writes the current buffer to a new segment file and clears it.
// Best-effort: an IO failure is logged and the buffer is retained for the
// next interval, matching the write policy and the
// FileStore.FlushCache "log and keep going" shape.
func (s *Store) Flush(ctx context.Context) (FlushStats, error) {
	s.mu.Lock()
	pending := s.buffer
	s.mu.Unlock()
	if len(pending) == 0 {
		return FlushStats{}, nil
	}

	name := segmentFilename(pending[0].WallClock)
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		flushErrorCount.Add(1)
		log.Printf("[history] flush failed, will retry next interval: %v\n", err)
		return FlushStats{}, err
	}
	defer f.Close()

	if err := writeSegment(f, s.tickPeriodMs, s.schemaHash, pending); err != nil {
		flushErrorCount.Add(1)
		log.Printf("[history] segment write failed, will retry next interval: %v\n", err)
		return FlushStats{}, err
	}

	s.mu.Lock()
	// Only drop the records we actually flushed; Append may have grown
	// the buffer concurrently while the write was in flight.
	if len(s.buffer) >= len(pending) {
		s.buffer = s.buffer[len(pending):]
	} else {
		s.buffer = nil
	}
	s.mu.Unlock()

	size, _ := segmentSize(path)
	if err := s.enforceRetention(); err != nil {
		log.Printf("[history] retention sweep error: %v\n", err)
	}
	return FlushStats{RecordsWritten: len(pending), BytesWritten: size}, nil
}

// enforceRetention deletes the oldest segments until the directory's total
// size is under the configured byte cap. The newest segment is always kept,
// even when it alone exceeds the cap.
func (s *Store) enforceRetention() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	type seg struct {
		path string
		size int64
		ts   int64
	}
	var segs []seg
	var total int64
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".seg" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		var ts int64
		fmt.Sscanf(e.Name(), "%d.seg", &ts)
		segs = append(segs, seg{path: filepath.Join(s.dir, e.Name()), size: info.Size(), ts: ts})
		total += info.Size()
	}
	if total <= s.retentionCap {
		return nil
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].ts < segs[j].ts })
	for _, sg := range segs[:len(segs)-1] {
		if total <= s.retentionCap {
			break
		}
		if err := os.Remove(sg.path); err != nil {
			warningCount.Add(1)
			log.Printf("[history] could not evict old segment %s: %v\n", sg.path, err)
			continue
		}
		total -= sg.size
	}
	return nil
}

// Load scans the directory in timestamp order and returns every record
// from segments whose format_version and schema_hash match this Store's
// Segments with a mismatched schema_hash are
// left on disk, logged, and skipped — never deleted.
func (s *Store) Load(ctx context.Context) ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".seg" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names) // unix_millis prefix sorts lexicographically == chronologically

	var all []Record
	for _, name := range names {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}
		path := filepath.Join(s.dir, name)
		f, err := os.Open(path)
		if err != nil {
			log.Printf("[history] skipping unreadable segment %s: %v\n", name, err)
			continue
		}
		_, records, err := readSegment(f, s.schemaHash)
		f.Close()
		if err == ErrSchemaMismatch {
			log.Printf("[history] skipping segment %s: schema_hash mismatch\n", name)
			continue
		}
		if err != nil {
			log.Printf("[history] skipping corrupt segment %s: %v\n", name, err)
			continue
		}
		all = append(all, records...)
	}
	return all, nil
}

// RunFlusher loops Flush every interval (DefaultFlushInterval when interval
// <= 0) until ctx is cancelled, performing one final flush before
// returning; after StopFlusher it returns at its next iteration without a
// final flush — grounded on FileStore.runFlusher's panic-recover-and-loop
// shape, with a per-Store stopFlush flag alongside context cancellation.
func (s *Store) RunFlusher(ctx context.Context, interval time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[history] panic in flusher: %v\n%s\n", r, debug.Stack())
		}
	}()
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if s.stopFlush.Load() {
			return
		}
		select {
		case <-ctx.Done():
			if _, err := s.Flush(context.Background()); err != nil {
				log.Printf("[history] final flush on shutdown failed: %v\n", err)
			}
			return
		case <-ticker.C:
			if _, err := s.Flush(ctx); err != nil {
				log.Printf("[history] periodic flush failed: %v\n", err)
			}
		}
	}
}

// StopFlusher asks a running RunFlusher loop to exit at its next
// iteration, without requiring the caller's ctx to be cancelled.
func (s *Store) StopFlusher() {
	s.stopFlush.Store(true)
}

// ComputeSchemaHash hashes the ordered list of metric ids into a stable
// uint64: deterministic
// across runs of the same build, and changes whenever the metric id set or
// order changes. Grounded on waveterm's existing golang.org/x/crypto use
// (blake2b is already in its dependency graph via other hashing call sites).
func ComputeSchemaHash(metricIDs []string) uint64 {
	h, _ := blake2b.New256(nil)
	for _, id := range metricIDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(sum[i])
	}
	return v
}

// NewRunID returns a fresh per-process run identifier, stamped on every
// Snapshot's RunID field (log lines do not carry it), generated with
// google/uuid the same way the rest of the corpus mints request/session
// identifiers.
func NewRunID() string {
	return uuid.NewString()
}
