// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

// Package probe defines the stateless metric-query contract the Sampler
// composes every tick. Implementations are platform
// specific; the core only ever sees this interface, selected once at
// startup — the "capability record" design pattern.
package probe

import (
	"context"
	"errors"
	"time"

	"github.com/zenith-tui/zenith/internal/zmodel"
)

// ErrorKind classifies why a probe call failed.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindProbeUnavailable
	KindPermission
	KindNotFound
	KindTransient
)

// Error wraps a probe failure with its ErrorKind so the Sampler can
// decide whether to grey out a section or just carry the last value.
type Error struct {
	Kind   ErrorKind
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Source
	}
	return e.Source + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind ErrorKind, source string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Source: source, Err: err}
}

// KindOf extracts the ErrorKind from err, defaulting to KindTransient for
// errors the probe layer didn't classify itself.
func KindOf(err error) ErrorKind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	if err == nil {
		return KindNone
	}
	return KindTransient
}

// Capabilities is the full set of queries the core depends on. Every
// method is a pure, one-shot query: no method retains state across
// calls (that ownership lives in the Sampler/Registry).
type Capabilities interface {
	SampleCPU(ctx context.Context) (perCore []float64, aggregate float64, loadAvg [3]float64, err error)
	SampleMemory(ctx context.Context) (MemInfo, error)
	ListNetworkInterfaces(ctx context.Context) ([]zmodel.NicCounters, error)
	ListMounts(ctx context.Context) ([]zmodel.MountCounters, error)
	SampleBattery(ctx context.Context) (*zmodel.Battery, error)
	SampleGPUs(ctx context.Context) ([]zmodel.GPUInfo, error)
	SampleProcesses(ctx context.Context) ([]zmodel.ProcessSample, error)
	SendSignal(pid int32, sig int) error
	Renice(pid int32, nice int) error
	ResolveUsername(uid uint32) (string, bool)
}

// MemInfo mirrors the C1 contract's MemInfo return type.
type MemInfo struct {
	Total     uint64
	Used      uint64
	Available uint64
	SwapUsed  uint64
}

// defaultTimeout is declared for probe calls that hit the OS, but no call
// applies it: probe invocations carry only the caller's ctx and have no
// per-call timeout.
const defaultTimeout = 5 * time.Second
