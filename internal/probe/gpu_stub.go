// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"

	"github.com/zenith-tui/zenith/internal/zmodel"
)

// sampleGPUsStub is the GPU probe seam. No NVML Go binding appears
// anywhere in the retrieval pack, so this build always returns an empty
// GPU list and no error (the "GPU disabled" case, not a
// KindProbeUnavailable error) instead of wiring a
// fabricated dependency. A real NVML binding can replace this single
// function without touching the Sampler, Store, or renderer.
func sampleGPUsStub(ctx context.Context) ([]zmodel.GPUInfo, error) {
	return nil, nil
}
