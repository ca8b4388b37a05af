// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fsutil

import (
	"context"
	"fmt"
	"io"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/paramlab/internal/log"
)

// WriteAtomic copies r into path. Readers of path see either the previous
// content or the complete new file, never a partial write.
func WriteAtomic(ctx context.Context, path string, r io.Reader) (int64, error) {
	logger := log.WithComponentFromContext(ctx, "fsutil")

	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return 0, fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		// No-op once the file was committed.
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("cleanup pending file")
		}
	}()

	n, err := io.Copy(pendingFile, r)
	if err != nil {
		return n, fmt.Errorf("write data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return n, fmt.Errorf("atomically replace file: %w", err)
	}
	return n, nil
}
