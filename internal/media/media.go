// Package media manages derived per-run artifacts such as exported PDFs.
//
// Exports embed snapshot data and carry no staleness signal of their own, so
// every full snapshot invalidation also deletes the run's exports.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Store removes derived artifacts for a run.
type Store interface {
	DeleteRunExports(ctx context.Context, eventSlug string, runNumber int) error
}

// Dir keeps exports on the local filesystem under root/<event>/<run>/.
type Dir struct {
	root string
}

var _ Store = (*Dir)(nil)

// NewDir creates a filesystem-backed export store rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: filepath.Clean(root)}
}

// DeleteRunExports removes every export generated for the run. A run with no
// exports is not an error.
func (d *Dir) DeleteRunExports(_ context.Context, eventSlug string, runNumber int) error {
	if d == nil || d.root == "" {
		return nil
	}
	eventSlug = strings.TrimSpace(eventSlug)
	if eventSlug == "" || runNumber <= 0 {
		return fmt.Errorf("event slug and run number are required")
	}
	dir := filepath.Join(d.root, eventSlug, strconv.Itoa(runNumber))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete run exports: %w", err)
	}
	return nil
}
