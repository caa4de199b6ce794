package snapshot

import "context"

// snapshotContextKey is the context key for the per-request snapshot.
type snapshotContextKey struct{}

// WithSnapshot stores a snapshot in context for downstream collaborators
// (handlers, exporters, template helpers).
func WithSnapshot(ctx context.Context, snap *Snapshot) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, snapshotContextKey{}, snap)
}

// FromContext returns the snapshot stored in context.
func FromContext(ctx context.Context) (*Snapshot, bool) {
	if ctx == nil {
		return nil, false
	}
	snap, ok := ctx.Value(snapshotContextKey{}).(*Snapshot)
	return snap, ok && snap != nil
}
