package program

import (
	"context"
	"log/slog"
	"sync"

	"github.com/realronaldrump/workout-app-sub002/internal/errors"
)

// SnapshotKey is the blob key the store snapshot is persisted under.
const SnapshotKey = "program.snapshot.v1"

// SnapshotSchemaVersion is written into every snapshot for future migrations.
const SnapshotSchemaVersion = 1

// ErrNotFound is returned by a BlobStore when the key has never been written.
var ErrNotFound = errors.NewSentinel("blob not found")

// BlobStore is a durable key-value store. Put must be safe for concurrent use.
type BlobStore interface {
	// Get returns the blob and the revision it was written with, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, int64, error)
	Put(ctx context.Context, key string, revision int64, data []byte) error
}

// snapshot is the persisted form of the store.
type snapshot struct {
	ActivePlan    *ProgramPlan  `json:"activePlan"`
	ArchivedPlans []ProgramPlan `json:"archivedPlans"`
	SchemaVersion int           `json:"schemaVersion"`
}

// Persister writes snapshots in the background. Revisions are minted in call order and a write is
// attempted only if its revision is newer than every write attempted before it, so a slow stale write
// never overwrites a newer one, even when the newer write failed.
type Persister struct {
	blobs  BlobStore
	logger *slog.Logger

	revMu  sync.Mutex
	issued int64

	// writeMu serializes accept so the revision check and the write are atomic.
	writeMu  sync.Mutex
	accepted int64
	// attempted is the highest revision handed to the blob store, whether or not the write succeeded.
	attempted int64

	wg sync.WaitGroup
}

// NewPersister creates a persister writing to blobs.
func NewPersister(blobs BlobStore, logger *slog.Logger) *Persister {
	return &Persister{
		blobs:  blobs,
		logger: logger,
	}
}

// Load reads the last persisted snapshot. Revision numbering resumes after the stored revision.
// found is false when nothing has been persisted yet.
func (p *Persister) Load(ctx context.Context) ([]byte, bool, error) {
	data, revision, err := p.blobs.Get(ctx, SnapshotKey)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "get snapshot", slog.String("key", SnapshotKey))
	}

	p.revMu.Lock()
	p.issued = max(p.issued, revision)
	p.revMu.Unlock()
	p.writeMu.Lock()
	p.accepted = max(p.accepted, revision)
	p.attempted = max(p.attempted, revision)
	p.writeMu.Unlock()

	return data, true, nil
}

// Schedule assigns data the next revision and writes it asynchronously. The write outlives
// cancellation of ctx.
func (p *Persister) Schedule(ctx context.Context, data []byte) int64 {
	p.revMu.Lock()
	p.issued++
	revision := p.issued
	p.revMu.Unlock()

	ctx = context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.accept(ctx, revision, data)
	}()
	return revision
}

// accept writes data unless a revision at least as new has already been attempted.
func (p *Persister) accept(ctx context.Context, revision int64, data []byte) bool {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if revision <= p.attempted {
		p.logger.LogAttrs(ctx, slog.LevelDebug, "discarded stale snapshot write",
			slog.Int64("revision", revision),
			slog.Int64("attempted", p.attempted),
			slog.Int64("accepted", p.accepted))
		return false
	}
	p.attempted = revision
	if err := p.blobs.Put(ctx, SnapshotKey, revision, data); err != nil {
		p.logger.LogAttrs(ctx, slog.LevelError, "persist snapshot",
			slog.Int64("revision", revision), errors.SlogError(err))
		return false
	}
	p.accepted = revision
	return true
}

// Wait blocks until every scheduled write has finished.
func (p *Persister) Wait() {
	p.wg.Wait()
}
