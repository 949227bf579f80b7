package sqlite

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/realronaldrump/workout-app-sub002/internal/errors"
	"github.com/realronaldrump/workout-app-sub002/internal/program"
)

// BlobStore implements [program.BlobStore] on the blobs table.
type BlobStore struct {
	db *Database
}

// NewBlobStore creates a blob store backed by db.
func NewBlobStore(db *Database) *BlobStore {
	return &BlobStore{db: db}
}

// Get returns the blob stored under key and its revision, or [program.ErrNotFound].
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var (
		data     []byte
		revision int64
	)
	err := s.db.ReadOnly.QueryRowContext(ctx,
		`SELECT data, revision FROM blobs WHERE key = ?`, key).Scan(&data, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, program.ErrNotFound
	}
	if err != nil {
		return nil, 0, errors.Wrap(err, "select blob", slog.String("key", key))
	}
	return data, revision, nil
}

// Put stores data under key unless a newer revision is already stored. Writing an older revision is
// not an error; the stored blob is simply left as is.
func (s *BlobStore) Put(ctx context.Context, key string, revision int64, data []byte) error {
	res, err := s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO blobs (key, revision, data, updated_at)
		VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ'))
		ON CONFLICT (key) DO UPDATE SET revision   = excluded.revision,
		                                data       = excluded.data,
		                                updated_at = excluded.updated_at
		WHERE excluded.revision > blobs.revision`, key, revision, data)
	if err != nil {
		return errors.Wrap(err, "upsert blob", slog.String("key", key), slog.Int64("revision", revision))
	}
	if n, rowsErr := res.RowsAffected(); rowsErr == nil && n == 0 {
		s.db.logger.LogAttrs(ctx, slog.LevelDebug, "kept newer stored blob",
			slog.String("key", key), slog.Int64("revision", revision))
	}
	return nil
}
