package sqlite_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/realronaldrump/workout-app-sub002/internal/program"
	"github.com/realronaldrump/workout-app-sub002/internal/sqlite"
	"github.com/realronaldrump/workout-app-sub002/internal/testhelpers"
)

func newBlobStore(t *testing.T, url string) *sqlite.BlobStore {
	t.Helper()
	db, err := sqlite.NewDatabase(t.Context(), url, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if err != nil {
		t.Fatalf("new database: %v", err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})
	return sqlite.NewBlobStore(db)
}

func TestBlobStore_GetMissing(t *testing.T) {
	t.Parallel()
	store := newBlobStore(t, ":memory:")
	_, _, err := store.Get(t.Context(), "missing")
	if !errors.Is(err, program.ErrNotFound) {
		t.Errorf("Get missing key: err = %v, want ErrNotFound", err)
	}
}

func TestBlobStore_RevisionGuard(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	store := newBlobStore(t, ":memory:")

	steps := []struct {
		revision     int64
		data         string
		wantData     string
		wantRevision int64
	}{
		{revision: 1, data: "one", wantData: "one", wantRevision: 1},
		{revision: 7, data: "seven", wantData: "seven", wantRevision: 7},
		{revision: 5, data: "five", wantData: "seven", wantRevision: 7},
		{revision: 7, data: "seven again", wantData: "seven", wantRevision: 7},
		{revision: 8, data: "eight", wantData: "eight", wantRevision: 8},
	}
	for _, step := range steps {
		t.Run(fmt.Sprintf("put revision %d", step.revision), func(t *testing.T) {
			if err := store.Put(ctx, program.SnapshotKey, step.revision, []byte(step.data)); err != nil {
				t.Fatalf("put: %v", err)
			}
			data, revision, err := store.Get(ctx, program.SnapshotKey)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(data) != step.wantData || revision != step.wantRevision {
				t.Errorf("got %q at %d, want %q at %d", data, revision, step.wantData, step.wantRevision)
			}
		})
	}
}

func TestBlobStore_KeysAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	store := newBlobStore(t, ":memory:")

	if err := store.Put(ctx, "a", 10, []byte("a10")); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if err := store.Put(ctx, "b", 1, []byte("b1")); err != nil {
		t.Fatalf("put b: %v", err)
	}
	data, revision, err := store.Get(ctx, "b")
	if err != nil || string(data) != "b1" || revision != 1 {
		t.Errorf("Get b = %q, %d, %v", data, revision, err)
	}
}

func TestBlobStore_ConcurrentPuts(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	store := newBlobStore(t, ":memory:")

	const writers = 20
	var wg sync.WaitGroup
	for i := range writers {
		wg.Go(func() {
			rev := int64(i + 1)
			if err := store.Put(ctx, program.SnapshotKey, rev, fmt.Appendf(nil, "rev %d", rev)); err != nil {
				t.Errorf("put %d: %v", rev, err)
			}
		})
	}
	wg.Wait()

	data, revision, err := store.Get(ctx, program.SnapshotKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if revision != writers || string(data) != fmt.Sprintf("rev %d", writers) {
		t.Errorf("got %q at %d, want highest revision %d", data, revision, writers)
	}
}

func TestBlobStore_SurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	url := filepath.Join(t.TempDir(), "program.sqlite3")

	first := newBlobStore(t, url)
	if err := first.Put(ctx, program.SnapshotKey, 3, []byte("persisted")); err != nil {
		t.Fatalf("put: %v", err)
	}

	second := newBlobStore(t, url)
	data, revision, err := second.Get(ctx, program.SnapshotKey)
	if err != nil || string(data) != "persisted" || revision != 3 {
		t.Errorf("after reopen Get = %q, %d, %v", data, revision, err)
	}
}

func TestBlobStore_BacksPersister(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	store := newBlobStore(t, ":memory:")
	persister := program.NewPersister(store, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	for i := range 10 {
		persister.Schedule(ctx, fmt.Appendf(nil, "snapshot %d", i+1))
	}
	persister.Wait()

	data, found, err := program.NewPersister(store, testhelpers.NewLogger(testhelpers.NewWriter(t))).Load(ctx)
	if err != nil || !found {
		t.Fatalf("load: found %v err %v", found, err)
	}
	if string(data) != "snapshot 10" {
		t.Errorf("loaded %q, want latest snapshot", data)
	}
}
