package flightrecorder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/realronaldrump/workout-app-sub002/internal/testhelpers"
)

func newRecorder(t *testing.T, dir string) *Recorder {
	t.Helper()
	r, err := New(Config{
		Logger:          testhelpers.NewLogger(testhelpers.NewWriter(t)),
		TracesDirectory: dir,
		Cooldown:        time.Minute,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err = r.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { r.Stop(t.Context()) })
	return r
}

func traceFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read traces directory: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "traces", "nested")
	newRecorder(t, dir)
	if stat, err := os.Stat(dir); err != nil || !stat.IsDir() {
		t.Errorf("traces directory not created: %v", err)
	}
}

func TestNew_RejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := New(Config{Logger: testhelpers.NewLogger(testhelpers.NewWriter(t)), TracesDirectory: path})
	if err == nil {
		t.Error("expected error for a file path")
	}
}

func TestRecorder_CaptureRespectsCooldown(t *testing.T) {
	dir := t.TempDir()
	r := newRecorder(t, dir)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	path, ok := r.Capture(t.Context(), "today")
	if !ok || !strings.HasPrefix(filepath.Base(path), "today-20240101-120000") {
		t.Fatalf("first capture = %q, %v", path, ok)
	}
	clock = clock.Add(30 * time.Second)
	if _, ok = r.Capture(t.Context(), "today"); ok {
		t.Error("capture within cooldown should be skipped")
	}
	clock = clock.Add(time.Minute)
	if _, ok = r.Capture(t.Context(), "today"); !ok {
		t.Error("capture after cooldown should succeed")
	}
	if got := traceFiles(t, dir); len(got) != 2 {
		t.Errorf("trace files = %v, want 2", got)
	}
}

func TestRecorder_Watch(t *testing.T) {
	dir := t.TempDir()
	r := newRecorder(t, dir)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	errFn := errors.New("boom")

	err := r.Watch(t.Context(), "fast", time.Second, func() error {
		clock = clock.Add(10 * time.Millisecond)
		return errFn
	})
	if !errors.Is(err, errFn) {
		t.Errorf("Watch err = %v, want %v", err, errFn)
	}
	if got := traceFiles(t, dir); len(got) != 0 {
		t.Errorf("fast operation wrote traces %v", got)
	}

	if err = r.Watch(t.Context(), "slow", time.Second, func() error {
		clock = clock.Add(2 * time.Second)
		return nil
	}); err != nil {
		t.Errorf("Watch err = %v", err)
	}
	got := traceFiles(t, dir)
	if len(got) != 1 || !strings.HasPrefix(got[0], "slow-") {
		t.Errorf("trace files = %v, want one slow-*.trace", got)
	}
}
