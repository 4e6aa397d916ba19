package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/voxgeo/internal/config"
	"github.com/Faultbox/voxgeo/internal/convert"
)

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

// startWatcher runs a watcher over paths and returns the channel of
// handled paths.
func startWatcher(t *testing.T, paths ...string) <-chan string {
	t.Helper()
	w, handled := newWatcher(t, paths...)
	runWatcher(t, w)
	return handled
}

// newWatcher creates a watcher over paths that reports handled paths on
// the returned channel.
func newWatcher(t *testing.T, paths ...string) (*Watcher, <-chan string) {
	t.Helper()

	handled := make(chan string, 16)
	w, err := New(func(ctx context.Context, path string) error {
		handled <- path
		return nil
	}, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			t.Fatalf("Add(%s) failed: %v", p, err)
		}
	}
	return w, handled
}

func runWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run returned %v", err)
		}
	})
}

func expectPath(t *testing.T, handled <-chan string, want string) {
	t.Helper()
	select {
	case got := <-handled:
		if got != want {
			t.Errorf("handled %s, want %s", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", want)
	}
}

func expectNothing(t *testing.T, handled <-chan string) {
	t.Helper()
	select {
	case got := <-handled:
		t.Errorf("unexpected handler call for %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchDirectory(t *testing.T) {
	dir := t.TempDir()
	handled := startWatcher(t, dir)

	model := filepath.Join(dir, "model.obj")
	if err := os.WriteFile(model, []byte(triangleOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	expectPath(t, handled, model)

	// Unsupported files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	expectNothing(t, handled)
}

func TestWatchNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	handled := startWatcher(t, dir)

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	// Give the loop a moment to pick up the new directory.
	time.Sleep(100 * time.Millisecond)

	model := filepath.Join(sub, "part.stl")
	if err := os.WriteFile(model, []byte("solid p\nendsolid p\n"), 0644); err != nil {
		t.Fatal(err)
	}
	expectPath(t, handled, model)
}

func TestWatchSingleFile(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.obj")
	other := filepath.Join(dir, "other.obj")
	for _, p := range []string{model, other} {
		if err := os.WriteFile(p, []byte(triangleOBJ), 0644); err != nil {
			t.Fatal(err)
		}
	}
	handled := startWatcher(t, model)

	if err := os.WriteFile(other, []byte(triangleOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	expectNothing(t, handled)

	if err := os.WriteFile(model, []byte(triangleOBJ+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	expectPath(t, handled, model)
}

func TestWatchDebounce(t *testing.T) {
	dir := t.TempDir()
	handled := startWatcher(t, dir)

	model := filepath.Join(dir, "model.obj")
	f, err := os.Create(model)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := f.WriteString(triangleOBJ); err != nil {
			t.Fatal(err)
		}
	}
	f.Close()

	expectPath(t, handled, model)
	expectNothing(t, handled)
}

func TestAddErrors(t *testing.T) {
	w, err := New(func(context.Context, string) error { return nil }, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Add(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing path")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := w.Add(t.TempDir()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestWatchFileInsideWatchedTree(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	model := filepath.Join(sub, "model.obj")
	if err := os.WriteFile(model, []byte(triangleOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	// Adding a single file under a recursive root must not narrow the
	// root to that file.
	handled := startWatcher(t, dir, model)

	other := filepath.Join(sub, "other.obj")
	if err := os.WriteFile(other, []byte(triangleOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	expectPath(t, handled, other)
}

func TestWatchDirectoryAfterFile(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.obj")
	if err := os.WriteFile(model, []byte(triangleOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	handled := startWatcher(t, model, dir)

	other := filepath.Join(dir, "other.obj")
	if err := os.WriteFile(other, []byte(triangleOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	expectPath(t, handled, other)
}

func TestWatchRemoveForgetsCachedModel(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.obj")
	if err := os.WriteFile(model, []byte(triangleOBJ), 0644); err != nil {
		t.Fatal(err)
	}

	c := convert.New(config.Default(), nil)
	if _, err := c.Load(model); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Cache().Len() != 1 {
		t.Fatalf("expected 1 cached model, got %d", c.Cache().Len())
	}

	w, handled := newWatcher(t, dir)
	removed := make(chan string, 4)
	w.OnRemove = func(path string) {
		c.Forget(path)
		removed <- path
	}
	runWatcher(t, w)

	if err := os.Remove(model); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-removed:
		if got != model {
			t.Errorf("removed %s, want %s", got, model)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for removal")
	}
	if c.Cache().Len() != 0 {
		t.Errorf("expected cache to be empty after removal, got %d entries", c.Cache().Len())
	}
	expectNothing(t, handled)
}
