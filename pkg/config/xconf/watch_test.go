package xconf

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder 收集 ChangeFunc 的调用结果。
type recorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *recorder) onChange(_ *Config, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) snapshot() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// runWatcher 在后台运行 w，测试结束时取消并等待 Run 返回。
func runWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Error("watcher did not stop")
		}
	})
}

func newWatched(t *testing.T, content string) (*Config, string) {
	t.Helper()
	path := writeFile(t, "app.yaml", content)
	cfg, err := New(path)
	require.NoError(t, err)
	return cfg, path
}

var quiet = WithWatchLogger(slog.New(slog.DiscardHandler))

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	cfg, path := newWatched(t, "name: before\n")
	rec := &recorder{}
	w, err := NewWatcher(cfg, rec.onChange, WithDebounce(10*time.Millisecond), quiet)
	require.NoError(t, err)
	runWatcher(t, w)

	require.NoError(t, os.WriteFile(path, []byte("name: after\n"), 0o600))
	require.Eventually(t, func() bool {
		return cfg.Client().String("name") == "after"
	}, 2*time.Second, 5*time.Millisecond)

	errs := rec.snapshot()
	require.NotEmpty(t, errs)
	assert.NoError(t, errs[len(errs)-1])
}

func TestWatcher_AtomicRename(t *testing.T) {
	cfg, path := newWatched(t, "name: before\n")
	w, err := NewWatcher(cfg, nil, WithDebounce(10*time.Millisecond), quiet)
	require.NoError(t, err)
	runWatcher(t, w)

	tmp := filepath.Join(filepath.Dir(path), ".app.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("name: renamed\n"), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool {
		return cfg.Client().String("name") == "renamed"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWatcher_ReportsParseError(t *testing.T) {
	cfg, path := newWatched(t, "name: before\n")
	rec := &recorder{}
	w, err := NewWatcher(cfg, rec.onChange, WithDebounce(10*time.Millisecond), quiet)
	require.NoError(t, err)
	runWatcher(t, w)

	require.NoError(t, os.WriteFile(path, []byte("name: [\n"), 0o600))
	require.Eventually(t, func() bool {
		for _, err := range rec.snapshot() {
			if errors.Is(err, ErrParseFailed) {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "before", cfg.Client().String("name"))
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	cfg, path := newWatched(t, "name: before\n")
	rec := &recorder{}
	w, err := NewWatcher(cfg, rec.onChange, WithDebounce(time.Millisecond), quiet)
	require.NoError(t, err)
	runWatcher(t, w)

	other := filepath.Join(filepath.Dir(path), "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("name: other\n"), 0o600))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestNewWatcher_Errors(t *testing.T) {
	_, err := NewWatcher(nil, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)

	fromBytes, err := NewFromBytes([]byte("a: 1"), FormatYAML)
	require.NoError(t, err)
	_, err = NewWatcher(fromBytes, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)
}

func TestWatcher_RunOnce(t *testing.T) {
	cfg, _ := newWatched(t, "name: x\n")
	w, err := NewWatcher(cfg, nil, quiet)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	assert.ErrorIs(t, w.Run(context.Background()), ErrWatcherClosed)
	assert.NoError(t, w.Close())
}

func TestWatcher_CloseWithoutRun(t *testing.T) {
	cfg, _ := newWatched(t, "name: x\n")
	w, err := NewWatcher(cfg, nil, nil)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
	assert.ErrorIs(t, w.Run(context.Background()), ErrWatcherClosed)
}
