// Package fsx wraps the filesystem calls made during a build so that running out
// of file descriptors is retried with backoff instead of failing the build.
package fsx

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/retry"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FS performs filesystem operations with descriptor-exhaustion retries.
// One FS is shared by every goroutine of a build so the backoff reflects global pressure.
type FS struct {
	backoff *retry.Backoff
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates an FS. A nil backoff uses retry.DefaultPolicy.
func New(backoff *retry.Backoff, logger *slog.Logger) *FS {
	if backoff == nil {
		backoff = retry.NewBackoff(retry.DefaultPolicy())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FS{backoff: backoff, logger: logger, sleep: sleepCtx}
}

// IsExhausted reports whether err is a per-process or system-wide descriptor limit.
func IsExhausted(err error) bool {
	return errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE)
}

// ReadFile reads the named file.
func (f *FS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	return do(ctx, f, "read", name, func() ([]byte, error) { return os.ReadFile(name) })
}

// ReadDir lists a directory.
func (f *FS) ReadDir(ctx context.Context, name string) ([]os.DirEntry, error) {
	return do(ctx, f, "readdir", name, func() ([]os.DirEntry, error) { return os.ReadDir(name) })
}

// Stat returns file info, following symlinks.
func (f *FS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	return do(ctx, f, "stat", name, func() (fs.FileInfo, error) { return os.Stat(name) })
}

// Lstat returns file info without following a final symlink.
func (f *FS) Lstat(ctx context.Context, name string) (fs.FileInfo, error) {
	return do(ctx, f, "lstat", name, func() (fs.FileInfo, error) { return os.Lstat(name) })
}

// Exists reports whether name exists. Errors other than not-exist are returned.
func (f *FS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := f.Stat(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// MkdirAll creates dir and any missing parents.
func (f *FS) MkdirAll(ctx context.Context, dir string) error {
	_, err := do(ctx, f, "mkdir", dir, func() (struct{}, error) { return struct{}{}, os.MkdirAll(dir, dirPerm) })
	return err
}

// WriteFile writes data to name, creating parent directories first.
func (f *FS) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := f.MkdirAll(ctx, filepath.Dir(name)); err != nil {
		return err
	}
	_, err := do(ctx, f, "write", name, func() (struct{}, error) { return struct{}{}, os.WriteFile(name, data, filePerm) })
	return err
}

// CopyFile copies src to dst byte for byte, creating dst's parent directories.
func (f *FS) CopyFile(ctx context.Context, src, dst string) error {
	if err := f.MkdirAll(ctx, filepath.Dir(dst)); err != nil {
		return err
	}
	_, err := do(ctx, f, "copy", src, func() (struct{}, error) { return struct{}{}, copyFile(src, dst) })
	return err
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}

// do runs op, retrying while it fails with descriptor exhaustion.
func do[T any](ctx context.Context, f *FS, op, path string, fn func() (T, error)) (T, error) {
	policy := f.backoff.Policy()
	for attempt := 0; ; attempt++ {
		v, err := fn()
		if err == nil {
			f.backoff.Success()
			return v, nil
		}
		if !IsExhausted(err) {
			return v, err
		}
		if attempt >= policy.MaxRetries {
			var zero T
			return zero, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "file descriptors exhausted").
				Retryable().WithPath(path).WithContext("op", op).WithContext("attempts", attempt+1).Build()
		}
		delay := f.backoff.Failure()
		f.logger.Debug("descriptor exhaustion, retrying",
			logfields.Path(path), slog.String("op", op), logfields.Attempt(attempt+1),
			logfields.DurationMS(float64(delay.Microseconds())/1000))
		if err := f.sleep(ctx, delay); err != nil {
			var zero T
			return zero, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
