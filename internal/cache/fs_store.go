package cache

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// entryLock 避免同一文件的并发写入；refs 归零时从 locks 中移除。
type entryLock struct {
	mu   sync.Mutex
	refs int
}

// writeFile 以临时文件 + rename 写入 filePath，并将 mtime 设置为 modTime。
// 失败时清理临时文件，原有文件保持不变。
func (s *Store) writeFile(ctx context.Context, filePath string, body io.Reader, modTime time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	unlock := s.lockEntry(filePath)
	defer unlock()

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, storageErr("mkdir", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		return 0, storageErr("create", dir, err)
	}
	tempName := tempFile.Name()

	written, err := copyWithContext(ctx, tempFile, body)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return 0, storageErr("write", filePath, err)
	}

	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return 0, storageErr("rename", filePath, err)
	}

	if err := os.Chtimes(filePath, modTime, modTime); err != nil {
		return 0, storageErr("chtimes", filePath, err)
	}
	return written, nil
}

func (s *Store) lockEntry(key string) func() {
	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}
