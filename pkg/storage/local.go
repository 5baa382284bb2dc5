package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

type LocalSink struct {
	dir      string
	fileLock *flock.Flock
}

type LocalSinkOpts struct {
	Dir string
}

// NewLocalSink prepares an output directory and takes an exclusive lock on
// it, so two extractions cannot interleave their artifacts. Close releases
// the lock.
func NewLocalSink(opts LocalSinkOpts) (*LocalSink, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	lockFilePath := filepath.Join(opts.Dir, ".extract.lock")
	fileLock := flock.New(lockFilePath)

	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("error while trying to acquire file lock: %v", err)
	}

	if !locked {
		return nil, fmt.Errorf("another process is already extracting into %s", opts.Dir)
	}

	return &LocalSink{dir: opts.Dir, fileLock: fileLock}, nil
}

// Put writes the blob to a temporary file first and renames it into place,
// so a partially written artifact is never visible under its final name.
func (s *LocalSink) Put(name string, data []byte) error {
	tmpPath := filepath.Join(s.dir, fmt.Sprintf(".%s.%s", name, uuid.New().String()[:6]))

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	return nil
}

func (s *LocalSink) Dir() string {
	return s.dir
}

func (s *LocalSink) Close() error {
	if s.fileLock == nil {
		return nil
	}

	lockFilePath := s.fileLock.Path()
	if err := s.fileLock.Unlock(); err != nil {
		return err
	}

	return os.Remove(lockFilePath)
}
