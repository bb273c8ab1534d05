package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"screening-bot/internal/config"
	"screening-bot/internal/record"
)

// FileStore keeps one JSON document per record in a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create records directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(_ context.Context, rec *record.Record) (string, error) {
	data, err := record.Marshal(rec)
	if err != nil {
		return "", err
	}

	key := RecordKey(rec)
	path := filepath.Join(s.dir, key)

	tmp, err := os.CreateTemp(s.dir, ".record-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return "", fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move record into place: %w", err)
	}

	return key, nil
}

func (s *FileStore) Load(_ context.Context, id string) (*record.Record, error) {
	path, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return s.read(path)
}

func (s *FileStore) List(_ context.Context) ([]record.Summary, error) {
	paths, err := s.paths()
	if err != nil {
		return nil, err
	}

	summaries := make([]record.Summary, 0, len(paths))
	for _, path := range paths {
		rec, err := s.read(path)
		if err != nil {
			skipUnreadable(config.BackendFile, filepath.Base(path), err)
			continue
		}
		summaries = append(summaries, rec.Summary())
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	path, err := s.find(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) Purge(_ context.Context, now time.Time) (int, error) {
	paths, err := s.paths()
	if err != nil {
		return 0, err
	}

	var (
		removed int
		errs    []error
	)
	for _, path := range paths {
		rec, err := s.read(path)
		if err != nil {
			skipUnreadable(config.BackendFile, filepath.Base(path), err)
			continue
		}
		if !rec.Expired(now) {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", path, err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func (s *FileStore) Backend() string { return config.BackendFile }
func (s *FileStore) Close() error    { return nil }

func (s *FileStore) find(id string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "record_*_"+id+".json"))
	if err != nil {
		return "", fmt.Errorf("failed to search records: %w", err)
	}
	for _, m := range matches {
		if got, ok := idFromKey(filepath.Base(m)); ok && got == id {
			return m, nil
		}
	}
	return "", ErrNotFound
}

func (s *FileStore) paths() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", s.dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := idFromKey(entry.Name()); ok {
			paths = append(paths, filepath.Join(s.dir, entry.Name()))
		}
	}
	return paths, nil
}

func (s *FileStore) read(path string) (*record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rec, err := record.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rec, nil
}
