// Package snapshot reads and writes the batch datasets: raw scrape
// snapshots, the joined course file and its bbolt mirror.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"courserag/internal/apperrors"
	"courserag/internal/domain"
)

// ReadJSON decodes the JSON document at path. A missing file is reported
// as apperrors.ErrSnapshotMissing.
func ReadJSON[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, fmt.Errorf("%w: %s", apperrors.ErrSnapshotMissing, path)
		}
		return out, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// WriteJSON writes v as indented JSON, replacing path atomically so
// watchers never see a half-written file.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// CourseFile is a joined course dataset stored as a JSON array.
type CourseFile struct {
	Path string
}

// Load reads the course array.
func (f CourseFile) Load(ctx context.Context) ([]domain.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadJSON[[]domain.Course](f.Path)
}

// Save writes the course array.
func (f CourseFile) Save(ctx context.Context, courses []domain.Course) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteJSON(f.Path, courses)
}
