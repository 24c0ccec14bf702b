package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore keeps each blob as <id>.bin next to an <id>.json metadata
// document inside one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("blob directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) contentPath(id string) string { return filepath.Join(s.dir, id+".bin") }
func (s *FileStore) metaPath(id string) string    { return filepath.Join(s.dir, id+".json") }

// validID rejects anything that is not a uuid so ids can't escape dir.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *FileStore) Upload(_ context.Context, meta Metadata, content io.Reader) (*Metadata, error) {
	meta, data, err := seal(meta, content)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(s.contentPath(meta.ID), data, 0o644); err != nil {
		return nil, fmt.Errorf("write blob content: %w", err)
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode blob metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(meta.ID), raw, 0o644); err != nil {
		os.Remove(s.contentPath(meta.ID))
		return nil, fmt.Errorf("write blob metadata: %w", err)
	}

	out := meta
	return &out, nil
}

func (s *FileStore) Download(ctx context.Context, id string) (io.ReadCloser, *Metadata, error) {
	meta, err := s.GetMetadata(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(s.contentPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("read blob content: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), meta, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	if err := os.Remove(s.metaPath(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob metadata: %w", err)
	}
	if err := os.Remove(s.contentPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob content: %w", err)
	}
	return nil
}

func (s *FileStore) GetMetadata(_ context.Context, id string) (*Metadata, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return s.readMeta(s.metaPath(id))
}

func (s *FileStore) readMeta(path string) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read blob metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode blob metadata %s: %w", filepath.Base(path), err)
	}
	return &meta, nil
}

func (s *FileStore) List(_ context.Context, limit, offset int) ([]*Metadata, int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read blob directory: %w", err)
	}

	var items []*Metadata
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		meta, err := s.readMeta(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, 0, err
		}
		items = append(items, meta)
	}

	out, total := paginate(items, limit, offset)
	return out, total, nil
}
