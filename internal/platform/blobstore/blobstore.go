// Package blobstore keeps exported prescription reports: a Store contract,
// memory and filesystem backends, and Echo handlers to fetch stored reports.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("report not found")
	ErrFileTooLarge       = errors.New("report exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrMissingFileName    = errors.New("file name is required")
)

// MaxFileSize caps a single report at 25 MB.
const MaxFileSize = 25 << 20

const defaultPageSize = 20

// AllowedContentTypes lists what a report can be stored as. PDF is the default.
var AllowedContentTypes = map[string]bool{
	"application/pdf":  true,
	"application/json": true,
	"text/plain":       true,
}

// Metadata describes one stored report.
type Metadata struct {
	ID          string            `json:"id"`
	FileName    string            `json:"file_name"`
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	Hash        string            `json:"hash"`
	CreatedAt   time.Time         `json:"created_at"`
	CreatedBy   string            `json:"created_by,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

type Store interface {
	Upload(ctx context.Context, meta Metadata, content io.Reader) (*Metadata, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *Metadata, error)
	Delete(ctx context.Context, id string) error
	GetMetadata(ctx context.Context, id string) (*Metadata, error)
	List(ctx context.Context, limit, offset int) ([]*Metadata, int, error)
}

// seal checks meta and reads content, then stamps id, size, sha256 and
// creation time. Every backend stores exactly what seal returns.
func seal(meta Metadata, content io.Reader) (Metadata, []byte, error) {
	switch {
	case meta.FileName == "":
		return meta, nil, ErrMissingFileName
	case meta.ContentType == "":
		meta.ContentType = "application/pdf"
	case !AllowedContentTypes[meta.ContentType]:
		return meta, nil, ErrInvalidContentType
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return meta, nil, fmt.Errorf("read report content: %w", err)
	}
	if len(data) > MaxFileSize {
		return meta, nil, ErrFileTooLarge
	}

	sum := sha256.Sum256(data)
	meta.ID = uuid.NewString()
	meta.Size = int64(len(data))
	meta.Hash = hex.EncodeToString(sum[:])
	meta.CreatedAt = time.Now().UTC()
	if meta.Tags == nil {
		meta.Tags = map[string]string{}
	}
	return meta, data, nil
}

// paginate orders newest first and returns the requested window plus the
// total before slicing.
func paginate(items []*Metadata, limit, offset int) ([]*Metadata, int) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	total := len(items)
	if limit <= 0 {
		limit = defaultPageSize
	}
	start := min(offset, total)
	end := min(start+limit, total)
	return items[start:end], total
}

type memoryReport struct {
	meta Metadata
	data []byte
}

// MemoryStore holds reports in process memory. Used in development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]memoryReport
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]memoryReport)}
}

func (s *MemoryStore) Upload(_ context.Context, meta Metadata, content io.Reader) (*Metadata, error) {
	sealed, data, err := seal(meta, content)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.reports[sealed.ID] = memoryReport{meta: sealed, data: data}
	s.mu.Unlock()
	return &sealed, nil
}

func (s *MemoryStore) lookup(id string) (memoryReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	return r, ok
}

func (s *MemoryStore) Download(_ context.Context, id string) (io.ReadCloser, *Metadata, error) {
	r, ok := s.lookup(id)
	if !ok {
		return nil, nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(r.data)), &r.meta, nil
}

func (s *MemoryStore) GetMetadata(_ context.Context, id string) (*Metadata, error) {
	r, ok := s.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &r.meta, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]*Metadata, int, error) {
	s.mu.RLock()
	items := make([]*Metadata, 0, len(s.reports))
	for _, r := range s.reports {
		meta := r.meta
		items = append(items, &meta)
	}
	s.mu.RUnlock()

	out, total := paginate(items, limit, offset)
	return out, total, nil
}
