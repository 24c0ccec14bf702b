package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func seedReport(t *testing.T, store Store, fileName, content string) *Metadata {
	t.Helper()
	meta := Metadata{
		FileName:    fileName,
		ContentType: "application/pdf",
		CreatedBy:   "device-1",
		Tags:        map[string]string{"source": "unit-test"},
	}
	result, err := store.Upload(context.Background(), meta, strings.NewReader(content))
	if err != nil {
		t.Fatalf("seedReport: %v", err)
	}
	return result
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fileStore, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
	}
}

func TestStore_UploadDownload(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			content := "%PDF-1.4 report"
			meta := seedReport(t, store, "report.pdf", content)

			if meta.ID == "" {
				t.Fatal("expected non-empty ID")
			}
			if meta.Size != int64(len(content)) {
				t.Errorf("expected Size=%d, got %d", len(content), meta.Size)
			}
			want := fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
			if meta.Hash != want {
				t.Errorf("expected hash %s, got %s", want, meta.Hash)
			}
			if meta.CreatedAt.IsZero() {
				t.Error("expected non-zero CreatedAt")
			}

			rc, got, err := store.Download(context.Background(), meta.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer rc.Close()
			data, _ := io.ReadAll(rc)
			if string(data) != content {
				t.Errorf("expected %q, got %q", content, data)
			}
			if got.FileName != "report.pdf" {
				t.Errorf("expected report.pdf, got %s", got.FileName)
			}
		})
	}
}

func TestStore_Validation(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := store.Upload(ctx, Metadata{ContentType: "application/pdf"}, strings.NewReader("x"))
			if !errors.Is(err, ErrMissingFileName) {
				t.Errorf("expected ErrMissingFileName, got %v", err)
			}
			_, err = store.Upload(ctx, Metadata{FileName: "a.exe", ContentType: "application/x-msdownload"}, strings.NewReader("x"))
			if !errors.Is(err, ErrInvalidContentType) {
				t.Errorf("expected ErrInvalidContentType, got %v", err)
			}
		})
	}
}

func TestStore_DefaultContentType(t *testing.T) {
	store := NewMemoryStore()
	meta, err := store.Upload(context.Background(), Metadata{FileName: "r.pdf"}, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.ContentType != "application/pdf" {
		t.Errorf("expected application/pdf, got %s", meta.ContentType)
	}
}

func TestStore_NotFound(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id := "00000000-0000-0000-0000-000000000000"
			if _, _, err := store.Download(ctx, id); !errors.Is(err, ErrNotFound) {
				t.Errorf("Download: expected ErrNotFound, got %v", err)
			}
			if _, err := store.GetMetadata(ctx, id); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetMetadata: expected ErrNotFound, got %v", err)
			}
			if err := store.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
				t.Errorf("Delete: expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			meta := seedReport(t, store, "r.pdf", "x")
			if err := store.Delete(context.Background(), meta.ID); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := store.GetMetadata(context.Background(), meta.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestStore_List(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				seedReport(t, store, fmt.Sprintf("r%d.pdf", i), "x")
			}
			items, total, err := store.List(context.Background(), 2, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if total != 3 {
				t.Errorf("expected total 3, got %d", total)
			}
			if len(items) != 2 {
				t.Errorf("expected 2 items, got %d", len(items))
			}
			items, _, _ = store.List(context.Background(), 2, 10)
			if len(items) != 0 {
				t.Errorf("expected empty page past the end, got %d", len(items))
			}
		})
	}
}

func TestFileStore_RejectsPathIDs(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetMetadata(context.Background(), "../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("expected error for empty directory")
	}
}

func newTestServer(store Store) *echo.Echo {
	e := echo.New()
	NewHandler(store).RegisterRoutes(e.Group("/api/v1"))
	return e
}

func TestHandler_Download(t *testing.T) {
	store := NewMemoryStore()
	meta := seedReport(t, store, "rx.pdf", "%PDF")
	e := newTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+meta.ID, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "rx.pdf") {
		t.Errorf("expected file name in Content-Disposition, got %s", cd)
	}
	if rec.Body.String() != "%PDF" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestHandler_DownloadNotFound(t *testing.T) {
	e := newTestServer(NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_MetadataAndList(t *testing.T) {
	store := NewMemoryStore()
	meta := seedReport(t, store, "rx.pdf", "%PDF")
	e := newTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+meta.ID+"/metadata", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got Metadata
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.ID != meta.ID {
		t.Errorf("expected id %s, got %s", meta.ID, got.ID)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports?limit=5", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var list listResponse
	json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Total != 1 || len(list.Items) != 1 {
		t.Errorf("expected one report, got %+v", list)
	}
}

func TestHandler_Delete(t *testing.T) {
	store := NewMemoryStore()
	meta := seedReport(t, store, "rx.pdf", "%PDF")
	e := newTestServer(store)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reports/"+meta.ID, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
