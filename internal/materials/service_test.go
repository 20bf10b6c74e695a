package materials

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type fakeBlobs struct {
	objects map[string][]byte
	deleted []string
	puts    int
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{objects: map[string][]byte{}} }

func (f *fakeBlobs) Put(key, contentType string, r io.Reader) (string, error) {
	f.puts++
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return key, nil
}

func (f *fakeBlobs) Get(key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobs) Delete(key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobs) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type fakeMatStore struct {
	byID map[string]Material
}

func newFakeMatStore() *fakeMatStore { return &fakeMatStore{byID: map[string]Material{}} }

func (f *fakeMatStore) Create(ctx context.Context, m Material) (Material, error) {
	if m.ID == "" {
		m.ID = "mat-1"
	}
	f.byID[m.ID] = m
	return m, nil
}

func (f *fakeMatStore) Get(ctx context.Context, id string) (Material, error) {
	m, ok := f.byID[id]
	if !ok {
		return Material{}, ErrNotFound
	}
	return m, nil
}

func (f *fakeMatStore) ListByModule(ctx context.Context, moduleID string) ([]Material, error) {
	out := []Material{}
	for _, m := range f.byID {
		if m.ModuleID == moduleID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMatStore) ListLatest(ctx context.Context, limit int) ([]Material, error) {
	out := []Material{}
	for _, m := range f.byID {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMatStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type allowAll struct{}

func (allowAll) ModuleExists(ctx context.Context, id string) error { return nil }

func TestUploadReferenceRejectsNonPDF(t *testing.T) {
	blobs := newFakeBlobs()
	svc := NewService(newFakeMatStore(), blobs, allowAll{})

	_, err := svc.UploadReference(context.Background(), "notes.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		strings.NewReader("not a pdf"))
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
	if blobs.puts != 0 {
		t.Fatalf("rejected upload must not reach the object store")
	}
}

func TestAddFromFile(t *testing.T) {
	blobs := newFakeBlobs()
	store := newFakeMatStore()
	svc := NewService(store, blobs, allowAll{})

	m, err := svc.Add(context.Background(), AddRequest{
		ModuleID: "m1", Title: "Tafseer Notes", UploadedBy: "admin-1",
		File: strings.NewReader("%PDF-1.7"), Filename: "notes.pdf", ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if m.Title != "Tafseer Notes.pdf" {
		t.Fatalf("title = %q, want forced .pdf suffix", m.Title)
	}
	if m.ObjectKey == "" || m.URL == "" {
		t.Fatalf("expected stored object key and URL: %+v", m)
	}
	if _, ok := blobs.objects[m.ObjectKey]; !ok {
		t.Fatalf("object %q not written", m.ObjectKey)
	}
}

func TestAddFromURL(t *testing.T) {
	svc := NewService(newFakeMatStore(), newFakeBlobs(), allowAll{})
	ctx := context.Background()

	if _, err := svc.Add(ctx, AddRequest{
		ModuleID: "m1", Title: "Link", URL: "https://example.com/page.html", UploadedBy: "admin-1",
	}); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected non-PDF URL rejection, got %v", err)
	}

	m, err := svc.Add(ctx, AddRequest{
		ModuleID: "m1", Title: "Link",
		URL:        "https://cdn.example.com/image/upload/doc.pdf",
		UploadedBy: "admin-1",
	})
	if err != nil {
		t.Fatalf("add url: %v", err)
	}
	if m.URL != "https://cdn.example.com/raw/upload/doc.pdf" {
		t.Fatalf("url not normalized: %q", m.URL)
	}
	if m.ObjectKey != "" {
		t.Fatalf("external links must not carry an object key")
	}
}

func TestAddRequiresFileOrURL(t *testing.T) {
	svc := NewService(newFakeMatStore(), newFakeBlobs(), allowAll{})
	var vErr ValidationError
	if _, err := svc.Add(context.Background(), AddRequest{
		ModuleID: "m1", Title: "Empty", UploadedBy: "admin-1",
	}); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRemovesObjectBestEffort(t *testing.T) {
	blobs := newFakeBlobs()
	store := newFakeMatStore()
	svc := NewService(store, blobs, allowAll{})
	ctx := context.Background()

	m, err := svc.Add(ctx, AddRequest{
		ModuleID: "m1", Title: "Notes", UploadedBy: "admin-1",
		File: strings.NewReader("%PDF-1.7"), Filename: "notes.pdf", ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Delete(ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != m.ObjectKey {
		t.Fatalf("object not deleted: %v", blobs.deleted)
	}
	if _, err := store.Get(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("record survived delete: %v", err)
	}
}
