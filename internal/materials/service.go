package materials

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/ilmhub/quizhub/internal/storage"
)

// keyPrefix groups uploaded reference PDFs inside the object store.
const keyPrefix = "quiz-references"

type ModuleChecker interface {
	ModuleExists(ctx context.Context, id string) error
}

type Service struct {
	store   Store
	blobs   storage.BlobStore
	modules ModuleChecker
}

func NewService(store Store, blobs storage.BlobStore, modules ModuleChecker) *Service {
	return &Service{store: store, blobs: blobs, modules: modules}
}

// UploadResult is returned by the standalone reference upload used while
// composing questions.
type UploadResult struct {
	URL              string `json:"url"`
	Key              string `json:"key"`
	OriginalFilename string `json:"originalFilename"`
}

// UploadReference validates and stores a PDF, returning its public URL and
// object key. Nothing is written to the store for non-PDF input.
func (s *Service) UploadReference(ctx context.Context, filename, contentType string, r io.Reader) (UploadResult, error) {
	if !IsPDF(contentType, filename) {
		return UploadResult{}, ErrNotPDF
	}
	key := buildObjectKey(filename)
	if _, err := s.blobs.Put(key, "application/pdf", r); err != nil {
		return UploadResult{}, err
	}
	return UploadResult{
		URL:              NormalizeURL(s.blobs.PublicURL(key)),
		Key:              key,
		OriginalFilename: filename,
	}, nil
}

// AddRequest attaches a material to a module, from either an uploaded file
// (File != nil) or an external PDF link.
type AddRequest struct {
	ModuleID    string
	Title       string
	Description string
	URL         string
	UploadedBy  string

	File        io.Reader
	Filename    string
	ContentType string
}

func (s *Service) Add(ctx context.Context, req AddRequest) (Material, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return Material{}, ValidationError{"Title is required"}
	}
	if err := s.modules.ModuleExists(ctx, req.ModuleID); err != nil {
		return Material{}, err
	}

	m := Material{
		ModuleID:    req.ModuleID,
		Title:       EnsurePDFTitle(title),
		Type:        "pdf",
		Description: strings.TrimSpace(req.Description),
		UploadedBy:  req.UploadedBy,
	}
	switch {
	case req.File != nil:
		up, err := s.UploadReference(ctx, req.Filename, req.ContentType, req.File)
		if err != nil {
			return Material{}, err
		}
		m.URL = up.URL
		m.ObjectKey = up.Key
		m.OriginalFilename = req.Filename
	case req.URL != "":
		if !strings.HasSuffix(strings.ToLower(req.URL), ".pdf") {
			return Material{}, ErrNotPDF
		}
		m.URL = NormalizeURL(req.URL)
	default:
		return Material{}, ValidationError{"Please provide a PDF file or a PDF URL"}
	}

	return s.store.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id string) (Material, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByModule(ctx context.Context, moduleID string) ([]Material, error) {
	mats, err := s.store.ListByModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	return normalizeAll(mats), nil
}

// ListLatest serves the participant home feed, capped at the newest 50.
func (s *Service) ListLatest(ctx context.Context) ([]Material, error) {
	mats, err := s.store.ListLatest(ctx, 50)
	if err != nil {
		return nil, err
	}
	return normalizeAll(mats), nil
}

// Open returns the object stream for a material stored in our own object
// store. Callers must check ObjectKey first.
func (s *Service) Open(ctx context.Context, m Material) (io.ReadCloser, error) {
	return s.blobs.Get(m.ObjectKey)
}

// Delete removes the record. The backing object delete is best effort; a
// failure is logged and the record still goes away.
func (s *Service) Delete(ctx context.Context, id string) error {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.ObjectKey != "" {
		if err := s.blobs.Delete(m.ObjectKey); err != nil {
			log.Printf("materials: delete object %s: %v", m.ObjectKey, err)
		}
	}
	return s.store.Delete(ctx, id)
}

func normalizeAll(mats []Material) []Material {
	for i := range mats {
		mats[i].URL = NormalizeURL(mats[i].URL)
	}
	return mats
}

// ValidationError carries a message safe to show to the client as a 400.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

func buildObjectKey(filename string) string {
	base := strings.TrimSuffix(filename, ".pdf")
	base = strings.TrimSuffix(base, ".PDF")
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	slug := b.String()
	if slug == "" {
		slug = "document"
	}
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s/%s_%d_%s.pdf", keyPrefix, slug, time.Now().UnixMilli(), hex.EncodeToString(buf))
}
