package materials

import (
	"errors"
	"strings"
)

// Material is a PDF study resource attached to a module. URL points either at
// our own object store (ObjectKey set) or at an external PDF the admin linked.
type Material struct {
	ID               string `json:"id"`
	ModuleID         string `json:"moduleId"`
	Title            string `json:"title"`
	Type             string `json:"type"`
	URL              string `json:"url"`
	ObjectKey        string `json:"objectKey,omitempty"`
	OriginalFilename string `json:"originalFilename,omitempty"`
	Description      string `json:"description"`
	UploadedBy       string `json:"uploadedBy"`
	UploaderName     string `json:"uploaderName,omitempty"`
	CreatedAt        int64  `json:"createdAt"`
}

var (
	// ErrNotPDF rejects any upload or link that is not a PDF.
	ErrNotPDF = errors.New("only PDF uploads are allowed")
	// ErrNotFound is returned when a material id resolves to nothing.
	ErrNotFound = errors.New("material not found")
)

// IsPDF accepts a file by declared MIME type or a .pdf filename suffix.
func IsPDF(contentType, filename string) bool {
	if contentType == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// NormalizeURL rewrites image-resource delivery paths to their raw
// counterpart and strips query parameters, so stored links always point at
// the downloadable PDF.
func NormalizeURL(u string) string {
	if u == "" {
		return u
	}
	u = strings.Replace(u, "/image/upload/", "/raw/upload/", 1)
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return u
}

// EnsurePDFTitle appends a .pdf suffix when the title lacks one.
func EnsurePDFTitle(title string) string {
	if !strings.HasSuffix(strings.ToLower(title), ".pdf") {
		return title + ".pdf"
	}
	return title
}

// DownloadFilename builds a safe attachment filename from the original
// filename or title, always ending in .pdf.
func DownloadFilename(m Material) string {
	name := m.OriginalFilename
	if name == "" {
		name = m.Title
	}
	if name == "" {
		name = "document.pdf"
	}
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name = name[:len(name)-len(".pdf")]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '.', r == '_', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + ".pdf"
}
