package materials

import "testing"

func TestIsPDF(t *testing.T) {
	cases := []struct {
		contentType, filename string
		want                  bool
	}{
		{"application/pdf", "notes.pdf", true},
		{"application/pdf", "notes.bin", true},
		{"application/octet-stream", "Notes.PDF", true},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "notes.docx", false},
		{"text/plain", "notes.txt", false},
	}
	for _, tc := range cases {
		if got := IsPDF(tc.contentType, tc.filename); got != tc.want {
			t.Errorf("IsPDF(%q, %q) = %v, want %v", tc.contentType, tc.filename, got, tc.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{
			"https://cdn.example.com/image/upload/v1/quiz-references/doc.pdf",
			"https://cdn.example.com/raw/upload/v1/quiz-references/doc.pdf",
		},
		{
			"https://cdn.example.com/raw/upload/doc.pdf?signature=abc&x=1",
			"https://cdn.example.com/raw/upload/doc.pdf",
		},
		{"https://example.com/doc.pdf", "https://example.com/doc.pdf"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEnsurePDFTitle(t *testing.T) {
	if got := EnsurePDFTitle("Tafseer Notes"); got != "Tafseer Notes.pdf" {
		t.Fatalf("got %q", got)
	}
	if got := EnsurePDFTitle("notes.PDF"); got != "notes.PDF" {
		t.Fatalf("existing suffix must be kept, got %q", got)
	}
}

func TestDownloadFilename(t *testing.T) {
	cases := []struct {
		m    Material
		want string
	}{
		{Material{OriginalFilename: "Surah Notes.pdf"}, "Surah Notes.pdf"},
		{Material{Title: "week/1: tafseer"}, "week_1_ tafseer.pdf"},
		{Material{}, "document.pdf"},
	}
	for _, tc := range cases {
		if got := DownloadFilename(tc.m); got != tc.want {
			t.Errorf("DownloadFilename(%+v) = %q, want %q", tc.m, got, tc.want)
		}
	}
}

func TestBuildObjectKey(t *testing.T) {
	key := buildObjectKey("My Notes (v2).pdf")
	if len(key) == 0 {
		t.Fatal("empty key")
	}
	if got := key[:len(keyPrefix)]; got != keyPrefix {
		t.Fatalf("key prefix = %q", got)
	}
	for _, r := range key {
		if r == ' ' || r == '(' || r == ')' {
			t.Fatalf("unsanitized character in key %q", key)
		}
	}
	if key == buildObjectKey("My Notes (v2).pdf") {
		t.Fatalf("keys must not collide for repeated uploads")
	}
}
