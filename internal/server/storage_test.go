package server

import (
	"context"
	"io"
	"regexp"
	"strings"
	"testing"
)

var storedNameRe = regexp.MustCompile(`^cv-\d+-\d+\.pdf$`)

func TestStoredFileName(t *testing.T) {
	name := storedFileName("cv", "resume.pdf")
	if !storedNameRe.MatchString(name) {
		t.Fatalf("unexpected name: %s", name)
	}

	// Extension carries over, including none at all.
	if got := storedFileName("cv", "resume"); strings.Contains(got, ".") {
		t.Fatalf("expected no extension, got %s", got)
	}
}

func TestValidStoredName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"cv-123-456.pdf", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../secret", false},
		{"a/b.pdf", false},
		{`a\b.pdf`, false},
		{"cv..pdf", false},
	}
	for _, tt := range tests {
		if got := validStoredName(tt.name); got != tt.ok {
			t.Errorf("validStoredName(%q) = %v, want %v", tt.name, got, tt.ok)
		}
	}
}

func TestDiskStoreSaveAndOpen(t *testing.T) {
	store, _ := newTestDiskStore(t)
	ctx := context.Background()

	path, err := store.Save(ctx, "cv", "resume.pdf", "application/pdf", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(path, "uploads/") {
		t.Fatalf("expected uploads/ path, got %s", path)
	}

	name := strings.TrimPrefix(path, "uploads/")
	rc, contentType, err := store.Open(ctx, name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "content" {
		t.Fatalf("content mismatch: %q", data)
	}
	if contentType != "application/pdf" {
		t.Fatalf("content type = %q", contentType)
	}
}

func TestDiskStoreOpenRejectsTraversal(t *testing.T) {
	store, _ := newTestDiskStore(t)
	if _, _, err := store.Open(context.Background(), "../storage_test.go"); err == nil {
		t.Fatal("expected error for traversal name")
	}
}

func TestNormaliseEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		endpoint string
		secure   bool
		wantErr  bool
	}{
		{raw: "minio:9000", endpoint: "minio:9000", secure: false},
		{raw: "http://minio:9000", endpoint: "minio:9000", secure: false},
		{raw: "https://s3.example.com", endpoint: "s3.example.com", secure: true},
		{raw: "https://s3.example.com/bucket", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		endpoint, secure, err := normaliseEndpoint(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.raw, err)
			continue
		}
		if endpoint != tt.endpoint || secure != tt.secure {
			t.Errorf("%q: got (%s, %v), want (%s, %v)", tt.raw, endpoint, secure, tt.endpoint, tt.secure)
		}
	}
}
