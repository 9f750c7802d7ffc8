// storage.go - CV content storage behind the /uploads path.
//
// Two backends: local disk (default) and an S3-compatible object store.
// Both generate collision-resistant names and hand back the public
// "uploads/<name>" path that gets persisted on the candidature.
package server

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// FileStore persists uploaded CV content and serves it back read-only.
type FileStore interface {
	// Save streams r under a generated name derived from fieldName and the
	// original filename's extension, returning the public uploads path.
	Save(ctx context.Context, fieldName, origName, contentType string, r io.Reader) (string, error)
	// Open retrieves a stored file by its bare name (no "uploads/" prefix).
	// The returned content type may be empty.
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// uploadsPrefix is the public URL prefix and the object-key prefix.
const uploadsPrefix = "uploads/"

// storedFileName builds "<field>-<unix millis>-<random int>.<ext>".
// The timestamp plus random suffix makes collisions practically impossible;
// a clock rollback is an accepted risk.
func storedFileName(fieldName, origName string) string {
	ext := filepath.Ext(origName)
	return fmt.Sprintf("%s-%d-%d%s", fieldName, time.Now().UnixMilli(), rand.Int63n(1_000_000_000), ext)
}

// validStoredName rejects names that could escape the uploads namespace.
func validStoredName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return true
}

// DiskStore writes CV files into a fixed local directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the content directory if it is absent.
func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(ctx context.Context, fieldName, origName, contentType string, r io.Reader) (string, error) {
	name := storedFileName(fieldName, origName)

	// O_EXCL so a name collision errors out instead of overwriting.
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return uploadsPrefix + name, nil
}

func (s *DiskStore) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !validStoredName(name) {
		return nil, "", os.ErrNotExist
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, "", err
	}
	return f, mime.TypeByExtension(filepath.Ext(name)), nil
}

// MinioStore keeps CV files in an S3-compatible bucket under the
// "uploads/" key prefix.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		secure = (u.Scheme == "https")
		return u.Host, secure, nil
	}

	// No scheme provided, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}

// NewMinioStore connects to the object store and verifies the bucket exists.
func NewMinioStore(rawEndpoint, accessKey, secretKey, bucket string) (*MinioStore, error) {
	if rawEndpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, fmt.Errorf("object storage configuration incomplete")
	}

	endpoint, secure, err := normaliseEndpoint(rawEndpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	// Sanity check: bucket must exist.
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("bucket does not exist: %s", bucket)
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

func (s *MinioStore) Save(ctx context.Context, fieldName, origName, contentType string, r io.Reader) (string, error) {
	name := storedFileName(fieldName, origName)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		uploadsPrefix+name,
		r,
		-1,
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", err
	}
	return uploadsPrefix + name, nil
}

func (s *MinioStore) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !validStoredName(name) {
		return nil, "", os.ErrNotExist
	}

	obj, err := s.client.GetObject(ctx, s.bucket, uploadsPrefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}

	// Force an early error for missing objects.
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil, "", os.ErrNotExist
		}
		return nil, "", err
	}

	return obj, stat.ContentType, nil
}
