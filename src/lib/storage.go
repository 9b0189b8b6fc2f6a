package lib

import (
	"bitlibro/src/config"
	awslib "bitlibro/src/lib/aws"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	STORAGE_LOCAL = "local"
	STORAGE_S3    = "s3"
)

// FileStore stores bytes under a key and hands back the public URL.
type FileStore interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

var fileStore FileStore

func GetFileStore() FileStore {
	if fileStore != nil {
		return fileStore
	}
	switch config.GetEnv("STORAGE_DRIVER", STORAGE_LOCAL) {
	case STORAGE_S3:
		fileStore = &S3FileStore{
			Bucket:    os.Getenv("S3_ASSETS_BUCKET"),
			PublicURL: strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
		}
	default:
		fileStore = NewLocalFileStore(config.GetEnv("UPLOADS_DIR", "uploads"), "/uploads")
	}
	return fileStore
}

// NewFileStore Replace the file store with a custom implementation
func NewFileStore(s FileStore) FileStore {
	fileStore = s
	return fileStore
}

// BookImageKey builds books/{slug}/{uuid}{ext}.
func BookImageKey(bookName string, ext string) (string, uuid.UUID) {
	id := uuid.New()
	return fmt.Sprintf("books/%s/%s%s", slug.Make(bookName), id.String(), strings.ToLower(ext)), id
}

type LocalFileStore struct {
	Dir     string
	BaseURL string
}

func NewLocalFileStore(dir, baseURL string) *LocalFileStore {
	return &LocalFileStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalFileStore) Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	target := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		os.Remove(target)
		return "", err
	}
	return s.BaseURL + "/" + key, nil
}

func (s *LocalFileStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.BaseURL+"/")
	if !ok || key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("url %q does not belong to this store", url)
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[storage] Could not delete %s: %s\n", key, err.Error())
		return err
	}
	return nil
}

type S3FileStore struct {
	Bucket    string
	PublicURL string
}

func (s *S3FileStore) Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	if err := awslib.S3PutObject(ctx, s.Bucket, key, contentType, body); err != nil {
		return "", err
	}
	return s.PublicURL + "/" + key, nil
}

func (s *S3FileStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.PublicURL+"/")
	if !ok || key == "" {
		return fmt.Errorf("url %q does not belong to bucket %s", url, s.Bucket)
	}
	return awslib.S3DeleteObject(ctx, s.Bucket, key)
}
