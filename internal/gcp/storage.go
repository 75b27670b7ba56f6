package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/bloggerimageuploader/internal/models"
)

const (
	gcsPublicURL   = "https://storage.googleapis.com/%s/%s"
	gcsDownloadURL = "https://storage.googleapis.com/download/storage/v1/b/%s/o/%s?alt=media"
	gcsConsoleURL  = "https://console.cloud.google.com/storage/browser/_details/%s/%s"
)

// GCSStore keeps uploaded images in a Cloud Storage bucket. Folders are
// object name prefixes, so they never need to be created.
type GCSStore struct {
	bucketName string
	opts       []option.ClientOption

	once    sync.Once
	client  *storage.Client
	initErr error
}

// NewGCSStore creates a store for bucketName using application default
// credentials unless opts say otherwise.
func NewGCSStore(bucketName string, opts ...option.ClientOption) *GCSStore {
	return &GCSStore{bucketName: bucketName, opts: opts}
}

func (s *GCSStore) Name() string {
	return "Google Cloud Storage"
}

func (s *GCSStore) bucket() (*storage.BucketHandle, error) {
	s.once.Do(func() {
		s.client, s.initErr = storage.NewClient(context.Background(), s.opts...)
		if s.initErr != nil {
			s.initErr = fmt.Errorf("failed to create storage client: %w", s.initErr)
			return
		}
		slog.Info("Cloud Storage client initialized.", "bucket", s.bucketName)
	})
	if s.initErr != nil {
		return nil, s.initErr
	}
	return s.client.Bucket(s.bucketName), nil
}

// EnsureFolder returns the object prefix for name.
func (s *GCSStore) EnsureFolder(_ context.Context, name string) (string, error) {
	prefix := strings.Trim(name, "/")
	if prefix == "" {
		return "", fmt.Errorf("folder name must not be empty")
	}
	return prefix, nil
}

// Upload writes data under folderID/filename only if no such object exists.
func (s *GCSStore) Upload(ctx context.Context, folderID, filename, mimeType string, data []byte) (*models.StoredObject, error) {
	bucket, err := s.bucket()
	if err != nil {
		return nil, err
	}

	objectName := path.Join(folderID, filename)
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = mimeType

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return nil, fmt.Errorf("object %s already exists: %w", objectName, err)
		}
		return nil, fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	slog.Info("Object uploaded to GCS.", "bucket", s.bucketName, "object", objectName)

	return &models.StoredObject{
		ID:       objectName,
		Name:     filename,
		ViewLink: fmt.Sprintf(gcsConsoleURL, s.bucketName, escapeObjectPath(objectName)),
	}, nil
}

// MakePublic grants allUsers read access to the object.
func (s *GCSStore) MakePublic(ctx context.Context, objectName string) error {
	bucket, err := s.bucket()
	if err != nil {
		return err
	}
	if err := bucket.Object(objectName).ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return fmt.Errorf("failed to grant public read on %s: %w", objectName, err)
	}
	return nil
}

// PublicURLs formats the public URL variants of an object. Cloud Storage has
// no thumbnail service, so the thumbnail form is the direct URL.
func (s *GCSStore) PublicURLs(objectName string) models.AssetURLs {
	direct := fmt.Sprintf(gcsPublicURL, s.bucketName, escapeObjectPath(objectName))
	return models.AssetURLs{
		Direct:    direct,
		Download:  fmt.Sprintf(gcsDownloadURL, s.bucketName, url.PathEscape(objectName)),
		Thumbnail: direct,
	}
}

func escapeObjectPath(objectName string) string {
	segments := strings.Split(objectName, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
