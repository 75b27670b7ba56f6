package gcp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/bloggerimageuploader/internal/models"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"

	driveDirectURL    = "https://lh3.googleusercontent.com/d/%s"
	driveDownloadURL  = "https://drive.google.com/uc?id=%s"
	driveThumbnailURL = "https://drive.google.com/thumbnail?id=%s&sz=w1000"
)

// DriveStore keeps uploaded images in a Google Drive folder.
type DriveStore struct {
	auth *OAuthClient
	opts []option.ClientOption

	once    sync.Once
	service *drive.Service
	initErr error
}

// NewDriveStore creates a store authenticated by auth. Extra client options
// are appended after the token source, so they can override it.
func NewDriveStore(auth *OAuthClient, opts ...option.ClientOption) *DriveStore {
	return &DriveStore{auth: auth, opts: opts}
}

func (s *DriveStore) Name() string {
	return "Google Drive"
}

func (s *DriveStore) client() (*drive.Service, error) {
	s.once.Do(func() {
		var opts []option.ClientOption
		if s.auth != nil {
			opts = append(opts, option.WithTokenSource(s.auth.TokenSource()))
		}
		opts = append(opts, s.opts...)

		s.service, s.initErr = drive.NewService(context.Background(), opts...)
		if s.initErr != nil {
			s.initErr = fmt.Errorf("failed to create Drive client: %w", s.initErr)
			return
		}
		slog.Info("Google Drive API initialized.")
	})
	return s.service, s.initErr
}

// EnsureFolder returns the id of the first non-trashed folder called name,
// creating one when none exists. Two callers in different processes can both
// miss the other's folder and create a duplicate.
func (s *DriveStore) EnsureFolder(ctx context.Context, name string) (string, error) {
	svc, err := s.client()
	if err != nil {
		return "", err
	}
	logCtx := slog.With("folderName", name)

	query := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escapeQuery(name), folderMimeType)
	list, err := svc.Files.List().
		Q(query).
		Fields("files(id, name)").
		Spaces("drive").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to list folders: %w", err)
	}
	if len(list.Files) > 0 {
		logCtx.Debug("Found existing folder.", "folderId", list.Files[0].Id)
		return list.Files[0].Id, nil
	}

	logCtx.Info("Folder not found. Creating it.")
	folder, err := svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}).Fields("id, name").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}
	logCtx.Info("Created folder.", "folderId", folder.Id)
	return folder.Id, nil
}

// Upload stores data as filename inside the folder folderID.
func (s *DriveStore) Upload(ctx context.Context, folderID, filename, mimeType string, data []byte) (*models.StoredObject, error) {
	svc, err := s.client()
	if err != nil {
		return nil, err
	}

	file, err := svc.Files.Create(&drive.File{
		Name:     filename,
		MimeType: mimeType,
		Parents:  []string{folderID},
	}).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields("id, name, mimeType, webViewLink, webContentLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	slog.Info("File uploaded to Drive.", "fileId", file.Id, "filename", filename)

	return &models.StoredObject{
		ID:       file.Id,
		Name:     file.Name,
		ViewLink: file.WebViewLink,
	}, nil
}

// MakePublic lets anyone read the file. Nothing revokes this later.
func (s *DriveStore) MakePublic(ctx context.Context, fileID string) error {
	svc, err := s.client()
	if err != nil {
		return err
	}

	_, err = svc.Permissions.Create(fileID, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to grant public read on %s: %w", fileID, err)
	}
	return nil
}

// PublicURLs formats the public URL variants of a Drive file id.
func (s *DriveStore) PublicURLs(fileID string) models.AssetURLs {
	return models.AssetURLs{
		Direct:    fmt.Sprintf(driveDirectURL, fileID),
		Download:  fmt.Sprintf(driveDownloadURL, fileID),
		Thumbnail: fmt.Sprintf(driveThumbnailURL, fileID),
	}
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
