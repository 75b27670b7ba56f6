package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Lllllllleong/bloggerimageuploader/internal/apperr"
	"github.com/Lllllllleong/bloggerimageuploader/internal/config"
	"github.com/Lllllllleong/bloggerimageuploader/internal/gcp"
	"github.com/Lllllllleong/bloggerimageuploader/internal/models"
	"github.com/Lllllllleong/bloggerimageuploader/internal/sniff"
)

// AssetStore is a storage backend that can host public images.
type AssetStore interface {
	Name() string
	EnsureFolder(ctx context.Context, name string) (string, error)
	Upload(ctx context.Context, folderID, filename, mimeType string, data []byte) (*models.StoredObject, error)
	MakePublic(ctx context.Context, objectID string) error
	PublicURLs(objectID string) models.AssetURLs
}

// Publisher announces an uploaded asset somewhere else, e.g. a blog draft.
type Publisher interface {
	BlogID() string
	Publish(ctx context.Context, asset *models.UploadedAsset) (*models.BlogPost, error)
}

// Uploader republishes downloaded images to an AssetStore.
type Uploader struct {
	store      AssetStore
	publisher  Publisher
	folderName string
	now        func() time.Time

	// folders collapses concurrent lookups of the destination folder within
	// this process. Separate processes can still create duplicates.
	folders singleflight.Group
}

func NewUploader(store AssetStore, folderName string) *Uploader {
	return &Uploader{
		store:      store,
		folderName: folderName,
		now:        time.Now,
	}
}

// NewUploaderFromConfig wires the backends selected by cfg. No network call
// is made until the first upload.
func NewUploaderFromConfig(cfg *config.Config) (*Uploader, error) {
	var auth *gcp.OAuthClient
	if cfg.NeedsOAuth() {
		auth = gcp.NewOAuthClient(cfg.ClientID, cfg.ClientSecret, cfg.RefreshToken, cfg.RedirectURL)
	}

	var store AssetStore
	switch cfg.StorageBackend {
	case config.BackendDrive:
		store = gcp.NewDriveStore(auth)
	case config.BackendGCS:
		store = gcp.NewGCSStore(cfg.GCSBucket)
	default:
		return nil, apperr.New(apperr.KindConfig, "uploader.new", "Unsupported STORAGE_BACKEND: "+cfg.StorageBackend)
	}

	uploader := NewUploader(store, cfg.FolderName)
	if cfg.BlogID != "" {
		uploader.WithPublisher(gcp.NewBloggerPublisher(auth, cfg.BlogID))
	}
	return uploader, nil
}

// WithPublisher enables publishing after each successful upload.
func (u *Uploader) WithPublisher(p Publisher) *Uploader {
	u.publisher = p
	return u
}

// StoreName names the backend in user-facing messages.
func (u *Uploader) StoreName() string {
	return u.store.Name()
}

// EnsureFolder finds or creates the destination folder.
func (u *Uploader) EnsureFolder(ctx context.Context) (string, error) {
	// The lookup is shared by every joined caller, so it must not die with
	// the request that happened to start it.
	v, err, _ := u.folders.Do(u.folderName, func() (any, error) {
		return u.store.EnsureFolder(context.WithoutCancel(ctx), u.folderName)
	})
	if err != nil {
		return "", fmt.Errorf("Failed to get/create folder: %w", err)
	}
	return v.(string), nil
}

// Upload stores img in the destination folder, makes it public and derives
// its public URLs. Steps that already succeeded are not undone when a later
// one fails.
func (u *Uploader) Upload(ctx context.Context, img *models.DownloadedImage) (*models.UploadedAsset, error) {
	format := sniff.Detect(img.Data)
	filename := fmt.Sprintf("push-image-%d.%s", u.now().UnixMilli(), format.Extension())
	logCtx := slog.With("filename", filename, "mimeType", format.MIMEType(), "sizeBytes", img.SizeBytes)
	logCtx.Info("Uploading image.", "store", u.store.Name())

	asset, err := u.upload(ctx, filename, format.MIMEType(), img.Data)
	if err != nil {
		logCtx.Error("Upload failed.", "error", err)
		return nil, apperr.Wrap(apperr.KindUpload, "uploader.upload", "Failed to upload to "+u.store.Name(), err)
	}

	if u.publisher != nil {
		post, err := u.publisher.Publish(ctx, asset)
		if err != nil {
			logCtx.Error("Publishing failed.", "error", err, "fileId", asset.FileID)
			return nil, apperr.Wrap(apperr.KindUpload, "uploader.publish", "Failed to upload image to Blogger", err)
		}
		asset.BlogID = u.publisher.BlogID()
		asset.BlogPost = post
	}

	logCtx.Info("Upload complete.", "fileId", asset.FileID)
	return asset, nil
}

func (u *Uploader) upload(ctx context.Context, filename, mimeType string, data []byte) (*models.UploadedAsset, error) {
	folderID, err := u.EnsureFolder(ctx)
	if err != nil {
		return nil, err
	}

	obj, err := u.store.Upload(ctx, folderID, filename, mimeType, data)
	if err != nil {
		return nil, err
	}

	if err := u.store.MakePublic(ctx, obj.ID); err != nil {
		return nil, err
	}

	return &models.UploadedAsset{
		FileID:   obj.ID,
		Filename: filename,
		MIMEType: mimeType,
		URLs:     u.store.PublicURLs(obj.ID),
		ViewLink: obj.ViewLink,
	}, nil
}
