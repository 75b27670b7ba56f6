package services

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/Lllllllleong/bloggerimageuploader/internal/apperr"
	"github.com/Lllllllleong/bloggerimageuploader/internal/config"
	"github.com/Lllllllleong/bloggerimageuploader/internal/fetch"
	"github.com/Lllllllleong/bloggerimageuploader/internal/models"
	"github.com/Lllllllleong/bloggerimageuploader/internal/scrape"
)

// ProcessorFunction holds the dependencies of the post-to-image pipeline.
type ProcessorFunction struct {
	fetcher  *fetch.Fetcher
	uploader *Uploader
	config   *config.Config
}

// NewProcessor validates cfg and wires the pipeline. Backend clients are
// created lazily on first use.
func NewProcessor(cfg *config.Config) (*ProcessorFunction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	uploader, err := NewUploaderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("Processor initialized.",
		"storageBackend", cfg.StorageBackend,
		"folderName", cfg.FolderName,
		"bloggerEnabled", cfg.BlogID != "",
		"passwordRequired", cfg.PasswordRequired(),
	)
	return newProcessor(cfg, fetch.NewFetcher(), uploader), nil
}

func newProcessor(cfg *config.Config, fetcher *fetch.Fetcher, uploader *Uploader) *ProcessorFunction {
	return &ProcessorFunction{
		fetcher:  fetcher,
		uploader: uploader,
		config:   cfg,
	}
}

// Uploader exposes the configured uploader.
func (f *ProcessorFunction) Uploader() *Uploader {
	return f.uploader
}

// Process turns a post URL into a publicly hosted copy of the post's image.
// Stages run strictly in order and the first failure ends the request.
func (f *ProcessorFunction) Process(ctx context.Context, req *models.ProcessRequest) (*models.ProcessResponse, error) {
	logCtx := slog.With("postUrl", req.PostURL)

	// --- 1. Authenticate ---
	if !f.authenticate(req.Password) {
		logCtx.Warn("Rejected request with invalid or missing password.")
		return nil, apperr.New(apperr.KindAuth, "process.authenticate", "Authentication failed").
			WithDetail("Invalid or missing password")
	}

	// --- 2. Validate ---
	if req.PostURL == "" {
		return nil, apperr.New(apperr.KindValidation, "process.validate", "Post URL is required")
	}
	if !scrape.IsValidURL(req.PostURL) {
		return nil, apperr.New(apperr.KindValidation, "process.validate", "Invalid URL format")
	}

	// --- 3. Fetch the post ---
	html, err := f.fetcher.FetchHTML(ctx, req.PostURL)
	if err != nil {
		logCtx.Warn("Failed to fetch post.", "error", err)
		return nil, err
	}

	// --- 4. Extract candidates, first one wins ---
	baseURL, err := scrape.Origin(req.PostURL)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "process.validate", "Invalid URL format", err)
	}
	imageURLs := scrape.ExtractImageURLs(html, baseURL)
	if len(imageURLs) == 0 {
		logCtx.Info("No images found in post.")
		return nil, apperr.New(apperr.KindNoContent, "process.extract", "No images found in the post")
	}
	imageURL := imageURLs[0]
	logCtx = logCtx.With("imageUrl", imageURL)
	logCtx.Info("Selected image.", "candidates", len(imageURLs))

	// --- 5. Download ---
	img, err := f.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		logCtx.Error("Failed to download image.", "error", err)
		return nil, err
	}

	// --- 6. Upload ---
	asset, err := f.uploader.Upload(ctx, img)
	if err != nil {
		return nil, err
	}

	logCtx.Info("Processing complete.", "fileId", asset.FileID)
	return &models.ProcessResponse{
		Success:  true,
		ImageURL: asset.URLs.Direct,
		Filename: asset.Filename,
		FileID:   asset.FileID,
		AlternativeURLs: models.AlternativeURLs{
			DriveDownload:  asset.URLs.Download,
			DriveThumbnail: asset.URLs.Thumbnail,
		},
		DriveViewLink: asset.ViewLink,
		OriginalImage: imageURL,
		Message:       "Image uploaded to " + f.uploader.StoreName() + " successfully.",
		BlogID:        asset.BlogID,
		BlogPost:      asset.BlogPost,
	}, nil
}

// authenticate accepts any password when none is configured.
func (f *ProcessorFunction) authenticate(password string) bool {
	if !f.config.PasswordRequired() {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(f.config.APIPassword)) == 1
}
