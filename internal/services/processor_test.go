package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/bloggerimageuploader/internal/apperr"
	"github.com/Lllllllleong/bloggerimageuploader/internal/config"
	"github.com/Lllllllleong/bloggerimageuploader/internal/fetch"
	"github.com/Lllllllleong/bloggerimageuploader/internal/models"
)

// wordpressSite serves a post page at /post and image bytes at /img/a.jpg.
type wordpressSite struct {
	server *httptest.Server
	hits   atomic.Int32
}

func newWordpressSite(t *testing.T, page string, image []byte) *wordpressSite {
	t.Helper()
	site := &wordpressSite{}
	site.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.hits.Add(1)
		switch r.URL.Path {
		case "/post":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(page))
		case "/img/a.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(image)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(site.server.Close)
	return site
}

func newTestProcessor(site *wordpressSite, store AssetStore, password string) *ProcessorFunction {
	cfg := &config.Config{APIPassword: password}
	uploader := NewUploader(store, "WordPress Thumbnails")
	uploader.now = fixedClock
	return newProcessor(cfg, fetch.NewFetcherWithClient(site.server.Client()), uploader)
}

func expectSuccessfulUpload(store *MockAssetStore, data []byte) {
	store.On("EnsureFolder", mock.Anything, "WordPress Thumbnails").Return("folder-1", nil)
	store.On("Upload", mock.Anything, "folder-1", "push-image-1700000000123.jpg", "image/jpeg", data).
		Return(&models.StoredObject{ID: "abc123", ViewLink: "https://drive.google.com/file/d/abc123/view"}, nil)
	store.On("MakePublic", mock.Anything, "abc123").Return(nil)
}

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

const ogPage = `<html><head>
<meta property="og:image" content="/img/a.jpg">
</head><body><img src="https://elsewhere.example/b.png"></body></html>`

func TestProcess_UploadsFirstImage(t *testing.T) {
	site := newWordpressSite(t, ogPage, jpegBytes)
	store := new(MockAssetStore)
	expectSuccessfulUpload(store, jpegBytes)
	processor := newTestProcessor(site, store, "")

	resp, err := processor.Process(context.Background(), &models.ProcessRequest{PostURL: site.server.URL + "/post"})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "https://lh3.googleusercontent.com/d/abc123", resp.ImageURL)
	assert.Equal(t, "push-image-1700000000123.jpg", resp.Filename)
	assert.Equal(t, "abc123", resp.FileID)
	assert.Equal(t, "https://drive.google.com/uc?id=abc123", resp.AlternativeURLs.DriveDownload)
	assert.Equal(t, "https://drive.google.com/thumbnail?id=abc123&sz=w1000", resp.AlternativeURLs.DriveThumbnail)
	assert.Equal(t, "https://drive.google.com/file/d/abc123/view", resp.DriveViewLink)
	assert.Equal(t, site.server.URL+"/img/a.jpg", resp.OriginalImage)
	assert.Equal(t, "Image uploaded to Google Drive successfully.", resp.Message)
	store.AssertExpectations(t)
}

func TestProcess_ValidationHappensBeforeNetwork(t *testing.T) {
	tests := []struct {
		name    string
		postURL string
		wantMsg string
	}{
		{name: "missing url", postURL: "", wantMsg: "Post URL is required"},
		{name: "not a url", postURL: "not a url", wantMsg: "Invalid URL format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newWordpressSite(t, ogPage, jpegBytes)
			store := new(MockAssetStore)
			processor := newTestProcessor(site, store, "")

			_, err := processor.Process(context.Background(), &models.ProcessRequest{PostURL: tt.postURL})

			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Zero(t, site.hits.Load())
			store.AssertNotCalled(t, "EnsureFolder", mock.Anything, mock.Anything)
		})
	}
}

func TestProcess_Password(t *testing.T) {
	t.Run("wrong password is rejected before any fetch", func(t *testing.T) {
		site := newWordpressSite(t, ogPage, jpegBytes)
		store := new(MockAssetStore)
		processor := newTestProcessor(site, store, "s3cret")

		_, err := processor.Process(context.Background(), &models.ProcessRequest{
			PostURL:  site.server.URL + "/post",
			Password: "wrong",
		})

		require.Error(t, err)
		var appErr *apperr.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperr.KindAuth, appErr.Kind)
		assert.Equal(t, "Authentication failed", appErr.Message)
		assert.Equal(t, "Invalid or missing password", appErr.Detail)
		assert.Zero(t, site.hits.Load())
	})

	t.Run("missing password is rejected even without a url", func(t *testing.T) {
		site := newWordpressSite(t, ogPage, jpegBytes)
		processor := newTestProcessor(site, new(MockAssetStore), "s3cret")

		_, err := processor.Process(context.Background(), &models.ProcessRequest{})

		assert.True(t, apperr.IsKind(err, apperr.KindAuth))
	})

	t.Run("exact password proceeds", func(t *testing.T) {
		site := newWordpressSite(t, ogPage, jpegBytes)
		store := new(MockAssetStore)
		expectSuccessfulUpload(store, jpegBytes)
		processor := newTestProcessor(site, store, "s3cret")

		resp, err := processor.Process(context.Background(), &models.ProcessRequest{
			PostURL:  site.server.URL + "/post",
			Password: "s3cret",
		})

		require.NoError(t, err)
		assert.True(t, resp.Success)
	})
}

func TestProcess_NoImages(t *testing.T) {
	site := newWordpressSite(t, `<html><body><p>text only</p></body></html>`, jpegBytes)
	store := new(MockAssetStore)
	processor := newTestProcessor(site, store, "")

	_, err := processor.Process(context.Background(), &models.ProcessRequest{PostURL: site.server.URL + "/post"})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNoContent))
	assert.Equal(t, "No images found in the post", err.Error())
	assert.EqualValues(t, 1, site.hits.Load())
}

func TestProcess_PostFetchFailure(t *testing.T) {
	site := newWordpressSite(t, ogPage, jpegBytes)
	processor := newTestProcessor(site, new(MockAssetStore), "")

	_, err := processor.Process(context.Background(), &models.ProcessRequest{PostURL: site.server.URL + "/missing"})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUpstreamFetch))
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Failed to fetch WordPress post", appErr.Message)
}

func TestProcess_OversizedImageIsNeverUploaded(t *testing.T) {
	big := bytes.Repeat([]byte{0xFF}, fetch.MaxImageBytes+1)
	site := newWordpressSite(t, ogPage, big)
	store := new(MockAssetStore)
	processor := newTestProcessor(site, store, "")

	_, err := processor.Process(context.Background(), &models.ProcessRequest{PostURL: site.server.URL + "/post"})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindSizeLimit))
	assert.Equal(t, "Failed to download image: Image size exceeds 5MB limit", err.Error())
	store.AssertNotCalled(t, "EnsureFolder", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_UploadFailure(t *testing.T) {
	site := newWordpressSite(t, ogPage, jpegBytes)
	store := new(MockAssetStore)
	store.On("EnsureFolder", mock.Anything, mock.Anything).Return("", errors.New("invalid_grant"))
	processor := newTestProcessor(site, store, "")

	_, err := processor.Process(context.Background(), &models.ProcessRequest{PostURL: site.server.URL + "/post"})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUpload))
	assert.Equal(t, "Failed to upload to Google Drive: Failed to get/create folder: invalid_grant", err.Error())
}

func TestNewProcessor_RejectsIncompleteConfig(t *testing.T) {
	_, err := NewProcessor(&config.Config{StorageBackend: config.BackendDrive})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfig))
	assert.Contains(t, err.Error(), "Missing required environment variables")
}
