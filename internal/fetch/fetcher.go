package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Lllllllleong/bloggerimageuploader/internal/apperr"
	"github.com/Lllllllleong/bloggerimageuploader/internal/models"
)

const (
	// UserAgent identifies the service to the hosts it fetches from.
	UserAgent = "Mozilla/5.0 (compatible; BloggerImageUploader/1.0)"
	// Timeout caps each individual fetch.
	Timeout = 10 * time.Second
	// MaxImageBytes is the largest image accepted (5 MiB).
	MaxImageBytes = 5 * 1024 * 1024
)

// HTTPError is returned when a host answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request to %s failed with status code %d", e.URL, e.StatusCode)
}

// Fetcher retrieves post pages and image bytes over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the fixed per-request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: Timeout},
	}
}

// NewFetcherWithClient uses client as is; the caller owns its timeout.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchHTML returns the body of the page at url as text.
func (f *Fetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstreamFetch, "fetch.html", "Failed to fetch WordPress post", err)
	}
	return string(body), nil
}

// FetchImage downloads the image at url. The size limit is checked once the
// whole body has been read; oversized images are rejected, never truncated.
func (f *Fetcher) FetchImage(ctx context.Context, url string) (*models.DownloadedImage, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDownload, "fetch.image", "Failed to download image", err)
	}

	if len(body) > MaxImageBytes {
		return nil, apperr.New(apperr.KindSizeLimit, "fetch.image",
			"Failed to download image: Image size exceeds 5MB limit")
	}

	return &models.DownloadedImage{
		Data:      body,
		SizeBytes: len(body),
	}, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", url, err)
	}
	return body, nil
}
