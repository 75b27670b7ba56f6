package gcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/blogger/v3"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/bloggerimageuploader/internal/models"
)

func TestBloggerPublisher_Publish(t *testing.T) {
	var received blogger.Post
	var isDraft, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		isDraft = r.URL.Query().Get("isDraft")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "post-9",
			"url":     "https://example.blogspot.com/2026/10/push-image.html",
			"title":   received.Title,
			"content": received.Content,
		})
	}))
	defer server.Close()

	publisher := NewBloggerPublisher(nil, "blog-1",
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	publisher.now = func() time.Time { return time.UnixMilli(1760000000000) }

	post, err := publisher.Publish(context.Background(), &models.UploadedAsset{
		FileID:   "file-1",
		URLs:     models.AssetURLs{Direct: "https://lh3.googleusercontent.com/d/file-1"},
		ViewLink: "https://drive.google.com/file/d/file-1/view",
	})

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "/blogs/blog-1/posts"), path)
	assert.Equal(t, "true", isDraft)
	assert.Equal(t, "Push Image 1760000000000", received.Title)
	assert.Equal(t, []string{"push-image", "drive-upload", "temp"}, received.Labels)
	assert.Equal(t, "post-9", post.ID)
	assert.Equal(t, "https://example.blogspot.com/2026/10/push-image.html", post.URL)
	assert.Equal(t, "https://lh3.googleusercontent.com/d/file-1", post.ImageURL)
	assert.Equal(t, "blog-1", publisher.BlogID())
}

func TestFirstImageSrc(t *testing.T) {
	src, err := firstImageSrc(`<div><img alt="x"><img src="https://a.example/1.jpg"><img src="https://a.example/2.jpg"></div>`)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example/1.jpg", src)

	_, err = firstImageSrc(`<p>no image</p>`)
	assert.EqualError(t, err, "could not extract image URL from Blogger response")
}

func TestRenderPostContent(t *testing.T) {
	content, err := renderPostContent("https://lh3.googleusercontent.com/d/f1", "https://drive.google.com/file/d/f1/view", time.Unix(0, 0))

	require.NoError(t, err)
	assert.Contains(t, content, `src="https://lh3.googleusercontent.com/d/f1"`)
	assert.Contains(t, content, `href="https://drive.google.com/file/d/f1/view"`)
	assert.Contains(t, content, "Thu, 01 Jan 1970 00:00:00 UTC")
}
