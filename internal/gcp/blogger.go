package gcp

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"google.golang.org/api/blogger/v3"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/bloggerimageuploader/internal/models"
)

var postLabels = []string{"push-image", "drive-upload", "temp"}

var postTemplate = template.Must(template.New("post").Parse(`
<div style="text-align: center; margin: 20px 0;">
  <img src="{{.ImageURL}}"
       alt="Push notification image"
       style="max-width: 100%; height: auto;" />
</div>

<div style="font-size: 12px; color: #666; margin-top: 20px; text-align: center;">
  <p>Generated for push notification - {{.Generated}}</p>
  <p>Original: <a href="{{.ViewLink}}">View in Drive</a></p>
</div>
`))

// BloggerPublisher creates draft Blogger posts that embed uploaded images.
type BloggerPublisher struct {
	auth   *OAuthClient
	blogID string
	opts   []option.ClientOption
	now    func() time.Time

	once    sync.Once
	service *blogger.Service
	initErr error
}

func NewBloggerPublisher(auth *OAuthClient, blogID string, opts ...option.ClientOption) *BloggerPublisher {
	return &BloggerPublisher{
		auth:   auth,
		blogID: blogID,
		opts:   opts,
		now:    time.Now,
	}
}

func (p *BloggerPublisher) BlogID() string {
	return p.blogID
}

func (p *BloggerPublisher) client() (*blogger.Service, error) {
	p.once.Do(func() {
		var opts []option.ClientOption
		if p.auth != nil {
			opts = append(opts, option.WithTokenSource(p.auth.TokenSource()))
		}
		opts = append(opts, p.opts...)

		p.service, p.initErr = blogger.NewService(context.Background(), opts...)
		if p.initErr != nil {
			p.initErr = fmt.Errorf("failed to create Blogger client: %w", p.initErr)
			return
		}
		slog.Info("Blogger API initialized.", "blogId", p.blogID)
	})
	return p.service, p.initErr
}

// Publish creates a draft post showing the asset and returns the image URL
// as it appears in the stored post.
func (p *BloggerPublisher) Publish(ctx context.Context, asset *models.UploadedAsset) (*models.BlogPost, error) {
	svc, err := p.client()
	if err != nil {
		return nil, err
	}

	now := p.now()
	content, err := renderPostContent(asset.URLs.Direct, asset.ViewLink, now)
	if err != nil {
		return nil, err
	}

	post, err := svc.Posts.Insert(p.blogID, &blogger.Post{
		Title:   fmt.Sprintf("Push Image %d", now.UnixMilli()),
		Content: content,
		Labels:  postLabels,
	}).IsDraft(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	imageURL, err := firstImageSrc(post.Content)
	if err != nil {
		return nil, err
	}
	slog.Info("Blogger draft created.", "blogId", p.blogID, "postId", post.Id)

	return &models.BlogPost{
		ID:       post.Id,
		URL:      post.Url,
		ImageURL: imageURL,
	}, nil
}

func renderPostContent(imageURL, viewLink string, generated time.Time) (string, error) {
	var buf bytes.Buffer
	err := postTemplate.Execute(&buf, struct {
		ImageURL  string
		ViewLink  string
		Generated string
	}{
		ImageURL:  imageURL,
		ViewLink:  viewLink,
		Generated: generated.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render post content: %w", err)
	}
	return buf.String(), nil
}

// firstImageSrc returns the src of the first <img> in an HTML fragment.
func firstImageSrc(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse post content: %w", err)
	}
	src, ok := doc.Find("img[src]").First().Attr("src")
	if !ok || src == "" {
		return "", fmt.Errorf("could not extract image URL from Blogger response")
	}
	return src, nil
}
