package models

// DownloadedImage is the raw body of a fetched image.
type DownloadedImage struct {
	Data      []byte
	SizeBytes int
}

// StoredObject is what a storage backend reports after an upload.
type StoredObject struct {
	ID       string
	Name     string
	ViewLink string
}

// AssetURLs are the public URL variants derived from a stored object id.
type AssetURLs struct {
	Direct    string
	Download  string
	Thumbnail string
}

// BlogPost is the draft post created when Blogger publishing is enabled.
type BlogPost struct {
	ID       string `json:"id"`
	URL      string `json:"url,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// UploadedAsset describes a published image. The storage backend owns the
// object; nothing here is kept after the response is written.
type UploadedAsset struct {
	FileID   string
	Filename string
	MIMEType string
	URLs     AssetURLs
	ViewLink string
	BlogID   string
	BlogPost *BlogPost
}
