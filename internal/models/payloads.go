package models

// These structs define the JSON payloads of the HTTP API.

// ProcessRequest is the body of POST /api/process.
type ProcessRequest struct {
	PostURL  string `json:"postUrl"`
	Password string `json:"password,omitempty"`
}

// AlternativeURLs are the secondary public URL forms of an uploaded image.
type AlternativeURLs struct {
	DriveDownload  string `json:"driveDownload"`
	DriveThumbnail string `json:"driveThumbnail"`
}

// ProcessResponse is the success body of POST /api/process.
type ProcessResponse struct {
	Success         bool            `json:"success"`
	ImageURL        string          `json:"imageUrl"`
	Filename        string          `json:"filename"`
	FileID          string          `json:"fileId"`
	AlternativeURLs AlternativeURLs `json:"alternativeUrls"`
	DriveViewLink   string          `json:"driveViewLink"`
	OriginalImage   string          `json:"originalImage"`
	Message         string          `json:"message"`
	BlogID          string          `json:"blogId,omitempty"`
	BlogPost        *BlogPost       `json:"blogPost,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HelloResponse is the body of GET /api/hello.
type HelloResponse struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

// ServiceDescription is the body of GET /.
type ServiceDescription struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
	Usage       ServiceUsage      `json:"usage"`
}

type ServiceUsage struct {
	Endpoint string            `json:"endpoint"`
	Method   string            `json:"method"`
	Body     map[string]string `json:"body"`
}
