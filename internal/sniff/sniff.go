// Package sniff classifies downloaded image bytes by their magic numbers.
package sniff

import "bytes"

// Format is a best-effort image classification, not an authoritative one.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	GIF  Format = "gif"
	WEBP Format = "webp"
)

var signatures = []struct {
	magic  []byte
	format Format
}{
	{magic: []byte{0xFF, 0xD8, 0xFF}, format: JPEG},
	{magic: []byte{0x89, 0x50, 0x4E, 0x47}, format: PNG},
	{magic: []byte{0x47, 0x49, 0x46}, format: GIF},
	// Only the RIFF container header is checked.
	{magic: []byte{0x52, 0x49, 0x46, 0x46}, format: WEBP},
}

var extensions = map[Format]string{
	JPEG: "jpg",
	PNG:  "png",
	GIF:  "gif",
	WEBP: "webp",
}

// Detect returns the format whose signature prefixes data. Data that matches
// no signature is reported as JPEG.
func Detect(data []byte) Format {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.magic) {
			return sig.format
		}
	}
	return JPEG
}

// MIMEType returns the image/* media type of f.
func (f Format) MIMEType() string {
	if _, ok := extensions[f]; !ok {
		return "image/jpeg"
	}
	return "image/" + string(f)
}

// Extension returns the canonical file extension of f, without the dot.
func (f Format) Extension() string {
	if ext, ok := extensions[f]; ok {
		return ext
	}
	return "jpg"
}
