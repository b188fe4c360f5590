package detector

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const dataURIPrefix = "data:image/jpeg;base64,"

// Image is the photograph handed to a detector, referenced either by a
// remote URL or by a base64 data URI built from raw bytes.
type Image struct {
	url string
}

// ImageFromURL wraps a remote image URL
func ImageFromURL(url string) Image {
	return Image{url: url}
}

// ImageFromBytes wraps raw JPEG bytes as a base64 data URI
func ImageFromBytes(data []byte) Image {
	return Image{url: EncodeDataURI(data)}
}

// URL returns the image reference to embed in an LLM message
func (i Image) URL() string {
	return i.url
}

// EncodeDataURI encodes raw image bytes into a JPEG data URI
func EncodeDataURI(data []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI recovers the raw bytes from a data URI produced by
// EncodeDataURI. It inverts the encoding exactly.
func DecodeDataURI(uri string) ([]byte, error) {
	idx := strings.Index(uri, ",")
	if !strings.HasPrefix(uri, "data:") || idx < 0 {
		return nil, fmt.Errorf("not a data URI: %q", uri)
	}

	data, err := base64.StdEncoding.DecodeString(uri[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI payload: %w", err)
	}
	return data, nil
}
