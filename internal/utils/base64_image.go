package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrNotDataURI     = errors.New("not a base64 image data URI")
	ErrBadImageBase64 = errors.New("malformed base64 image payload")
)

// ImageFile is a decoded in-memory image ready for object storage.
type ImageFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// DecodeBase64Image decodes a "data:image/<ext>;base64,<payload>" string
// into an ImageFile named photo.<ext>.
func DecodeBase64Image(data string) (*ImageFile, error) {
	if !strings.HasPrefix(data, "data:image/") {
		return nil, ErrNotDataURI
	}

	meta, payload, found := strings.Cut(data, ";base64,")
	if !found || payload == "" {
		return nil, ErrNotDataURI
	}

	extension := meta[strings.LastIndex(meta, "/")+1:]
	if extension == "" {
		return nil, ErrNotDataURI
	}

	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrBadImageBase64
	}

	return &ImageFile{
		Name:        "photo." + extension,
		ContentType: "image/" + extension,
		Content:     content,
	}, nil
}
