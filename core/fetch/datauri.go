package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// ToDataURI downloads an image and returns it as a base64 data URI.
// The media type comes from the response, or is sniffed from the body.
func (f *HTTPFetcher) ToDataURI(ctx context.Context, imageURL string) (string, error) {
	resp, err := f.get(ctx, imageURL, "image/*", f.config.MaxImageBytes)
	if err != nil {
		return "", fmt.Errorf("image %s: %w", imageURL, err)
	}
	return DataURI(resp.contentType, resp.body), nil
}

// DataURI encodes data as a base64 data URI of the given content type.
func DataURI(contentType string, data []byte) string {
	mediaType := ""
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = mt
		}
	}
	if mediaType == "" {
		mediaType = strings.SplitN(http.DetectContentType(data), ";", 2)[0]
	}

	var b strings.Builder
	b.WriteString("data:")
	b.WriteString(mediaType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}
