package content

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/matekkaland/internal/domain"
)

// maxImageBytes bounds fetched and decoded sticker images.
const maxImageBytes = 8 << 20

// decodeDataURI splits a base64 data URI into its MIME type and bytes.
func decodeDataURI(d domain.ImageData) (string, []byte, error) {
	s := string(d)
	if !strings.HasPrefix(s, "data:") {
		return "", nil, fmt.Errorf("%w: not a data URI", ErrInvalidImage)
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrInvalidImage)
	}
	mimeType, enc, _ := strings.Cut(meta, ";")
	if enc != "base64" {
		return "", nil, fmt.Errorf("%w: only base64 data URIs are supported", ErrInvalidImage)
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxImageBytes {
		return "", nil, fmt.Errorf("%w: image larger than %d bytes", ErrInvalidImage, maxImageBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return mimeType, data, nil
}

// encodeDataURI builds a base64 data URI.
func encodeDataURI(mimeType string, data []byte) domain.ImageData {
	return domain.ImageData("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// fetchImage downloads a URL image so it can be sent inline.
func fetchImage(ctx context.Context, client *http.Client, url string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", nil, fmt.Errorf("%w: image larger than %d bytes", ErrInvalidImage, maxImageBytes)
	}

	mimeType := "image/png"
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			mimeType = mt
		}
	}
	return mimeType, data, nil
}
