// Package assets resolves whether card art exists, either on the local
// filesystem or behind an HTTP image base URL.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/arcanaland/cantor/internal/config"
	"github.com/arcanaland/cantor/internal/ports"
)

// ErrAssetUnavailable wraps failures of the existence check itself.
var ErrAssetUnavailable = errors.New("asset unavailable")

// FileProber checks for art on the local filesystem.
type FileProber struct{}

func (FileProber) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	return info.Mode().IsRegular(), nil
}

// HTTPProber checks for art with a HEAD request. Any 2xx answer means present.
type HTTPProber struct {
	client *http.Client
}

func NewHTTPProber(client *http.Client) *HTTPProber {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPProber{client: client}
}

func (p *HTTPProber) Exists(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: build request: %v", ErrAssetUnavailable, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// ForImageDir picks the prober that matches an image dir prefix.
func ForImageDir(imageDir string, client *http.Client) ports.AssetProber {
	if config.IsRemote(imageDir) {
		return NewHTTPProber(client)
	}
	return FileProber{}
}
