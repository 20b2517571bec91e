// Package uploader implements the three-step pre-signed upload protocol:
// request an upload slot from the provider, PUT the raw file bytes to the
// short-lived write URL, record the permanent asset URL. Failures are
// reported per file and never abort the remaining uploads.
package uploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bugseam/ticketing/pkg/ticketing"
)

// cacheControl matches what the tracker's asset CDN expects for uploads.
const cacheControl = "public, max-age=31536000"

const defaultTimeout = 120 * time.Second

// UploadSlot is the provider's answer to an upload request: a short-lived
// write URL, auth headers for that URL, and the permanent read URL the asset
// will have once uploaded.
type UploadSlot struct {
	UploadURL string
	AssetURL  string
	Headers   map[string]string
}

// SlotRequester is implemented by providers that can issue pre-signed
// upload slots for a file about to be transferred.
type SlotRequester interface {
	RequestUploadSlot(ctx context.Context, filename, contentType string, size int) (*UploadSlot, error)
}

// UploadedAsset records the permanent URL of a successfully uploaded file.
type UploadedAsset struct {
	FilePath string
	AssetURL string
}

// Uploader transfers attachment bytes to pre-signed URLs.
type Uploader struct {
	httpClient *http.Client
}

// New creates an uploader with the default transfer timeout.
func New() *Uploader {
	return NewWithTimeout(defaultTimeout)
}

// NewWithTimeout creates an uploader whose PUT requests are bounded by the
// given timeout. Zero or negative means the default.
func NewWithTimeout(timeout time.Duration) *Uploader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Uploader{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upload runs the protocol for one file. The returned result reports the
// outcome and names the stage that failed; assetURL is empty on failure.
func (u *Uploader) Upload(ctx context.Context, slots SlotRequester, path string) (string, ticketing.AttachmentUploadResult) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", failure(path, fmt.Sprintf("reading file: %v", err))
	}

	contentType := ContentTypeForFile(path)
	slot, err := slots.RequestUploadSlot(ctx, filepath.Base(path), contentType, len(data))
	if err != nil {
		return "", failure(path, fmt.Sprintf("requesting upload slot: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, slot.UploadURL, bytes.NewReader(data))
	if err != nil {
		return "", failure(path, fmt.Sprintf("creating upload request: %v", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", cacheControl)
	for key, value := range slot.Headers {
		req.Header.Set(key, value)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", failure(path, fmt.Sprintf("transferring bytes: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", failure(path, fmt.Sprintf("transferring bytes: unexpected status code %d: %s", resp.StatusCode, string(body)))
	}

	return slot.AssetURL, ticketing.AttachmentUploadResult{
		FilePath: path,
		Success:  true,
		Message:  "uploaded",
	}
}

// UploadAll uploads each path in order and returns the successfully uploaded
// assets plus one result per requested path, preserving input order. A failed
// upload does not stop the remaining ones.
func (u *Uploader) UploadAll(ctx context.Context, slots SlotRequester, paths []string) ([]UploadedAsset, []ticketing.AttachmentUploadResult) {
	assets := make([]UploadedAsset, 0, len(paths))
	results := make([]ticketing.AttachmentUploadResult, 0, len(paths))

	for _, path := range paths {
		assetURL, result := u.Upload(ctx, slots, path)
		if result.Success {
			assets = append(assets, UploadedAsset{FilePath: path, AssetURL: assetURL})
		}
		results = append(results, result)
	}
	return assets, results
}

// ContentTypeForFile returns the MIME type for a file based on its
// extension, falling back to a generic binary type.
func ContentTypeForFile(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func failure(path, message string) ticketing.AttachmentUploadResult {
	return ticketing.AttachmentUploadResult{
		FilePath: path,
		Success:  false,
		Message:  message,
	}
}
