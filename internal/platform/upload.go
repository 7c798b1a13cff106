package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ErrUploadRejected means the data service did not accept an upload.
var ErrUploadRejected = errors.New("latch upload rejected")

type startUploadRequest struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	PartCount   int    `json:"part_count"`
}

type startUploadResponse struct {
	Data struct {
		UploadID string   `json:"upload_id"`
		URLs     []string `json:"urls"`
	} `json:"data"`
}

type uploadPart struct {
	ETag       string `json:"ETag"`
	PartNumber int    `json:"PartNumber"`
}

type endUploadRequest struct {
	Path     string       `json:"path"`
	UploadID string       `json:"upload_id"`
	Parts    []uploadPart `json:"parts"`
}

// Upload copies localPath to a latch:// location through the platform data
// service, authenticating with the execution token.
//
// The file goes up as a single part: the service hands out a presigned URL,
// the file is PUT there and the returned ETag completes the upload.
func (c *Client) Upload(ctx context.Context, localPath, remote string) error {
	if !strings.HasPrefix(strings.ToLower(remote), "latch://") {
		return fmt.Errorf("%w: %s is not a latch:// location", ErrUploadRejected, remote)
	}
	token, err := c.token()
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}

	base := strings.TrimRight(c.config.DataURL, "/")

	var start startUploadResponse
	if err := c.postJSON(ctx, base+"/ldata/start-upload", token, startUploadRequest{
		Path:        remote,
		ContentType: "text/plain",
		PartCount:   1,
	}, &start); err != nil {
		return fmt.Errorf("%w: start: %w", ErrUploadRejected, err)
	}
	if start.Data.UploadID == "" || len(start.Data.URLs) != 1 {
		return fmt.Errorf("%w: start: want one upload URL, got %d", ErrUploadRejected, len(start.Data.URLs))
	}

	etag, err := c.putPart(ctx, start.Data.URLs[0], f, info.Size())
	if err != nil {
		return fmt.Errorf("%w: put: %w", ErrUploadRejected, err)
	}

	if err := c.postJSON(ctx, base+"/ldata/end-upload", token, endUploadRequest{
		Path:     remote,
		UploadID: start.Data.UploadID,
		Parts:    []uploadPart{{ETag: etag, PartNumber: 1}},
	}, nil); err != nil {
		return fmt.Errorf("%w: end: %w", ErrUploadRejected, err)
	}

	c.logger.Debug("uploaded file", "remote", remote, "bytes", info.Size())
	return nil
}

// putPart PUTs body to a presigned URL and returns the part's ETag.
// Presigned URLs carry their own authorization, so no token is sent.
func (c *Client) putPart(ctx context.Context, url string, body io.Reader, size int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return "", fmt.Errorf("creating HTTP request: %w", err)
	}
	req.ContentLength = size

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	io.Copy(io.Discard, resp.Body)

	etag := resp.Header.Get("ETag")
	if etag == "" {
		return "", errors.New("response has no ETag")
	}
	return etag, nil
}
