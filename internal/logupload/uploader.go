// Package logupload delivers run logs to remote locations.
package logupload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Uploader copies a local file to a remote location.
type Uploader interface {
	Upload(ctx context.Context, localPath, remote string) error
}

// Router routes uploads to a scheme-specific Uploader.
type Router struct {
	handlers map[string]Uploader
}

// NewRouter creates a Router with the given scheme handlers.
func NewRouter(handlers map[string]Uploader) *Router {
	h := make(map[string]Uploader, len(handlers))
	for scheme, u := range handlers {
		if u != nil {
			h[scheme] = u
		}
	}
	return &Router{handlers: h}
}

// Upload dispatches on the scheme of remote.
func (r *Router) Upload(ctx context.Context, localPath, remote string) error {
	scheme, _ := ParseLocation(remote)
	if scheme == "" {
		scheme = SchemeFile
	}
	u, ok := r.handlers[scheme]
	if !ok {
		return fmt.Errorf("no uploader registered for scheme %q", scheme)
	}
	return u.Upload(ctx, localPath, remote)
}

// FileUploader copies files to local or shared-filesystem paths.
type FileUploader struct{}

// Upload copies localPath to the path of a file:// (or bare) location.
func (FileUploader) Upload(ctx context.Context, localPath, remote string) error {
	scheme, path := ParseLocation(remote)
	if scheme != "" && scheme != SchemeFile {
		return fmt.Errorf("file uploader: unsupported scheme %q", scheme)
	}
	if scheme == SchemeFile {
		// file:///abs/path and file://host/path both address a local path.
		_, p := splitHostPath(path)
		path = "/" + p
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := copyFile(localPath, path); err != nil {
		return fmt.Errorf("file uploader: %w", err)
	}
	return nil
}

// copyFile copies src to dst, creating parent directories as needed.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
