// Package stage materializes the pipeline working directory from a template tree.
package stage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/me/createtaxdb/internal/logging"
)

// DefaultExclude lists the entry names never copied into the working
// directory: platform state, runner state, prior results and package managers.
var DefaultExclude = []string{
	"latch",
	".latch",
	"nextflow",
	".nextflow",
	"work",
	"results",
	"miniconda",
	"anaconda3",
	"mambaforge",
}

// Copier copies a template tree into a destination, skipping excluded names.
type Copier struct {
	exclude map[string]bool
	logger  *slog.Logger
}

// NewCopier creates a Copier that skips entries named in exclude at every level.
func NewCopier(exclude []string, logger *slog.Logger) *Copier {
	if logger == nil {
		logger = logging.Discard()
	}
	set := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		set[name] = true
	}
	return &Copier{exclude: set, logger: logger.With("component", "stage")}
}

// CopyTree copies src into dst.
//
// Existing directories under dst are merged and existing files overwritten.
// Symlinks are followed; links whose target does not exist are skipped, as
// are directory links back to one of their own ancestors.
// Excluded names that are absent from src are simply never seen.
func (c *Copier) CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stage source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("stage source %s is not a directory", src)
	}

	absDst, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("stage destination: %w", err)
	}
	return c.copyDir(src, absDst, absDst, []fs.FileInfo{info})
}

// copyDir copies src into dst. ancestors holds src and every directory above
// it in the walk, with src last.
func (c *Copier) copyDir(src, dst, root string, ancestors []fs.FileInfo) error {
	mode := ancestors[len(ancestors)-1].Mode()
	if err := os.MkdirAll(dst, mode.Perm()|0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", src, err)
	}

	for _, entry := range entries {
		if c.exclude[entry.Name()] {
			continue
		}
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		// The destination may live inside the source tree.
		if abs, err := filepath.Abs(srcPath); err == nil && abs == root {
			continue
		}

		// Stat follows symlinks.
		info, err := os.Stat(srcPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && entry.Type()&fs.ModeSymlink != 0 {
				c.logger.Debug("skipping dangling symlink", "path", srcPath)
				continue
			}
			return fmt.Errorf("stat %s: %w", srcPath, err)
		}

		switch {
		case info.IsDir():
			if revisits(ancestors, info) {
				c.logger.Debug("skipping symlink loop", "path", srcPath)
				continue
			}
			if err := c.copyDir(srcPath, dstPath, root, append(ancestors[:len(ancestors):len(ancestors)], info)); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := copyFile(srcPath, dstPath, info); err != nil {
				return err
			}
		default:
			c.logger.Debug("skipping special file", "path", srcPath, "mode", info.Mode().String())
		}
	}
	return nil
}

func revisits(ancestors []fs.FileInfo, dir fs.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(a, dir) {
			return true
		}
	}
	return false
}

// copyFile copies src to dst, replacing dst and preserving mode and mtime.
func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	// Replace rather than truncate so a read-only or symlinked dst is not written through.
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("replace %s: %w", dst, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
