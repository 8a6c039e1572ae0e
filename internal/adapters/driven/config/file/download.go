package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
	"github.com/custodia-labs/marinebook/internal/logger"
)

// Ensure DownloadSink implements the interface.
var _ driven.FileSink = (*DownloadSink)(nil)

// DownloadSink writes exported files into a directory.
type DownloadSink struct {
	dir string
}

// NewDownloadSink creates a sink writing into dir. An empty dir means the
// current working directory.
func NewDownloadSink(dir string) *DownloadSink {
	if dir == "" {
		dir = "."
	}
	return &DownloadSink{dir: dir}
}

// Write saves content as dir/filename and returns the path. Only the base
// name of filename is used.
func (s *DownloadSink) Write(ctx context.Context, filename, mimeType string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", filename)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", err
	}
	logger.Debug("wrote %s (%s, %d bytes)", path, mimeType, len(content))
	return path, nil
}
