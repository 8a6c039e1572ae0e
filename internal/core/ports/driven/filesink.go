package driven

import "context"

// FileSink saves in-memory content as a named file.
type FileSink interface {
	// Write stores content under filename and returns where it was written.
	Write(ctx context.Context, filename, mimeType string, content []byte) (string, error)
}
