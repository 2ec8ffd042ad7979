package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/resolveit/complaints-api/pkg/errors"
)

// LocalStorage persists complaint attachments on disk under a base directory.
type LocalStorage struct {
	baseDir      string
	maxSizeBytes int64
	allowedMIMEs map[string]struct{}
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string, maxSizeBytes int64, allowedMIMEs []string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	mimes := make(map[string]struct{}, len(allowedMIMEs))
	for _, m := range allowedMIMEs {
		mimes[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	return &LocalStorage{baseDir: baseDir, maxSizeBytes: maxSizeBytes, allowedMIMEs: mimes}, nil
}

// SaveAttachment validates and stores an uploaded file, returning the stored filename.
func (s *LocalStorage) SaveAttachment(header *multipart.FileHeader) (string, error) {
	if s.maxSizeBytes > 0 && header.Size > s.maxSizeBytes {
		return "", appErrors.ErrAttachmentTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrExternal.Code, appErrors.ErrExternal.Status, "open uploaded file")
	}
	defer src.Close() //nolint:errcheck

	// Sniff content type from the first 512 bytes rather than trusting the header.
	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrExternal.Code, appErrors.ErrExternal.Status, "read uploaded file")
	}
	contentType := http.DetectContentType(head[:n])
	if len(s.allowedMIMEs) > 0 {
		base := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
		if _, ok := s.allowedMIMEs[base]; !ok {
			return "", appErrors.Clone(appErrors.ErrUnsupportedMedia, fmt.Sprintf("attachment type %s is not allowed", base))
		}
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrExternal.Code, appErrors.ErrExternal.Status, "rewind uploaded file")
	}

	filename := uuid.NewString() + "_" + filepath.Base(header.Filename)
	dst, err := os.Create(s.resolve(filename))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrExternal.Code, appErrors.ErrExternal.Status, "create attachment file")
	}
	defer dst.Close() //nolint:errcheck

	if _, err := io.Copy(dst, src); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrExternal.Code, appErrors.ErrExternal.Status, "write attachment file")
	}
	return filename, nil
}

// Open returns a read-only handle for a stored attachment.
func (s *LocalStorage) Open(filename string) (*os.File, error) {
	file, err := os.Open(s.resolve(filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrExternal.Code, appErrors.ErrExternal.Status, "open attachment file")
	}
	return file, nil
}

func (s *LocalStorage) resolve(filename string) string {
	// filepath.Base strips any path traversal attempt from the stored name.
	return filepath.Join(s.baseDir, filepath.Base(filename))
}
