package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyFile       = errors.New("empty file")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// PublicPrefix is the URL prefix the upload directory is served under.
const PublicPrefix = "/uploads"

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Upload is an incoming file detached from the transport that received it.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// FromFileHeader opens a multipart file. The caller closes the returned closer.
func FromFileHeader(fh *multipart.FileHeader) (Upload, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return Upload{}, nil, err
	}
	return Upload{Filename: fh.Filename, Size: fh.Size, Content: f}, f, nil
}

type Local struct {
	root     string
	maxBytes int64
}

func NewLocal(root string, maxBytes int64) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: root, maxBytes: maxBytes}, nil
}

func (l *Local) Root() string {
	return l.root
}

// Save writes the upload under folder with a random name and returns the
// public path, e.g. /uploads/products/<uuid>.png.
func (l *Local) Save(ctx context.Context, folder string, up Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if up.Content == nil || up.Size == 0 {
		return "", ErrEmptyFile
	}
	if l.maxBytes > 0 && up.Size > l.maxBytes {
		return "", ErrFileTooLarge
	}

	br := bufio.NewReaderSize(up.Content, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", err
	}
	if len(head) == 0 {
		return "", ErrEmptyFile
	}
	ext, ok := allowedTypes[http.DetectContentType(head)]
	if !ok {
		return "", ErrUnsupportedType
	}

	folder = cleanFolder(folder)
	dir := filepath.Join(l.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	full := filepath.Join(dir, name)

	out, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	var src io.Reader = br
	if l.maxBytes > 0 {
		src = io.LimitReader(br, l.maxBytes+1)
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && l.maxBytes > 0 && n > l.maxBytes {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		return "", err
	}

	return path.Join(PublicPrefix, folder, name), nil
}

// Remove deletes a file previously returned by Save. Missing files and paths
// outside the upload prefix are ignored.
func (l *Local) Remove(_ context.Context, publicPath string) error {
	rel, ok := strings.CutPrefix(publicPath, PublicPrefix+"/")
	if !ok || rel == "" {
		return nil
	}
	rel = path.Clean("/" + rel)[1:]
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func cleanFolder(folder string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" || folder == "." {
		return "misc"
	}
	return folder
}
