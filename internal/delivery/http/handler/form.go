// Package handler holds helpers shared by the resource handlers.
package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Glenferdinza/sporton/internal/storage"
)

// Form is a parsed multipart or urlencoded body that tells absent fields
// apart from empty ones.
type Form struct {
	values map[string][]string
	files  map[string][]*multipart.FileHeader
}

func ParseForm(c *fiber.Ctx) (*Form, error) {
	ct := strings.ToLower(string(c.Request().Header.ContentType()))
	f := &Form{values: map[string][]string{}, files: map[string][]*multipart.FileHeader{}}

	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid multipart body")
		}
		f.values = mf.Value
		f.files = mf.File
	case strings.HasPrefix(ct, fiber.MIMEApplicationForm):
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			f.values[string(k)] = append(f.values[string(k)], string(v))
		})
	default:
		return nil, fiber.NewError(fiber.StatusUnsupportedMediaType, "expected multipart/form-data")
	}
	return f, nil
}

// Value returns nil when key was not sent.
func (f *Form) Value(key string) *string {
	vs, ok := f.values[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

func (f *Form) String(key string) string {
	if v := f.Value(key); v != nil {
		return *v
	}
	return ""
}

// File opens the upload under key. It returns a nil upload when no file was
// chosen. The caller must close the returned closer.
func (f *Form) File(key string) (*storage.Upload, io.Closer, error) {
	fhs := f.files[key]
	if len(fhs) == 0 || fhs[0].Filename == "" {
		return nil, nopCloser{}, nil
	}
	up, closer, err := storage.FromFileHeader(fhs[0])
	if err != nil {
		return nil, nopCloser{}, fiber.NewError(fiber.StatusBadRequest, "cannot read uploaded file")
	}
	return &up, closer, nil
}

// UploadError maps storage validation errors to HTTP errors.
func UploadError(err error) (*fiber.Error, bool) {
	switch {
	case errors.Is(err, storage.ErrEmptyFile), errors.Is(err, storage.ErrUnsupportedType):
		return fiber.NewError(fiber.StatusBadRequest, err.Error()), true
	case errors.Is(err, storage.ErrFileTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error()), true
	}
	return nil, false
}

// Deleted is the body returned by delete endpoints.
func Deleted(c *fiber.Ctx, what string) error {
	return c.JSON(fiber.Map{"message": what + " deleted"})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
