// Package client talks to the SportOn REST API the way the admin dashboard does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// ErrBusy is returned when a mutation is attempted while another one from the
// same client is still in flight.
var ErrBusy = errors.New("another request is still in progress")

// APIError is a non-2xx response. Message comes from the {"error": ...} body
// when the server sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}

// File is an upload attached to a multipart request.
type File struct {
	Name    string
	Content io.Reader
}

// form is a multipart body; fields keep insertion order.
type form struct {
	keys   []string
	values map[string]string
	files  map[string]*File
}

func newForm() *form {
	return &form{values: map[string]string{}, files: map[string]*File{}}
}

func (f *form) set(key, value string) *form {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

func (f *form) file(key string, file *File) *form {
	if file != nil {
		f.files[key] = file
	}
	return f
}

func (f *form) encode() (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, k := range f.keys {
		if err := w.WriteField(k, f.values[k]); err != nil {
			return nil, "", err
		}
	}
	for k, file := range f.files {
		fw, err := w.CreateFormFile(k, file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

type Client struct {
	// BaseURL includes the API prefix, e.g. http://localhost:8080/api.
	BaseURL string
	Token   string
	HTTP    *http.Client

	busy atomic.Bool
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// mutate runs fn unless another mutation is running.
func (c *Client) mutate(fn func() error) error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)
	return fn()
}

// do sends one request. body may be nil, a *form, or any JSON-encodable
// value. out may be nil.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, headers ...string) error {
	var (
		rd          io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *form:
		r, ct, err := b.encode()
		if err != nil {
			return fmt.Errorf("encode form: %w", err)
		}
		rd, contentType = r, ct
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		rd, contentType = bytes.NewReader(raw), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
