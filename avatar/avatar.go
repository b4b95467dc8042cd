// Package avatar uploads a new profile picture and keeps the sidebar avatar
// in sync with the result.
package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/config"
	"github.com/vcrobe/adminnav/console"
)

var (
	// ErrNotImage is returned for a file whose content type is not image/*.
	ErrNotImage = errors.New("avatar: not an image")
	// ErrTooLarge is returned for a file over the configured size limit.
	ErrTooLarge = errors.New("avatar: file too large")
)

// File is the picture chosen by the user.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Result is the upload endpoint's JSON response.
type Result struct {
	Success   bool   `json:"success"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Message   string `json:"message,omitempty"`
}

// UploadError reports a non-2xx response. Message is the server's
// explanation when the body carried one.
type UploadError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *UploadError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upload failed: %s: %s", e.Status, e.Message)
	}
	return "upload failed: " + e.Status
}

// Uploader posts avatar files to the upload endpoint.
type Uploader struct {
	client  *http.Client
	base    *url.URL
	cfg     config.AvatarConfig
	header  string
	value   string
	sources []TokenSource
	logger  *zap.Logger
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(u *Uploader) { u.client = c }
}

// WithBaseURL resolves the endpoint against base.
func WithBaseURL(base *url.URL) Option {
	return func(u *Uploader) { u.base = base }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(u *Uploader) { u.logger = l }
}

// WithTokenSources sets where the CSRF token is looked up, in precedence order.
func WithTokenSources(sources ...TokenSource) Option {
	return func(u *Uploader) { u.sources = sources }
}

// NewUploader creates an Uploader.
func NewUploader(cfg *config.Config, opts ...Option) *Uploader {
	u := &Uploader{
		client: http.DefaultClient,
		cfg:    cfg.Avatar,
		header: cfg.Request.Header,
		value:  cfg.Request.HeaderValue,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = console.OrNop(u.logger).Named("avatar")
	return u
}

// Validate checks the content type and size of f.
func (u *Uploader) Validate(f File) error {
	if !strings.HasPrefix(f.ContentType, "image/") {
		return ErrNotImage
	}
	if f.Size > u.cfg.MaxBytes {
		return ErrTooLarge
	}
	return nil
}

// Upload validates f and posts it as a multipart form. A 2xx response is
// decoded into Result, which may still report Success false. Any other
// status is returned as an *UploadError.
func (u *Uploader) Upload(ctx context.Context, f File) (Result, error) {
	if err := u.Validate(f); err != nil {
		return Result{}, err
	}

	body, contentType, err := u.form(f)
	if err != nil {
		return Result{}, err
	}

	endpoint, err := u.endpoint()
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Result{}, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(u.header, u.value)
	if token := ResolveToken(u.sources...); token != "" {
		req.Header.Set(u.cfg.CSRFHeader, token)
	} else {
		u.logger.Warn("no csrf token found")
	}

	u.logger.Debug("uploading", zap.String("file", f.Name), zap.Int64("size", f.Size))
	resp, err := u.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("uploading avatar: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ue := &UploadError{StatusCode: resp.StatusCode, Status: resp.Status}
		var r Result
		if json.Unmarshal(raw, &r) == nil {
			ue.Message = r.Message
		} else {
			u.logger.Debug("upload error body is not json", zap.ByteString("body", raw))
		}
		return Result{}, ue
	}

	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return Result{}, fmt.Errorf("decoding upload response: %w", err)
	}
	return r, nil
}

func (u *Uploader) form(f File) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, u.cfg.Field, f.Name))
	h.Set("Content-Type", f.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating form part: %w", err)
	}
	if f.Body != nil {
		if _, err := io.Copy(part, f.Body); err != nil {
			return nil, "", fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func (u *Uploader) endpoint() (string, error) {
	ref, err := url.Parse(u.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint %q: %w", u.cfg.Endpoint, err)
	}
	if u.base == nil {
		return ref.String(), nil
	}
	return u.base.ResolveReference(ref).String(), nil
}
