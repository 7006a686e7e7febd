// Package media previews images locally and uploads them to the hosted media service.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUploadFailed   = errors.New("image upload failed")
	ErrNotConfigured  = errors.New("media service is not configured")
	ErrNotImage       = errors.New("file is not a supported image")
	ErrTooLarge       = errors.New("image exceeds the 10 MB limit")
	ErrInvalidDataURL = errors.New("image data is not a valid data url")
)

// Asset describes an uploaded image.
type Asset struct {
	URL      string
	PublicID string
	Format   string
	Width    int
	Height   int
	Bytes    int
}

// Uploader is the media upload capability. Swapping the provider means
// implementing this interface.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (Asset, error)
}

// HTTPDoer is the subset of *http.Client used by the uploader.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Cloudinary uploads through an unsigned upload preset.
type Cloudinary struct {
	cloudName string
	preset    string
	baseURL   string
	http      HTTPDoer
}

// NewCloudinary creates the uploader for cloudName and preset.
func NewCloudinary(cloudName, preset string) *Cloudinary {
	return &Cloudinary{
		cloudName: strings.TrimSpace(cloudName),
		preset:    strings.TrimSpace(preset),
		baseURL:   "https://api.cloudinary.com/v1_1",
		http:      &http.Client{Timeout: 60 * time.Second},
	}
}

// SetHTTPClient swaps the transport, mainly for tests.
func (c *Cloudinary) SetHTTPClient(doer HTTPDoer) {
	if doer == nil {
		c.http = &http.Client{Timeout: 60 * time.Second}
		return
	}
	c.http = doer
}

// SetBaseURL points the uploader at another API root.
func (c *Cloudinary) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// Configured reports whether a cloud name and preset are set.
func (c *Cloudinary) Configured() bool {
	return c.cloudName != "" && c.preset != ""
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Bytes     int    `json:"bytes"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts data as multipart form with the `file` and `upload_preset` fields.
func (c *Cloudinary) Upload(ctx context.Context, name string, data []byte) (Asset, error) {
	if !c.Configured() {
		return Asset{}, fmt.Errorf("%w: %w", ErrUploadFailed, ErrNotConfigured)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", uploadFilename(name))
	if err != nil {
		return Asset{}, fmt.Errorf("%w: build form: %v", ErrUploadFailed, err)
	}
	if _, err := part.Write(data); err != nil {
		return Asset{}, fmt.Errorf("%w: build form: %v", ErrUploadFailed, err)
	}
	if err := writer.WriteField("upload_preset", c.preset); err != nil {
		return Asset{}, fmt.Errorf("%w: build form: %v", ErrUploadFailed, err)
	}
	if err := writer.Close(); err != nil {
		return Asset{}, fmt.Errorf("%w: build form: %v", ErrUploadFailed, err)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("[MEDIA] upload of %s failed: %v", name, err)
		return Asset{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Asset{}, fmt.Errorf("%w: read response: %v", ErrUploadFailed, err)
	}

	var parsed cloudinaryResponse
	decodeErr := json.Unmarshal(raw, &parsed)
	if resp.StatusCode >= http.StatusBadRequest {
		msg := strings.TrimSpace(parsed.Error.Message)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		log.Printf("[MEDIA] upload of %s rejected (%d): %s", name, resp.StatusCode, msg)
		return Asset{}, fmt.Errorf("%w: %s", ErrUploadFailed, msg)
	}
	if decodeErr != nil {
		return Asset{}, fmt.Errorf("%w: decode response: %v", ErrUploadFailed, decodeErr)
	}

	url := strings.TrimSpace(parsed.SecureURL)
	if url == "" {
		url = strings.TrimSpace(parsed.URL)
	}
	if url == "" {
		return Asset{}, fmt.Errorf("%w: response carried no url", ErrUploadFailed)
	}

	log.Printf("[MEDIA] uploaded %s as %s", name, parsed.PublicID)
	return Asset{
		URL:      url,
		PublicID: parsed.PublicID,
		Format:   parsed.Format,
		Width:    parsed.Width,
		Height:   parsed.Height,
		Bytes:    parsed.Bytes,
	}, nil
}

func uploadFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.NewString(), ext)
}
