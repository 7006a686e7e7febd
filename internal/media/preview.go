package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxImageBytes   = 10 << 20
	maxPreviewWidth = 800
	jpegQuality     = 85
)

// Preview is the locally decoded image shown before the form is saved.
// DataURL is for display only; Original holds the selected file unchanged
// and is what gets uploaded.
type Preview struct {
	Name     string
	DataURL  string
	Original string
	Format   string
	Width    int
	Height   int
	Resized  bool
}

// MakePreview decodes data without any network call. Images wider than 800px
// get a downscaled JPEG for display; the original bytes are kept as they are.
func MakePreview(name string, data []byte) (Preview, error) {
	if len(data) > maxImageBytes {
		return Preview{}, ErrTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return Preview{}, ErrNotImage
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Preview{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	original := EncodeDataURL(http.DetectContentType(data), data)
	preview := Preview{Name: name, Original: original, Format: format, Width: w, Height: h}

	if w <= maxPreviewWidth {
		preview.DataURL = original
		return preview, nil
	}

	newH := h * maxPreviewWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxPreviewWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Preview{}, fmt.Errorf("encode preview: %w", err)
	}
	preview.DataURL = EncodeDataURL("image/jpeg", buf.Bytes())
	preview.Format = "jpeg"
	preview.Width = maxPreviewWidth
	preview.Height = newH
	preview.Resized = true
	return preview, nil
}

// EncodeDataURL wraps data in a base64 data URL.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL returns the mime type and payload of a base64 data URL.
func DecodeDataURL(value string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(value), "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(data) > maxImageBytes {
		return "", nil, ErrTooLarge
	}
	return strings.TrimSuffix(meta, ";base64"), data, nil
}

// IsRemote reports whether value is already an http(s) URL.
func IsRemote(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}

// IsDataURL reports whether value is an inline preview.
func IsDataURL(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "data:")
}
