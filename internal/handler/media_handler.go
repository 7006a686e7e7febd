package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/blogai/internal/form"
	"github.com/blogai/internal/media"
	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
)

const imageField = "image"

// readImagePreview decodes the optional image file of a multipart form.
// ok is false when no file was attached.
func readImagePreview(c *gin.Context) (preview media.Preview, ok bool, err error) {
	header, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return media.Preview{}, false, nil
		}
		return media.Preview{}, false, err
	}
	if header.Size == 0 {
		return media.Preview{}, false, nil
	}

	file, err := header.Open()
	if err != nil {
		return media.Preview{}, false, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, header.Size+1))
	if err != nil {
		return media.Preview{}, false, fmt.Errorf("read upload: %w", err)
	}
	preview, err = media.MakePreview(header.Filename, data)
	if err != nil {
		return media.Preview{}, false, err
	}
	return preview, true, nil
}

// PreviewImage decodes the chosen image locally and returns the preview
// fragment. Nothing is uploaded until the form is saved.
func (a *API) PreviewImage(c *gin.Context) {
	preview, ok, err := readImagePreview(c)
	if err == nil && !ok {
		err = media.ErrNotImage
	}
	if err != nil {
		message := previewErrorMessage(err)
		if wantsJSON(c) {
			respondError(c, http.StatusUnprocessableEntity, message)
			return
		}
		c.HTML(http.StatusUnprocessableEntity, "image_preview.html", gin.H{"error": message})
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{
			"dataUrl":     preview.DataURL,
			"originalUrl": preview.Original,
			"width":       preview.Width,
			"height":      preview.Height,
			"resized":     preview.Resized,
		})
		return
	}
	c.HTML(http.StatusOK, "image_preview.html", gin.H{"preview": preview})
}

func previewErrorMessage(err error) string {
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return "Image must be smaller than 10MB"
	case errors.Is(err, media.ErrNotImage):
		return "Please choose an image file"
	default:
		return "Could not read the selected image"
	}
}

// attachFormImage moves an attached file into f.ImagePreview as the original
// bytes, so a re-rendered form can resubmit it. An attached file wins over a
// pending preview.
func attachFormImage(c *gin.Context, f *form.PostForm) error {
	preview, ok, err := readImagePreview(c)
	if err != nil {
		return fmt.Errorf("%w: %v", media.ErrUploadFailed, err)
	}
	if ok {
		f.ImagePreview = preview.Original
	}
	return nil
}

// resolveFormImage turns the pending image, or else the current URL, into a
// hosted URL before saving. The returned error means the save must be
// aborted.
func (a *API) resolveFormImage(c *gin.Context, f *form.PostForm) error {
	url, err := a.media.ResolveImage(c.Request.Context(), a.currentUser(c).Email, f.PendingImage())
	if err != nil {
		return err
	}
	f.FeaturedImage = url
	f.ImagePreview = ""
	return nil
}

func notifyUploadFailure(c *gin.Context, err error) {
	message := "Failed to upload image. Please try again."
	if errors.Is(err, media.ErrNotConfigured) {
		message = "Image uploads are not configured."
	}
	session.Failure(c, "Upload failed", message)
}
