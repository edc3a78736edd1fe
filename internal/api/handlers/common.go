// server/internal/api/handlers/common.go
package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sppg-kitchen-api-server/internal/api/middleware"
	"sppg-kitchen-api-server/internal/distribution"
	"sppg-kitchen-api-server/internal/export"
	"sppg-kitchen-api-server/internal/procurement"
	"sppg-kitchen-api-server/internal/s3"
	"sppg-kitchen-api-server/internal/staff"
	"sppg-kitchen-api-server/internal/stock"
	"sppg-kitchen-api-server/internal/store"
)

// PhotoStore keeps evidence photos and returns the URL they are served from.
type PhotoStore interface {
	Save(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
}

// NewID is the default record id generator.
func NewID() string { return uuid.NewString() }

var badRequest = []error{
	distribution.ErrEmptyBatch,
	distribution.ErrMissingRecipient,
	distribution.ErrBadDestination,
	distribution.ErrBadPortions,
	distribution.ErrRepeated,
	stock.ErrUnknownKind,
	stock.ErrInvalidAmount,
	procurement.ErrNoItems,
	procurement.ErrInvalidItem,
	procurement.ErrNegativePrice,
	procurement.ErrBadFunding,
	procurement.ErrInvoiceRequired,
	staff.ErrNameRequired,
	staff.ErrUnknownDivision,
	staff.ErrUsernameRequired,
	s3.ErrPhotoTooLarge,
}

var conflict = []error{
	store.ErrDuplicateID,
	distribution.ErrNotDue,
	procurement.ErrNotOrdered,
	procurement.ErrAlreadyReceived,
	staff.ErrUsernameTaken,
	staff.ErrMasterAdmin,
	export.ErrNothingToExport,
}

// respondError maps domain errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var dup *distribution.DuplicateDestinationError
	switch {
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "day": dup.Day, "destinations": dup.Destinations})
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	for _, e := range badRequest {
		if errors.Is(err, e) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	for _, e := range conflict {
		if errors.Is(err, e) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// actor names the caller in performedBy fields.
func actor(c *gin.Context) string {
	if claims, ok := middleware.Claims(c); ok {
		return claims.Username
	}
	return ""
}

// savePhoto stores the multipart "photo" field under prefix/<id>/<name>.
func savePhoto(c *gin.Context, photos PhotoStore, prefix, id, name string) (string, error) {
	fh, err := c.FormFile("photo")
	if err != nil {
		return "", fmt.Errorf("%w: photo file is required", errPhotoMissing)
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", errPhotoMissing, err)
	}
	defer f.Close()

	ext := strings.ToLower(path.Ext(fh.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("%s/%s/%s-%s%s", prefix, id, name, uuid.NewString()[:8], ext)
	url, err := photos.Save(c.Request.Context(), f, key, fh.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, s3.ErrPhotoTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", errPhotoUpload, err)
	}
	return url, nil
}

var (
	errPhotoMissing = errors.New("photo is required")
	errPhotoUpload  = errors.New("photo upload failed")
)

// respondPhotoError reports a capture failure; the transition does not happen.
func respondPhotoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errPhotoUpload):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// sendPDF renders into memory first so a failed render still gets a JSON error.
func sendPDF(c *gin.Context, filename string, render func(w io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
