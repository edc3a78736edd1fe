package s3

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// MaxInlineBytes caps photos kept inline when no bucket is configured.
const MaxInlineBytes = 2 << 20

var ErrPhotoTooLarge = errors.New("photo too large")

// InlineStore keeps photos as data URLs inside the record itself. It is the
// fallback when no bucket is configured.
type InlineStore struct{}

func (InlineStore) Save(_ context.Context, file io.Reader, _ string, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxInlineBytes+1))
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if len(data) > MaxInlineBytes {
		return "", ErrPhotoTooLarge
	}
	if len(data) == 0 {
		return "", errors.New("empty photo")
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
