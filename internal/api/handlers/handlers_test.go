package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sppg-kitchen-api-server/internal/api/middleware"
	"sppg-kitchen-api-server/internal/auth"
	"sppg-kitchen-api-server/internal/models"
)

var wib = time.FixedZone("WIB", 7*3600)

func init() {
	gin.SetMode(gin.TestMode)
	auth.HashCost = bcrypt.MinCost
}

var (
	adminClaims = &auth.JWTClaims{
		UserID: models.MasterAdminID, Username: "aslap", FullName: "Moh. Fuadi",
		Role: models.RoleAdmin, Permissions: models.AllPermissions,
	}
	driverClaims = &auth.JWTClaims{
		UserID: "u-budi", Username: "budi", FullName: "Budi Santoso",
		Role: models.RoleRelawan, Permissions: []models.Permission{models.PermDistribute},
	}
)

// as injects claims the way Authenticate would.
func as(claims *auth.JWTClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetClaims(c, claims)
		c.Next()
	}
}

func seqIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doPhoto posts a multipart form with a "photo" file field.
func doPhoto(t *testing.T, r http.Handler, path string, photo []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if photo != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="photo"; filename="bukti.jpg"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// fakePhotos records saved keys and can be told to fail.
type fakePhotos struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakePhotos) Save(_ context.Context, file io.Reader, key, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

func (f *fakePhotos) saved() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys)
}

var errBucketDown = errors.New("bucket unavailable")
