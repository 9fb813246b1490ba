package filestorage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "", zerolog.Nop())
	require.NoError(t, err)

	url, err := ls.Upload(context.Background(), UploadRequest{
		Reader:      strings.NewReader("hello"),
		Filename:    "notes.PDF",
		ContentType: "application/pdf",
		Folder:      "docs/pdfs",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/docs/pdfs/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	data, err := os.ReadFile(ls.FullPath(url))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, ls.Delete(context.Background(), url))
	_, err = os.Stat(ls.FullPath(url))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, ls.Delete(context.Background(), url))
}

func TestLocalStorage_FolderCannotEscape(t *testing.T) {
	base := t.TempDir()
	ls, err := NewLocalStorage(base, "https://cdn.example.com/", zerolog.Nop())
	require.NoError(t, err)

	url, err := ls.Upload(context.Background(), UploadRequest{
		Reader:      strings.NewReader("x"),
		ContentType: "image/jpeg",
		Folder:      "../../etc",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/etc/"))
	assert.True(t, strings.HasPrefix(ls.FullPath(url), base))
}

func TestCloudinaryUploader(t *testing.T) {
	t.Run("posts preset and folder", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/image/upload", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "unilink", r.FormValue("upload_preset"))
			assert.Equal(t, "images/profile-images", r.FormValue("folder"))

			f, _, err := r.FormFile("file")
			require.NoError(t, err)
			body, _ := io.ReadAll(f)
			assert.Equal(t, "jpegbytes", string(body))

			_, _ = w.Write([]byte(`{"secure_url":"https://res.example.com/a.jpg"}`))
		}))
		defer srv.Close()

		u := NewCloudinaryUploader(srv.URL+"/", srv.Client(), zerolog.Nop())
		url, err := u.Upload(context.Background(), UploadRequest{
			Reader:   strings.NewReader("jpegbytes"),
			Filename: "a.jpg",
			Kind:     ResourceImage,
			Preset:   "unilink",
			Folder:   "images/profile-images",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://res.example.com/a.jpg", url)
	})

	t.Run("raw documents use the raw endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/raw/upload", r.URL.Path)
			_, _ = w.Write([]byte(`{"secure_url":"https://res.example.com/a.pdf"}`))
		}))
		defer srv.Close()

		u := NewCloudinaryUploader(srv.URL, srv.Client(), zerolog.Nop())
		url, err := u.Upload(context.Background(), UploadRequest{
			Reader: strings.NewReader("%PDF"), Filename: "a.pdf", Kind: ResourceRaw, Preset: "unilink-docs",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://res.example.com/a.pdf", url)
	})

	t.Run("retries server errors", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"secure_url":"https://res.example.com/b.jpg"}`))
		}))
		defer srv.Close()

		u := NewCloudinaryUploader(srv.URL, srv.Client(), zerolog.Nop())
		url, err := u.Upload(context.Background(), UploadRequest{Reader: strings.NewReader("x"), Preset: "unilink"})
		require.NoError(t, err)
		assert.Equal(t, "https://res.example.com/b.jpg", url)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
		}))
		defer srv.Close()

		u := NewCloudinaryUploader(srv.URL, srv.Client(), zerolog.Nop())
		_, err := u.Upload(context.Background(), UploadRequest{Reader: strings.NewReader("x"), Preset: "missing"})
		assert.ErrorIs(t, err, ErrUploadRejected)
		assert.Contains(t, err.Error(), "Upload preset not found")
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("preset is required", func(t *testing.T) {
		u := NewCloudinaryUploader("http://unused", nil, zerolog.Nop())
		_, err := u.Upload(context.Background(), UploadRequest{Reader: strings.NewReader("x")})
		assert.ErrorIs(t, err, ErrUploadRejected)
	})
}
