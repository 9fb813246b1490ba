package filestorage

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
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/rs/zerolog"
)

const (
	uploadAttempts = 3
	uploadDelay    = 300 * time.Millisecond
)

// CloudinaryUploader posts unsigned uploads to {baseURL}/{kind}/upload using a
// named upload preset and returns the secure_url of the stored asset.
type CloudinaryUploader struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewCloudinaryUploader creates an uploader for baseURL, e.g.
// https://api.cloudinary.com/v1_1/<cloud>. A nil client uses http.DefaultClient.
func NewCloudinaryUploader(baseURL string, client *http.Client, logger zerolog.Logger) *CloudinaryUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &CloudinaryUploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// transientError marks failures worth another attempt
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Upload buffers the file once and posts it, retrying network and 5xx failures
func (c *CloudinaryUploader) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if req.Reader == nil {
		return "", fmt.Errorf("%w: empty file", ErrUploadRejected)
	}
	if req.Preset == "" {
		return "", fmt.Errorf("%w: upload preset required", ErrUploadRejected)
	}
	kind := req.Kind
	if kind == "" {
		kind = ResourceImage
	}

	payload, err := io.ReadAll(req.Reader)
	if err != nil {
		return "", fmt.Errorf("error reading upload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/upload", c.baseURL, kind)
	var url string
	err = retry.New(
		retry.Attempts(uploadAttempts),
		retry.Delay(uploadDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			var t transientError
			return errors.As(err, &t)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn().Err(err).Uint("attempt", n+1).Str("endpoint", endpoint).Msg("Retrying upload")
		}),
	).Do(func() error {
		var postErr error
		url, postErr = c.post(ctx, endpoint, req, payload)
		return postErr
	})
	if err != nil {
		c.logger.Error().Err(err).Str("filename", req.Filename).Str("preset", req.Preset).Msg("Upload failed")
		return "", err
	}

	c.logger.Info().Str("filename", req.Filename).Str("url", url).Msg("File uploaded")
	return url, nil
}

func (c *CloudinaryUploader) post(ctx context.Context, endpoint string, req UploadRequest, payload []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	filename := req.Filename
	if filename == "" {
		filename = "upload"
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(payload); err != nil {
		return "", err
	}
	if err := w.WriteField("upload_preset", req.Preset); err != nil {
		return "", err
	}
	if req.Folder != "" {
		if err := w.WriteField("folder", req.Folder); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", transientError{fmt.Errorf("error posting upload: %w", err)}
	}
	defer resp.Body.Close()

	var decoded cloudinaryResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)

	switch {
	case resp.StatusCode >= 500:
		return "", transientError{fmt.Errorf("upload endpoint returned %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && decoded.Error != nil {
			msg = decoded.Error.Message
		}
		return "", fmt.Errorf("%w: %s", ErrUploadRejected, msg)
	case decodeErr != nil:
		return "", fmt.Errorf("error decoding upload response: %w", decodeErr)
	case decoded.SecureURL == "":
		return "", fmt.Errorf("%w: response carried no secure_url", ErrUploadRejected)
	}
	return decoded.SecureURL, nil
}
