package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/filestorage"
	"github.com/yigit/unilink/internal/pkg/imaging"
)

const (
	maxAttachmentSize = 10 << 20
	pdfContentType    = "application/pdf"
)

// AttachmentConfig selects where uploaded files go and how images are shrunk
type AttachmentConfig struct {
	Imaging        imaging.Options
	ImagePreset    string
	DocumentPreset string
	ImageFolder    string
	DocumentFolder string
	UploadTimeout  time.Duration
}

// Attachments runs the image and document upload pipelines shared by chat,
// communities and profile pictures
type Attachments struct {
	uploader filestorage.Uploader
	cfg      AttachmentConfig
	logger   zerolog.Logger
}

// NewAttachments creates the upload pipeline
func NewAttachments(uploader filestorage.Uploader, cfg AttachmentConfig, logger zerolog.Logger) *Attachments {
	return &Attachments{uploader: uploader, cfg: cfg, logger: logger}
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading attachment: %w", err)
	}
	if len(data) > maxAttachmentSize {
		return nil, apperrors.NewCustomError(apperrors.ErrUnsupportedMedia, "attachment exceeds the 10MB limit")
	}
	if len(data) == 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrUnsupportedMedia, "attachment is empty")
	}
	return data, nil
}

func (a *Attachments) upload(ctx context.Context, req filestorage.UploadRequest) (string, error) {
	if a.cfg.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.UploadTimeout)
		defer cancel()
	}
	url, err := a.uploader.Upload(ctx, req)
	if err != nil {
		a.logger.Error().Err(err).Str("filename", req.Filename).Str("folder", req.Folder).Msg("Attachment upload failed")
		msg := "failed to upload attachment"
		if errors.Is(err, filestorage.ErrUploadRejected) {
			msg = "attachment was rejected by storage"
		}
		return "", apperrors.NewCustomError(apperrors.ErrUploadFailed, msg)
	}
	return url, nil
}

// UploadImage downscales an image and uploads the JPEG result under the image preset
func (a *Attachments) UploadImage(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, err := readLimited(r)
	if err != nil {
		return "", err
	}
	res, err := imaging.Downscale(bytes.NewReader(data), a.cfg.Imaging)
	if err != nil {
		a.logger.Warn().Err(err).Str("filename", filename).Msg("Rejected undecodable image")
		return "", apperrors.NewCustomError(apperrors.ErrUnsupportedMedia, "file is not a supported image (jpeg, png or webp)")
	}

	name := strings.TrimSuffix(path.Base(filename), path.Ext(filename)) + ".jpg"
	return a.upload(ctx, filestorage.UploadRequest{
		Reader:      bytes.NewReader(res.Data),
		Filename:    name,
		ContentType: imaging.ContentType,
		Kind:        filestorage.ResourceImage,
		Preset:      a.cfg.ImagePreset,
		Folder:      a.cfg.ImageFolder,
	})
}

// UploadPDF uploads a PDF document under the document preset
func (a *Attachments) UploadPDF(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, err := readLimited(r)
	if err != nil {
		return "", err
	}
	if mt := mimetype.Detect(data); !mt.Is(pdfContentType) {
		a.logger.Warn().Str("filename", filename).Str("detected", mt.String()).Msg("Rejected non-pdf document")
		return "", apperrors.NewCustomError(apperrors.ErrUnsupportedMedia, "only PDF documents can be shared")
	}

	return a.upload(ctx, filestorage.UploadRequest{
		Reader:      bytes.NewReader(data),
		Filename:    path.Base(filename),
		ContentType: pdfContentType,
		Kind:        filestorage.ResourceRaw,
		Preset:      a.cfg.DocumentPreset,
		Folder:      a.cfg.DocumentFolder,
	})
}
