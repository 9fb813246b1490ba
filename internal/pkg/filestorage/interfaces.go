package filestorage

import (
	"context"
	"errors"
	"io"
)

// ErrUploadRejected is returned when the storage backend refuses a file
var ErrUploadRejected = errors.New("upload rejected by storage backend")

// ResourceKind selects the storage endpoint for an upload
type ResourceKind string

const (
	ResourceImage ResourceKind = "image"
	ResourceRaw   ResourceKind = "raw"
)

// UploadRequest describes a single file to store
type UploadRequest struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Kind        ResourceKind
	Preset      string // upload preset on the remote backend
	Folder      string // subdirectory or remote folder
}

//go:generate mockgen -source=interfaces.go -destination=../../app/services/mocks/mock_uploader.go -package=mocks

// Uploader stores files and returns a publicly reachable URL
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (string, error)
}
