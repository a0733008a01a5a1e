package files

import (
	"context"
	"time"

	apperrors "github.com/megaskyshop/storefront/src/common/errors"
	"github.com/megaskyshop/storefront/src/shopd/storage"
)

// FileService is the storage facade the handlers call
type FileService interface {
	UploadFile(ctx context.Context, obj storage.UploadedObject) (string, error)
	DeleteFile(ctx context.Context, url string) error
	ListFiles(ctx context.Context) ([]storage.FileRecord, error)
	GetFileURL(ctx context.Context, path string) (string, error)
}

// Handler handles media file requests
type Handler struct {
	service       FileService
	maxUploadSize int64
	timeout       time.Duration
}

// Config contains configuration options for the Handler
type Config struct {
	Service FileService
	// MaxUploadSize caps uploads in bytes
	MaxUploadSize int64
	// Timeout bounds list, delete and URL calls; uploads get twice as long
	Timeout time.Duration
}

// FileListResponse is returned by GET /v1/files
type FileListResponse struct {
	Count int                  `json:"count" example:"1"`
	Files []storage.FileRecord `json:"files"`
}

// FileListErrorResponse is returned by GET /v1/files on failure
type FileListErrorResponse struct {
	apperrors.Response
	Files []storage.FileRecord `json:"files"`
}

// UploadResponse is returned by POST /v1/files
type UploadResponse struct {
	URL        string    `json:"url" example:"https://cdn.example.com/uploads/5f1c...-logo.png"`
	Name       string    `json:"name" example:"logo.png"`
	Size       int64     `json:"size" example:"20480"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// DeleteRequest is the body of DELETE /v1/files
type DeleteRequest struct {
	URL string `json:"url" example:"https://cdn.example.com/uploads/5f1c...-logo.png"`
}

// MessageResponse carries a confirmation message
type MessageResponse struct {
	Message string `json:"message" example:"File deleted"`
}

// URLResponse is returned by GET /v1/files/url
type URLResponse struct {
	URL string `json:"url"`
}
