// Package files exposes the storage facade over HTTP.
package files

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/megaskyshop/storefront/src/common/errors"
	"github.com/megaskyshop/storefront/src/common/logs"
	"github.com/megaskyshop/storefront/src/shopd/api/common"
	"github.com/megaskyshop/storefront/src/shopd/storage"
)

const (
	// DefaultMaxUploadSize is 10 MiB
	DefaultMaxUploadSize int64 = 10 << 20
	defaultTimeout             = 30 * time.Second
	// multipartOverhead leaves room for boundaries and part headers
	multipartOverhead int64 = 1 << 20
)

var log = logs.NewDefault()

// SetLogger sets the logger for the files package
func SetLogger(l *logs.Logger) {
	if l != nil {
		log = l
	}
}

// NewHandler creates a new files handler
func NewHandler(cfg Config) *Handler {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Handler{
		service:       cfg.Service,
		maxUploadSize: cfg.MaxUploadSize,
		timeout:       cfg.Timeout,
	}
}

// HandleList lists all stored files
// @Summary      List files
// @Description  Lists every file in the active storage provider
// @Tags         Files
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  FileListResponse
// @Failure      401  {object}  common.ErrorResponse
// @Failure      502  {object}  FileListErrorResponse
// @Failure      503  {object}  FileListErrorResponse
// @Router       /v1/files [get]
func (h *Handler) HandleList(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	files, err := h.service.ListFiles(ctx)
	if err != nil {
		log.Warn("Failed to list files", "error", err)
		c.JSON(apperrors.GetHTTPStatus(err), FileListErrorResponse{
			Response: apperrors.NewResponse(err),
			Files:    []storage.FileRecord{},
		})
		return
	}

	c.JSON(http.StatusOK, FileListResponse{
		Count: len(files),
		Files: files,
	})
}

// HandleUpload stores the multipart field "file"
// @Summary      Upload a file
// @Tags         Files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "File to upload"
// @Success      201   {object}  UploadResponse
// @Failure      400   {object}  common.ErrorResponse
// @Failure      413   {object}  common.ErrorResponse
// @Failure      502   {object}  common.ErrorResponse
// @Router       /v1/files [post]
func (h *Handler) HandleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RespondError(c, h.tooLarge())
			return
		}
		common.BadRequest(c, "No file provided. Send the file in the multipart field 'file'.")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		common.RespondError(c, h.tooLarge())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*h.timeout)
	defer cancel()

	url, err := h.service.UploadFile(ctx, storage.UploadedObject{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		log.Warn("Upload failed", "name", header.Filename, "error", err)
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, UploadResponse{
		URL:        url,
		Name:       header.Filename,
		Size:       header.Size,
		UploadedAt: time.Now().UTC(),
	})
}

func (h *Handler) tooLarge() error {
	return apperrors.ErrUploadTooLarge.WithMessagef("File exceeds the maximum upload size of %d bytes", h.maxUploadSize)
}

// HandleDelete removes a file by URL
// @Summary      Delete a file
// @Tags         Files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      DeleteRequest  true  "File to delete"
// @Success      200   {object}  MessageResponse
// @Failure      400   {object}  common.ErrorResponse
// @Failure      404   {object}  common.ErrorResponse
// @Router       /v1/files [delete]
func (h *Handler) HandleDelete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.InvalidJSON(c, err)
		return
	}
	if req.URL == "" {
		common.BadRequest(c, "url is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.service.DeleteFile(ctx, req.URL); err != nil {
		if !storage.IsNotFound(err) {
			log.Warn("Delete failed", "url", req.URL, "error", err)
		}
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "File deleted"})
}

// HandleGetURL resolves a stored reference to a fetchable URL
// @Summary      Resolve a file URL
// @Description  Returns a URL a browser can fetch. Object storage returns a presigned URL.
// @Tags         Files
// @Produce      json
// @Security     BearerAuth
// @Param        path  query     string  true  "Stored URL or path"
// @Success      200   {object}  URLResponse
// @Failure      400   {object}  common.ErrorResponse
// @Router       /v1/files/url [get]
func (h *Handler) HandleGetURL(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		common.BadRequest(c, "path is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	url, err := h.service.GetFileURL(ctx, path)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, URLResponse{URL: url})
}
