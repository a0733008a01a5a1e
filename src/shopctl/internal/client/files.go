package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// FileRecord is one stored file
type FileRecord struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// FileListResponse is the body of GET /v1/files
type FileListResponse struct {
	Count int          `json:"count"`
	Files []FileRecord `json:"files"`
}

// UploadResponse is the body of POST /v1/files
type UploadResponse struct {
	URL        string    `json:"url"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ListFiles returns every file in the active storage provider
func (c *Client) ListFiles(ctx context.Context) (*FileListResponse, error) {
	var resp FileListResponse
	if err := c.Get(ctx, "/v1/files", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadFile streams a local file to the server as multipart field "file"
func (c *Client) UploadFile(ctx context.Context, filePath string) (*UploadResponse, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		part, err := writer.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.Close(); err != nil {
			pw.CloseWithError(err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/files", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp UploadResponse
	if err := c.Do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteFile removes a stored file by the URL upload returned
func (c *Client) DeleteFile(ctx context.Context, fileURL string) error {
	return c.Delete(ctx, "/v1/files", map[string]string{"url": fileURL}, nil)
}

// GetFileURL resolves a stored reference to a fetchable URL
func (c *Client) GetFileURL(ctx context.Context, ref string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.Get(ctx, "/v1/files/url?path="+url.QueryEscape(ref), &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
