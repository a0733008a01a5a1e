package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// APIError Tests
// =============================================================================

func TestAPIError_Error_WithCode(t *testing.T) {
	err := &APIError{StatusCode: 400, ErrorCode: "storage.configuration", Message: "Bucket is required"}
	s := err.Error()
	if !strings.Contains(s, "storage.configuration") || !strings.Contains(s, "HTTP 400") {
		t.Errorf("expected code and status in message, got %q", s)
	}
	if !strings.Contains(s, "storage get --reveal") {
		t.Errorf("expected configuration hint, got %q", s)
	}
}

func TestAPIError_Error_Hints(t *testing.T) {
	tests := []struct {
		err  *APIError
		hint string
	}{
		{&APIError{StatusCode: 401, ErrorCode: "auth.no_token"}, "shopctl login"},
		{&APIError{StatusCode: 403, ErrorCode: "auth.forbidden"}, "admin access"},
		{&APIError{StatusCode: 502, ErrorCode: "storage.upstream_io"}, "storage status"},
		{&APIError{StatusCode: 503, ErrorCode: "storage.unavailable"}, "storage status"},
	}
	for _, tt := range tests {
		if s := tt.err.Error(); !strings.Contains(s, tt.hint) {
			t.Errorf("%s: expected hint %q, got %q", tt.err.ErrorCode, tt.hint, s)
		}
	}
}

func TestAPIError_Error_WithoutCode(t *testing.T) {
	err := &APIError{StatusCode: 500, Message: "boom"}
	if s := err.Error(); !strings.HasPrefix(s, "HTTP 500: boom") {
		t.Errorf("unexpected message %q", s)
	}
}

func TestAPIError_Error_CauseAndRateLimit(t *testing.T) {
	err := &APIError{
		StatusCode: 400,
		ErrorCode:  "storage.configuration",
		Message:    "Storage provider configuration is invalid",
		Details:    map[string]interface{}{"cause": "InvalidAccessKeyId"},
	}
	if s := err.Error(); !strings.Contains(s, "Cause: InvalidAccessKeyId") {
		t.Errorf("expected cause line, got %q", s)
	}

	limited := &APIError{StatusCode: 429, ErrorCode: "internal.rate_limited", Message: "Too many requests", RetryAfter: time.Minute}
	if s := limited.Error(); !strings.Contains(s, "retry in 1m0s") {
		t.Errorf("expected retry hint, got %q", s)
	}
}

func TestIsCode(t *testing.T) {
	err := error(&APIError{StatusCode: 404, ErrorCode: "storage.not_found"})
	if !IsCode(err, "storage.not_found") {
		t.Error("expected IsCode to match")
	}
	if IsCode(err, "storage.configuration") {
		t.Error("expected IsCode not to match another code")
	}
	if !IsCode(fmt.Errorf("delete: %w", err), "storage.not_found") {
		t.Error("expected IsCode to see through wrapping")
	}
	if IsCode(io.EOF, "storage.not_found") {
		t.Error("expected IsCode to reject non-API errors")
	}
}

// =============================================================================
// Request plumbing
// =============================================================================

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Token = "abc"
	var resp map[string]string
	if err := c.Get(context.Background(), "/v1/health", &resp); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	if resp["status"] != "healthy" {
		t.Errorf("unexpected response %v", resp)
	}
}

func TestClient_DecodesStructuredErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"storage.not_found","message":"File not found"}`))
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteFile(context.Background(), "https://cdn.example.com/x.png")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != 404 || apiErr.ErrorCode != "storage.not_found" || apiErr.Message != "File not found" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestClient_UnstructuredError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListFiles(context.Background())
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.StatusCode != 502 || !strings.Contains(apiErr.Message, "bad gateway") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestClient_RetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"internal.rate_limited","message":"Too many requests"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL + "/").GetStorageStatus(context.Background())
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.RetryAfter != time.Minute {
		t.Errorf("RetryAfter = %s", apiErr.RetryAfter)
	}
}

// =============================================================================
// Files
// =============================================================================

func TestClient_UploadFile(t *testing.T) {
	var gotName, gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/files" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing multipart file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName, gotContent = header.Filename, string(data)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(UploadResponse{URL: "https://cdn.example.com/k-logo.png", Name: header.Filename, Size: int64(len(data))})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	resp, err := New(srv.URL).UploadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if gotName != "logo.png" || gotContent != "png-bytes" {
		t.Errorf("server received %q with %q", gotName, gotContent)
	}
	if resp.URL != "https://cdn.example.com/k-logo.png" || resp.Size != 9 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestClient_UploadFile_MissingFile(t *testing.T) {
	if _, err := New("http://127.0.0.1:0").UploadFile(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestClient_DeleteFileSendsURL(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"message":"File deleted"}`))
	}))
	defer srv.Close()

	if err := New(srv.URL).DeleteFile(context.Background(), "https://cdn.example.com/a b.png"); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	if body["url"] != "https://cdn.example.com/a b.png" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestClient_GetFileURLEscapesPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Query().Get("path")
		w.Write([]byte(`{"url":"https://signed.example.com/a?sig=1"}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).GetFileURL(context.Background(), "https://bucket.example.com/a.png?v=1&x=2")
	if err != nil {
		t.Fatalf("GetFileURL failed: %v", err)
	}
	if gotPath != "https://bucket.example.com/a.png?v=1&x=2" {
		t.Errorf("path not escaped correctly, server saw %q", gotPath)
	}
	if got != "https://signed.example.com/a?sig=1" {
		t.Errorf("unexpected url %q", got)
	}
}

// =============================================================================
// Storage settings
// =============================================================================

func TestClient_StorageSettingsRoundTrip(t *testing.T) {
	var stored *StorageSettings
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			var req storageSettingsBody
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad body: %v", err)
			}
			stored = req.Settings
			masked := *stored
			masked.S3.SecretKey = "********"
			json.NewEncoder(w).Encode(storageSettingsBody{Settings: &masked, Message: "Storage settings updated"})
		case http.MethodGet:
			if r.URL.Query().Get("reveal") != "true" {
				t.Errorf("expected reveal=true")
			}
			json.NewEncoder(w).Encode(storageSettingsBody{Settings: stored})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	in := &StorageSettings{S3: S3Settings{Enabled: true, AccessKey: "AK", SecretKey: "SK", Bucket: "media", Region: "eu-west-1"}}
	saved, err := c.UpdateStorageSettings(context.Background(), in)
	if err != nil {
		t.Fatalf("UpdateStorageSettings failed: %v", err)
	}
	if saved.S3.SecretKey != "********" || saved.Provider() != "s3" {
		t.Errorf("unexpected saved settings %+v", saved)
	}

	got, err := c.GetStorageSettings(context.Background(), true)
	if err != nil {
		t.Fatalf("GetStorageSettings failed: %v", err)
	}
	if *got != *in {
		t.Errorf("got %+v, want %+v", got, in)
	}
}

func TestClient_GetStorageStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"state":"ready","provider":"local","configured":"s3","fallback":true,"lastError":"bad creds","lastErrorCode":"storage.configuration","available":true}`))
	}))
	defer srv.Close()

	st, err := New(srv.URL).GetStorageStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStorageStatus failed: %v", err)
	}
	if st.Provider != "local" || st.Configured != "s3" || !st.Fallback || st.LastErrorCode != "storage.configuration" {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestStorageSettings_Provider(t *testing.T) {
	tests := []struct {
		s    StorageSettings
		want string
	}{
		{StorageSettings{}, ""},
		{StorageSettings{Local: LocalSettings{Enabled: true}}, "local"},
		{StorageSettings{S3: S3Settings{Enabled: true}}, "s3"},
		{StorageSettings{VercelBlob: BlobSettings{Enabled: true}}, "vercelBlob"},
	}
	for _, tt := range tests {
		if got := tt.s.Provider(); got != tt.want {
			t.Errorf("Provider() = %q, want %q", got, tt.want)
		}
	}
}
