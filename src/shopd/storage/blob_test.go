package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func setupManagedBlob(t *testing.T) (*ManagedBlobDriver, *fakeBlob) {
	t.Helper()
	fake := newFakeBlob(t)
	d, err := NewManagedBlob(BlobConfig{Enabled: true, Token: fake.token}, fake.options(t))
	if err != nil {
		t.Fatalf("failed to create blob driver: %v", err)
	}
	return d, fake
}

func TestManagedBlob_RoundTrip(t *testing.T) {
	d, fake := setupManagedBlob(t)
	ctx := context.Background()

	content := []byte("blob-bytes")
	url := upload(t, d, "a.png", content)
	if !strings.HasSuffix(url, "-a.png") {
		t.Fatalf("blob URL should end with the original name: %s", url)
	}

	files, err := d.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(files) != 1 || files[0].URL != url {
		t.Fatalf("unexpected listing: %+v", files)
	}
	if files[0].Size != int64(len(content)) {
		t.Fatalf("listed size = %d, want %d", files[0].Size, len(content))
	}

	resolved, err := d.ResolveURL(ctx, url)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved != url {
		t.Fatalf("blob URLs should resolve to themselves, got %s", resolved)
	}
	if got := fetch(t, resolved); !bytes.Equal(got, content) {
		t.Fatal("downloaded bytes differ from uploaded bytes")
	}

	if err := d.Delete(ctx, url); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if fake.count() != 0 {
		t.Fatalf("blob should be gone, %d left", fake.count())
	}
	if err := d.Delete(ctx, url); !IsNotFound(err) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestManagedBlob_DeleteByRelativeReference(t *testing.T) {
	d, fake := setupManagedBlob(t)
	ctx := context.Background()

	upload(t, d, "a.png", []byte("a"))
	upload(t, d, "b.png", []byte("b"))

	files, err := d.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 blobs, got %d", len(files))
	}

	// Bare key as returned in FileRecord.Name
	if err := d.Delete(ctx, files[0].Name); err != nil {
		t.Fatalf("delete by key failed: %v", err)
	}
	// Relative path with a leading slash
	if err := d.Delete(ctx, "/"+files[1].Name); err != nil {
		t.Fatalf("delete by relative path failed: %v", err)
	}
	if fake.count() != 0 {
		t.Fatalf("blobs should be gone, %d left", fake.count())
	}

	if err := d.Delete(ctx, files[0].Name); !IsNotFound(err) {
		t.Fatalf("deleting a missing key should be not found, got %v", err)
	}
}

func TestManagedBlob_ListDefaultsMissingUploadTime(t *testing.T) {
	d, fake := setupManagedBlob(t)

	fake.mu.Lock()
	fake.blobs = append(fake.blobs, blobObject{URL: fake.srv.URL + "/public/old.txt", Pathname: "old.txt", Size: 1})
	fake.mu.Unlock()

	before := time.Now().UTC().Add(-time.Second)
	files, err := d.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 blob, got %d", len(files))
	}
	if files[0].UploadedAt.IsZero() || files[0].UploadedAt.Before(before) {
		t.Fatalf("missing upload time should default to now, got %s", files[0].UploadedAt)
	}
}

func TestManagedBlob_ValidatesTokenBeforeEachOperation(t *testing.T) {
	d, fake := setupManagedBlob(t)
	ctx := context.Background()

	upload(t, d, "a.txt", []byte("a"))
	if _, err := d.List(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	fake.mu.Lock()
	validations := fake.validations
	fake.mu.Unlock()
	if validations != 2 {
		t.Fatalf("expected 2 token validations, got %d", validations)
	}
}

func TestManagedBlob_ListFollowsCursor(t *testing.T) {
	d, fake := setupManagedBlob(t)
	fake.seed(blobListPageSize + 5)

	files, err := d.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(files) != blobListPageSize+5 {
		t.Fatalf("expected %d files, got %d", blobListPageSize+5, len(files))
	}
	if files[0].Name != "seed-000.txt" {
		t.Fatalf("unexpected first name %q", files[0].Name)
	}
}

func TestManagedBlob_InvalidTokenIsConfigurationError(t *testing.T) {
	fake := newFakeBlob(t)
	d, err := NewManagedBlob(BlobConfig{Enabled: true, Token: "wrong"}, fake.options(t))
	if err != nil {
		t.Fatalf("failed to create blob driver: %v", err)
	}

	for name, op := range map[string]func() error{
		"ping": func() error { return d.Ping(context.Background()) },
		"list": func() error { _, err := d.List(context.Background()); return err },
		"upload": func() error {
			_, err := d.Upload(context.Background(), UploadedObject{Name: "a", Body: strings.NewReader("a")})
			return err
		},
	} {
		if err := op(); !IsConfigurationError(err) {
			t.Errorf("%s: expected configuration error, got %v", name, err)
		}
	}
	if fake.count() != 0 {
		t.Fatal("nothing should be uploaded with an invalid token")
	}
}

func TestManagedBlob_EnvironmentTokenOverridesStored(t *testing.T) {
	fake := newFakeBlob(t)
	opts := fake.options(t)
	opts.BlobToken = fake.token

	d, err := NewManagedBlob(BlobConfig{Enabled: true, Token: "stale"}, opts)
	if err != nil {
		t.Fatalf("failed to create blob driver: %v", err)
	}
	if err := d.Ping(context.Background()); err != nil {
		t.Fatalf("ping with override token failed: %v", err)
	}
}

func TestManagedBlob_MissingToken(t *testing.T) {
	_, err := NewManagedBlob(BlobConfig{Enabled: true}, testOptions(t))
	if !IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestManagedBlob_UnreachableServiceIsUpstreamError(t *testing.T) {
	fake := newFakeBlob(t)
	opts := fake.options(t)
	fake.srv.Close()

	d, err := NewManagedBlob(BlobConfig{Enabled: true, Token: fake.token}, opts)
	if err != nil {
		t.Fatalf("failed to create blob driver: %v", err)
	}
	err = d.Ping(context.Background())
	if err == nil || IsConfigurationError(err) || IsNotFound(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
