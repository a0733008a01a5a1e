package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/megaskyshop/storefront/src/common/errors"
)

// prefixCipher is a reversible stand-in for the secret manager
type prefixCipher struct{}

func (prefixCipher) Encrypt(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	return "sealed:" + reverse(v), nil
}

func (prefixCipher) Decrypt(v string) (string, error) {
	if !strings.HasPrefix(v, "sealed:") {
		return v, nil
	}
	return reverse(strings.TrimPrefix(v, "sealed:")), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func TestSettingsSource_DefaultIsPersistedOnFirstRead(t *testing.T) {
	store := newMemStore()
	src := NewSettingsSource(store, nil)

	cfg, err := src.ReadStorageConfig(context.Background())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if kind, _ := cfg.Selected(); kind != KindLocal || cfg.Local.Path != DefaultLocalPath {
		t.Fatalf("unexpected default: %+v", cfg)
	}
	if store.raw(SettingsKey) == "" {
		t.Fatal("default configuration should be persisted")
	}
}

func TestSettingsSource_WriteReadRoundTrip(t *testing.T) {
	store := newMemStore()
	src := NewSettingsSource(store, prefixCipher{})
	ctx := context.Background()

	in := &Configuration{S3: S3Config{
		Enabled:   true,
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "wJalrXUtnFEMI",
		Bucket:    "shop-media",
		Region:    "eu-central-1",
	}}
	if err := src.WriteStorageConfig(ctx, in); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	raw := store.raw(SettingsKey)
	if strings.Contains(raw, "wJalrXUtnFEMI") || strings.Contains(raw, "AKIDEXAMPLE") {
		t.Fatalf("credentials should be encrypted at rest: %s", raw)
	}
	var stored map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored value is not JSON: %v", err)
	}
	for _, key := range []string{"local", "s3", "vercelBlob"} {
		if _, ok := stored[key]; !ok {
			t.Fatalf("stored JSON missing %q section", key)
		}
	}

	out, err := src.ReadStorageConfig(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestSettingsSource_ReadAcceptsPlaintextCredentials(t *testing.T) {
	store := newMemStore()
	store.values[SettingsKey] = `{"local":{"enabled":false,"path":"uploads"},"s3":{"enabled":false,"accessKey":"","secretKey":"","bucket":"","region":""},"vercelBlob":{"enabled":true,"token":"plain-token"}}`
	src := NewSettingsSource(store, prefixCipher{})

	cfg, err := src.ReadStorageConfig(context.Background())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if cfg.VercelBlob.Token != "plain-token" {
		t.Fatalf("token = %q, want plain-token", cfg.VercelBlob.Token)
	}
}

func TestSettingsSource_WriteRejectsInvalidConfig(t *testing.T) {
	store := newMemStore()
	src := NewSettingsSource(store, nil)
	notified := false
	src.OnChange(func() { notified = true })

	tests := []struct {
		name string
		cfg  *Configuration
	}{
		{"nil", nil},
		{"none enabled", &Configuration{}},
		{"two enabled", &Configuration{
			Local:      LocalConfig{Enabled: true, Path: "uploads"},
			VercelBlob: BlobConfig{Enabled: true, Token: "t"},
		}},
		{"s3 incomplete", &Configuration{S3: S3Config{Enabled: true, Bucket: "b"}}},
		{"blob without token", &Configuration{VercelBlob: BlobConfig{Enabled: true}}},
		{"local escapes root", &Configuration{Local: LocalConfig{Enabled: true, Path: "../etc"}}},
	}
	for _, tt := range tests {
		err := src.WriteStorageConfig(context.Background(), tt.cfg)
		if !IsConfigurationError(err) {
			t.Errorf("%s: expected configuration error, got %v", tt.name, err)
		}
	}
	if store.writes != 0 {
		t.Fatalf("invalid configurations should not be persisted, got %d writes", store.writes)
	}
	if notified {
		t.Fatal("listeners should not run for rejected writes")
	}
}

func TestSettingsSource_WriteNormalizesLocalPath(t *testing.T) {
	store := newMemStore()
	src := NewSettingsSource(store, nil)
	ctx := context.Background()

	in := localConfig("/media/uploads")
	if err := src.WriteStorageConfig(ctx, in); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if in.Local.Path != "/media/uploads" {
		t.Fatal("caller's configuration should not be modified")
	}

	out, _ := src.ReadStorageConfig(ctx)
	if out.Local.Path != "media/uploads" {
		t.Fatalf("stored path = %q, want media/uploads", out.Local.Path)
	}
}

func TestSettingsSource_CorruptValue(t *testing.T) {
	store := newMemStore()
	store.values[SettingsKey] = "{not json"
	src := NewSettingsSource(store, nil)

	_, err := src.ReadStorageConfig(context.Background())
	if !IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSettingsSource_StoreErrorPropagates(t *testing.T) {
	store := newMemStore()
	store.getErr = apperrors.ErrDatabaseQuery
	src := NewSettingsSource(store, nil)

	_, err := src.ReadStorageConfig(context.Background())
	if !errors.Is(err, apperrors.ErrDatabaseQuery) {
		t.Fatalf("expected database error, got %v", err)
	}
}

func TestSettingsSource_WriteInvalidatesRegistry(t *testing.T) {
	fake := newFakeS3(t)
	src := NewSettingsSource(newMemStore(), prefixCipher{})
	reg := NewRegistry(src, testOptions(t))
	src.OnChange(reg.Invalidate)
	svc := NewService(reg)
	ctx := context.Background()

	if _, err := svc.ListFiles(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if st := reg.Status(); st.Provider != KindLocal {
		t.Fatalf("expected local provider first, got %+v", st)
	}

	if err := src.WriteStorageConfig(ctx, &Configuration{S3: fake.config()}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if reg.State() != StateEmpty {
		t.Fatalf("write should invalidate the registry, state = %s", reg.State())
	}

	if _, err := svc.UploadFile(ctx, UploadedObject{Name: "a.png", Size: 1, Body: strings.NewReader("a")}); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if fake.count() != 1 {
		t.Fatal("upload after switching should land in the bucket")
	}
	if st := reg.Status(); st.Provider != KindObjectStorage {
		t.Fatalf("expected s3 provider, got %+v", st)
	}
}
