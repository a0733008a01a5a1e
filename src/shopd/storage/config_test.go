package storage

import "testing"

func TestConfiguration_Selected(t *testing.T) {
	cfg := &Configuration{
		S3:         S3Config{Enabled: true},
		VercelBlob: BlobConfig{Enabled: true},
	}
	kind, ok := cfg.Selected()
	if !ok || kind != KindObjectStorage {
		t.Fatalf("Selected() = %q, %v; want s3", kind, ok)
	}

	if _, ok := (&Configuration{}).Selected(); ok {
		t.Fatal("nothing enabled should select nothing")
	}
}

func TestConfiguration_Validate(t *testing.T) {
	valid := []*Configuration{
		DefaultConfiguration(),
		{S3: S3Config{Enabled: true, AccessKey: "a", SecretKey: "s", Bucket: "b", Region: "r"}},
		{VercelBlob: BlobConfig{Enabled: true, Token: "t"}},
	}
	for i, cfg := range valid {
		if err := cfg.Validate(); err != nil {
			t.Errorf("config %d should be valid: %v", i, err)
		}
	}

	invalid := []*Configuration{
		{},
		{Local: LocalConfig{Enabled: true, Path: ""}},
		{Local: LocalConfig{Enabled: true, Path: "/"}},
		{Local: LocalConfig{Enabled: true, Path: "a"}, S3: S3Config{Enabled: true}},
	}
	for i, cfg := range invalid {
		if err := cfg.Validate(); !IsConfigurationError(err) {
			t.Errorf("config %d: expected configuration error, got %v", i, err)
		}
	}
}

func TestConfiguration_MaskAndUnmask(t *testing.T) {
	cfg := &Configuration{
		S3:         S3Config{Enabled: true, AccessKey: "ak", SecretKey: "sk", Bucket: "b", Region: "r"},
		VercelBlob: BlobConfig{Token: ""},
	}

	masked := cfg.Masked("********")
	if masked.S3.AccessKey != "********" || masked.S3.SecretKey != "********" {
		t.Fatalf("credentials should be masked: %+v", masked.S3)
	}
	if masked.VercelBlob.Token != "" {
		t.Fatal("empty credentials should stay empty")
	}
	if cfg.S3.SecretKey != "sk" {
		t.Fatal("masking must not modify the original")
	}

	masked.S3.Bucket = "other"
	masked.Unmask("********", cfg)
	if masked.S3.AccessKey != "ak" || masked.S3.SecretKey != "sk" || masked.S3.Bucket != "other" {
		t.Fatalf("unexpected unmasked config: %+v", masked.S3)
	}
}
