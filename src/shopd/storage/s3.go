package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ObjectStorageDriver stores files in an S3-compatible bucket. Keys are flat
// "<uuid>-<name>" object names; file URLs are the public object URLs and
// ResolveURL hands out presigned GET URLs.
type ObjectStorageDriver struct {
	client  *s3.Client
	presign *s3.PresignClient
	config  S3Config
	expiry  time.Duration
}

// NewObjectStorage creates the S3 driver. No request is made until the
// driver is used or pinged.
func NewObjectStorage(cfg S3Config, opts Options) (*ObjectStorageDriver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		Retryer: func() aws.Retryer {
			return aws.NopRetryer{}
		},
	}
	if opts.HTTPClient != nil {
		awsCfg.HTTPClient = opts.HTTPClient
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	expiry := opts.SignedURLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &ObjectStorageDriver{
		client:  client,
		presign: s3.NewPresignClient(client),
		config:  cfg,
		expiry:  expiry,
	}, nil
}

// objectURL returns the public URL of key
func (d *ObjectStorageDriver) objectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if d.config.Endpoint != "" {
		if d.config.UsePathStyle {
			return fmt.Sprintf("%s/%s/%s", d.config.Endpoint, d.config.Bucket, escaped)
		}
		if u, err := url.Parse(d.config.Endpoint); err == nil && u.Host != "" {
			return fmt.Sprintf("%s://%s.%s/%s", u.Scheme, d.config.Bucket, u.Host, escaped)
		}
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", d.config.Bucket, d.config.Region, escaped)
}

// keyFor extracts the object key from a public object URL, a presigned URL
// or a bare key
func (d *ObjectStorageDriver) keyFor(ref string) string {
	ref = strings.TrimSpace(ref)
	u, err := url.Parse(ref)
	if err != nil {
		return strings.TrimLeft(ref, "/")
	}
	key := strings.TrimLeft(u.Path, "/")
	if u.IsAbs() || d.config.UsePathStyle {
		key = strings.TrimPrefix(key, d.config.Bucket+"/")
	}
	return key
}

// Upload puts the payload under a fresh key
func (d *ObjectStorageDriver) Upload(ctx context.Context, obj UploadedObject) (string, error) {
	if obj.Body == nil {
		return "", upstreamError(KindObjectStorage, "upload", fmt.Errorf("upload %q has no body", obj.Name))
	}

	// Request signing needs a seekable body with a known length
	body, size := obj.Body, obj.Size
	if _, seekable := body.(io.ReadSeeker); !seekable || size <= 0 {
		data, err := io.ReadAll(body)
		if err != nil {
			return "", upstreamError(KindObjectStorage, "upload", fmt.Errorf("failed to read upload: %w", err))
		}
		body, size = bytes.NewReader(data), int64(len(data))
	}

	key := newStorageKey(obj.Name)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(d.config.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}

	if _, err := d.client.PutObject(ctx, input); err != nil {
		return "", d.classify("upload", key, err)
	}

	return d.objectURL(key), nil
}

// Delete removes the referenced object. The object is looked up first so a
// missing key is reported instead of silently succeeding.
func (d *ObjectStorageDriver) Delete(ctx context.Context, ref string) error {
	key := d.keyFor(ref)
	if key == "" {
		return notFoundError(KindObjectStorage, "delete", ref)
	}

	if _, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.config.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return d.classify("delete", key, err)
	}

	if _, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.config.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return d.classify("delete", key, err)
	}
	return nil
}

// List returns every object in the bucket
func (d *ObjectStorageDriver) List(ctx context.Context) ([]FileRecord, error) {
	files := []FileRecord{}

	paginator := s3.NewListObjectsV2Paginator(d.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(d.config.Bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, d.classify("list", "", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			files = append(files, FileRecord{
				Name:       key,
				URL:        d.objectURL(key),
				Size:       aws.ToInt64(obj.Size),
				UploadedAt: aws.ToTime(obj.LastModified).UTC(),
			})
		}
	}
	return files, nil
}

// ResolveURL returns a presigned GET URL for the referenced object
func (d *ObjectStorageDriver) ResolveURL(ctx context.Context, ref string) (string, error) {
	key := d.keyFor(ref)
	if key == "" {
		return "", notFoundError(KindObjectStorage, "resolve", ref)
	}

	req, err := d.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.config.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(d.expiry))
	if err != nil {
		return "", d.classify("resolve", key, err)
	}
	return req.URL, nil
}

// Ping lists at most one object to check credentials and bucket access
func (d *ObjectStorageDriver) Ping(ctx context.Context) error {
	_, err := d.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(d.config.Bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return d.classify("ping", "", err)
	}
	return nil
}

// Kind returns the provider kind
func (d *ObjectStorageDriver) Kind() ProviderKind {
	return KindObjectStorage
}

// Location returns the bucket address
func (d *ObjectStorageDriver) Location() string {
	if d.config.Endpoint != "" {
		return fmt.Sprintf("%s/%s", d.config.Endpoint, d.config.Bucket)
	}
	return fmt.Sprintf("s3://%s (%s)", d.config.Bucket, d.config.Region)
}

// classify maps SDK errors onto storage errors. Rejected credentials and
// unknown buckets are configuration problems; a missing key is not-found only
// when key names an object.
func (d *ObjectStorageDriver) classify(op, key string, err error) error {
	if isContextError(err) {
		return upstreamError(KindObjectStorage, op, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidAccessKeyId", "SignatureDoesNotMatch", "AccessDenied",
			"NoSuchBucket", "InvalidBucketName", "AuthorizationHeaderMalformed",
			"InvalidToken", "ExpiredToken", "PermanentRedirect":
			return configErrorCause(KindObjectStorage, op, err)
		case "NoSuchKey", "NotFound":
			if key != "" {
				return notFoundError(KindObjectStorage, op, key)
			}
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return configErrorCause(KindObjectStorage, op, err)
		case http.StatusNotFound:
			if key != "" {
				return notFoundError(KindObjectStorage, op, key)
			}
			return configErrorCause(KindObjectStorage, op, err)
		}
	}

	return upstreamError(KindObjectStorage, op, err)
}
