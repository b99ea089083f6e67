package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// AllowedAvatarTypes maps accepted image content types to file extensions.
var AllowedAvatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectSink writes one object.
type ObjectSink interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) error
}

// BucketSink writes objects into a Cloud Storage bucket.
type BucketSink struct {
	bucket *gcs.BucketHandle
}

// NewBucketSink wraps a bucket handle.
func NewBucketSink(bucket *gcs.BucketHandle) *BucketSink {
	return &BucketSink{bucket: bucket}
}

// Put streams r into the named object.
func (s *BucketSink) Put(ctx context.Context, name, contentType string, r io.Reader) error {
	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", name, err)
	}
	return nil
}

// AvatarStore uploads avatar images and returns their public URL.
type AvatarStore struct {
	sink       ObjectSink
	bucketName string
}

// NewAvatarStore creates an AvatarStore writing into bucketName through sink.
func NewAvatarStore(sink ObjectSink, bucketName string) *AvatarStore {
	return &AvatarStore{sink: sink, bucketName: bucketName}
}

// Upload stores the image under a fresh object name and returns its public URL.
func (s *AvatarStore) Upload(ctx context.Context, userID, contentType string, r io.Reader) (string, error) {
	ext, ok := AllowedAvatarTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported avatar content type %q", contentType)
	}
	name := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), ext)
	if err := s.sink.Put(ctx, name, contentType, r); err != nil {
		return "", err
	}
	return s.PublicURL(name), nil
}

// PublicURL returns the download URL of an object in the bucket.
func (s *AvatarStore) PublicURL(name string) string {
	return "https://storage.googleapis.com/" + s.bucketName + "/" + (&url.URL{Path: name}).EscapedPath()
}
