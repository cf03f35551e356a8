package media

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/danielcastellanos/peptidehub-backend/pkg/config"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
)

func TestUploadImageRejectsOversizedBeforeStorageCall(t *testing.T) {
	t.Parallel()

	storage := &stubUploader{}
	svc := newTestMediaService(t, storage)

	_, err := svc.UploadImage(context.Background(), UploadInput{
		FileName:    "big.png",
		ContentType: "image/png",
		Size:        6 << 20,
		Body:        strings.NewReader("x"),
	})
	if err == nil {
		t.Fatal("expected error for 6 MB upload")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
	if storage.calls != 0 {
		t.Fatalf("expected no storage call, got %d", storage.calls)
	}
}

func TestUploadImageRejectsNonImageBeforeStorageCall(t *testing.T) {
	t.Parallel()

	storage := &stubUploader{}
	svc := newTestMediaService(t, storage)

	_, err := svc.UploadImage(context.Background(), UploadInput{
		FileName:    "doc.pdf",
		ContentType: "application/pdf",
		Size:        1024,
		Body:        strings.NewReader("x"),
	})
	if err == nil {
		t.Fatal("expected error for non-image upload")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
	if storage.calls != 0 {
		t.Fatalf("expected no storage call, got %d", storage.calls)
	}
}

func TestUploadImageForwardsValidPNG(t *testing.T) {
	t.Parallel()

	storage := &stubUploader{url: "https://storage.googleapis.com/peptidehub-media/products/x.png"}
	svc := newTestMediaService(t, storage)

	result, err := svc.UploadImage(context.Background(), UploadInput{
		FileName:    "vial.png",
		ContentType: "image/png",
		Size:        4 << 20,
		Body:        strings.NewReader("png-bytes"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storage.calls != 1 {
		t.Fatalf("expected one storage call, got %d", storage.calls)
	}
	if storage.lastContentType != "image/png" {
		t.Fatalf("expected content type forwarded, got %q", storage.lastContentType)
	}
	if !strings.HasPrefix(storage.lastObject, "products/") || !strings.HasSuffix(storage.lastObject, ".png") {
		t.Fatalf("unexpected object name %q", storage.lastObject)
	}
	if result.PublicURL != storage.url {
		t.Fatalf("expected public url surfaced, got %q", result.PublicURL)
	}
}

func TestUploadImageRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	storage := &stubUploader{}
	svc := newTestMediaService(t, storage)

	_, err := svc.UploadImage(context.Background(), UploadInput{
		FileName:    "vial.png",
		ContentType: "image/png",
		Size:        0,
		Body:        strings.NewReader(""),
	})
	if err == nil {
		t.Fatal("expected error for empty upload")
	}
	if storage.calls != 0 {
		t.Fatalf("expected no storage call, got %d", storage.calls)
	}
}

func TestValidateImageBoundary(t *testing.T) {
	t.Parallel()

	max := int64(5 << 20)
	if err := ValidateImage("image/jpeg", max, max); err != nil {
		t.Fatalf("expected exactly-at-limit upload accepted: %v", err)
	}
	if err := ValidateImage("image/jpeg", max+1, max); err == nil {
		t.Fatal("expected over-limit upload rejected")
	}
	if err := ValidateImage("image/", 100, max); err == nil {
		t.Fatal("expected bare image/ content type rejected")
	}
}

func newTestMediaService(t *testing.T, storage Uploader) Service {
	t.Helper()
	svc, err := NewService(storage, config.MediaConfig{MaxUploadMB: 5}, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

type stubUploader struct {
	url             string
	calls           int
	lastObject      string
	lastContentType string
}

func (s *stubUploader) Upload(ctx context.Context, object string, contentType string, body io.Reader) (string, error) {
	s.calls++
	s.lastObject = object
	s.lastContentType = contentType
	_, _ = io.Copy(io.Discard, body)
	return s.url, nil
}
