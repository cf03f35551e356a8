package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/danielcastellanos/peptidehub-backend/pkg/config"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
	"github.com/google/uuid"
)

// Uploader is the slice of the object storage client the service needs.
type Uploader interface {
	Upload(ctx context.Context, object string, contentType string, body io.Reader) (string, error)
}

// UploadInput describes one candidate image upload.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult reports where the stored object landed.
type UploadResult struct {
	Object    string `json:"object"`
	PublicURL string `json:"public_url"`
}

// Service validates and stores product images.
type Service interface {
	UploadImage(ctx context.Context, input UploadInput) (*UploadResult, error)
}

type service struct {
	storage  Uploader
	maxBytes int64
	logg     *logger.Logger
}

// NewService builds a media service backed by the provided storage client.
func NewService(storage Uploader, cfg config.MediaConfig, logg *logger.Logger) (Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage client required")
	}
	return &service{storage: storage, maxBytes: cfg.MaxUploadBytes(), logg: logg}, nil
}

// UploadImage rejects anything that is not an image within the size limit,
// then forwards the body to object storage and returns its public URL.
func (s *service) UploadImage(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if err := ValidateImage(input.ContentType, input.Size, s.maxBytes); err != nil {
		return nil, err
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload body is required")
	}

	object := objectName(input.FileName, input.ContentType)
	url, err := s.storage.Upload(ctx, object, input.ContentType, io.LimitReader(input.Body, s.maxBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "object", object), "image stored")
	}
	return &UploadResult{Object: object, PublicURL: url}, nil
}

// objectName builds a collision-free object key, keeping the original
// extension when one is present.
func objectName(fileName, contentType string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return fmt.Sprintf("products/%s%s", uuid.NewString(), ext)
}
