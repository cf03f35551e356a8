package media

import (
	"fmt"
	"strings"

	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
)

// ValidateImage enforces the upload contract: content-type must be image/*
// and size must not exceed the configured limit. Both checks run before any
// storage call.
func ValidateImage(contentType string, size, maxBytes int64) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(ct, "image/") || ct == "image/" {
		return pkgerrors.New(pkgerrors.CodeValidation, "only image uploads are allowed")
	}
	if size <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "upload is empty")
	}
	if size > maxBytes {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("upload exceeds the %d MiB limit", maxBytes>>20))
	}
	return nil
}
