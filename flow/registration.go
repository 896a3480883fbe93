package flow

import (
	"context"
	"errors"
	"strings"
)

// Attachment validation for the signup form. Size, MIME type and file
// extension are each checked independently and all must pass before any
// upload request is made.

const MaxAttachmentSize = 5 * 1024 * 1024

var (
	ErrAttachmentTooLarge = errors.New("attachment exceeds the 5MB limit")
	ErrAttachmentMIME     = errors.New("attachment type not allowed")
	ErrAttachmentExt      = errors.New("attachment extension not allowed")
	ErrNameRequired       = errors.New("company name is required")
)

var attachmentMIMEs = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"application/pdf": true,
}

var attachmentExts = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"pdf":  true,
}

// ValidateAttachment checks a file against the upload constraints.
func ValidateAttachment(name, mimeType string, size int64) error {
	if size > MaxAttachmentSize {
		return ErrAttachmentTooLarge
	}
	if !attachmentMIMEs[strings.ToLower(mimeType)] {
		return ErrAttachmentMIME
	}
	idx := strings.LastIndex(name, ".")
	if idx < 0 || !attachmentExts[strings.ToLower(name[idx+1:])] {
		return ErrAttachmentExt
	}
	return nil
}

// NameChecker runs the live company-name uniqueness check with the same
// token idiom as the password preview.
type NameChecker struct {
	backend Backend
	token   uint64
}

func NewNameChecker(backend Backend) *NameChecker {
	return &NameChecker{backend: backend}
}

// Check resolves availability for the trimmed name. A result is only
// meaningful for the latest call; callers compare the returned token
// against Latest before applying it.
func (nc *NameChecker) Check(ctx context.Context, name string) (available bool, token uint64, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nc.token, ErrNameRequired
	}
	nc.token++
	token = nc.token

	available, err = nc.backend.CheckCompanyName(ctx, name)
	return available, token, err
}

// Latest returns the newest issued token.
func (nc *NameChecker) Latest() uint64 {
	return nc.token
}
