package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/futig/notes-backend/internal/config"
	"github.com/futig/notes-backend/internal/entity"
)

var AllowedExtensions = map[string]bool{
	".pdf": true,
}

const pdfMediaType = "application/pdf"

// Validator validates client input before any provider call
type Validator struct {
	cfg           config.FileUploadConfig
	maxTextLength int
}

func New(cfg config.FileUploadConfig, maxTextLength int) *Validator {
	return &Validator{cfg: cfg, maxTextLength: maxTextLength}
}

// MaxTextLength is the narration text ceiling
func (v *Validator) MaxTextLength() int {
	return v.maxTextLength
}

// ValidateUpload validates a single PDF upload
func (v *Validator) ValidateUpload(fh *multipart.FileHeader) error {
	if fh == nil {
		return fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !AllowedExtensions[ext] {
		return fmt.Errorf("%w: %q (only .pdf files are allowed)", entity.ErrInvalidExtension, ext)
	}

	if contentType := fh.Header.Get("Content-Type"); mediaType(contentType) != pdfMediaType {
		return fmt.Errorf("%w: %q (only application/pdf is allowed)", entity.ErrInvalidMediaType, contentType)
	}

	if fh.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, fh.Filename, fh.Size, v.cfg.MaxFileSize)
	}

	if fh.Size == 0 {
		return fmt.Errorf("%w: file '%s' is empty", entity.ErrInvalidFile, fh.Filename)
	}

	return nil
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// SanitizeFilename sanitizes a filename for safe storage
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	return replacer.Replace(filename)
}
