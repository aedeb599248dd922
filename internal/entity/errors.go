package entity

import "errors"

// Domain errors
var (
	// Document errors
	ErrInvalidFile       = errors.New("invalid file")
	ErrFileTooLarge      = errors.New("file too large")
	ErrInvalidExtension  = errors.New("invalid file extension")
	ErrInvalidMediaType  = errors.New("invalid media type")
	ErrExtractionFailed  = errors.New("document text extraction failed")
	ErrDocumentNotLoaded = errors.New("no document uploaded yet")

	// Pipeline prerequisite errors
	ErrCorpusNotReady = errors.New("document index is not available yet")
	ErrIndexFailed    = errors.New("document indexing failed")
	ErrDeckNotReady   = errors.New("slide deck is not available yet")
	ErrDeckIncomplete = errors.New("slide deck is not ready for narration")
	ErrSlideNotFound  = errors.New("slide not found")

	// Provider errors
	ErrProviderUnavailable = errors.New("AI provider is not configured")
	ErrSchemaOmitted       = errors.New("structured response was not returned")
	ErrMalformedPayload    = errors.New("structured response is malformed")
	ErrEmptyResponse       = errors.New("provider returned an empty response")
	ErrSynthesisFailed     = errors.New("speech synthesis failed")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrTextTooLong      = errors.New("text exceeds maximum length")
	ErrInvalidVoice     = errors.New("invalid voice")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
