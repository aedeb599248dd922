package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/notes-backend/internal/entity"
)

// ValidateNarrationText rejects empty text and text over the speech ceiling
func (v *Validator) ValidateNarrationText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text", entity.ErrMissingField)
	}

	if n := utf8.RuneCountInString(text); n > v.maxTextLength {
		return fmt.Errorf("%w: %d characters (max %d)", entity.ErrTextTooLong, n, v.maxTextLength)
	}

	return nil
}

// ValidateNarration validates a custom narration request
func (v *Validator) ValidateNarration(req *entity.NarrationRequest) error {
	if err := v.ValidateNarrationText(req.Text); err != nil {
		return err
	}

	if req.Voice != "" && !req.Voice.IsValid() {
		return fmt.Errorf("%w: %q", entity.ErrInvalidVoice, req.Voice)
	}

	return nil
}

// ValidateMessage validates a conversation message
func (v *Validator) ValidateMessage(req *entity.AddMessageRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content", entity.ErrMissingField)
	}

	if req.Role != "" && !req.Role.IsValid() {
		return fmt.Errorf("%w: role %q", entity.ErrInvalidParameter, req.Role)
	}

	return nil
}
