package validation

import (
	"fmt"
	"strings"
)

const maxCommentLength = 1000

// ValidateCommentContent checks comment presence and length.
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("comment content is required")
	}
	if len(content) > maxCommentLength {
		return fmt.Errorf("comment must not exceed %d characters", maxCommentLength)
	}
	return nil
}
