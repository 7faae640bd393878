package validation

import (
	"fmt"
	"strings"
)

const (
	maxTitleLength   = 200
	maxContentLength = 100000
	maxTagCount      = 10
	maxTagLength     = 30
)

// ValidateBlogTitle checks title presence and length.
func ValidateBlogTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("title must not exceed %d characters", maxTitleLength)
	}
	return nil
}

// ValidateBlogContent checks content presence and length.
func ValidateBlogContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	if len(content) > maxContentLength {
		return fmt.Errorf("content must not exceed %d characters", maxContentLength)
	}
	return nil
}

// NormalizeTags lowercases, trims and de-duplicates tags, enforcing limits.
func NormalizeTags(tags []string) ([]string, error) {
	if len(tags) > maxTagCount {
		return nil, fmt.Errorf("a blog can carry at most %d tags", maxTagCount)
	}
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if len(t) > maxTagLength {
			return nil, fmt.Errorf("tag %q exceeds %d characters", t, maxTagLength)
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}
