package service

import (
	"fmt"
	"strings"

	"github.com/sakif/codigoteca/internal/apperror"
)

// requiredText trims *v and fails validation when it is absent, blank or
// longer than limit.
func requiredText(field string, v *string, limit int) (string, error) {
	if v == nil {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	if len(s) > limit {
		return "", apperror.ValidationFailed(field, fmt.Sprintf("%s must be %d characters or fewer", field, limit))
	}
	return s, nil
}

// nonBlank returns the trimmed value of v and whether it carries any text.
func nonBlank(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(*v)
	return s, s != ""
}

// trimmedOrNil trims *v and maps blank to nil.
func trimmedOrNil(v *string) *string {
	s, ok := nonBlank(v)
	if !ok {
		return nil
	}
	return &s
}

// normalizeTags trims every tag and drops blank ones. Commas are rejected
// because tags are stored comma-joined.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if strings.Contains(t, ",") {
			return nil, apperror.ValidationFailed("tags", fmt.Sprintf("tag %q must not contain commas", t))
		}
		if len(t) > MaxTagLength {
			return nil, apperror.ValidationFailed("tags", fmt.Sprintf("tags must be %d characters or fewer", MaxTagLength))
		}
		out = append(out, t)
	}
	return out, nil
}

// requirePositive fails validation unless id > 0.
func requirePositive(field string, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed(field, field+" is required")
	}
	return nil
}
