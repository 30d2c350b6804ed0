// Package validate checks URLs and Add/Edit form drafts.
package validate

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidURL is the inline message for a URL that does not parse
var ErrInvalidURL = errors.New("Please enter a valid URL")

// IsURL reports whether s, ignoring surrounding whitespace, parses as a
// URL with a scheme and something after it. An explicit port must be in
// range.
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	if u.Host == "" && u.Opaque == "" && u.Path == "" {
		return false
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n > 65535 {
			return false
		}
	}
	return true
}

// FieldErrors maps a form field to its inline message
type FieldErrors map[string]string

// Error implements error
func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fe[k])
	}
	return strings.Join(parts, "; ")
}

// Field field names
const (
	FieldName = "name"
	FieldURL  = "url"
)

var fieldLabels = map[string]string{
	FieldName: "Application name",
	FieldURL:  "Application URL",
}

// Required returns an error if value is blank
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		label, ok := fieldLabels[field]
		if !ok {
			label = field
		}
		return fmt.Errorf("%s is required", label)
	}
	return nil
}

// URL validates a required URL field
func URL(value string) error {
	if err := Required(FieldURL, value); err != nil {
		return err
	}
	if !IsURL(value) {
		return ErrInvalidURL
	}
	return nil
}

// Draft validates an Add dialog draft. It returns nil when the draft can
// be submitted.
func Draft(name, rawURL string) FieldErrors {
	errs := FieldErrors{}
	if err := Required(FieldName, name); err != nil {
		errs[FieldName] = err.Error()
	}
	if err := URL(rawURL); err != nil {
		errs[FieldURL] = err.Error()
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
