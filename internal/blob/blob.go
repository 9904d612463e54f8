// Package blob stores attachment content on a filesystem or in S3.
package blob

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned when a key has no content.
var ErrNotFound = errors.New("blob not found")

// checkKey rejects keys that would escape the store root.
func checkKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return clean, nil
}
