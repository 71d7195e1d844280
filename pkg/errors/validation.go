package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a relative file path reported by an external tool.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") || windowsDriveRE.MatchString(path) {
		return New(ErrCodeInvalidPath, "path must be relative: %q", path)
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

var windowsDriveRE = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme: %q", rawURL)
	}

	return nil
}

// pep440RE loosely matches a public PEP 440 version identifier
// (e.g. "2.1.0", "2.10.0rc1", "2.0.0.post1", "1!2.0").
var pep440RE = regexp.MustCompile(`^([0-9]+!)?[0-9]+(\.[0-9]+)*((a|b|rc)[0-9]+)?(\.post[0-9]+)?(\.dev[0-9]+)?$`)

// ValidateVersion validates a pinned PDM version passed to the installer.
// An empty version is valid and means "latest".
func ValidateVersion(version string) error {
	if version == "" {
		return nil
	}
	if !pep440RE.MatchString(version) {
		return New(ErrCodeInvalidVersion, "invalid PDM version: %q", version)
	}
	return nil
}

// knownArchitectures lists the architecture names used by hosted runners
// and the Python tool cache.
var knownArchitectures = map[string]bool{
	"x64": true, "x86": true, "arm64": true, "arm": true,
	"ppc64": true, "s390x": true,
}

// ValidateArchitecture validates the architecture input.
func ValidateArchitecture(arch string) error {
	if !knownArchitectures[arch] {
		return New(ErrCodeInvalidInput, "unsupported architecture: %q", arch)
	}
	return nil
}
