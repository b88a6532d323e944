package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateSnapshotName validates a stored snapshot name for safety and
// correctness. It rejects names that could be used for path traversal when
// the file-backed store resolves them to paths.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, backslash)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateSnapshotName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidSnapshot, "snapshot name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidSnapshot, "snapshot name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSnapshot, "snapshot name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidSnapshot, "snapshot name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// snapshotIDRegex matches the UUID form the store assigns to snapshots.
var snapshotIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateSnapshotID validates a store-assigned snapshot id.
func ValidateSnapshotID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSnapshot, "snapshot id cannot be empty")
	}
	if !snapshotIDRegex.MatchString(id) {
		return New(ErrCodeInvalidSnapshot, "invalid snapshot id: %q", id)
	}
	return nil
}

// ValidateCanvas validates canvas dimensions supplied by a host view.
func ValidateCanvas(width, height float64) error {
	if width <= 0 {
		return New(ErrCodeInvalidCanvas, "canvas width must be positive, got %g", width)
	}
	if height <= 0 {
		return New(ErrCodeInvalidCanvas, "canvas height must be positive, got %g", height)
	}
	const maxDim = 100000
	if width > maxDim || height > maxDim {
		return New(ErrCodeInvalidCanvas, "canvas dimensions too large (max %d)", maxDim)
	}
	return nil
}

// ValidateWindow validates a genomic window request against the sequence
// length. A zero seqLen skips the upper-bound check.
func ValidateWindow(start, end, seqLen float64) error {
	if start < 0 {
		return New(ErrCodeInvalidWindow, "genomic start must be non-negative, got %g", start)
	}
	if end <= start {
		return New(ErrCodeInvalidWindow, "genomic window [%g, %g) is empty", start, end)
	}
	if seqLen > 0 && start >= seqLen {
		return New(ErrCodeInvalidWindow, "genomic start %g beyond sequence length %g", start, seqLen)
	}
	if seqLen > 0 && end > seqLen {
		return New(ErrCodeInvalidWindow, "genomic end %g beyond sequence length %g", end, seqLen)
	}
	return nil
}
