package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxDocumentSize is 4MB.
	DefaultMaxDocumentSize = 4 << 20
	// EnvMaxDocumentSize is the environment variable to override the default.
	EnvMaxDocumentSize = "CARDFLOW_MAX_DOCUMENT_SIZE"
)

var (
	ErrDocumentTooLarge = errors.New("document exceeds maximum allowed size")
	ErrInvalidUTF8      = errors.New("document contains invalid UTF-8 sequences")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Sanitize enforces the size limit, validates UTF-8, drops a leading byte
// order mark and strips control characters other than newline, tab and
// carriage return.
func Sanitize(data []byte) ([]byte, error) {
	limit := MaxDocumentSize()
	if len(data) > limit {
		// Reject rather than truncate: a truncated document may still parse.
		return nil, fmt.Errorf("%w: size=%d limit=%d", ErrDocumentTooLarge, len(data), limit)
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	clean := true
	for _, r := range string(data) {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return data, nil
	}

	out := make([]byte, 0, len(data))
	for _, r := range string(data) {
		if !unicode.IsControl(r) || isSafeControl(r) {
			out = utf8.AppendRune(out, r)
		}
	}
	return out, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

// MaxDocumentSize returns the configured limit in bytes.
func MaxDocumentSize() int {
	if val := os.Getenv(EnvMaxDocumentSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxDocumentSize
}
