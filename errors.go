package neurarrow

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Conformance checks
	CodeDuplicateField           = "duplicate_field"
	CodeMissingRequiredField     = "missing_required_field"
	CodeFieldTypeMismatch        = "field_type_mismatch"
	CodeUnexpectedFields         = "unexpected_fields"
	CodeUnexpectedMetadataKey    = "unexpected_metadata_key"
	CodeMetadataValidationFailed = "metadata_validation_failed"
	CodeMissingRequiredMetadata  = "missing_required_metadata"
	// Metadata nesting
	CodeMetadataCodecConflict = "metadata_codec_conflict"
	// Validator causes (wrapped by metadata_validation_failed)
	CodeInvalidVersionFormat = "invalid_version_format"
	CodeVersionTooNew        = "version_too_new"
	CodeUnknownUnit          = "unknown_unit"
	CodeInvalidValueFormat   = "invalid_value_format"
	CodeInvalidEnum          = "invalid_enum"
	// Format construction
	CodeDuplicateDeclaration = "duplicate_declaration"
	CodeInvalidDeclaration   = "invalid_declaration"
	CodeUnknownFormat        = "unknown_format"
	// Generic
	CodeInvalidType = "invalid_type"
	CodeParseError  = "parse_error"
)

// Issue represents a single conformance violation.
type Issue struct {
	Path    string // JSON Pointer (for example: /fields/parent_id or /metadata/unit).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error (validator failures).
	// Params carries structured parameters (e.g., {"expected":"uint64", "actual":"int64"})
	// for i18n and rendering.
	Params map[string]any
}

// Issues is a collection of conformance errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. missing_required_field at /fields/x
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// HasCode reports whether any issue carries the given code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// Codes lists the issue codes in order.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// CauseCode returns the code of the first issue wrapped in it.Cause, or "".
func CauseCode(it Issue) string {
	if ci, ok := AsIssues(it.Cause); ok && len(ci) > 0 {
		return ci[0].Code
	}
	return ""
}
