package cfgtree

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// CodeInvalidSchema marks a declaration that is self-inconsistent: a choice
	// default outside its set, a second wildcard, a default that fails its own
	// rule. Issued at compile time and always fatal to that schema's use.
	CodeInvalidSchema = "invalid_schema"

	// CodeInvalidType marks a raw value whose primitive kind does not match the
	// field's contract. There is no implicit coercion: "8080" is not an int.
	CodeInvalidType = "invalid_type"

	// CodeInvalidEnum marks a choice field value outside the accepted set.
	CodeInvalidEnum = "invalid_enum"

	// CodeUnknownKey marks a mapping key that is neither declared nor absorbed
	// by a wildcard rule.
	CodeUnknownKey = "unknown_key"

	// CodeParseError marks input bytes that do not conform to the declared
	// format's syntax. The adapter's underlying error is kept in Cause.
	CodeParseError = "parse_error"
)

// Issue represents a single schema or validation finding.
type Issue struct {
	Path    string // Slash-separated field path (for example: /plugins/0).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: expected kinds, accepted sets, remediation.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"expected":"int","got":"string"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /server/port
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
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

// HasCode reports whether err carries at least one Issue with the given code.
// Callers use it to tell the failure classes apart: invalid_schema is a
// declaration bug, parse_error is malformed input, everything else is data
// that does not fit the contract.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// rebase prefixes child issue paths with the parent segment so errors from a
// recursive validate surface with their full field path.
func rebase(base string, child Issues) Issues {
	if len(child) == 0 {
		return nil
	}
	out := make(Issues, 0, len(child))
	for _, it := range child {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}
