// Package errs defines the error kinds surfaced to the operator, per the
// error handling design: every failure carries enough context to act on,
// and no kind is retried.
package errs

import "fmt"

// Kind classifies a failure so callers (and tests) can distinguish them
// without string-matching messages.
type Kind string

const (
	ConfigParse             Kind = "config_parse"
	ConfigFormat            Kind = "config_format"
	ConfigChild             Kind = "config_child"
	UnknownTemplateVariable Kind = "unknown_template_variable"
	InvalidPackageName      Kind = "invalid_package_name"
	IconDecode              Kind = "icon_decode"
	IO                      Kind = "io"
	UnknownEnvironmentName  Kind = "unknown_environment_name"
)

// Error wraps an underlying cause with a Kind and, when one is known,
// the offending path.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// WithPath builds an Error annotated with the offending path, used for
// IO, IconDecode and config-file failures where the path is the
// actionable detail.
func WithPath(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
