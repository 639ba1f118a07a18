package codablejson

import (
	"go.uber.org/zap"
)

// UnknownMode selects what encode does with a value that is neither a
// plain kind nor matched by any descriptor.
type UnknownMode int

const (
	// UnknownUnchanged passes the value through as is.
	UnknownUnchanged UnknownMode = iota
	// UnknownNull replaces the value with null.
	UnknownNull
	// UnknownError fails the encode.
	UnknownError
)

func (m UnknownMode) String() string {
	switch m {
	case UnknownUnchanged:
		return "unchanged"
	case UnknownNull:
		return "null"
	case UnknownError:
		return "error"
	default:
		return "unknown"
	}
}

// EncodeOptions configures a single encode call.
type EncodeOptions struct {
	Indent             string
	UnknownMode        UnknownMode
	IncludeErrorStack  bool
	PreserveReferences bool
}

// DefaultEncodeOptions returns the defaults used when no option is given.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		PreserveReferences: true,
		UnknownMode:        UnknownUnchanged,
	}
}

// EncodeOption changes EncodeOptions.
type EncodeOption func(*EncodeOptions)

// WithIncludeErrorStack keeps the Stack of encoded *Error values.
func WithIncludeErrorStack(include bool) EncodeOption {
	return func(o *EncodeOptions) { o.IncludeErrorStack = include }
}

// WithPreserveReferences toggles identity preservation. When off, shared
// values are duplicated and cycles fail the encode.
func WithPreserveReferences(preserve bool) EncodeOption {
	return func(o *EncodeOptions) { o.PreserveReferences = preserve }
}

// WithUnknownMode selects the policy for unrecognized values.
func WithUnknownMode(mode UnknownMode) EncodeOption {
	return func(o *EncodeOptions) { o.UnknownMode = mode }
}

// WithIndent indents Stringify output. Encode ignores it.
func WithIndent(indent string) EncodeOption {
	return func(o *EncodeOptions) { o.Indent = indent }
}

func buildEncodeOptions(opts []EncodeOption) EncodeOptions {
	o := DefaultEncodeOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DecodeOptions configures a single decode call.
type DecodeOptions struct {
	External map[string]any
	Logger   *zap.Logger
	// StrictReferences fails the decode when a reference names an id that
	// no node carries, instead of logging and leaving a placeholder.
	StrictReferences bool
}

// DecodeOption changes DecodeOptions.
type DecodeOption func(*DecodeOptions)

// WithStrictReferences makes unresolved references an error.
func WithStrictReferences() DecodeOption {
	return func(o *DecodeOptions) { o.StrictReferences = true }
}

// WithExternalReferences supplies the values external references resolve to.
func WithExternalReferences(refs map[string]any) DecodeOption {
	return func(o *DecodeOptions) { o.External = refs }
}

// WithDecodeLogger overrides the logger for one decode call.
func WithDecodeLogger(l *zap.Logger) DecodeOption {
	return func(o *DecodeOptions) { o.Logger = l }
}

func buildDecodeOptions(opts []DecodeOption) DecodeOptions {
	var o DecodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
