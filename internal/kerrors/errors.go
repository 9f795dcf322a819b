// Package kerrors defines the errors produced while resolving connection
// details from a kubeconfig and while translating requests for the
// outbound HTTP capability.
//
// Field specific failures share one type tagged with the field they concern,
// so callers can match on the kind with errors.Is and still report exactly
// which piece of credential material was at fault.
package kerrors

import (
	"errors"
	"fmt"
)

// ConfigErrorKind classifies a ConfigError.
type ConfigErrorKind int

const (
	// KindLoad means the kube configuration store could not be loaded.
	KindLoad ConfigErrorKind = iota + 1
	KindNoContext
	KindNoCluster
	KindNoUser
	// KindCannotDetermine means neither inline data nor a path was present.
	KindCannotDetermine
	KindCannotDecode
	KindCannotRead
	// KindInvalidServerURL means the server URL cannot be parsed or has no
	// authority.
	KindInvalidServerURL
)

func (k ConfigErrorKind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindNoContext:
		return "no context"
	case KindNoCluster:
		return "no cluster"
	case KindNoUser:
		return "no user"
	case KindCannotDetermine:
		return "cannot determine"
	case KindCannotDecode:
		return "cannot decode"
	case KindCannotRead:
		return "cannot read"
	case KindInvalidServerURL:
		return "invalid server URL"
	default:
		return "unknown"
	}
}

// Field names the piece of credential material a ConfigError refers to.
type Field string

const (
	FieldNone Field = ""
	// FieldClusterCA is the cluster CA as read for the user identity.
	FieldClusterCA Field = "cluster CA"
	// FieldServerCA is the cluster CA as read for the server endpoint.
	FieldServerCA Field = "server CA"
	FieldUserKey  Field = "user key"
	FieldUserCert Field = "user certificate"
)

// ConfigError reports a failure to resolve connection details.
type ConfigError struct {
	Kind  ConfigErrorKind
	Field Field
	// Detail carries extra context such as a file path or URL.
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	var msg string
	switch e.Kind {
	case KindLoad:
		msg = "kube-conf: cannot load configuration"
	case KindNoContext:
		msg = "kube-conf: no default kubernetes context"
	case KindNoCluster:
		msg = "kube-conf: no cluster definition"
	case KindNoUser:
		msg = "kube-conf: no user definition"
	case KindInvalidServerURL:
		msg = "kube-conf: invalid server URL"
	default:
		msg = fmt.Sprintf("kube-conf: %s %s", e.Kind, e.Field)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is matches another ConfigError by kind, and by field when the target
// names one. This makes the sentinels below usable with errors.Is.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Field == FieldNone || t.Field == e.Field
}

var (
	ErrLoad             = &ConfigError{Kind: KindLoad}
	ErrNoContext        = &ConfigError{Kind: KindNoContext}
	ErrNoCluster        = &ConfigError{Kind: KindNoCluster}
	ErrNoUser           = &ConfigError{Kind: KindNoUser}
	ErrCannotDetermine  = &ConfigError{Kind: KindCannotDetermine}
	ErrCannotDecode     = &ConfigError{Kind: KindCannotDecode}
	ErrCannotRead       = &ConfigError{Kind: KindCannotRead}
	ErrInvalidServerURL = &ConfigError{Kind: KindInvalidServerURL}
)

// CannotDetermine builds the error for a field with neither source present.
func CannotDetermine(field Field) error {
	return &ConfigError{Kind: KindCannotDetermine, Field: field}
}

// CannotDecode wraps a base64 decoding failure for field.
func CannotDecode(field Field, err error) error {
	return &ConfigError{Kind: KindCannotDecode, Field: field, Err: err}
}

// CannotRead wraps a failure to read the file referenced for field.
func CannotRead(field Field, path string, err error) error {
	return &ConfigError{Kind: KindCannotRead, Field: field, Detail: path, Err: err}
}

// TranslationErrorKind classifies a TranslationError.
type TranslationErrorKind int

const (
	KindMethodNotSupported TranslationErrorKind = iota + 1
	KindInvalidURI
	KindBodyRead
)

func (k TranslationErrorKind) String() string {
	switch k {
	case KindMethodNotSupported:
		return "method not supported"
	case KindInvalidURI:
		return "invalid URI"
	case KindBodyRead:
		return "cannot read request body"
	default:
		return "unknown"
	}
}

// TranslationError reports why a request could not be turned into a wire
// request. It only ever affects the request being translated.
type TranslationError struct {
	Kind   TranslationErrorKind
	Detail string
	Err    error
}

func (e *TranslationError) Error() string {
	msg := "http: " + e.Kind.String()
	if e.Kind == KindMethodNotSupported {
		msg = "http method not handled by the outbound http capability"
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// Is matches another TranslationError by kind.
func (e *TranslationError) Is(target error) bool {
	t, ok := target.(*TranslationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrMethodNotSupported = &TranslationError{Kind: KindMethodNotSupported}
	ErrInvalidURI         = &TranslationError{Kind: KindInvalidURI}
	ErrBodyRead           = &TranslationError{Kind: KindBodyRead}
)

// FieldOf returns the field tag of a ConfigError anywhere in err's chain.
func FieldOf(err error) (Field, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Field, true
	}
	return FieldNone, false
}
