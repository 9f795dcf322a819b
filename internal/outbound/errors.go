package outbound

import "fmt"

// HTTPError is the closed set of failures reported by the capability.
type HTTPError int

const (
	Success HTTPError = iota
	DestinationNotAllowed
	InvalidCfg
	InvalidURL
	RequestError
	RuntimeError
)

func (e HTTPError) Error() string {
	switch e {
	case Success:
		return "success"
	case DestinationNotAllowed:
		return "destination not allowed"
	case InvalidCfg:
		return "invalid config"
	case InvalidURL:
		return "invalid URL"
	case RequestError:
		return "request error"
	case RuntimeError:
		return "runtime error"
	default:
		return fmt.Sprintf("unknown http error %d", int(e))
	}
}

// Error carries an HTTPError code together with its cause. errors.Is
// matches it against the bare code.
type Error struct {
	Code HTTPError
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "outbound http: " + e.Code.Error()
	}
	return "outbound http: " + e.Code.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	code, ok := target.(HTTPError)
	return ok && code == e.Code
}

func newError(code HTTPError, format string, args ...interface{}) error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}
