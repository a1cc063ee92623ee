package errs

import "fmt"

// RemoteError is a non-zero errcode reported by the provider.
type RemoteError struct {
	Op   string // endpoint, e.g. "log/login"
	Code int
	Msg  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: errcode %d (%s)", e.Op, e.Code, e.Msg)
}

// Is matches ErrRemoteAPI for every remote error and ErrAuth for token endpoint failures.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemoteAPI:
		return true
	case ErrAuth:
		return e.Op == "gettoken"
	}
	return false
}

// ParseError reports a provider record that cannot be turned into a model value.
type ParseError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s.%s: %s", e.Entity, e.Field, e.Reason)
}

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }
