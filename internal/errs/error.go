package errs

import "errors"

// Error is a user-facing failure. It matches both its Kind and its cause with errors.Is;
// Error() returns the displayable message.
type Error struct {
	Kind error  // one of ErrAuthentication, ErrLoad, ErrWrite, ErrConnectivity
	Op   string // e.g. "factstore.create"
	Msg  string // message shown to the user
	Err  error  // underlying cause, may be nil
}

// New builds an *Error of the given kind.
func New(kind error, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

// Unwrap exposes kind and cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Message returns the displayable message carried by err, or fallback when err
// is not an *Error.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return fallback
}
