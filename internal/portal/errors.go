package portal

import "errors"

// Kind classifies the errors raised by the portal client
type Kind int

const (
	// KindAuth covers rejected credentials, missing session cookies and responses that demand re-authentication
	KindAuth Kind = iota

	// KindTransport covers network, connection and timeout failures
	KindTransport

	// KindParse covers responses that do not match the portal's known shape
	KindParse

	// KindIO covers local filesystem failures
	KindIO
)

// String returns the lowercase name of the error kind
func (kind Kind) String() string {
	switch kind {
	case KindAuth:
		return "auth"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

var (
	// ErrCredentialsRejected is wrapped by login errors caused by credentials the portal refused
	ErrCredentialsRejected = errors.New("the portal rejected the given credentials")

	// ErrInvalidToken is wrapped by errors caused by an expired or unknown session token
	ErrInvalidToken = errors.New("the session token is invalid or expired")
)

// Error represents a failed portal operation together with the kind of failure
type Error struct {
	Kind     Kind
	Op       string
	Wrapping error
}

func (err *Error) Error() string {
	return err.Op + ": " + err.Wrapping.Error()
}

func (err *Error) Unwrap() error {
	return err.Wrapping
}

// KindOf extracts the error kind out of an error returned by this package.
// The boolean is false if the error did not originate here.
func KindOf(err error) (Kind, bool) {
	portalErr := &Error{}
	if errors.As(err, &portalErr) {
		return portalErr.Kind, true
	}
	return 0, false
}

// wrap tags an underlying error with the operation that raised it and its kind
func wrap(kind Kind, op string, err error) *Error {
	return &Error{
		Kind:     kind,
		Op:       op,
		Wrapping: err,
	}
}
