package geocoding

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the closed set of failures a provider reports.
type ErrorKind int

const (
	// KindInvalidCredentials means the provider has no usable API key.
	KindInvalidCredentials ErrorKind = iota + 1
	// KindUnsupportedOperation means the query is of a kind the provider cannot serve.
	KindUnsupportedOperation
	// KindInvalidServerResponse means the API answered with an unusable body.
	KindInvalidServerResponse
	// KindZeroResults means the API answered but nothing usable was found.
	KindZeroResults
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnsupportedOperation:
		return "unsupported_operation"
	case KindInvalidServerResponse:
		return "invalid_server_response"
	case KindZeroResults:
		return "zero_results"
	default:
		return "unknown"
	}
}

// Error is a geocoding failure. URL is set when the failure relates to a
// request that was already sent.
type Error struct {
	Kind    ErrorKind
	URL     string
	Message string
	Err     error
}

// Sentinels for errors.Is. Any *Error matches the sentinel of its kind.
var (
	ErrInvalidCredentials    = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrUnsupportedOperation  = &Error{Kind: KindUnsupportedOperation, Message: "unsupported operation"}
	ErrInvalidServerResponse = &Error{Kind: KindInvalidServerResponse, Message: "invalid server response"}
	ErrZeroResults           = &Error{Kind: KindZeroResults, Message: "no results"}
)

func (e *Error) Error() string {
	msg := e.Message
	if e.URL != "" {
		msg = fmt.Sprintf("%s for %q", msg, redactURL(e.URL))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or 0 if there is none.
func KindOf(err error) ErrorKind {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Kind
	}

	return 0
}

func invalidCredentials(msg string) error {
	return &Error{Kind: KindInvalidCredentials, Message: msg}
}

func unsupportedOperation(msg string) error {
	return &Error{Kind: KindUnsupportedOperation, Message: msg}
}

func invalidServerResponse(url string) error {
	return &Error{Kind: KindInvalidServerResponse, URL: url, Message: "invalid server response"}
}

func zeroResults(url string, cause error) error {
	return &Error{Kind: KindZeroResults, URL: url, Message: "could not find results", Err: cause}
}

// redactURL replaces the value of the key query parameter, keeping the
// parameter order of the original URL.
func redactURL(raw string) string {
	base, query, ok := strings.Cut(raw, "?")
	if !ok {
		return raw
	}

	params := strings.Split(query, "&")
	for i, param := range params {
		if name, _, _ := strings.Cut(param, "="); name == "key" {
			params[i] = "key=REDACTED"
		}
	}

	return base + "?" + strings.Join(params, "&")
}
