package feed

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure
type Kind int

const (
	KindNetwork   Kind = iota + 1 // transport failure, request never got a response
	KindStatus                    // response with a non-2xx status
	KindMalformed                 // body is not JSON or fails the schema
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against an *Error
var (
	ErrNetwork   = errors.New("feed: network failure")
	ErrStatus    = errors.New("feed: unexpected status")
	ErrMalformed = errors.New("feed: malformed response")
)

// Error is returned by every Client operation
type Error struct {
	Kind   Kind
	URL    string
	Status int // only set for KindStatus
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	default:
		if e.Err == nil {
			return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
		}
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrStatus:
		return e.Kind == KindStatus
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	return false
}

// Malformed wraps err as a KindMalformed error for url
func Malformed(url string, err error) error {
	return &Error{Kind: KindMalformed, URL: url, Err: err}
}
