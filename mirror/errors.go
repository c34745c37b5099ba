package mirror

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Kind classifies a platform API failure.
type Kind string

// Error kinds. Auth errors abort a run; the others are
// recorded per repository and the run continues.
const (
	KindAuth     Kind = "auth"
	KindNotFound Kind = "not found"
	KindConflict Kind = "conflict"
	KindNetwork  Kind = "network"
	KindUnknown  Kind = "unknown"
)

// Error is a classified platform API failure.
type Error struct {
	// Kind is the failure category.
	Kind Kind

	// Op names the attempted operation
	// (e.g. "listing gitlab projects").
	Op string

	// Resource identifies the affected resource.
	Resource string

	// Err is the underlying platform client error.
	Err error
}

func (e *Error) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf(
			"%s: %s %s: %v",
			e.Op, e.Kind, e.Resource, e.Err,
		)
	}

	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a classified error, or
// KindUnknown for anything else.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}

	return KindUnknown
}

// IsAuth reports whether err is an authentication or
// authorization failure.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}

// IsNotFound reports whether err is a missing-resource
// failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsConflict reports whether err is an
// already-exists failure.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// IsNetwork reports whether err is a transport failure
// or a server-side outage.
func IsNetwork(err error) bool {
	return KindOf(err) == KindNetwork
}

// FromResponse classifies a platform client error by
// the HTTP response status. resp may be nil when the
// request never reached the server. Returns nil when
// err is nil.
func FromResponse(
	op string,
	resource string,
	resp *http.Response,
	err error,
) error {
	if err == nil {
		return nil
	}

	kind := KindUnknown

	switch {
	case resp == nil:
		if isTransportError(err) {
			kind = KindNetwork
		}
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		kind = KindAuth
	case resp.StatusCode == http.StatusNotFound:
		kind = KindNotFound
	case resp.StatusCode == http.StatusConflict,
		resp.StatusCode ==
			http.StatusUnprocessableEntity:
		// 422 covers "name already exists" responses
		// from repository creation.
		kind = KindConflict
	case resp.StatusCode >= http.StatusInternalServerError:
		kind = KindNetwork
	}

	return &Error{
		Kind:     kind,
		Op:       op,
		Resource: resource,
		Err:      err,
	}
}

// isTransportError reports whether err originates from
// the network layer rather than the remote API.
func isTransportError(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) {
		return true
	}

	var uerr *url.Error

	return errors.As(err, &uerr)
}
