package cookies

import (
	"context"
	"errors"
)

// Common errors.
var (
	ErrNotFound    = errors.New("cookie not found")
	ErrStoreClosed = errors.New("cookie store is closed")

	// ErrBackendUnavailable means a backend read was rejected.
	ErrBackendUnavailable = errors.New("cookie backend unavailable")
	// ErrBackendRejected means a set or remove call was refused, usually
	// for an invalid domain/path combination.
	ErrBackendRejected = errors.New("cookie backend rejected request")
	// ErrValidation is returned before any backend call, e.g. for an empty name.
	ErrValidation = errors.New("invalid cookie")
)

// Backend is the external cookie store the core operates against.
type Backend interface {
	// GetAll returns cookies whose domain matches domainFilter or is a
	// subdomain of it. A leading dot on the filter is ignored.
	GetAll(ctx context.Context, domainFilter string) ([]Cookie, error)

	// Set creates or replaces a cookie. It fails on invalid input.
	Set(ctx context.Context, req SetRequest) error

	// Remove deletes the cookie with the given name visible at url.
	// Removing a cookie that does not exist is not an error.
	Remove(ctx context.Context, url, name string) error
}
