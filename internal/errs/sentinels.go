// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client/repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAuth indicates the access token could not be obtained or refreshed.
	ErrAuth = errors.New("auth failed")

	// ErrRemoteAPI indicates the provider answered with a non-zero errcode.
	ErrRemoteAPI = errors.New("remote api error")

	// ErrParse indicates a provider payload is missing required fields or is malformed.
	ErrParse = errors.New("parse error")

	// ErrPersistence indicates a database write or transaction failure.
	ErrPersistence = errors.New("persistence error")
)
