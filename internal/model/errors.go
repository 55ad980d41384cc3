package model

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrUnavailable means no backend persisted the write.
	ErrUnavailable = errors.New("progress store unavailable")
	// ErrTimeout means the remote backend exceeded its bound. The local
	// fallback may still have persisted the record.
	ErrTimeout = errors.New("progress store timeout")
	// ErrRejected means a backend refused the request outright.
	ErrRejected = errors.New("progress store rejected request")

	// ErrNoActiveSession is returned when a completion is attempted without
	// a signed-in user or without a tutorial.
	ErrNoActiveSession = errors.New("no active session")

	ErrInvalidArgument    = errors.New("invalid argument")
	ErrTutorialNotFound   = errors.New("tutorial not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
