// Package domain contains the core entities of the chat service, the errors
// they can produce, and the repository contracts the adapters implement.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the use cases and mapped to HTTP statuses at the
// request boundary.
var (
	// ErrUnauthenticated indicates the caller has no valid session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrOwnerNotFound indicates the session identity has no matching user record.
	ErrOwnerNotFound = errors.New("user not found")

	// ErrInvalidInput indicates the input data is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a uniqueness constraint rejected the write.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrRoomURLTaken wraps ErrAlreadyExists when the collision is on the public
// room code rather than the owner's title.
var ErrRoomURLTaken = fmt.Errorf("room url: %w", ErrAlreadyExists)

// ErrTitleRequired is returned when a request carries no string title at all.
var ErrTitleRequired = fmt.Errorf("%w: title is required and must be a string", ErrInvalidInput)
