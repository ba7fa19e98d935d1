package domain

import "errors"

var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrCredentialNotFound    = errors.New("credential record not found")
	ErrAlreadyConnected      = errors.New("session is already connected")
	ErrSessionBusy           = errors.New("session has an operation in progress")
	ErrInvalidIdentifier     = errors.New("identifier contains no digits")
	ErrPairingFailed         = errors.New("pairing failed")
	ErrCorruptCredential     = errors.New("credential record cannot be materialized")
	ErrTransientIO           = errors.New("transient i/o failure")
	ErrCapabilityUnavailable = errors.New("connection supervisor could not open session")
	ErrLockHeld              = errors.New("session lock held by another instance")
)
