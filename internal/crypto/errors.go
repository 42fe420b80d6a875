package crypto

import "errors"

var (
	// ErrNoRecipients is returned when an encryptor is built without any
	// recipient key.
	ErrNoRecipients = errors.New("at least one recipient is required")
	// ErrOutsideRoot is returned for paths that do not lie under the watched
	// root.
	ErrOutsideRoot = errors.New("path is outside the sync root")
)
