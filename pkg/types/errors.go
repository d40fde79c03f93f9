package types

import "errors"

// Registry errors.
var (
	ErrDuplicateRegistration = errors.New("settings type is already registered")
	ErrNotRegistered         = errors.New("settings type is not registered")
)

// Persistence errors.
var (
	ErrFileMissing       = errors.New("settings file does not exist")
	ErrMalformedDocument = errors.New("settings document is not a JSON object")
	ErrDeserialization   = errors.New("section cannot be deserialized")
	ErrInvalidSection    = errors.New("invalid section path")
	ErrNotObservable     = errors.New("settings instance is not observable")
)

// Synchronization errors.
var (
	ErrSyncPrecondition = errors.New("source and destination must not be nil")
)

// Options and host errors.
var (
	ErrDirectoryEmpty     = errors.New("local files directory must not be empty")
	ErrFileNameEmpty      = errors.New("settings file name must not be empty")
	ErrAlreadyInitialized = errors.New("settings host is already initialized")
)

// Document store errors.
var (
	ErrStoreAttached = errors.New("document store is already attached")
	ErrStoreDetached = errors.New("document store is detached")
)
