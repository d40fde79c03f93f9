package persistence

import (
	"log/slog"

	"github.com/mesh-intelligence/keepsake/pkg/types"
)

// Option configures a Manager.
type Option func(*settings)

type settings struct {
	meta       types.Metadata
	logger     *slog.Logger
	onError    func(error)
	serializer any
}

// WithMetadata sets the section and file the manager persists to. Empty
// fields fall back to the schema name and types.DefaultFile.
func WithMetadata(meta types.Metadata) Option {
	return func(s *settings) { s.meta = meta }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithErrorHandler receives autosave failures, which have no caller to
// return to. The default logs them at error level.
func WithErrorHandler(fn func(error)) Option {
	return func(s *settings) { s.onError = fn }
}

// WithSerializer replaces the schema's own serializer. The serializer must
// handle the manager's settings type; New rejects any other.
func WithSerializer[T any](ser types.Serializer[T]) Option {
	return func(s *settings) { s.serializer = ser }
}
