package session

import (
	"context"
	"time"
)

// Repository defines the interface for session storage operations
type Repository interface {
	// Session CRUD operations
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, appName, userID, sessionID string, opts *GetOptions) (*Session, error)
	List(ctx context.Context, appName, userID string) ([]*Session, error)
	Delete(ctx context.Context, appName, userID, sessionID string) error
	UpdateState(ctx context.Context, appName, userID, sessionID string, state map[string]interface{}) error

	// Event operations. Events are keyed by the session identity rather
	// than the storage row ID so adapters that only carry the external
	// identifiers can append.
	AppendEvent(ctx context.Context, appName, userID, sessionID string, event *Event) error

	// State operations
	GetAppState(ctx context.Context, appName string) (*AppState, error)
	SetAppState(ctx context.Context, appName string, state map[string]interface{}) error
	GetUserState(ctx context.Context, appName, userID string) (*UserState, error)
	SetUserState(ctx context.Context, appName, userID string, state map[string]interface{}) error
}

// GetOptions provides filtering options for Get operation
type GetOptions struct {
	NumRecentEvents int
	After           time.Time
}
