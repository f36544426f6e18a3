package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"atlas/internal/domain/session"
	"atlas/pkg/errors"
)

// SessionRepository implements session.Repository using Redis. Sessions
// and their events expire together after the configured TTL so abandoned
// email threads do not accumulate.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a new Redis-backed session repository.
// A zero TTL keeps sessions until explicitly deleted.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

// Create stores a new session record.
func (r *SessionRepository) Create(ctx context.Context, sess *session.Session) error {
	key := r.sessionKey(sess.AppName, sess.UserID, sess.SessionID)

	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal session %s", sess.SessionID)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to save session to redis: session=%s", sess.SessionID)
	}

	return nil
}

// Get retrieves a session and its stored events.
func (r *SessionRepository) Get(ctx context.Context, appName, userID, sessionID string, opts *session.GetOptions) (*session.Session, error) {
	key := r.sessionKey(appName, userID, sessionID)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "session not found: %s", sessionID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get session from redis: session=%s", sessionID)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal session %s", sessionID)
	}

	events, err := r.loadEvents(ctx, appName, userID, sessionID, opts)
	if err != nil {
		return nil, err
	}
	sess.Events = events

	return &sess, nil
}

// List returns all sessions for an app, optionally filtered by user.
func (r *SessionRepository) List(ctx context.Context, appName, userID string) ([]*session.Session, error) {
	pattern := fmt.Sprintf("session:%s:*", appName)
	if userID != "" {
		pattern = fmt.Sprintf("session:%s:%s:*", appName, userID)
	}

	var sessions []*session.Session
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list sessions from redis")
		}

		var sess session.Session
		if err := json.Unmarshal([]byte(data), &sess); err != nil {
			continue
		}
		sessions = append(sessions, &sess)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "session scan failed")
	}

	return sessions, nil
}

// Delete removes a session and its events.
func (r *SessionRepository) Delete(ctx context.Context, appName, userID, sessionID string) error {
	key := r.sessionKey(appName, userID, sessionID)

	if err := r.client.Del(ctx, key, r.eventsKey(appName, userID, sessionID)).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete session from redis: session=%s", sessionID)
	}

	return nil
}

// UpdateState replaces the persisted session-scoped state.
func (r *SessionRepository) UpdateState(ctx context.Context, appName, userID, sessionID string, state map[string]interface{}) error {
	key := r.sessionKey(appName, userID, sessionID)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return errors.Wrapf(errors.ErrNotFound, "session not found: %s", sessionID)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to get session from redis: session=%s", sessionID)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return errors.Wrapf(err, "failed to unmarshal session %s", sessionID)
	}

	sess.State = state
	sess.UpdatedAt = time.Now()

	updated, err := json.Marshal(&sess)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal session %s", sessionID)
	}

	return r.client.Set(ctx, key, updated, r.ttl).Err()
}

// AppendEvent pushes an event onto the session's event log.
func (r *SessionRepository) AppendEvent(ctx context.Context, appName, userID, sessionID string, event *session.Event) error {
	key := r.eventsKey(appName, userID, sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to append event to redis")
	}

	return nil
}

// GetAppState retrieves application-scoped state.
func (r *SessionRepository) GetAppState(ctx context.Context, appName string) (*session.AppState, error) {
	data, err := r.client.Get(ctx, r.appStateKey(appName)).Result()
	if err == redis.Nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "app state not found: %s", appName)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get app state from redis")
	}

	state := make(map[string]interface{})
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal app state")
	}

	return &session.AppState{AppName: appName, State: state}, nil
}

// SetAppState stores application-scoped state. App state never expires.
func (r *SessionRepository) SetAppState(ctx context.Context, appName string, state map[string]interface{}) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "failed to marshal app state")
	}

	return r.client.Set(ctx, r.appStateKey(appName), data, 0).Err()
}

// GetUserState retrieves user-scoped state.
func (r *SessionRepository) GetUserState(ctx context.Context, appName, userID string) (*session.UserState, error) {
	data, err := r.client.Get(ctx, r.userStateKey(appName, userID)).Result()
	if err == redis.Nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "user state not found: %s/%s", appName, userID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user state from redis")
	}

	state := make(map[string]interface{})
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal user state")
	}

	return &session.UserState{AppName: appName, UserID: userID, State: state}, nil
}

// SetUserState stores user-scoped state.
func (r *SessionRepository) SetUserState(ctx context.Context, appName, userID string, state map[string]interface{}) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "failed to marshal user state")
	}

	return r.client.Set(ctx, r.userStateKey(appName, userID), data, 0).Err()
}

func (r *SessionRepository) loadEvents(ctx context.Context, appName, userID, sessionID string, opts *session.GetOptions) ([]session.Event, error) {
	start := int64(0)
	if opts != nil && opts.NumRecentEvents > 0 {
		start = int64(-opts.NumRecentEvents)
	}

	items, err := r.client.LRange(ctx, r.eventsKey(appName, userID, sessionID), start, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, errors.Wrap(err, "failed to load session events")
	}

	events := make([]session.Event, 0, len(items))
	for _, item := range items {
		var event session.Event
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			continue
		}
		if opts != nil && !opts.After.IsZero() && event.Timestamp.Before(opts.After) {
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

func (r *SessionRepository) sessionKey(appName, userID, sessionID string) string {
	return fmt.Sprintf("session:%s:%s:%s", appName, userID, sessionID)
}

func (r *SessionRepository) eventsKey(appName, userID, sessionID string) string {
	return fmt.Sprintf("session_events:%s:%s:%s", appName, userID, sessionID)
}

func (r *SessionRepository) appStateKey(appName string) string {
	return fmt.Sprintf("app_state:%s", appName)
}

func (r *SessionRepository) userStateKey(appName, userID string) string {
	return fmt.Sprintf("user_state:%s:%s", appName, userID)
}
