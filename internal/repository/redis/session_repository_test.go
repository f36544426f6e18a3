package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/domain/session"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

func newTestRepo(t *testing.T) *SessionRepository {
	t.Helper()
	require.NoError(t, logger.Init("error", "test"))

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewSessionRepository(client, time.Hour)
}

func newTestSession(appName, userID, sessionID string) *session.Session {
	return &session.Session{
		ID:        uuid.New(),
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
		State:     map[string]interface{}{"topic": "VPN trouble"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestSessionRepositoryCreateGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sess := newTestSession("email_triage", "pat", "s1")
	require.NoError(t, repo.Create(ctx, sess))

	got, err := repo.Get(ctx, "email_triage", "pat", "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, sess.SessionID, got.SessionID)
	assert.Equal(t, "VPN trouble", got.State["topic"])
}

func TestSessionRepositoryGetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "email_triage", "pat", "missing", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSessionRepositoryAppendEvent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sess := newTestSession("email_triage", "pat", "s1")
	require.NoError(t, repo.Create(ctx, sess))

	event := &session.Event{
		ID:        uuid.New(),
		EventID:   "ev1",
		Author:    "EmailGenerator",
		Timestamp: time.Now(),
	}
	require.NoError(t, repo.AppendEvent(ctx, "email_triage", "pat", "s1", event))

	got, err := repo.Get(ctx, "email_triage", "pat", "s1", nil)
	require.NoError(t, err)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "EmailGenerator", got.Events[0].Author)
}

func TestSessionRepositoryRecentEvents(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sess := newTestSession("email_triage", "pat", "s1")
	require.NoError(t, repo.Create(ctx, sess))

	for i := 0; i < 5; i++ {
		event := &session.Event{ID: uuid.New(), Author: "user", Timestamp: time.Now()}
		require.NoError(t, repo.AppendEvent(ctx, "email_triage", "pat", "s1", event))
	}

	got, err := repo.Get(ctx, "email_triage", "pat", "s1", &session.GetOptions{NumRecentEvents: 2})
	require.NoError(t, err)
	assert.Len(t, got.Events, 2)
}

func TestSessionRepositoryList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestSession("email_triage", "pat", "s1")))
	require.NoError(t, repo.Create(ctx, newTestSession("email_triage", "pat", "s2")))
	require.NoError(t, repo.Create(ctx, newTestSession("email_triage", "alex", "s3")))

	all, err := repo.List(ctx, "email_triage", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pats, err := repo.List(ctx, "email_triage", "pat")
	require.NoError(t, err)
	assert.Len(t, pats, 2)
}

func TestSessionRepositoryDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sess := newTestSession("email_triage", "pat", "s1")
	require.NoError(t, repo.Create(ctx, sess))
	require.NoError(t, repo.Delete(ctx, "email_triage", "pat", "s1"))

	_, err := repo.Get(ctx, "email_triage", "pat", "s1", nil)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSessionRepositoryAppAndUserState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetAppState(ctx, "email_triage", map[string]interface{}{"maintenance_mode": false}))
	appState, err := repo.GetAppState(ctx, "email_triage")
	require.NoError(t, err)
	assert.Equal(t, false, appState.State["maintenance_mode"])

	require.NoError(t, repo.SetUserState(ctx, "email_triage", "pat", map[string]interface{}{"muted": true}))
	userState, err := repo.GetUserState(ctx, "email_triage", "pat")
	require.NoError(t, err)
	assert.Equal(t, true, userState.State["muted"])
}
