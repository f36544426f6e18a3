package adk_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/session"

	"atlas/internal/adapters/adk"
	domainsession "atlas/internal/domain/session"
	redisrepo "atlas/internal/repository/redis"
	"atlas/pkg/logger"
)

func newRedisBackedService(t *testing.T) session.Service {
	t.Helper()
	require.NoError(t, logger.Init("error", "test"))

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := redisrepo.NewSessionRepository(client, time.Hour)
	return adk.NewSessionService(domainsession.NewService(repo))
}

func TestSessionServiceAppendEvent(t *testing.T) {
	adkService := newRedisBackedService(t)
	ctx := context.Background()

	createResp, err := adkService.Create(ctx, &session.CreateRequest{
		AppName:   "email_triage",
		UserID:    "pat",
		SessionID: "",
		State:     nil,
	})
	require.NoError(t, err)
	require.NotNil(t, createResp.Session)

	adkSession := createResp.Session

	adkEvent := &session.Event{
		ID:        fmt.Sprintf("event_%d", time.Now().UnixNano()),
		Timestamp: time.Now(),
		Branch:    "main",
		Author:    "user",
	}
	adkEvent.LLMResponse.Partial = false
	adkEvent.TurnComplete = true

	require.NoError(t, adkService.AppendEvent(ctx, adkSession, adkEvent))

	getResp, err := adkService.Get(ctx, &session.GetRequest{
		AppName:         adkSession.AppName(),
		UserID:          adkSession.UserID(),
		SessionID:       adkSession.ID(),
		NumRecentEvents: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, getResp.Session.Events().Len())
}

func TestSessionServiceMultipleEvents(t *testing.T) {
	adkService := newRedisBackedService(t)
	ctx := context.Background()

	createResp, err := adkService.Create(ctx, &session.CreateRequest{
		AppName:   "email_triage",
		UserID:    "alex",
		SessionID: "",
		State:     nil,
	})
	require.NoError(t, err)

	adkSession := createResp.Session

	for i := 0; i < 5; i++ {
		adkEvent := &session.Event{
			ID:        fmt.Sprintf("event_%d_%d", time.Now().UnixNano(), i),
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
			Branch:    "main",
			Author:    "agent",
		}
		adkEvent.LLMResponse.Partial = false
		adkEvent.TurnComplete = true

		require.NoError(t, adkService.AppendEvent(ctx, adkSession, adkEvent), "event %d should append", i)
	}

	getResp, err := adkService.Get(ctx, &session.GetRequest{
		AppName:         adkSession.AppName(),
		UserID:          adkSession.UserID(),
		SessionID:       adkSession.ID(),
		NumRecentEvents: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, getResp.Session.Events().Len())
}
