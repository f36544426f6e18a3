package adk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/session"

	domainsession "atlas/internal/domain/session"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

func TestSessionServiceCreate(t *testing.T) {
	require.NoError(t, logger.Init("error", "test"))

	repo := newMockSessionRepo()
	adkService := NewSessionService(domainsession.NewService(repo))

	ctx := context.Background()

	req := &session.CreateRequest{
		AppName:   "email_triage",
		UserID:    "pat",
		SessionID: "thread42",
		State: map[string]interface{}{
			"topic":                  "VPN trouble",
			"app:maintenance_mode":   false,
			"user:preferred_signoff": "Best regards",
		},
	}

	resp, err := adkService.Create(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.NotNil(t, resp.Session)

	assert.Equal(t, "email_triage", resp.Session.AppName())
	assert.Equal(t, "pat", resp.Session.UserID())
	assert.Equal(t, "thread42", resp.Session.ID())

	// Scoped state lands in the app/user buckets, not the session.
	assert.Contains(t, repo.appState, "email_triage")
	assert.Contains(t, repo.userState, "email_triage:pat")
}

func TestSessionServiceRejectsMissingIdentity(t *testing.T) {
	require.NoError(t, logger.Init("error", "test"))

	adkService := NewSessionService(domainsession.NewService(newMockSessionRepo()))

	_, err := adkService.Create(context.Background(), &session.CreateRequest{AppName: "email_triage"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestSessionServiceImplementsInterface(t *testing.T) {
	require.NoError(t, logger.Init("error", "test"))

	var _ session.Service = NewSessionService(domainsession.NewService(newMockSessionRepo()))
}

// Mock repository for unit testing
type mockSessionRepo struct {
	sessions  map[string]*domainsession.Session
	appState  map[string]*domainsession.AppState
	userState map[string]*domainsession.UserState
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{
		sessions:  make(map[string]*domainsession.Session),
		appState:  make(map[string]*domainsession.AppState),
		userState: make(map[string]*domainsession.UserState),
	}
}

func (m *mockSessionRepo) Create(ctx context.Context, sess *domainsession.Session) error {
	key := sess.AppName + ":" + sess.UserID + ":" + sess.SessionID
	m.sessions[key] = sess
	return nil
}

func (m *mockSessionRepo) Get(ctx context.Context, appName, userID, sessionID string, opts *domainsession.GetOptions) (*domainsession.Session, error) {
	key := appName + ":" + userID + ":" + sessionID
	if sess, ok := m.sessions[key]; ok {
		return sess, nil
	}
	return nil, errors.ErrNotFound
}

func (m *mockSessionRepo) List(ctx context.Context, appName, userID string) ([]*domainsession.Session, error) {
	var sessions []*domainsession.Session
	for _, sess := range m.sessions {
		if sess.AppName == appName && (userID == "" || sess.UserID == userID) {
			sessions = append(sessions, sess)
		}
	}
	return sessions, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, appName, userID, sessionID string) error {
	key := appName + ":" + userID + ":" + sessionID
	delete(m.sessions, key)
	return nil
}

func (m *mockSessionRepo) UpdateState(ctx context.Context, appName, userID, sessionID string, state map[string]interface{}) error {
	key := appName + ":" + userID + ":" + sessionID
	if sess, ok := m.sessions[key]; ok {
		sess.State = state
	}
	return nil
}

func (m *mockSessionRepo) AppendEvent(ctx context.Context, appName, userID, sessionID string, event *domainsession.Event) error {
	return nil
}

func (m *mockSessionRepo) GetAppState(ctx context.Context, appName string) (*domainsession.AppState, error) {
	if state, ok := m.appState[appName]; ok {
		return state, nil
	}
	return nil, errors.ErrNotFound
}

func (m *mockSessionRepo) SetAppState(ctx context.Context, appName string, state map[string]interface{}) error {
	m.appState[appName] = &domainsession.AppState{
		AppName: appName,
		State:   state,
	}
	return nil
}

func (m *mockSessionRepo) GetUserState(ctx context.Context, appName, userID string) (*domainsession.UserState, error) {
	key := appName + ":" + userID
	if state, ok := m.userState[key]; ok {
		return state, nil
	}
	return nil, errors.ErrNotFound
}

func (m *mockSessionRepo) SetUserState(ctx context.Context, appName, userID string, state map[string]interface{}) error {
	key := appName + ":" + userID
	m.userState[key] = &domainsession.UserState{
		AppName: appName,
		UserID:  userID,
		State:   state,
	}
	return nil
}
