package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpapi "invitebot-backend/internal/api/http"
	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/service"
)

type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) RequestSingle(ctx context.Context, requester domain.UserInfo) service.SingleResult {
	args := m.Called(ctx, requester)
	return args.Get(0).(service.SingleResult)
}
func (m *MockInvitationService) RequestBatch(ctx context.Context, requester domain.UserInfo, count int) service.BatchResult {
	args := m.Called(ctx, requester, count)
	return args.Get(0).(service.BatchResult)
}
func (m *MockInvitationService) LookupInviter(ctx context.Context, inviteeRef string) (*service.Attribution, error) {
	args := m.Called(ctx, inviteeRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Attribution), args.Error(1)
}
func (m *MockInvitationService) LinksOf(ctx context.Context, inviterRef string) (*domain.User, []domain.InviteLink, error) {
	args := m.Called(ctx, inviterRef)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).([]domain.InviteLink), args.Error(2)
}

func newServer(t *testing.T, inv service.InvitationService) *httptest.Server {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := httpapi.NewOpsHandler(inv, db, "opssecret")
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url, secret string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestOpsHandler_RequiresBearerSecret(t *testing.T) {
	srv := newServer(t, new(MockInvitationService))

	resp := get(t, srv.URL+"/api/v1/attributions/200", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = get(t, srv.URL+"/api/v1/attributions/200", "wrong")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOpsHandler_Attribution(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		inv := new(MockInvitationService)
		srv := newServer(t, inv)

		inv.On("LookupInviter", mock.Anything, "200").Return(&service.Attribution{
			Inviter:   &domain.User{ID: 1, TelegramID: 100, FirstName: "Alice"},
			Invitee:   &domain.User{ID: 2, TelegramID: 200, FirstName: "Bob"},
			Link:      &domain.InviteLink{ID: 9, Token: "https://t.me/+abc"},
			InvitedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		}, nil)

		resp := get(t, srv.URL+"/api/v1/attributions/200", "opssecret")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

		var body struct {
			Inviter   domain.User `json:"inviter"`
			LinkToken string      `json:"link_token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Alice", body.Inviter.FirstName)
		assert.Equal(t, "https://t.me/+abc", body.LinkToken)
	})

	t.Run("UnknownUserIs404", func(t *testing.T) {
		inv := new(MockInvitationService)
		srv := newServer(t, inv)

		inv.On("LookupInviter", mock.Anything, "999").Return(nil, service.ErrUnknownUser)

		resp := get(t, srv.URL+"/api/v1/attributions/999", "opssecret")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("NoAttributionIs404", func(t *testing.T) {
		inv := new(MockInvitationService)
		srv := newServer(t, inv)

		inv.On("LookupInviter", mock.Anything, "200").Return(nil, nil)

		resp := get(t, srv.URL+"/api/v1/attributions/200", "opssecret")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestOpsHandler_Health(t *testing.T) {
	srv := newServer(t, new(MockInvitationService))

	resp := get(t, srv.URL+"/healthz", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
