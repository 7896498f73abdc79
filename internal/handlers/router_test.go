package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulse-backend/internal/auth"
	"pulse-backend/internal/config"
	"pulse-backend/internal/middleware"
	"pulse-backend/internal/mocks"
	"pulse-backend/internal/models"
	"pulse-backend/internal/push"
	"pulse-backend/internal/repository"
	"pulse-backend/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	users    *mocks.MockUserStore
	photos   *mocks.MockPhotoStore
	contacts *mocks.MockContactStore
	rooms    *mocks.MockRoomStore
	teams    *mocks.MockTeamStore
	safety   *mocks.MockSafetyStore
	store    *mocks.MockObjectStore
	jwt      *auth.JWTManager
	router   http.Handler
}

func newTestEnv(t *testing.T, db Pinger) *testEnv {
	t.Helper()
	env := &testEnv{
		users:    new(mocks.MockUserStore),
		photos:   new(mocks.MockPhotoStore),
		contacts: new(mocks.MockContactStore),
		rooms:    new(mocks.MockRoomStore),
		teams:    new(mocks.MockTeamStore),
		safety:   new(mocks.MockSafetyStore),
		store:    new(mocks.MockObjectStore),
		jwt:      auth.NewJWTManager("handler-test-secret", time.Hour),
	}
	if db == nil {
		db = fakePinger{}
	}

	hub := services.NewWSHub(env.rooms)
	t.Cleanup(hub.Close)
	notifier := services.NewHubNotifier(hub, env.users, push.Noop{})
	photoSvc := services.NewPhotoService(env.photos, env.safety, env.store, notifier, 6, time.Hour)

	reg := prometheus.NewRegistry()
	prom, err := middleware.NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	env.router = NewRouter(Deps{
		Users:    services.NewUserService(env.users, env.contacts, photoSvc, env.jwt, config.ModerationConfig{}),
		Photos:   photoSvc,
		Rooms:    services.NewRoomService(env.rooms, notifier),
		Teams:    services.NewTeamService(env.teams),
		Contacts: services.NewContactService(env.users, env.contacts, notifier),
		Safety:   services.NewSafetyService(env.users, env.photos, env.contacts, env.safety, notifier, 5),
		Hub:      hub,
		DB:       db,
		Logger:   zerolog.Nop(),
		Metrics:  prom,
		Gatherer: reg,
	})
	return env
}

func (e *testEnv) token(t *testing.T, userID string, role models.Role) string {
	t.Helper()
	token, err := e.jwt.Generate(&models.User{ID: userID, Role: role})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errBadRequest, http.StatusBadRequest},
		{auth.ErrWeakPassword, http.StatusBadRequest},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrAccountSuspended, http.StatusForbidden},
		{services.ErrNotHost, http.StatusForbidden},
		{services.ErrUserNotFound, http.StatusNotFound},
		{services.ErrRoomFull, http.StatusConflict},
		{fmt.Errorf("photo already confirmed: %w", services.ErrPhotoNotPending), http.StatusConflict},
		{services.ErrUnsupportedMedia, http.StatusUnsupportedMediaType},
		{services.ErrUnderage, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w (email)", services.ErrContactDetails), http.StatusUnprocessableEntity},
		{repository.ErrNotFound, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, repository.ErrNotFound)
		env.users.On("CodeExists", mock.Anything, mock.Anything).Return(false, nil)
		env.users.On("Create", mock.Anything, mock.Anything).Return(nil)

		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":        "New@Example.com",
			"password":     "correct horse",
			"display_name": "Newbie",
			"birthdate":    "1990-05-05",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var res services.AuthResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "new@example.com", res.User.Email)
		assert.NotContains(t, rec.Body.String(), "password_hash")
	})

	t.Run("underage", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":        "kid@example.com",
			"password":     "correct horse",
			"display_name": "Kid",
			"birthdate":    time.Now().AddDate(-15, 0, 0).Format("2006-01-02"),
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, services.ErrUnderage.Error(), errorMessage(t, rec))
	})

	t.Run("invalid email", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":        "not-an-email",
			"password":     "correct horse",
			"display_name": "X",
			"birthdate":    "1990-05-05",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "email failed email")
	})

	t.Run("malformed json", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t, nil)
	env.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ghost@example.com",
		"password": "whatever1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.ErrInvalidCredentials.Error(), errorMessage(t, rec))
}

func TestGetMe(t *testing.T) {
	env := newTestEnv(t, nil)
	env.users.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", Email: "a@example.com", PasswordHash: "secret"}, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/users/me", env.token(t, "u1", models.RoleUser), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@example.com"`)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestGetProfile_UnknownID(t *testing.T) {
	env := newTestEnv(t, nil)
	env.users.On("GetByID", mock.Anything, "nope").
		Return(nil, fmt.Errorf("failed to get user: %w", repository.ErrNotFound))

	rec := env.do(t, http.MethodGet, "/api/v1/users/nope", env.token(t, "u1", models.RoleUser), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, services.ErrUserNotFound.Error(), errorMessage(t, rec))
}

func TestUpdateMe_ContactDetailsInBio(t *testing.T) {
	env := newTestEnv(t, nil)
	env.users.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", DisplayName: "Alice"}, nil)

	rec := env.do(t, http.MethodPatch, "/api/v1/users/me", env.token(t, "u1", models.RoleUser), map[string]string{
		"bio": "text me at alice@example.com",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env.users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestUploadPhoto_UnsupportedType(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/photos/upload", env.token(t, "u1", models.RoleUser), map[string]string{
		"filename":     "notes.txt",
		"content_type": "text/plain",
	})
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestModerationRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	env.photos.On("ListPending", mock.Anything, 50, 0).Return([]*models.Photo{}, 0, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/moderation/photos", env.token(t, "u1", models.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/moderation/photos", env.token(t, "mod", models.RoleModerator), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"photos":[],"total":0}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/moderation/photos/p1", env.token(t, "mod", models.RoleModerator), map[string]string{
		"decision": "maybe",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJoinRoom_Full(t *testing.T) {
	env := newTestEnv(t, nil)
	env.rooms.On("GetIDByCode", mock.Anything, "ROOM01").Return("r1", nil)
	env.rooms.On("AddMember", mock.Anything, "r1", "u1").Return(&models.Room{
		ID:         "r1",
		MaxPlayers: 2,
		Status:     models.RoomWaiting,
		Members:    []models.RoomMember{{UserID: "a"}, {UserID: "b"}},
	}, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/rooms/join", env.token(t, "u1", models.RoleUser), map[string]string{"code": "ROOM01"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, services.ErrRoomFull.Error(), errorMessage(t, rec))
}

func TestLeaveTeam_Deleted(t *testing.T) {
	env := newTestEnv(t, nil)
	env.teams.On("RemoveMember", mock.Anything, "t1", "u1").Return(nil, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/teams/t1/leave", env.token(t, "u1", models.RoleUser), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestContact_BlockedLooksMissing(t *testing.T) {
	env := newTestEnv(t, nil)
	env.users.On("GetByCode", mock.Anything, "BOB123").Return(&models.User{ID: "u2", Status: models.UserActive}, nil)
	env.contacts.On("GetBetween", mock.Anything, "u1", "u2").Return(&models.Contact{
		ID: "c1", RequesterID: "u2", AddresseeID: "u1", Status: models.ContactBlocked, BlockedByRequester: true,
	}, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/contacts", env.token(t, "u1", models.RoleUser), map[string]string{"code": "BOB123"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, services.ErrUserNotFound.Error(), errorMessage(t, rec))
}

func TestReport_Self(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/safety/reports", env.token(t, "u1", models.RoleUser), map[string]string{
		"user_id": "u1",
		"reason":  "spam",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, fakePinger{})
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, rec.Body.String())

	env = newTestEnv(t, fakePinger{err: errors.New("connection refused")})
	rec = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/healthz", "", nil)

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pulse_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestWebSocket_RequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/ws?token=bogus", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

