package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/models"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/repositories"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/services"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserService struct {
	created   *models.CreateUserPayload
	createErr error
	getErr    error
	users     map[int64]*models.User
}

func (f *fakeUserService) CreateUser(ctx context.Context, payload *models.CreateUserPayload) (*models.User, error) {
	f.created = payload
	if f.createErr != nil {
		return nil, f.createErr
	}
	return payload.WithDefaults(1), nil
}

func (f *fakeUserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

type fakeIssuer struct {
	err error
}

func (f fakeIssuer) Issue(userID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-for-user", nil
}

func newRouter(h *UserHandler) *gin.Engine {
	r := gin.New()
	r.POST("/user", h.CreateUser)
	r.GET("/user/:id", h.GetUser)
	r.GET("/users", h.ListUsers)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    *models.User `json:"data"`
	Token   string       `json:"token"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestCreateUserCreated(t *testing.T) {
	svc := &fakeUserService{}
	r := newRouter(NewUserHandler(svc, fakeIssuer{}, zap.NewNop()))

	rec := do(r, http.MethodPost, "/user", `{"name":"Alice","hasUsedReferrelCode":true}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, int64(1), env.Data.ID)
	assert.True(t, env.Data.HasUsedReferralCode)
	assert.Equal(t, "token-for-user", env.Token)
	assert.Contains(t, rec.Body.String(), `"hasUsedReferralCode":true`)
}

func TestCreateUserWithoutIssuerOmitsToken(t *testing.T) {
	r := newRouter(NewUserHandler(&fakeUserService{}, nil, zap.NewNop()))

	rec := do(r, http.MethodPost, "/user", `{"name":"Alice"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"token"`)
}

func TestCreateUserTokenFailureStillCreated(t *testing.T) {
	r := newRouter(NewUserHandler(&fakeUserService{}, fakeIssuer{err: errors.New("boom")}, zap.NewNop()))

	rec := do(r, http.MethodPost, "/user", `{"name":"Alice"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, decode(t, rec).Token)
}

func TestCreateUserBadRequest(t *testing.T) {
	bodies := map[string]string{
		"malformed json":      `{"name":`,
		"missing name":        `{"email":"a@b"}`,
		"empty name":          `{"name":""}`,
		"negative referredBy": `{"name":"A","referredBy":-1}`,
		"wrong type":          `{"name":"A","hasUsedReferrelCode":"yes"}`,
		"no body":             ``,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			svc := &fakeUserService{}
			r := newRouter(NewUserHandler(svc, nil, zap.NewNop()))

			rec := do(r, http.MethodPost, "/user", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, decode(t, rec).Success)
			assert.Nil(t, svc.created, "service must not be called")
		})
	}
}

func TestCreateUserServiceFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "allocation", err: errors.Join(services.ErrAllocation, repositories.ErrSequenceUnavailable), message: "failed to allocate user id"},
		{name: "insert", err: errors.Join(services.ErrPersist, errors.New("E11000")), message: "failed to store user"},
		{name: "other", err: errors.New("unexpected"), message: "failed to create user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(NewUserHandler(&fakeUserService{createErr: tt.err}, nil, zap.NewNop()))

			rec := do(r, http.MethodPost, "/user", `{"name":"Alice"}`)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestGetUser(t *testing.T) {
	svc := &fakeUserService{users: map[int64]*models.User{3: {ID: 3, Name: "Carol", IsActive: true}}}
	r := newRouter(NewUserHandler(svc, nil, zap.NewNop()))

	rec := do(r, http.MethodGet, "/user/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Carol", env.Data.Name)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/user/4", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/user/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/user/0", "").Code)
}

func TestGetUserStoreError(t *testing.T) {
	r := newRouter(NewUserHandler(&fakeUserService{getErr: errors.New("socket closed")}, nil, zap.NewNop()))

	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/user/1", "").Code)
}

func TestListUsersStub(t *testing.T) {
	r := newRouter(NewUserHandler(&fakeUserService{}, nil, zap.NewNop()))

	rec := do(r, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello, users!", rec.Body.String())
}
