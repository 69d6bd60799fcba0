package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzscan/mrzscan-backend/pkg/config"
	"github.com/mrzscan/mrzscan-backend/pkg/errors"
	"github.com/mrzscan/mrzscan-backend/pkg/httputil"
	"github.com/mrzscan/mrzscan-backend/pkg/logger"
	"github.com/mrzscan/mrzscan-backend/pkg/testutil"
)

func testManager() *Manager {
	return NewManager(&config.JWTConfig{Enabled: true, Secret: "test-secret", Issuer: "mrzscan"})
}

func TestManager_RoundTrip(t *testing.T) {
	m := testManager()
	token, err := m.GenerateAccessToken("user-1", "operator", time.Hour)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "operator", claims.Role)
}

func TestManager_Expired(t *testing.T) {
	m := testManager()
	token, err := m.GenerateAccessToken("user-1", "operator", -time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.True(t, errors.Is(err, errors.ErrTokenExpired))
}

func TestManager_WrongSecretOrIssuer(t *testing.T) {
	other := NewManager(&config.JWTConfig{Secret: "other", Issuer: "mrzscan"})
	token, err := other.GenerateAccessToken("user-1", "operator", time.Hour)
	require.NoError(t, err)
	_, err = testManager().ValidateAccessToken(token)
	assert.True(t, errors.Is(err, errors.ErrTokenInvalid))

	foreign := NewManager(&config.JWTConfig{Secret: "test-secret", Issuer: "someone-else"})
	token, err = foreign.GenerateAccessToken("user-1", "operator", time.Hour)
	require.NoError(t, err)
	_, err = testManager().ValidateAccessToken(token)
	assert.True(t, errors.Is(err, errors.ErrTokenInvalid))

	_, err = testManager().ValidateAccessToken("not-a-token")
	assert.True(t, errors.Is(err, errors.ErrTokenInvalid))
}

func TestMiddleware(t *testing.T) {
	m := testManager()
	var userID, role string
	h := m.Middleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID = httputil.GetUserID(r.Context())
		role = httputil.GetUserRole(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/mrz/scan/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := m.GenerateAccessToken("user-7", "operator", time.Hour)
	require.NoError(t, err)
	rec = testutil.ExecuteRequest(h, testutil.WithBearer(httptest.NewRequest(http.MethodGet, "/", nil), token))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-7", userID)
	assert.Equal(t, "operator", role)
}
