package service

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyservice/internal/apperr"
)

func newTestAuth(t *testing.T) (*AuthService, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(now)
	return NewAuthService("admin", "s3cret", "test-secret", clk), clk
}

func TestAuthLogin(t *testing.T) {
	auth, clk := newTestAuth(t)

	resp, err := auth.Login("admin", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AdminID)

	claims, err := auth.ValidateAdminToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.AdminID, claims.AdminID)

	clk.Add(13 * time.Hour)
	_, err = auth.ValidateAdminToken(resp.Token)
	assert.True(t, apperr.HasKey(err, apperr.EUnauthorized, apperr.KeyInvalidToken), "expired token")

	_, err = auth.Login("admin", "wrong")
	assert.True(t, apperr.HasKey(err, apperr.EUnauthorized, apperr.KeyInvalidCredentials))
}

func TestAuthResponderToken(t *testing.T) {
	auth, _ := newTestAuth(t)

	token, err := auth.GenerateResponderToken("s1", "r1")
	require.NoError(t, err)

	claims, err := auth.ValidateResponderToken(token)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.SurveyID)
	assert.Equal(t, "r1", claims.ResponderID)

	_, err = auth.ValidateAdminToken(token)
	assert.Error(t, err, "responder token is not an admin token")

	admin, err := auth.Login("admin", "s3cret")
	require.NoError(t, err)
	_, err = auth.ValidateResponderToken(admin.Token)
	assert.Error(t, err, "admin token is not a responder token")

	other := NewAuthService("admin", "s3cret", "other-secret", clock.New())
	_, err = other.ValidateResponderToken(token)
	assert.Error(t, err)
}
