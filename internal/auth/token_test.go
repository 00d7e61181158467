package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhileshait/tradenet/pkg/errors"
)

func TestTokens_Verify(t *testing.T) {
	tokens := NewTokens("dev-secret")

	valid, err := tokens.Issue("u1", time.Hour)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("dev-secret"))
	require.NoError(t, err)

	numeric, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 42}).SignedString([]byte("dev-secret"))
	require.NoError(t, err)

	foreign, err := NewTokens("other-secret").Issue("u1", time.Hour)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("dev-secret"))
	require.NoError(t, err)

	testCases := []struct {
		name     string
		token    string
		assertFn func(t *testing.T, userID string, err error)
	}{
		{
			name:  "valid",
			token: valid,
			assertFn: func(t *testing.T, userID string, err error) {
				require.NoError(t, err)
				assert.Equal(t, "u1", userID)
			},
		},
		{
			name:  "numeric id",
			token: numeric,
			assertFn: func(t *testing.T, userID string, err error) {
				require.NoError(t, err)
				assert.Equal(t, "42", userID)
			},
		},
		{
			name:  "expired",
			token: expired,
			assertFn: func(t *testing.T, userID string, err error) {
				assert.True(t, errors.IsCode(err, errors.GeneralUnauthorizedError))
			},
		},
		{
			name:  "wrong secret",
			token: foreign,
			assertFn: func(t *testing.T, userID string, err error) {
				assert.True(t, errors.IsCode(err, errors.GeneralUnauthorizedError))
			},
		},
		{
			name:  "missing id claim",
			token: noUser,
			assertFn: func(t *testing.T, userID string, err error) {
				assert.True(t, errors.IsCode(err, errors.GeneralUnauthorizedError))
			},
		},
		{
			name:  "empty",
			token: "",
			assertFn: func(t *testing.T, userID string, err error) {
				assert.True(t, errors.IsCode(err, errors.GeneralUnauthorizedError))
			},
		},
		{
			name:  "garbage",
			token: "not-a-jwt",
			assertFn: func(t *testing.T, userID string, err error) {
				assert.True(t, errors.IsCode(err, errors.GeneralUnauthorizedError))
				assert.Empty(t, userID)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			userID, err := tokens.Verify(tc.token)
			tc.assertFn(t, userID, err)
		})
	}
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, BearerToken(r))

	r.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", BearerToken(r))

	r.Header.Set("Authorization", "bearer  abc ")
	assert.Equal(t, "abc", BearerToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(r))
}
