package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Akhileshait/tradenet/pkg/errors"
)

// claimUserID carries the authenticated user id.
const claimUserID = "id"

// Tokens issues and verifies HS256 signed bearer tokens.
type Tokens struct {
	secret []byte
}

// NewTokens creates a token helper for secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Issue signs a token for userID. A zero ttl issues a token without expiry.
func (t *Tokens) Issue(userID string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{claimUserID: userID, "iat": time.Now().Unix()}
	if ttl > 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks raw and returns the user id it carries.
func (t *Tokens) Verify(raw string) (string, error) {
	if raw == "" {
		return "", errors.New(errors.GeneralUnauthorizedError, "missing token", "token")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Wrap(errors.GeneralUnauthorizedError, err, "token")
	}

	userID := userIDFromClaim(claims[claimUserID])
	if userID == "" {
		return "", errors.New(errors.GeneralUnauthorizedError, "token has no user id", "token")
	}
	return userID, nil
}

// Ids may be issued as strings or numbers.
func userIDFromClaim(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
