package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// Claims are the bearer-token claims issued by the account directory.
// The subject is the account ID.
type Claims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

type accountKey struct{}

// WithAccount returns a copy of ctx carrying acct as the signed-in account.
func WithAccount(ctx context.Context, acct domain.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, acct)
}

// AccountFromContext returns the account set by NewAuthenticator.
func AccountFromContext(ctx context.Context) (domain.Account, bool) {
	acct, ok := ctx.Value(accountKey{}).(domain.Account)
	return acct, ok
}

// NewAuthenticator returns a middleware that requires an HS256 bearer token
// signed with secret. The token is read from the Authorization header or,
// for WebSocket upgrades that cannot set headers, the access_token query param.
// Requests without a valid token are rejected with 401.
func NewAuthenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			acct, err := ParseToken(secret, raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid bearer token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), acct)))
		})
	}
}

// ParseToken verifies raw and maps its claims to an account.
func ParseToken(secret []byte, raw string) (domain.Account, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Account{}, fmt.Errorf("middleware.ParseToken: %w", err)
	}
	if claims.Subject == "" {
		return domain.Account{}, errors.New("middleware.ParseToken: token has no subject")
	}
	return domain.Account{
		ID:          claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
		PhotoURL:    claims.Picture,
	}, nil
}

// IssueToken signs a token for acct that expires after ttl.
// The account directory issues production tokens; this serves tests and local tooling.
func IssueToken(secret []byte, acct domain.Account, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:    acct.DisplayName,
		Email:   acct.Email,
		Picture: acct.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("middleware.IssueToken: %w", err)
	}
	return signed, nil
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}
