package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCConfig holds OIDC authentication settings.
type OIDCConfig struct {
	IssuerURL string
	Audience  string
	Enabled   bool
}

type contextKey string

const ctxUserID contextKey = "user_id"

// userHeader names the acting user when OIDC is disabled.
const userHeader = "X-Holdingpen-User"

// publicPaths skip token verification.
var publicPaths = map[string]bool{
	"/api/v1/health": true,
}

// UserFromContext returns the authenticated principal, or "".
func UserFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxUserID).(string)
	return v
}

// requestUser is the user bulk budgets are charged to: the token principal,
// else the user header, else "anonymous".
func requestUser(r *http.Request) string {
	if u := UserFromContext(r.Context()); u != "" {
		return u
	}
	if u := strings.TrimSpace(r.Header.Get(userHeader)); u != "" {
		return u
	}
	return "anonymous"
}

// userClaims are the token claims a curator is identified by.
type userClaims struct {
	Sub               string `json:"sub"`
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
}

// principal picks the most readable stable identifier.
func (c userClaims) principal() string {
	for _, v := range []string{c.Email, c.PreferredUsername, c.Sub} {
		if v != "" {
			return v
		}
	}
	return ""
}

var (
	errMissingAuth = errors.New("missing Authorization header")
	errBadScheme   = errors.New("invalid Authorization header format")
)

func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", errMissingAuth
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errBadScheme
	}
	return strings.TrimSpace(token), nil
}

// oidcAuth verifies bearer tokens against the provider and stores the
// principal on the request context.
func oidcAuth(provider *oidc.Provider, audience string) func(http.Handler) http.Handler {
	verifier := provider.Verifier(&oidc.Config{ClientID: audience})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			token, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
				return
			}

			var claims userClaims
			if err := token.Claims(&claims); err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			ctx := r.Context()
			if p := claims.principal(); p != "" {
				ctx = context.WithValue(ctx, ctxUserID, p)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
