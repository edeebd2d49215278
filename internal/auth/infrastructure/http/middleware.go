package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmehra2102/doglivery/internal/auth/application"
	"github.com/dmehra2102/doglivery/internal/auth/domain"
	"github.com/dmehra2102/doglivery/pkg/httpx"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (application.Claims, error)
}

type ctxKey struct{}

type authenticated struct {
	claims application.Claims
	token  string
}

// ClaimsFrom returns the claims stored by RequireAuth or RequireAdmin.
func ClaimsFrom(ctx context.Context) (application.Claims, bool) {
	a, ok := ctx.Value(ctxKey{}).(authenticated)
	return a.claims, ok
}

func tokenFrom(ctx context.Context) string {
	a, _ := ctx.Value(ctxKey{}).(authenticated)
	return a.token
}

type Guard struct {
	log  *slog.Logger
	auth Authenticator
}

func NewGuard(log *slog.Logger, auth Authenticator) *Guard {
	return &Guard{log: log, auth: auth}
}

func bearer(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (g *Guard) authenticate(w http.ResponseWriter, r *http.Request) (*http.Request, application.Claims, bool) {
	token, ok := bearer(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return nil, application.Claims{}, false
	}
	claims, err := g.auth.Authenticate(r.Context(), token)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidToken) {
			g.log.Error("token check failed", "err", err)
		}
		httpx.WriteError(w, http.StatusUnauthorized, domain.ErrInvalidToken.Error())
		return nil, application.Claims{}, false
	}
	ctx := context.WithValue(r.Context(), ctxKey{}, authenticated{claims: claims, token: token})
	return r.WithContext(ctx), claims, true
}

func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, _, ok := g.authenticate(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, claims, ok := g.authenticate(w, r)
		if !ok {
			return
		}
		if claims.Role != domain.RoleAdmin {
			httpx.WriteError(w, http.StatusForbidden, domain.ErrAccessDenied.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
