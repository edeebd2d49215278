package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/doglivery/internal/auth/application"
	"github.com/dmehra2102/doglivery/internal/auth/domain"
)

type stubAuth struct {
	signedOut string
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (application.Claims, error) {
	switch token {
	case "admin-token":
		return application.Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-1", ID: "j1"}}, nil
	case "customer-token":
		return application.Claims{Role: domain.RoleCustomer, RegisteredClaims: jwt.RegisteredClaims{Subject: "cust-1", ID: "j2"}}, nil
	}
	return application.Claims{}, domain.ErrInvalidToken
}

func (s *stubAuth) SignUpCustomer(_ context.Context, name, phone string) (application.SignUpResult, error) {
	if name == "" {
		return application.SignUpResult{}, domain.ErrInvalidProfile
	}
	return application.SignUpResult{Profile: domain.Profile{ID: "cust-1", FullName: name, Phone: phone}, Password: "Abc123@#xyz9", Token: "customer-token"}, nil
}

func (s *stubAuth) SignInCustomer(_ context.Context, phone, _ string) (application.SignInResult, error) {
	if phone == "21999990000" {
		return application.SignInResult{NeedsSignup: true}, nil
	}
	return application.SignInResult{Profile: &domain.Profile{ID: "cust-1"}}, nil
}

func (s *stubAuth) SignInAdmin(_ context.Context, email, _ string) (domain.Profile, string, error) {
	switch email {
	case "dono@petshop.com":
		return domain.Profile{ID: "admin-1", Role: domain.RoleAdmin}, "admin-token", nil
	case "cliente@petshop.com":
		return domain.Profile{}, "", domain.ErrAccessDenied
	}
	return domain.Profile{}, "", domain.ErrInvalidCredentials
}

func (s *stubAuth) SignOut(_ context.Context, token string) error {
	s.signedOut = token
	return nil
}

func (s *stubAuth) CurrentUser(_ context.Context, id string) (domain.Profile, error) {
	role := domain.RoleCustomer
	if id == "admin-1" {
		role = domain.RoleAdmin
	}
	return domain.Profile{ID: id, Role: role}, nil
}

func (s *stubAuth) UpdateProfile(_ context.Context, id string, upd application.ProfileUpdate) (domain.Profile, error) {
	return domain.Profile{ID: id, FullName: *upd.FullName}, nil
}

func newRouter(svc *stubAuth) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := NewGuard(log, svc)
	r := chi.NewRouter()
	NewHandler(log, svc).RegisterRoutes(r, guard)
	r.With(guard.RequireAdmin).Get("/admin-only", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func call(t *testing.T, svc *stubAuth, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)
	return rec
}

func TestCustomerSignUpAndSignIn(t *testing.T) {
	svc := &stubAuth{}

	rec := call(t, svc, http.MethodPost, "/auth/customers/signup", "", `{"full_name":"Maria","phone":"11988887777"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Abc123@#xyz9", res["password"])
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = call(t, svc, http.MethodPost, "/auth/customers/signup", "", `{"phone":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, svc, http.MethodPost, "/auth/customers/signin", "", `{"phone":"11988887777"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, svc, http.MethodPost, "/auth/customers/signin", "", `{"phone":"21999990000"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"needsSignup":true`)
}

func TestAdminSignIn(t *testing.T) {
	svc := &stubAuth{}
	assert.Equal(t, http.StatusOK, call(t, svc, http.MethodPost, "/auth/admin/signin", "", `{"email":"dono@petshop.com","password":"x"}`).Code)
	assert.Equal(t, http.StatusForbidden, call(t, svc, http.MethodPost, "/auth/admin/signin", "", `{"email":"cliente@petshop.com","password":"x"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, svc, http.MethodPost, "/auth/admin/signin", "", `{"email":"x@y.z","password":"x"}`).Code)
}

func TestProtectedRoutes(t *testing.T) {
	svc := &stubAuth{}

	assert.Equal(t, http.StatusUnauthorized, call(t, svc, http.MethodGet, "/auth/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, svc, http.MethodGet, "/auth/me", "garbage", "").Code)

	rec := call(t, svc, http.MethodGet, "/auth/me", "admin-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_admin":true`)

	rec = call(t, svc, http.MethodPatch, "/auth/me", "customer-token", `{"full_name":"Maria Souza"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Maria Souza")

	rec = call(t, svc, http.MethodPost, "/auth/signout", "customer-token", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "customer-token", svc.signedOut)
}

func TestRequireAdmin(t *testing.T) {
	svc := &stubAuth{}
	assert.Equal(t, http.StatusOK, call(t, svc, http.MethodGet, "/admin-only", "admin-token", "").Code)
	assert.Equal(t, http.StatusForbidden, call(t, svc, http.MethodGet, "/admin-only", "customer-token", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, svc, http.MethodGet, "/admin-only", "", "").Code)
}
