package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/doglivery/internal/auth/application"
	"github.com/dmehra2102/doglivery/internal/auth/domain"
	"github.com/dmehra2102/doglivery/pkg/httpx"
)

type AuthService interface {
	SignUpCustomer(ctx context.Context, fullName, phone string) (application.SignUpResult, error)
	SignInCustomer(ctx context.Context, phone, password string) (application.SignInResult, error)
	SignInAdmin(ctx context.Context, email, password string) (domain.Profile, string, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, profileID string) (domain.Profile, error)
	UpdateProfile(ctx context.Context, profileID string, upd application.ProfileUpdate) (domain.Profile, error)
}

type Handler struct {
	log     *slog.Logger
	service AuthService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service AuthService) *Handler {
	return &Handler{log: log, service: service, tracer: otel.Tracer("auth-http")}
}

func (h *Handler) RegisterRoutes(r chi.Router, guard *Guard) {
	r.Post("/auth/customers/signup", h.signUpCustomer)
	r.Post("/auth/customers/signin", h.signInCustomer)
	r.Post("/auth/admin/signin", h.signInAdmin)
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireAuth)
		r.Post("/auth/signout", h.signOut)
		r.Get("/auth/me", h.me)
		r.Patch("/auth/me", h.updateMe)
	})
}

type signUpReq struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (h *Handler) signUpCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SignUpCustomer")
	defer span.End()

	var req signUpReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.SignUpCustomer(ctx, req.FullName, req.Phone)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

type signInCustomerReq struct {
	Phone    string `json:"phone"`
	Password string `json:"password,omitempty"`
}

func (h *Handler) signInCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SignInCustomer")
	defer span.End()

	var req signInCustomerReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.SignInCustomer(ctx, req.Phone, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	if res.NeedsSignup {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]any{
			"error":       "customer not found, sign up first",
			"needsSignup": true,
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

type signInAdminReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signInAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SignInAdmin")
	defer span.End()

	var req signInAdminReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, token, err := h.service.SignInAdmin(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"profile": p, "token": token})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SignOut")
	defer span.End()

	if err := h.service.SignOut(ctx, tokenFrom(r.Context())); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CurrentUser")
	defer span.End()

	claims, _ := ClaimsFrom(r.Context())
	p, err := h.service.CurrentUser(ctx, claims.Subject)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"profile": p, "is_admin": p.IsAdmin()})
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProfile")
	defer span.End()

	var upd application.ProfileUpdate
	if err := httpx.DecodeJSON(r, &upd); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	claims, _ := ClaimsFrom(r.Context())
	p, err := h.service.UpdateProfile(ctx, claims.Subject, upd)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProfile):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidToken):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrProfileNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrProfileExists):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("auth request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
