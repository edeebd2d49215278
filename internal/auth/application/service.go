package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/doglivery/internal/auth/domain"
)

// Claims is the JWT body issued on sign-in. Subject is the profile id
// and ID the revocable token id.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	log     *slog.Logger
	repo    ProfileRepository
	revoked TokenRevocations
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

func NewService(log *slog.Logger, repo ProfileRepository, revoked TokenRevocations, secret []byte, ttl time.Duration) *Service {
	return &Service{
		log:     log,
		repo:    repo,
		revoked: revoked,
		secret:  secret,
		ttl:     ttl,
		now:     time.Now,
	}
}

type SignUpResult struct {
	Profile  domain.Profile `json:"profile"`
	Password string         `json:"password"`
	Token    string         `json:"token"`
}

type SignInResult struct {
	Profile     *domain.Profile `json:"profile,omitempty"`
	Token       string          `json:"token,omitempty"`
	NeedsSignup bool            `json:"needsSignup,omitempty"`
}

// SignUpCustomer creates a customer account keyed by phone. The
// generated password is returned once and only its hash is stored.
func (s *Service) SignUpCustomer(ctx context.Context, fullName, phone string) (SignUpResult, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" || domain.Digits(phone) == "" {
		return SignUpResult{}, fmt.Errorf("%w: name and phone are required", domain.ErrInvalidProfile)
	}
	password, err := domain.GenerateRandomPassword()
	if err != nil {
		return SignUpResult{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return SignUpResult{}, err
	}

	p := domain.Profile{
		ID:           uuid.NewString(),
		Email:        domain.CustomerEmail(phone),
		PasswordHash: string(hash),
		FullName:     fullName,
		Phone:        strings.TrimSpace(phone),
		Role:         domain.RoleCustomer,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return SignUpResult{}, err
	}
	token, err := s.issue(p)
	if err != nil {
		return SignUpResult{}, err
	}
	s.log.Info("customer signed up", "profile_id", p.ID)
	return SignUpResult{Profile: p, Password: password, Token: token}, nil
}

// SignInCustomer looks a customer up by phone. Without a password only
// the profile is returned; with one, it is verified and a token issued.
func (s *Service) SignInCustomer(ctx context.Context, phone, password string) (SignInResult, error) {
	digits := domain.Digits(phone)
	if digits == "" {
		return SignInResult{}, fmt.Errorf("%w: phone is required", domain.ErrInvalidProfile)
	}
	p, err := s.repo.ByPhone(ctx, digits)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return SignInResult{NeedsSignup: true}, nil
	}
	if err != nil {
		return SignInResult{}, err
	}
	if password == "" {
		return SignInResult{Profile: &p}, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return SignInResult{}, domain.ErrInvalidCredentials
	}
	token, err := s.issue(p)
	if err != nil {
		return SignInResult{}, err
	}
	return SignInResult{Profile: &p, Token: token}, nil
}

func (s *Service) SignInAdmin(ctx context.Context, email, password string) (domain.Profile, string, error) {
	p, err := s.repo.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrProfileNotFound) {
		return domain.Profile{}, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Profile{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return domain.Profile{}, "", domain.ErrInvalidCredentials
	}
	if !p.IsAdmin() {
		s.log.Warn("admin sign-in denied", "profile_id", p.ID)
		return domain.Profile{}, "", domain.ErrAccessDenied
	}
	token, err := s.issue(p)
	if err != nil {
		return domain.Profile{}, "", err
	}
	return p, token, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	until := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.revoked.Revoke(ctx, claims.ID, until)
}

// Authenticate validates a bearer token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, token string) (Claims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return Claims{}, err
	}
	revoked, err := s.revoked.Revoked(ctx, claims.ID)
	if err != nil {
		return Claims{}, err
	}
	if revoked {
		return Claims{}, domain.ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) CurrentUser(ctx context.Context, profileID string) (domain.Profile, error) {
	return s.repo.ByID(ctx, profileID)
}

func (s *Service) IsAdmin(ctx context.Context, profileID string) (bool, error) {
	p, err := s.repo.ByID(ctx, profileID)
	if err != nil {
		return false, err
	}
	return p.IsAdmin(), nil
}

type ProfileUpdate struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

func (s *Service) UpdateProfile(ctx context.Context, profileID string, upd ProfileUpdate) (domain.Profile, error) {
	p, err := s.repo.ByID(ctx, profileID)
	if err != nil {
		return domain.Profile{}, err
	}
	if upd.FullName != nil {
		name := strings.TrimSpace(*upd.FullName)
		if name == "" {
			return domain.Profile{}, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidProfile)
		}
		p.FullName = name
	}
	if upd.Phone != nil {
		digits := domain.Digits(*upd.Phone)
		if digits == "" {
			return domain.Profile{}, fmt.Errorf("%w: phone cannot be empty", domain.ErrInvalidProfile)
		}
		if digits != domain.Digits(p.Phone) {
			owner, err := s.repo.ByPhone(ctx, digits)
			switch {
			case err == nil && owner.ID != p.ID:
				return domain.Profile{}, fmt.Errorf("%w: phone already in use", domain.ErrProfileExists)
			case err != nil && !errors.Is(err, domain.ErrProfileNotFound):
				return domain.Profile{}, err
			}
		}
		p.Phone = strings.TrimSpace(*upd.Phone)
		// Customers sign in by phone; their login email follows it.
		if p.Role == domain.RoleCustomer {
			p.Email = domain.CustomerEmail(p.Phone)
		}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

func (s *Service) issue(p domain.Profile) (string, error) {
	now := s.now()
	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) parse(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return Claims{}, domain.ErrInvalidToken
	}
	return claims, nil
}
