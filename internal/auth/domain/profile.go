package domain

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileExists      = errors.New("profile already exists")
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidToken       = errors.New("invalid token")
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }

const (
	passwordChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789@#$%"
	passwordLength = 12
	customerDomain = "@customer.local"
)

// GenerateRandomPassword returns the password handed to a customer at
// quick signup.
func GenerateRandomPassword() (string, error) {
	out := make([]byte, passwordLength)
	max := big.NewInt(int64(len(passwordChars)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordChars[n.Int64()]
	}
	return string(out), nil
}

// Digits strips everything but 0-9 from a phone number.
func Digits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

// CustomerEmail is the synthetic login email of a phone-only customer.
func CustomerEmail(phone string) string {
	return Digits(phone) + customerDomain
}
