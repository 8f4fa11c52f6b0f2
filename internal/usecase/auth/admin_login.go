package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Glenferdinza/sporton/internal/logging"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAdmin      = errors.New("admin inactive")
	ErrAdminNotFound      = errors.New("admin not found")
)

const TokenType = "admin"

type AdminFinder interface {
	FindByEmail(ctx context.Context, email string) (*Admin, error)
}

type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
}

type LoginResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"` // seconds
}

type AdminLoginUsecase struct {
	finder    AdminFinder
	jwtSecret []byte
	expMin    int
	now       func() time.Time
	log       *logging.Logger
}

func NewAdminLoginUsecase(finder AdminFinder, jwtSecret string, expiresMinutes int) *AdminLoginUsecase {
	if expiresMinutes <= 0 {
		expiresMinutes = 60
	}
	return &AdminLoginUsecase{
		finder:    finder,
		jwtSecret: []byte(jwtSecret),
		expMin:    expiresMinutes,
		now:       time.Now,
		log:       logging.L().Named("auth"),
	}
}

func (u *AdminLoginUsecase) Execute(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := u.finder.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			// Hide whether email exists
			u.log.Warn("admin login rejected", zap.String("email", email), zap.String("reason", "unknown email"))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		u.log.Warn("admin login rejected", zap.String("email", email), zap.String("reason", "wrong password"))
		return nil, ErrInvalidCredentials
	}
	if !admin.IsActive {
		u.log.Warn("admin login rejected", zap.String("email", email), zap.String("reason", "inactive"))
		return nil, ErrInactiveAdmin
	}

	now := u.now()
	exp := now.Add(time.Duration(u.expMin) * time.Minute)

	claims := jwt.MapClaims{
		"sub":   admin.ID,
		"typ":   TokenType,
		"email": admin.Email,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken: signed,
		ExpiresIn:   u.expMin * 60,
	}, nil
}

// HashPassword is used by the seed command so both sides agree on the cost.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
