package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/core/tx"
	"stockcontrol/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	PasswordMinLength int
	SignupTTL         time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		PasswordMinLength: 8,
		SignupTTL:         30 * time.Minute,
	}
}

// Service provides authentication and account management.
type Service struct {
	users       Repository
	companies   CompanyRepository
	signups     SignupStore
	permissions PermissionSource
	txManager   tx.Manager
	jwtService  *JWTService
	config      ServiceConfig
}

// NewService creates a new user service.
func NewService(
	users Repository,
	companies CompanyRepository,
	signups SignupStore,
	permissions PermissionSource,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		users:       users,
		companies:   companies,
		signups:     signups,
		permissions: permissions,
		txManager:   txManager,
		jwtService:  jwtService,
		config:      config,
	}
}

// Login authenticates a user and returns a token pair.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return nil, apperror.NewValidation("email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := u.CanLogin(); err != nil {
		return nil, err
	}

	perms, err := s.permissions.EffectivePermissions(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve permissions: %w", err)
	}

	access, expiresAt, err := s.jwtService.GenerateAccessToken(u, perms)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refresh, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	logger.Info(ctx, "user logged in", "user_id", u.ID, "company_id", u.CompanyID)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// StartRegistration validates the request, stores a pending registration
// in the signup store, and returns the opaque token identifying it.
// The verification code would be delivered by the (external) mailer.
func (s *Service) StartRegistration(ctx context.Context, req RegisterRequest) (string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return "", apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if req.CompanyName == "" {
		return "", apperror.NewValidation("company name is required").WithDetail("field", "companyName")
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return "", apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	exists, err := s.users.ExistsEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return "", apperror.NewConflict("email already registered").WithDetail("email", email)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("generate signup token: %w", err)
	}

	code, err := verificationCode()
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}

	pending := &PendingRegistration{
		CompanyName:  req.CompanyName,
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Code:         code,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.signups.Put(ctx, token, pending, s.config.SignupTTL); err != nil {
		return "", fmt.Errorf("store pending registration: %w", err)
	}

	logger.Info(ctx, "registration started", "email", email)

	return token, nil
}

// VerifyRegistration completes a pending registration: creates the company
// and its owner user atomically, then removes the pending entry.
func (s *Service) VerifyRegistration(ctx context.Context, token, code string) (*User, error) {
	pending, err := s.signups.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load pending registration: %w", err)
	}
	if pending == nil {
		return nil, apperror.NewNotFound("registration", token)
	}

	if pending.Code != code {
		return nil, apperror.NewValidation("invalid verification code")
	}

	company := &Company{Name: pending.CompanyName, CreatedAt: time.Now().UTC()}
	var created *User

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.companies.Create(ctx, company); err != nil {
			return fmt.Errorf("create company: %w", err)
		}

		u := NewUser(company.ID, pending.Name, pending.Email, pending.PasswordHash, RoleProprietario)
		if err := u.Validate(ctx); err != nil {
			return err
		}
		if err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.signups.Delete(ctx, token); err != nil {
		logger.Warn(ctx, "failed to delete pending registration", "error", err)
	}

	logger.Info(ctx, "registration verified",
		"user_id", created.ID,
		"company_id", company.ID,
	)

	return created, nil
}

// CreateUser creates a staff/admin user inside an existing company.
func (s *Service) CreateUser(ctx context.Context, companyID int64, name, email, password string, role Role) (*User, error) {
	if len(password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	exists, err := s.users.ExistsEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("email already registered").WithDetail("email", email)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := NewUser(companyID, name, email, string(passwordHash), role)
	if err := u.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// verificationCode returns a 6-digit numeric code.
func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
