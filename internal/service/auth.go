package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/auth"
	"github.com/sakif/codigoteca/internal/authz"
	"github.com/sakif/codigoteca/internal/model"
	"github.com/sakif/codigoteca/internal/repository"
)

const (
	MinPasswordLength = 6
	MaxNameLength     = 100
	MaxEmailLength    = 254
)

// AuthService handles registration and login:
//
//	UserHandler / AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                                               ↘ TokenService (JWT)
//	                                               ↘ PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// respond (or set the cookie) in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// RegisterInput is what a new account needs.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a usuario account. Self-registration can never create an
// admin. A taken email is reported as apperror.ErrConflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	name, err := requiredText("nombre_completo", &in.Name, MaxNameLength)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         string(authz.RoleUsuario),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("service: registering %s: %w", email, err)
	}

	s.logger.Info("user registered", slog.Int64("userID", u.ID))
	return u, nil
}

// Login checks email and password and issues a token. Unknown email and wrong
// password fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and contrasena are required")
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service: looking up %s: %w", email, err)
	}

	if err := s.passwords.Verify(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("failed login", slog.Int64("userID", u.ID))
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service: verifying password: %w", err)
	}
	s.upgradeHash(ctx, u, password)

	return s.issue(u)
}

// upgradeHash re-hashes the password at the configured cost when the stored
// hash was made with another one. Failures only cost the upgrade.
func (s *AuthService) upgradeHash(ctx context.Context, u *model.User, password string) {
	if !s.passwords.NeedsRehash(u.PasswordHash) {
		return
	}
	hash, err := s.passwords.Hash(password)
	if err != nil {
		s.logger.Warn("password rehash failed", slog.Int64("userID", u.ID), slog.String("error", err.Error()))
		return
	}
	previous := u.PasswordHash
	u.PasswordHash = hash
	if err := s.users.UpdateUser(ctx, u); err != nil {
		u.PasswordHash = previous
		s.logger.Warn("password rehash not stored", slog.Int64("userID", u.ID), slog.String("error", err.Error()))
		return
	}
	s.logger.Info("password rehashed", slog.Int64("userID", u.ID))
}

// LoginWithGitHub finds the account registered under the GitHub email, or
// creates a usuario account for it, and issues a token.
//
// GitHub accounts get a random, unguessable password hash so the email and
// password login stays closed until the user sets a password.
func (s *AuthService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service: GitHub user must not be nil")
	}
	email, err := normalizeEmail(ghUser.Email)
	if err != nil {
		return nil, apperror.ValidationFailed("email", "GitHub account has no verified email")
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrNotFound):
		hash, err := s.passwords.Hash(xid.New().String())
		if err != nil {
			return nil, fmt.Errorf("service: hashing placeholder password: %w", err)
		}
		u = &model.User{
			Name:         ghUser.DisplayName(),
			Email:        email,
			PasswordHash: hash,
			Role:         string(authz.RoleUsuario),
		}
		if err := s.users.CreateUser(ctx, u); err != nil {
			return nil, fmt.Errorf("service: creating GitHub user %s: %w", ghUser.Login, err)
		}
		s.logger.Info("user registered via GitHub", slog.Int64("userID", u.ID), slog.String("login", ghUser.Login))
	default:
		return nil, fmt.Errorf("service: looking up %s: %w", email, err)
	}

	return s.issue(u)
}

func (s *AuthService) issue(u *model.User) (*AuthResult, error) {
	role, err := authz.ParseRole(u.Role)
	if err != nil {
		return nil, fmt.Errorf("service: user %d: %w", u.ID, err)
	}

	token, err := s.tokens.Generate(authz.Actor{ID: u.ID, Role: role})
	if err != nil {
		return nil, fmt.Errorf("service: generating token for user %d: %w", u.ID, err)
	}

	s.logger.Info("user authenticated", slog.Int64("userID", u.ID))
	return &AuthResult{User: u, Token: token}, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperror.ValidationFailed("contrasena", fmt.Sprintf("contrasena must be at least %d characters", MinPasswordLength))
	}
	return hashValidated(s.passwords, password)
}

// hashValidated hashes password, reporting an over-long one as a validation
// failure on contrasena.
func hashValidated(passwords *auth.PasswordService, password string) (string, error) {
	hash, err := passwords.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperror.ValidationFailed("contrasena", fmt.Sprintf("contrasena must be %d bytes or fewer", auth.MaxPasswordBytes))
	}
	if err != nil {
		return "", fmt.Errorf("service: hashing password: %w", err)
	}
	return hash, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperror.ValidationFailed("email", "email is required")
	}
	if len(email) > MaxEmailLength || !strings.Contains(email, "@") {
		return "", apperror.ValidationFailed("email", "invalid email format")
	}
	return email, nil
}
