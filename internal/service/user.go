package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/auth"
	"github.com/sakif/codigoteca/internal/authz"
	"github.com/sakif/codigoteca/internal/model"
	"github.com/sakif/codigoteca/internal/repository"
)

// UpdateUserInput carries the profile fields a client may change. A nil
// pointer means "not provided".
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// UserService handles profiles and account administration.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{users: users, passwords: passwords, logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: loading user %d: %w", id, err)
	}
	return u, nil
}

// UpdateProfile lets a user edit their own profile and an admin edit anyone's.
// Only an admin may change rol.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, actor authz.Actor, in UpdateUserInput) (*model.User, error) {
	u, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, authz.Write, authz.Resource{OwnerID: u.ID}, "you can only modify your own profile"); err != nil {
		return nil, err
	}

	if in.Name != nil {
		name, err := requiredText("nombre_completo", in.Name, MaxNameLength)
		if err != nil {
			return nil, err
		}
		u.Name = name
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
	}
	if in.Password != nil {
		if len(*in.Password) < MinPasswordLength {
			return nil, apperror.ValidationFailed("contrasena", fmt.Sprintf("contrasena must be at least %d characters", MinPasswordLength))
		}
		hash, err := hashValidated(s.passwords, *in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if in.Role != nil {
		role, err := authz.ParseRole(strings.TrimSpace(*in.Role))
		if err != nil {
			return nil, apperror.ValidationFailed("rol", "rol must be 'usuario' or 'admin'")
		}
		if string(role) != u.Role && !actor.IsAdmin() {
			return nil, apperror.Forbidden("only an admin can change rol")
		}
		u.Role = string(role)
	}

	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("service: updating user %d: %w", id, err)
	}

	s.logger.Info("user updated", slog.Int64("userID", id), slog.Int64("actorID", actor.ID))
	return u, nil
}

// Delete removes an account and, through the store's cascades, everything
// it owns. Admin only.
func (s *UserService) Delete(ctx context.Context, id int64, actor authz.Actor) error {
	if _, err := s.GetProfile(ctx, id); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperror.Forbidden("only an admin can delete users")
	}

	deleted, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete user", slog.Int64("userID", id), slog.String("error", err.Error()))
		return fmt.Errorf("service: deleting user %d: %w", id, err)
	}
	if !deleted {
		return apperror.DeleteFailed("user", id)
	}

	s.logger.Info("user deleted", slog.Int64("userID", id), slog.Int64("actorID", actor.ID))
	return nil
}

// Search matches q against names and emails.
func (s *UserService) Search(ctx context.Context, q string) ([]model.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.ValidationFailed("q", "search term is required")
	}
	users, err := s.users.SearchUsers(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service: searching users: %w", err)
	}
	return users, nil
}

// ListAll returns every account. Admin only.
func (s *UserService) ListAll(ctx context.Context, actor authz.Actor) ([]model.User, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Forbidden("only an admin can list users")
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing users: %w", err)
	}
	return users, nil
}
