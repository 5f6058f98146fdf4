// internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/logger"
	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
	"container-yard-api-server/internal/validation"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type CreateUserInput struct {
	Username    string   `json:"username" binding:"required,min=3"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=6"`
	Role        string   `json:"role" binding:"required,oneof=admin user"`
	Permissions []string `json:"permissions" binding:"omitempty,dive,permission"`
}

// UpdateUserInput is the admin edit form; a nil field is left unchanged.
type UpdateUserInput struct {
	Username    *string  `json:"username" binding:"omitempty,min=3"`
	Email       *string  `json:"email" binding:"omitempty,email"`
	Password    *string  `json:"password" binding:"omitempty,min=6"`
	Role        *string  `json:"role" binding:"omitempty,oneof=admin user"`
	Permissions []string `json:"permissions" binding:"omitempty,dive,permission"`
}

// ProfileInput is what a user may change on their own account. Changing the
// password requires the current one.
type ProfileInput struct {
	Username        *string `json:"username" binding:"omitempty,min=3"`
	Email           *string `json:"email" binding:"omitempty,email"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     *string `json:"newPassword" binding:"omitempty,min=6"`
}

// Service handles accounts: login, profile and the admin user screens.
type Service struct {
	Users  store.UserStore
	Tokens *TokenManager
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if err := validation.Struct(in); err != nil {
		return LoginResult{}, err
	}
	u, err := s.Users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if errors.Is(err, apperr.ErrNotFound) {
		return LoginResult{}, apperr.Unauthorized("invalid username or password")
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !CheckPasswordHash(in.Password, u.Password) {
		logger.Log.WithField("username", u.Username).Warn("failed login attempt")
		return LoginResult{}, apperr.Unauthorized("invalid username or password")
	}

	token, err := s.Tokens.GenerateJWT(u)
	if err != nil {
		return LoginResult{}, err
	}
	logger.Log.WithField("username", u.Username).Info("user logged in")
	return LoginResult{Token: token, User: u}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (models.User, error) {
	return s.Users.Get(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (models.User, error) {
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}
	current, err := s.Users.Get(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	patch := models.UserPatch{Username: trimmed(in.Username), Email: trimmed(in.Email)}
	if in.NewPassword != nil {
		if in.CurrentPassword == "" {
			return models.User{}, apperr.Validation("currentPassword is required to change the password")
		}
		if !CheckPasswordHash(in.CurrentPassword, current.Password) {
			return models.User{}, apperr.Validation("current password is incorrect")
		}
		hash, err := HashPassword(*in.NewPassword)
		if err != nil {
			return models.User{}, err
		}
		patch.Password = &hash
	}
	return s.Users.Update(ctx, userID, patch)
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Users.List(ctx)
}

func (s *Service) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.Users.Get(ctx, id)
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	created, err := s.Users.Create(ctx, models.User{
		Username:    in.Username,
		Email:       in.Email,
		Password:    hash,
		Role:        in.Role,
		Permissions: permissionsFor(in.Role, in.Permissions),
		CreatedAt:   s.now(),
	})
	if err != nil {
		return models.User{}, err
	}
	logger.Log.WithFields(logrus.Fields{"username": created.Username, "role": created.Role}).Info("user created")
	return created, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (models.User, error) {
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}
	current, err := s.Users.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	patch := models.UserPatch{
		Username: trimmed(in.Username),
		Email:    trimmed(in.Email),
		Role:     in.Role,
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return models.User{}, err
		}
		patch.Password = &hash
	}

	role := current.Role
	if in.Role != nil {
		role = *in.Role
	}
	perms := current.Permissions
	if in.Permissions != nil {
		perms = in.Permissions
	}
	if in.Role != nil || in.Permissions != nil {
		patch.Permissions = permissionsFor(role, perms)
	}
	return s.Users.Update(ctx, id, patch)
}

// DeleteUser refuses to let an admin remove their own account.
func (s *Service) DeleteUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return apperr.Conflict("you cannot delete your own account")
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.WithField("id", id).Info("user deleted")
	return nil
}

// permissionsFor gives admins the wildcard grant and everyone else exactly
// what was asked for.
func permissionsFor(role string, requested []string) []string {
	if role == models.RoleAdmin {
		return []string{models.PermissionAll}
	}
	out := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, p := range requested {
		if p == models.PermissionAll || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
