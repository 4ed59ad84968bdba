package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// NewUser describes a profile to create. ID may be empty, in which case one is generated.
type NewUser struct {
	ID          string
	Username    string
	DisplayName string
	Email       string
	AvatarRef   string
	CoverRef    string
}

// ProfilePatch carries the fields of a profile update. Nil fields are left unchanged.
// Usernames are immutable.
type ProfilePatch struct {
	DisplayName *string
	Email       *string
	AvatarRef   *string
	CoverRef    *string
}

func (p ProfilePatch) empty() bool {
	return p.DisplayName == nil && p.Email == nil && p.AvatarRef == nil && p.CoverRef == nil
}

func normalizeUsername(username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return "", apperr.InvalidArgument("username is required")
	}
	if strings.ContainsFunc(username, func(r rune) bool { return r == ' ' || r == '\t' || r == '/' }) {
		return "", apperr.InvalidArgument("username %q must not contain spaces or slashes", username)
	}
	return username, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalizeEmail accepts a bare address only; display-name forms are rejected.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperr.InvalidArgument("email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", apperr.InvalidArgument("email %q is not a valid address", email)
	}
	return email, nil
}

// CreateUser stores a new profile. Username and email must be unique.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (user models.User, err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.create_user")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	if in.ID == "" {
		in.ID = uuid.NewString()
	} else if in.ID, err = apperr.RequireID("id", in.ID); err != nil {
		return models.User{}, err
	}
	username, err := normalizeUsername(in.Username)
	if err != nil {
		return models.User{}, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return models.User{}, err
	}

	now := s.now()
	user = models.User{
		ID:          in.ID,
		Username:    username,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Email:       email,
		AvatarRef:   strings.TrimSpace(in.AvatarRef),
		CoverRef:    strings.TrimSpace(in.CoverRef),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return models.User{}, apperr.Conflict(err, "username %q or email is already taken", username)
		}
		return models.User{}, apperr.Internal(err, "create user")
	}

	logging.FromContext(ctx).Info("user created", "userId", user.ID, "username", user.Username)
	return user, nil
}

// GetUser returns the profile with the given id.
func (s *Service) GetUser(ctx context.Context, id string) (models.User, error) {
	id, err := apperr.RequireID("userId", id)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, lookupError(err, "user", id)
	}
	return user, nil
}

// UpdateProfile applies patch to actorID's own profile.
func (s *Service) UpdateProfile(ctx context.Context, actorID string, patch ProfilePatch) (user models.User, err error) {
	ctx, span := logging.StartSpan(ctx, "catalog.update_profile")
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	actorID, err = apperr.RequireID("actorId", actorID)
	if err != nil {
		return models.User{}, err
	}
	if patch.empty() {
		return models.User{}, apperr.InvalidArgument("at least one profile field is required")
	}

	user, err = s.Users.FindByID(ctx, actorID)
	if err != nil {
		return models.User{}, lookupError(err, "user", actorID)
	}

	if patch.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*patch.DisplayName)
	}
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return models.User{}, err
		}
		user.Email = email
	}
	if patch.AvatarRef != nil {
		user.AvatarRef = strings.TrimSpace(*patch.AvatarRef)
	}
	if patch.CoverRef != nil {
		user.CoverRef = strings.TrimSpace(*patch.CoverRef)
	}
	user.UpdatedAt = s.now()

	if err := s.Users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			return models.User{}, apperr.Conflict(err, "email is already taken")
		case errors.Is(err, repositories.ErrNotFound):
			return models.User{}, apperr.NotFound("user %s not found", actorID)
		}
		return models.User{}, apperr.Internal(err, "update user")
	}

	if s.Channels != nil {
		s.Channels.Invalidate(user.Username)
	}
	return user, nil
}
