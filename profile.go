package signin

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// ProfileUpdate carries a partial profile mutation. Nil fields are left
// untouched, they are not reset.
type ProfileUpdate struct {
	Name    *string
	Picture *string
	Active  *bool
}

// Profiles exposes the profile operations gated by a verified session.
type Profiles interface {
	Get(ctx context.Context, claims AuthClaims) (*ProfileView, error)
	Update(ctx context.Context, claims AuthClaims, update ProfileUpdate) (*ProfileView, error)
	Deactivate(ctx context.Context, claims AuthClaims) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

type ProfileManager struct {
	repo   RepositoryManager
	logger Logger
}

var _ Profiles = (*ProfileManager)(nil)

func NewProfileManager(repo RepositoryManager) *ProfileManager {
	return &ProfileManager{
		repo:   repo,
		logger: defLogger{},
	}
}

func (p *ProfileManager) WithLogger(logger Logger) *ProfileManager {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Get loads the record the session references. Missing and inactive
// records are indistinguishable to the caller.
func (p *ProfileManager) Get(ctx context.Context, claims AuthClaims) (*ProfileView, error) {
	user, err := p.loadActive(ctx, claims)
	if err != nil {
		return nil, err
	}

	return user.View(), nil
}

// Update applies the fields present in the request and persists the
// record. There is no record level locking, a record deleted between
// load and save reports not found.
func (p *ProfileManager) Update(ctx context.Context, claims AuthClaims, update ProfileUpdate) (*ProfileView, error) {
	user, err := p.loadActive(ctx, claims)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := TruncateName(*update.Name)
		if name == "" {
			return nil, errors.New("name must not be empty", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest)
		}
		user.Name = name
	}

	if update.Picture != nil {
		user.Picture = *update.Picture
	}

	if update.Active != nil {
		user.IsActive = *update.Active
	}

	saved, err := p.repo.Users().Save(ctx, user)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound.Clone()
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist profile update")
	}

	return saved.View(), nil
}

// Deactivate flips the record inactive. Idempotent: the lookup skips
// the active filter so a second call converges on the same state.
func (p *ProfileManager) Deactivate(ctx context.Context, claims AuthClaims) error {
	id, err := userIDFromClaims(claims)
	if err != nil {
		return err
	}

	if err := p.repo.Users().Deactivate(ctx, id); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to deactivate profile")
	}

	p.logger.Info("Profile deactivated", "user_id", id.String())

	return nil
}

// EmailExists reports whether an active record claims the email.
func (p *ProfileManager) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := p.repo.Users().ExistsByEmail(ctx, email)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check email")
	}

	return exists, nil
}

func (p *ProfileManager) loadActive(ctx context.Context, claims AuthClaims) (*User, error) {
	id, err := userIDFromClaims(claims)
	if err != nil {
		return nil, err
	}

	user, err := p.repo.Users().GetByIdentifier(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound.Clone()
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user record")
	}

	if user == nil || !user.IsActive {
		return nil, ErrUserNotFound.Clone()
	}

	return user, nil
}

func userIDFromClaims(claims AuthClaims) (uuid.UUID, error) {
	if claims == nil {
		return uuid.Nil, ErrTokenMalformed
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return uuid.Nil, ErrTokenMalformed.Clone().WithMetadata(map[string]any{
			"uid": claims.UserID(),
		})
	}

	return id, nil
}
