package signin_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	signin "github.com/goliatone/go-signin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sessionClaimsFor(id uuid.UUID) *signin.SessionClaims {
	return &signin.SessionClaims{
		UID:   id.String(),
		Email: "user@example.com",
	}
}

func activeUser(id uuid.UUID) *signin.User {
	return &signin.User{
		ID:              id,
		ProviderSubject: "google-subject-123",
		Email:           "user@example.com",
		Name:            "Test User",
		Picture:         "https://example.com/avatar.png",
		IsActive:        true,
	}
}

func TestProfileManager_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the view for an active record", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		id := uuid.New()
		repo.On("Users").Return(users)
		users.On("GetByIdentifier", ctx, id.String()).Return(activeUser(id), nil).Once()

		profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

		view, err := profiles.Get(ctx, sessionClaimsFor(id))
		require.NoError(t, err)
		assert.Equal(t, id.String(), view.ID)
		assert.Equal(t, "user@example.com", view.Email)
		assert.True(t, view.IsActive)
	})

	t.Run("inactive records report not found", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		id := uuid.New()
		inactive := activeUser(id)
		inactive.IsActive = false

		repo.On("Users").Return(users)
		users.On("GetByIdentifier", ctx, id.String()).Return(inactive, nil).Once()

		profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

		_, err := profiles.Get(ctx, sessionClaimsFor(id))
		require.Error(t, err)

		var richErr *errors.Error
		require.True(t, errors.As(err, &richErr))
		assert.Equal(t, signin.TextCodeUserNotFound, richErr.TextCode)
	})

	t.Run("missing records report not found", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		id := uuid.New()
		repo.On("Users").Return(users)
		users.On("GetByIdentifier", ctx, id.String()).
			Return(nil, repository.NewRecordNotFound()).Once()

		profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

		_, err := profiles.Get(ctx, sessionClaimsFor(id))
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("claims without a parsable id are malformed", func(t *testing.T) {
		repo := &MockRepositoryManager{}

		profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

		_, err := profiles.Get(ctx, &signin.SessionClaims{UID: "not-a-uuid"})
		require.Error(t, err)
		assert.True(t, signin.IsMalformedError(err))
	})
}

func TestProfileManager_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only the fields present", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		id := uuid.New()
		current := activeUser(id)

		repo.On("Users").Return(users)
		users.On("GetByIdentifier", ctx, id.String()).Return(current, nil).Once()

		users.On("Save", ctx, mock.MatchedBy(func(u *signin.User) bool {
			// picture untouched, email immutable
			return u.Name == "New Name" &&
				u.Picture == "https://example.com/avatar.png" &&
				u.Email == "user@example.com"
		})).Return(current, nil).Once()

		profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

		name := "New Name"
		view, err := profiles.Update(ctx, sessionClaimsFor(id), signin.ProfileUpdate{Name: &name})
		require.NoError(t, err)
		assert.NotNil(t, view)

		users.AssertExpectations(t)
	})

	t.Run("rejects an explicit empty name", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		id := uuid.New()
		repo.On("Users").Return(users)
		users.On("GetByIdentifier", ctx, id.String()).Return(activeUser(id), nil).Once()

		profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

		name := "   "
		_, err := profiles.Update(ctx, sessionClaimsFor(id), signin.ProfileUpdate{Name: &name})
		require.Error(t, err)

		var richErr *errors.Error
		require.True(t, errors.As(err, &richErr))
		assert.Equal(t, errors.CategoryValidation, richErr.Category)

		users.AssertNotCalled(t, "Save")
	})

	t.Run("empty update still writes the record", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		id := uuid.New()
		current := activeUser(id)

		repo.On("Users").Return(users)
		users.On("GetByIdentifier", ctx, id.String()).Return(current, nil).Once()
		users.On("Save", ctx, current).Return(current, nil).Once()

		profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

		_, err := profiles.Update(ctx, sessionClaimsFor(id), signin.ProfileUpdate{})
		require.NoError(t, err)

		users.AssertExpectations(t)
	})

	t.Run("record deleted between load and save reports not found", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		id := uuid.New()
		repo.On("Users").Return(users)
		users.On("GetByIdentifier", ctx, id.String()).Return(activeUser(id), nil).Once()
		users.On("Save", ctx, mock.Anything).
			Return(nil, repository.NewRecordNotFound()).Once()

		profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

		_, err := profiles.Update(ctx, sessionClaimsFor(id), signin.ProfileUpdate{})
		require.Error(t, err)

		var richErr *errors.Error
		require.True(t, errors.As(err, &richErr))
		assert.Equal(t, signin.TextCodeUserNotFound, richErr.TextCode)
	})
}

func TestProfileManager_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("flips the record inactive", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		id := uuid.New()
		repo.On("Users").Return(users)
		users.On("Deactivate", ctx, id).Return(nil).Once()

		profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

		err := profiles.Deactivate(ctx, sessionClaimsFor(id))
		require.NoError(t, err)

		users.AssertExpectations(t)
	})

	t.Run("repeat calls converge", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		id := uuid.New()
		repo.On("Users").Return(users)
		users.On("Deactivate", ctx, id).Return(nil).Twice()

		profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

		require.NoError(t, profiles.Deactivate(ctx, sessionClaimsFor(id)))
		require.NoError(t, profiles.Deactivate(ctx, sessionClaimsFor(id)))

		users.AssertExpectations(t)
	})

	t.Run("nil claims are malformed", func(t *testing.T) {
		repo := &MockRepositoryManager{}

		profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

		err := profiles.Deactivate(ctx, nil)
		assert.True(t, signin.IsMalformedError(err))
	})
}

func TestProfileManager_EmailExists(t *testing.T) {
	ctx := context.Background()

	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	repo.On("Users").Return(users)
	users.On("ExistsByEmail", ctx, "user@example.com").Return(true, nil).Once()
	users.On("ExistsByEmail", ctx, "ghost@example.com").Return(false, nil).Once()

	profiles := signin.NewProfileManager(repo).WithLogger(testLogger{})

	exists, err := profiles.EmailExists(ctx, "user@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = profiles.EmailExists(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
