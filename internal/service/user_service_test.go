package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	apperrors "communication/internal/errors"
	"communication/internal/model"
)

func TestUserService_CreateUser(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful creation",
			email: "ann@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ann@x.com").Return(nil, apperrors.ErrUserNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:  "email already exists",
			email: "ann@x.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ann@x.com").Return(&model.User{Email: "ann@x.com"}, nil)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, nil, bcrypt.MinCost)
			user, err := svc.CreateUser(context.Background(), "Ann", tt.email, "p1")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.False(t, user.ID.IsZero())
				assert.Equal(t, "Ann", user.Name)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEqual(t, "p1", user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("p1")))
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_CreateUser_StoreErrorAborts(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "ann@x.com").Return(nil, errors.New("connection refused"))

	svc := NewUserService(mockRepo, nil, bcrypt.MinCost)
	_, err := svc.CreateUser(context.Background(), "Ann", "ann@x.com", "p1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_GetUser(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name          string
		id            string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name: "found",
			id:   id.Hex(),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Name: "Ann", Email: "ann@x.com"}, nil)
			},
		},
		{
			name: "absent",
			id:   id.Hex(),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, id).Return(nil, apperrors.ErrUserNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:          "malformed id",
			id:            "not-an-object-id",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, nil, bcrypt.MinCost)
			user, err := svc.GetUser(context.Background(), tt.id)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, id, user.ID)
				assert.Equal(t, "Ann", user.Name)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateUser(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("replaces all fields", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.ID == id && u.Name == "Ann B" && u.Email == "annb@x.com" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("p2")) == nil
		})).Return(nil)

		svc := NewUserService(mockRepo, nil, bcrypt.MinCost)
		user, err := svc.UpdateUser(context.Background(), id.Hex(), "Ann B", "annb@x.com", "p2")

		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "Ann B", user.Name)
		assert.Equal(t, "annb@x.com", user.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("absent", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(apperrors.ErrUserNotFound)

		svc := NewUserService(mockRepo, nil, bcrypt.MinCost)
		_, err := svc.UpdateUser(context.Background(), id.Hex(), "Ann", "ann@x.com", "p1")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo, nil, bcrypt.MinCost)
		_, err := svc.UpdateUser(context.Background(), "zzz", "Ann", "ann@x.com", "p1")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	id := primitive.NewObjectID()

	mockRepo := new(MockUserRepository)
	mockRepo.On("Delete", mock.Anything, id).Return(nil).Once()
	mockRepo.On("Delete", mock.Anything, id).Return(apperrors.ErrUserNotFound).Once()

	svc := NewUserService(mockRepo, nil, bcrypt.MinCost)
	assert.NoError(t, svc.DeleteUser(context.Background(), id.Hex()))
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), id.Hex()), apperrors.ErrUserNotFound)
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), "12"), apperrors.ErrUserNotFound)
	mockRepo.AssertExpectations(t)
}

func TestNewUserService_ClampsCost(t *testing.T) {
	svc := NewUserService(new(MockUserRepository), nil, 99).(*userService)
	assert.Equal(t, DefaultBcryptCost, svc.bcryptCost)
}

// memUserRepository is an in-memory UserRepository used for lifecycle tests.
type memUserRepository struct {
	mu    sync.Mutex
	users []model.User
}

func (r *memUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = primitive.NewObjectID()
	r.users = append(r.users, *user)
	return nil
}

func (r *memUserRepository) find(match func(model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id })
}

func (r *memUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *memUserRepository) List(context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.User(nil), r.users...), nil
}

func (r *memUserRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i] = *user
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

func (r *memUserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

func TestUserService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := &memUserRepository{}
	svc := NewUserService(repo, nil, bcrypt.MinCost)
	auth := NewAuthService(repo)

	emails := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"}
	ids := make(map[string]bool)
	var created []*model.User
	for _, email := range emails {
		user, err := svc.CreateUser(ctx, "user", email, "pw-"+email)
		require.NoError(t, err)
		assert.False(t, ids[user.ID.Hex()], "duplicate id")
		ids[user.ID.Hex()] = true
		created = append(created, user)

		fetched, err := svc.GetUser(ctx, user.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, email, fetched.Email)
	}

	_, err := svc.CreateUser(ctx, "again", "a@x.com", "other")
	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)

	ok, err := auth.CheckLogin(ctx, "c@x.com", "pw-c@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	for _, user := range created[:2] {
		require.NoError(t, svc.DeleteUser(ctx, user.ID.Hex()))
	}

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(emails)-2)

	_, err = svc.GetUser(ctx, created[0].ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
