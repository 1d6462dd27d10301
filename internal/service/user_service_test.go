package service

import (
	"context"
	"testing"

	"quill/internal/featureflags"
	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username: "writer_42",
		Email:    "writer@example.com",
		Password: "Sufficient1Pass",
		FullName: "Ada Wordsmith",
	}
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	t.Run("success hashes the password", func(t *testing.T) {
		t.Parallel()
		var created *models.User
		users := &userRepoStub{createFn: func(ctx context.Context, user *models.User) error {
			user.ID = 1
			created = user
			return nil
		}}
		svc := NewUserService(users, nil)

		user, err := svc.Register(context.Background(), validRegisterInput())
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.NotEqual(t, "Sufficient1Pass", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("Sufficient1Pass")))
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("closed signups flag", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(&userRepoStub{}, featureflags.NewManager("closed_signups=on"))

		_, err := svc.Register(context.Background(), validRegisterInput())
		assertValidation(t, err, "Signups are temporarily closed")
	})

	t.Run("invalid inputs", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(&userRepoStub{}, nil)

		in := validRegisterInput()
		in.Username = "x"
		_, err := svc.Register(context.Background(), in)
		assert.True(t, models.IsValidation(err))

		in = validRegisterInput()
		in.Email = "broken"
		_, err = svc.Register(context.Background(), in)
		assert.True(t, models.IsValidation(err))

		in = validRegisterInput()
		in.Password = "weak"
		_, err = svc.Register(context.Background(), in)
		assert.True(t, models.IsValidation(err))

		in = validRegisterInput()
		in.FullName = "  "
		_, err = svc.Register(context.Background(), in)
		assert.True(t, models.IsValidation(err))
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	hashed, err := bcrypt.GenerateFromPassword([]byte("Sufficient1Pass"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &userRepoStub{getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
		if email == "writer@example.com" {
			return &models.User{ID: 1, Email: email, Password: string(hashed)}, nil
		}
		return nil, models.NewNotFoundError("User not found")
	}}
	svc := NewUserService(users, nil)

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		user, err := svc.Authenticate(context.Background(), "writer@example.com", "Sufficient1Pass")
		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		t.Parallel()
		_, errPassword := svc.Authenticate(context.Background(), "writer@example.com", "wrong")
		_, errEmail := svc.Authenticate(context.Background(), "nobody@example.com", "Sufficient1Pass")

		require.Error(t, errPassword)
		require.Error(t, errEmail)
		assert.Equal(t, errPassword.Error(), errEmail.Error())
	})
}
