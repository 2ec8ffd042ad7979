package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/resolveit/complaints-api/internal/models"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
)

type authRepoStub struct {
	byUsername map[string]*models.User
	created    []*models.User
}

func (r *authRepoStub) Create(ctx context.Context, user *models.User) error {
	user.ID = "user-new"
	r.created = append(r.created, user)
	r.byUsername[user.Username] = user
	return nil
}

func (r *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range r.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
}

func (r *authRepoStub) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := r.byUsername[username]; ok {
		return u, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
}

func authFixture() (*AuthService, *authRepoStub) {
	repo := &authRepoStub{byUsername: map[string]*models.User{}}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "complaints-api-test",
	})
	return svc, repo
}

func seedAccount(t *testing.T, repo *authRepoStub, username, password string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo.byUsername[username] = &models.User{
		ID:           "user-" + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		FullName:     "Seeded User",
		Roles:        []string{string(models.RoleUser)},
		Active:       active,
	}
}

func TestAuthServiceSignup(t *testing.T) {
	svc, repo := authFixture()

	info, err := svc.Signup(context.Background(), models.SignupRequest{
		Username: "  NewUser  ",
		Email:    "New@Example.com",
		Password: "secret123",
		FullName: "New User",
	})
	require.NoError(t, err)

	assert.Equal(t, "newuser", info.Username)
	assert.Equal(t, []models.UserRole{models.RoleUser}, info.Roles)

	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.Equal(t, "new@example.com", created.Email)
	assert.True(t, created.Active)
	assert.NotEqual(t, "secret123", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret123")))
}

func TestAuthServiceSignupDuplicateUsername(t *testing.T) {
	svc, repo := authFixture()
	seedAccount(t, repo, "taken", "whatever1", true)

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Username: "Taken",
		Email:    "taken@example.com",
		Password: "secret123",
		FullName: "Taken User",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestAuthServiceSignupValidation(t *testing.T) {
	svc, _ := authFixture()

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Username: "ab",
		Email:    "not-an-email",
		Password: "123",
		FullName: "",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	svc, repo := authFixture()
	seedAccount(t, repo, "alice", "correct-horse", true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "Alice", Password: "correct-horse"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "alice", resp.User.Username)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-alice", claims.UserID)
	assert.True(t, claims.HasRole(models.RoleUser))
	assert.False(t, claims.HasRole(models.RoleAdmin))
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, repo := authFixture()
	seedAccount(t, repo, "alice", "correct-horse", true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "battery-staple"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginUnknownUserLooksLikeWrongPassword(t *testing.T) {
	svc, _ := authFixture()

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "whatever1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginDisabledAccount(t *testing.T) {
	svc, repo := authFixture()
	seedAccount(t, repo, "alice", "correct-horse", false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "correct-horse"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceValidateTokenRejectsTampering(t *testing.T) {
	svc, repo := authFixture()
	seedAccount(t, repo, "alice", "correct-horse", true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{Secret: "different-secret", Expiration: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
