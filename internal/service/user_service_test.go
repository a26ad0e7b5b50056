package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"german-butchery/internal/domain"
	"german-butchery/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(userRepo *mockUserRepository, tokenRepo *mockRefreshTokenRepository) UserService {
	return NewUserService(userRepo, tokenRepo, "test-secret-key", 0, 0, zap.NewNop())
}

func TestProperty_CreatedUsersHaveHashedPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email, password, firstName, lastName string) bool {
			userRepo := newMockUserRepository()
			service := newTestUserService(userRepo, newMockRefreshTokenRepository())
			ctx := context.Background()

			user, err := service.CreateUser(ctx, email, password, firstName, lastName, domain.RoleStaff)
			if err != nil {
				t.Logf("FAIL: CreateUser failed: %v", err)
				return false
			}

			if user.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for email %s", email)
				return false
			}
			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
				t.Logf("FAIL: Password hash does not match: %v", err)
				return false
			}

			stored, err := userRepo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("FAIL: Could not find stored user: %v", err)
				return false
			}
			return stored.PasswordHash == user.PasswordHash
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_JWTTokensContainRequiredClaims(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("access tokens contain user ID and role claims", prop.ForAll(
		func(email, password, role string) bool {
			userRepo := newMockUserRepository()
			service := newTestUserService(userRepo, newMockRefreshTokenRepository())
			ctx := context.Background()

			user, err := service.CreateUser(ctx, email, password, "Test", "User", role)
			if err != nil {
				t.Logf("FAIL: CreateUser failed: %v", err)
				return false
			}

			accessToken, _, _, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			claims, err := service.ValidateToken(accessToken)
			if err != nil {
				t.Logf("FAIL: Token validation failed: %v", err)
				return false
			}

			return claims.UserID == user.ID &&
				claims.Role == role &&
				claims.ExpiresAt != nil &&
				claims.IssuedAt != nil
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.OneConstOf(domain.RoleAdmin, domain.RoleStaff),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_LogoutInvalidatesRefreshToken(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("refresh works until logout and fails after", prop.ForAll(
		func(email, password string) bool {
			tokenRepo := newMockRefreshTokenRepository()
			service := newTestUserService(newMockUserRepository(), tokenRepo)
			ctx := context.Background()

			if _, err := service.CreateUser(ctx, email, password, "", "", domain.RoleStaff); err != nil {
				t.Logf("FAIL: CreateUser failed: %v", err)
				return false
			}

			_, refreshToken, user, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			newAccess, err := service.RefreshToken(ctx, refreshToken)
			if err != nil {
				t.Logf("FAIL: Refresh before logout failed: %v", err)
				return false
			}
			claims, err := service.ValidateToken(newAccess)
			if err != nil || claims.UserID != user.ID {
				t.Logf("FAIL: Refreshed token invalid: %v", err)
				return false
			}

			if err := service.Logout(ctx, refreshToken); err != nil {
				t.Logf("FAIL: Logout failed: %v", err)
				return false
			}

			_, err = service.RefreshToken(ctx, refreshToken)
			if !errors.Is(err, ErrInvalidToken) {
				t.Logf("FAIL: Expected ErrInvalidToken, got: %v", err)
				return false
			}

			_, err = tokenRepo.FindByToken(ctx, refreshToken)
			return errors.Is(err, repository.ErrRefreshTokenRevoked)
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLoginIsCaseInsensitiveOnEmail(t *testing.T) {
	service := newTestUserService(newMockUserRepository(), newMockRefreshTokenRepository())
	ctx := context.Background()

	_, err := service.CreateUser(ctx, "Owner@Butchery.RW", "correct-horse", "", "", domain.RoleAdmin)
	require.NoError(t, err)

	_, _, user, err := service.Login(ctx, "owner@butchery.rw", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "owner@butchery.rw", user.Email)

	_, _, _, err = service.Login(ctx, "owner@butchery.rw", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = service.Login(ctx, "nobody@butchery.rw", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	service := newTestUserService(newMockUserRepository(), newMockRefreshTokenRepository())
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"missing email", "", "long-enough", domain.RoleStaff},
		{"short password", "a@b.rw", "short", domain.RoleStaff},
		{"unknown role", "a@b.rw", "long-enough", "customer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateUser(ctx, tt.email, tt.password, "", "", tt.role)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := service.CreateUser(ctx, "a@b.rw", "long-enough", "", "", domain.RoleStaff)
	require.NoError(t, err)
	_, err = service.CreateUser(ctx, "A@B.rw", "long-enough", "", "", domain.RoleStaff)
	assert.ErrorIs(t, err, repository.ErrUserAlreadyExists)
}

func TestEnsureAdminCreatesOnlyOnce(t *testing.T) {
	userRepo := newMockUserRepository()
	service := newTestUserService(userRepo, newMockRefreshTokenRepository())
	ctx := context.Background()

	require.NoError(t, service.EnsureAdmin(ctx, "admin@butchery.rw", "bootstrap-pass"))
	require.NoError(t, service.EnsureAdmin(ctx, "other@butchery.rw", "bootstrap-pass"))

	admins, err := userRepo.CountByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, admins)

	_, err = userRepo.FindByEmail(ctx, "other@butchery.rw")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestEnsureAdminWithoutCredentialsIsNoop(t *testing.T) {
	userRepo := newMockUserRepository()
	service := newTestUserService(userRepo, newMockRefreshTokenRepository())

	require.NoError(t, service.EnsureAdmin(context.Background(), "", ""))
	assert.Empty(t, userRepo.users)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	tokenRepo := newMockRefreshTokenRepository()
	service := newTestUserService(newMockUserRepository(), tokenRepo)
	ctx := context.Background()

	user, err := service.CreateUser(ctx, "staff@butchery.rw", "staff-pass", "", "", domain.RoleStaff)
	require.NoError(t, err)

	_, first, _, err := service.Login(ctx, "staff@butchery.rw", "staff-pass")
	require.NoError(t, err)
	_, second, _, err := service.Login(ctx, "staff@butchery.rw", "staff-pass")
	require.NoError(t, err)

	require.NoError(t, service.LogoutAll(ctx, user.ID))

	for _, token := range []string{first, second} {
		_, err := service.RefreshToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestRefreshTokenExpired(t *testing.T) {
	tokenRepo := newMockRefreshTokenRepository()
	service := newTestUserService(newMockUserRepository(), tokenRepo)
	ctx := context.Background()

	_, err := service.CreateUser(ctx, "late@butchery.rw", "late-pass", "", "", domain.RoleStaff)
	require.NoError(t, err)
	_, refreshToken, _, err := service.Login(ctx, "late@butchery.rw", "late-pass")
	require.NoError(t, err)

	tokenRepo.tokens[refreshToken].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = service.RefreshToken(ctx, refreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	userRepo := newMockUserRepository()
	issuer := NewUserService(userRepo, newMockRefreshTokenRepository(), "one-secret", time.Minute, time.Hour, zap.NewNop())
	verifier := NewUserService(userRepo, newMockRefreshTokenRepository(), "another-secret", time.Minute, time.Hour, zap.NewNop())
	ctx := context.Background()

	_, err := issuer.CreateUser(ctx, "x@butchery.rw", "x-password", "", "", domain.RoleAdmin)
	require.NoError(t, err)
	accessToken, _, _, err := issuer.Login(ctx, "x@butchery.rw", "x-password")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(accessToken)
	assert.Error(t, err)
}
