package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, store.Insert(ctx, &models.User{Username: "super1", PasswordHash: string(hash), Name: "Supervisor 1", Role: models.RoleSupervisor, Active: true}))
	require.NoError(t, store.Insert(ctx, &models.User{Username: "retired", PasswordHash: string(hash), Name: "Retired", Role: models.RoleSupervisor, Active: false}))

	return NewService(store, "test-secret", time.Hour, nil)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := newTestService(t)

	token, id, err := svc.Login(context.Background(), " super1 ", "1234")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "super1", id.Username)
	assert.Equal(t, models.RoleSupervisor, id.Role)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestLoginRejections(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "", "1234")
	require.ErrorIs(t, err, models.ErrInvalidArgument)

	_, _, err = svc.Login(ctx, "super1", "")
	require.ErrorIs(t, err, models.ErrInvalidArgument)

	_, _, err = svc.Login(ctx, "super1", "wrong")
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nobody", "1234")
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "retired", "1234")
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := newTestService(t)
	issued := time.Date(2026, 10, 15, 6, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.IssueToken(models.Identity{UserID: 1, Role: models.RoleManager})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.Verify(token)
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t)
	other := NewService(memory.New(), "other-secret", time.Hour, nil)

	token, err := other.IssueToken(models.Identity{UserID: 1, Role: models.RoleManager})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	svc := newTestService(t)

	claims := &Claims{
		Role: models.RoleManager,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestVerifyRejectsMissingRole(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.IssueToken(models.Identity{UserID: 3})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, models.ErrUnauthorized)
}
