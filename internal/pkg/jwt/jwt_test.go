package jwt_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	svc := jwt.NewJWTService("test-secret", "15m")

	token, expiresAt, err := svc.GenerateAccessToken("0190a001-0000-7000-8000-000000000001", employee.RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotZero(t, expiresAt)

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0190a001-0000-7000-8000-000000000001", claims["employee_id"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "access", claims["type"])
}

func TestGenerateAccessToken_InvalidExpiry(t *testing.T) {
	svc := jwt.NewJWTService("test-secret", "soon")

	_, _, err := svc.GenerateAccessToken("id", employee.RoleStaff)
	assert.Error(t, err)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	token, _, err := jwt.NewJWTService("secret-a", "15m").GenerateAccessToken("id", employee.RoleStaff)
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(jwt.NewJWTService("secret-b", "15m").JWTAuth(), token)
	assert.Error(t, err)
}
