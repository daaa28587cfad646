package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybatch/internal/core/apperror"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, expiresAt, err := svc.IssueToken("op-1", "Ana", []string{RoleOperator})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	op, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "op-1", op.ID)
	assert.Equal(t, "Ana", op.Name)
	assert.Equal(t, []string{RoleOperator}, op.Roles)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	token, _, err := svc.IssueToken("op-1", "", []string{RoleAdmin})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(DefaultJWTConfig("other-secret"))
		_, err := other.ValidateToken(token)
		assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		late := NewJWTService(DefaultJWTConfig("test-secret"))
		late.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
		_, err := late.ValidateToken(token)
		assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
	})
}

func TestJWTService_IssueValidation(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	_, _, err := svc.IssueToken("", "", nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, _, err = svc.IssueToken("op-1", "", []string{"root"})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
