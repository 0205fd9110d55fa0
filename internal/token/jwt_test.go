package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dErrors "scribed/internal/domainerrors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "scribed", "scribed-api")

	tok, err := svc.GenerateAccessToken("dr.tremblay", []string{"scribe.read", "mado.report"}, time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	require.Equal(t, "dr.tremblay", claims.Subject)
	require.Equal(t, []string{"scribe.read", "mado.report"}, claims.Scopes())
}

func TestValidateExpired(t *testing.T) {
	svc := NewService("test-signing-key", "scribed", "scribed-api")

	tok, err := svc.GenerateAccessToken("dr.tremblay", nil, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tok)
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateWrongKey(t *testing.T) {
	good := NewService("key-a", "scribed", "scribed-api")
	bad := NewService("key-b", "scribed", "scribed-api")

	tok, err := good.GenerateAccessToken("dr.tremblay", nil, time.Minute)
	require.NoError(t, err)

	_, err = bad.ValidateToken(tok)
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
