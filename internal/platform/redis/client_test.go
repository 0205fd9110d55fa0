package redis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"scribed/internal/platform/config"
)

func TestNewWithoutURLReturnsNilClient(t *testing.T) {
	client, err := New(config.RedisConfig{})
	require.NoError(t, err)
	require.Nil(t, client)
}

func TestNewRejectsUnsupportedScheme(t *testing.T) {
	_, err := New(config.RedisConfig{URL: "http://localhost:6379"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse redis URL")
}
