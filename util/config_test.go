package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	InitValidator()

	t.Run("fails on missing required vars", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("TOKEN_SYMMETRIC_KEY", "")

		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("loads valid environment", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("TOKEN_SYMMETRIC_KEY", "YELLOW SUBMARINE, BLACK WIZARDRY")
		t.Setenv("ROUND_SECONDS", "90")

		config, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, "8080", config.Port)
		require.Equal(t, 90, config.RoundSeconds)
	})

	t.Run("defaults round seconds", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("TOKEN_SYMMETRIC_KEY", "YELLOW SUBMARINE, BLACK WIZARDRY")
		t.Setenv("ROUND_SECONDS", "")

		config, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, DefaultRoundSeconds, config.RoundSeconds)
	})

	t.Run("rejects out-of-range round duration", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("TOKEN_SYMMETRIC_KEY", "YELLOW SUBMARINE, BLACK WIZARDRY")
		t.Setenv("ROUND_SECONDS", "5")

		_, err := LoadConfig()
		require.Error(t, err)
	})
}
