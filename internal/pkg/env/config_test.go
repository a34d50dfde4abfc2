package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStripeConfig(t *testing.T) {
	Env = map[string]string{}
	t.Cleanup(func() { Env = nil })
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := LoadStripeConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIPE_WEBHOOK_SECRET")
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")

	Env["STRIPE_WEBHOOK_SECRET"] = "whsec_1"
	_, err = LoadStripeConfig()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "STRIPE_WEBHOOK_SECRET")

	Env["STRIPE_SECRET_KEY"] = " sk_test_1 "
	cfg, err := LoadStripeConfig()
	require.NoError(t, err)
	assert.Equal(t, "whsec_1", cfg.WebhookSecret)
	assert.Equal(t, "sk_test_1", cfg.SecretKey)
}

func TestTypedGetters(t *testing.T) {
	Env = map[string]string{
		"INT_OK":       "7",
		"INT_BAD":      "seven",
		"BOOL_OK":      "true",
		"DURATION_OK":  "90s",
		"DURATION_NEG": "-1s",
	}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 7, GetInt("INT_OK", 1))
	assert.Equal(t, 1, GetInt("INT_BAD", 1))
	assert.Equal(t, 1, GetInt("INT_MISSING", 1))
	assert.True(t, GetBool("BOOL_OK", false))
	assert.False(t, GetBool("BOOL_MISSING", false))
	assert.Equal(t, 90*time.Second, GetDuration("DURATION_OK", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("DURATION_NEG", time.Minute))
}
