package env

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// StripeConfig holds the payment provider credentials.
type StripeConfig struct {
	WebhookSecret string
	SecretKey     string
}

// LoadStripeConfig reads the provider credentials. Both are required.
func LoadStripeConfig() (StripeConfig, error) {
	cfg := StripeConfig{
		WebhookSecret: strings.TrimSpace(GetEnv("STRIPE_WEBHOOK_SECRET", "")),
		SecretKey:     strings.TrimSpace(GetEnv("STRIPE_SECRET_KEY", "")),
	}

	var missing []string
	if cfg.WebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if cfg.SecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if len(missing) > 0 {
		return cfg, errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return cfg, nil
}

// GetInt returns an integer setting or def when unset or invalid.
func GetInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(GetEnv(key, "")))
	if err != nil {
		return def
	}
	return v
}

// GetBool returns a boolean setting or def when unset or invalid.
func GetBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(GetEnv(key, "")))
	if err != nil {
		return def
	}
	return v
}

// GetDuration returns a duration setting such as "5m" or def when unset or invalid.
func GetDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(GetEnv(key, "")))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
