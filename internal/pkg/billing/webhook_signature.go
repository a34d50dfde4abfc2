package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// ErrInvalidSignature is returned when a payload cannot be authenticated.
// It is the only pipeline error that is reported to the provider as a failure.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Verifier authenticates provider payloads against the endpoint signing secret.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

// NewVerifier creates a verifier using the default timestamp tolerance.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: strings.TrimSpace(secret), tolerance: webhook.DefaultTolerance}
}

// WithTolerance overrides how old a signed timestamp may be.
func (v *Verifier) WithTolerance(tolerance time.Duration) *Verifier {
	v.tolerance = tolerance
	return v
}

// Verify checks the signature header over payload and decodes the event.
func (v *Verifier) Verify(payload []byte, signatureHeader string) (*Event, error) {
	if v.secret == "" || strings.TrimSpace(signatureHeader) == "" {
		return nil, ErrInvalidSignature
	}

	raw, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	// A decode failure still returns the event envelope so the caller can
	// record the outcome against its ID.
	ev, err := ParseEvent(raw)
	ev.Raw = payload
	return ev, err
}

// SignPayload builds a signature header for payload. Used by tests and local tooling.
func SignPayload(payload []byte, secret string, at time.Time) string {
	sig := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%x", at.Unix(), sig)
}

// DecodeStored rebuilds an event from a payload that was authenticated earlier.
func DecodeStored(payload []byte) (*Event, error) {
	var raw stripe.Event
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode stored event: %w", err)
	}
	ev, err := ParseEvent(raw)
	ev.Raw = payload
	return ev, err
}
