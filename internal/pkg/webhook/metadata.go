package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/ManuelReschke/CreatorHub/internal/pkg/billing"
	"github.com/go-playground/validator/v10"
)

const defaultCurrency = "USD"

var validate = newMetadataValidator()

func newMetadataValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeMetadata copies the metadata bag into out and validates it. Any
// missing or malformed field yields ErrMissingMetadata naming the fields.
func decodeMetadata(ev *billing.Event, out interface{}) error {
	trimmed := make(map[string]string, len(ev.Metadata))
	for k, v := range ev.Metadata {
		trimmed[k] = strings.TrimSpace(v)
	}
	raw, err := json.Marshal(trimmed)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingMetadata, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingMetadata, err)
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return fmt.Errorf("%w: %s", ErrMissingMetadata, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrMissingMetadata, err)
	}
	return nil
}

// parseMinor parses an amount in minor currency units. Invalid input is zero.
func parseMinor(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseIntOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n == 0 {
		return fallback
	}
	return n
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// transactionID is the downstream dedup key of a checkout: the payment
// intent when present, otherwise the session itself.
func transactionID(ev *billing.Event) string {
	if ev.Checkout == nil {
		return ev.ID
	}
	if ev.Checkout.PaymentIntent != nil && ev.Checkout.PaymentIntent.ID != "" {
		return ev.Checkout.PaymentIntent.ID
	}
	return ev.Checkout.ID
}

// contactEmail prefers the address from metadata over the checkout's customer details.
func contactEmail(ev *billing.Event, fromMetadata string) string {
	if fromMetadata != "" {
		return fromMetadata
	}
	if ev.Checkout != nil && ev.Checkout.CustomerDetails != nil {
		return ev.Checkout.CustomerDetails.Email
	}
	return ""
}

func contactName(ev *billing.Event, fromMetadata, fallback string) string {
	if fromMetadata != "" {
		return fromMetadata
	}
	if ev.Checkout != nil && ev.Checkout.CustomerDetails != nil && ev.Checkout.CustomerDetails.Name != "" {
		return ev.Checkout.CustomerDetails.Name
	}
	return fallback
}

func sessionAmount(ev *billing.Event) int64 {
	if ev.Checkout == nil {
		return 0
	}
	return ev.Checkout.AmountTotal
}

func sessionCurrency(ev *billing.Event) string {
	if ev.Checkout == nil || ev.Checkout.Currency == "" {
		return "usd"
	}
	return string(ev.Checkout.Currency)
}
