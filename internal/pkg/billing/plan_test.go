package billing

import "testing"

func TestNormalizeStorePlan(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "free", want: "free"},
		{in: "creator", want: "creator"},
		{in: "creator_pro", want: "creator_pro"},
		{in: "CREATOR_PRO", want: "creator_pro"},
		{in: "invalid", want: "free"},
	}

	for _, tt := range tests {
		if got := NormalizeStorePlan(tt.in); got != tt.want {
			t.Fatalf("NormalizeStorePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPlanUpgrade(t *testing.T) {
	if !IsPlanUpgrade("free", "creator") {
		t.Fatalf("expected creator to outrank free")
	}
	if !IsPlanUpgrade("creator", "creator_pro") {
		t.Fatalf("expected creator_pro to outrank creator")
	}
	if IsPlanUpgrade("creator_pro", "free") {
		t.Fatalf("expected a move to free to be a downgrade")
	}
}

func TestNormalizeBillingCycle(t *testing.T) {
	if got := NormalizeBillingCycle("yearly"); got != "yearly" {
		t.Fatalf("expected yearly, got %q", got)
	}
	if got := NormalizeBillingCycle(""); got != "monthly" {
		t.Fatalf("expected empty cycle to default to monthly, got %q", got)
	}
}

func TestIsEntitlingStatus(t *testing.T) {
	for _, status := range []string{"active", "trialing", "past_due"} {
		if !IsEntitlingStatus(status) {
			t.Fatalf("expected status %q to be entitling", status)
		}
	}
	for _, status := range []string{"cancelled", "expired", "incomplete"} {
		if IsEntitlingStatus(status) {
			t.Fatalf("expected status %q to be non-entitling", status)
		}
	}
}
