package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusShipped, true},
		{OrderStatusPending, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatus("bogus"), OrderStatusShipped, false},
		{OrderStatusPending, OrderStatus("bogus"), false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, valid := range []string{"Pending", "Shipped", "Delivered"} {
		status, err := ParseOrderStatus(valid)
		if err != nil {
			t.Fatalf("parse %q: %v", valid, err)
		}
		if status.String() != valid {
			t.Fatalf("round trip mismatch for %q", valid)
		}
	}

	if _, err := ParseOrderStatus("pending"); err == nil {
		t.Fatal("status values are case sensitive")
	}
	if _, err := ParseOrderStatus(""); err == nil {
		t.Fatal("empty status must not parse")
	}
}

func TestParseAccountType(t *testing.T) {
	for _, valid := range []string{"farmer", "buyer"} {
		accountType, err := ParseAccountType(valid)
		if err != nil {
			t.Fatalf("parse %q: %v", valid, err)
		}
		if !accountType.IsValid() {
			t.Fatalf("%q should be valid", valid)
		}
	}

	if _, err := ParseAccountType("wholesaler"); err == nil {
		t.Fatal("unknown account type must not parse")
	}
}
