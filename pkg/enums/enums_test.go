package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("confirmed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderStatusConfirmed {
		t.Fatalf("got %s", status)
	}
	if _, err := ParseOrderStatus("misplaced"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped} {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestParsePaymentMethod(t *testing.T) {
	method, err := ParsePaymentMethod("cod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != PaymentMethodCOD {
		t.Fatalf("got %s", method)
	}
	if PaymentMethod("cheque").IsValid() {
		t.Fatalf("cheque should not be valid")
	}
}

func TestParseProductCategory(t *testing.T) {
	if _, err := ParseProductCategory("pottery"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseProductCategory("plastic"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}
