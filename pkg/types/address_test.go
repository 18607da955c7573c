package types

import "testing"

func TestShippingAddressRoundTrip(t *testing.T) {
	addr := ShippingAddress{
		Name:    "Asha Verma",
		Phone:   "9876543210",
		Street:  "12 MG Road",
		City:    "Jaipur",
		State:   "Rajasthan",
		Pincode: "302001",
	}

	val, err := addr.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var got ShippingAddress
	if err := got.Scan(val); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got != addr {
		t.Fatalf("round trip mismatch: %+v != %+v", got, addr)
	}
}

func TestShippingAddressValueRequiresFields(t *testing.T) {
	if _, err := (ShippingAddress{Street: "12 MG Road"}).Value(); err == nil {
		t.Fatalf("expected error for missing name")
	}
	if _, err := (ShippingAddress{Name: "Asha"}).Value(); err == nil {
		t.Fatalf("expected error for missing street")
	}
}
