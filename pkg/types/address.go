package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ShippingAddress is stored on orders as a JSON column so the snapshot
// survives later address book edits.
type ShippingAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country,omitempty"`
}

func (a ShippingAddress) Value() (driver.Value, error) {
	if strings.TrimSpace(a.Name) == "" {
		return nil, fmt.Errorf("shipping address: missing name")
	}
	if strings.TrimSpace(a.Street) == "" {
		return nil, fmt.Errorf("shipping address: missing street")
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("shipping address: marshal: %w", err)
	}
	return string(raw), nil
}

func (a *ShippingAddress) Scan(value any) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("shipping address: unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, a)
}
