package enums

import (
	"fmt"
	"strings"
)

// ContactType is the storefront role attached to a user's contact record.
type ContactType string

const (
	ContactTypeShop  ContactType = "shop"
	ContactTypeBuyer ContactType = "buyer"
)

var validContactTypes = []ContactType{
	ContactTypeShop,
	ContactTypeBuyer,
}

// String implements fmt.Stringer.
func (c ContactType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ContactType.
func (c ContactType) IsValid() bool {
	for _, candidate := range validContactTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContactType accepts either case ("SHOP" or "shop").
func ParseContactType(value string) (ContactType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validContactTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contact type %q", value)
}
