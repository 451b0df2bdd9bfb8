package enums

import "fmt"

// SystemRole grants platform-wide privileges independent of contact type.
type SystemRole string

const (
	SystemRoleAdmin SystemRole = "admin"
)

func (r SystemRole) String() string {
	return string(r)
}

func (r SystemRole) IsValid() bool {
	return r == SystemRoleAdmin
}

func ParseSystemRole(value string) (SystemRole, error) {
	if SystemRole(value).IsValid() {
		return SystemRole(value), nil
	}
	return "", fmt.Errorf("invalid system role %q", value)
}
