package enums

import "fmt"

// NotificationKind selects the message template an external mailer renders.
type NotificationKind string

const (
	NotificationKindRegistration   NotificationKind = "registration"
	NotificationKindOrderConfirmed NotificationKind = "order_confirmed"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindRegistration,
	NotificationKindOrderConfirmed,
}

// IsValid checks whether the kind matches a known template.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
