// Package notifications turns user-facing side effects (welcome mail, order
// confirmation mail) into outbox events. Delivery is owned by an external
// mailer subscribed to the notification topic.
package notifications

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
)

// Notifier queues notification requests inside the caller's transaction.
type Notifier struct {
	emitter outbox.Emitter
}

// NewNotifier wraps the outbox emitter.
func NewNotifier(emitter outbox.Emitter) (*Notifier, error) {
	if emitter == nil {
		return nil, errors.New("outbox emitter required")
	}
	return &Notifier{emitter: emitter}, nil
}

// Registration requests the welcome message for a freshly created user.
func (n *Notifier) Registration(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if user == nil {
		return errors.New("user required")
	}
	return n.emitter.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateUser,
		AggregateID:   user.ID,
		Actor:         &outbox.ActorRef{UserID: user.ID},
		Data: payloads.NotificationRequestedEvent{
			Kind:     enums.NotificationKindRegistration,
			UserID:   user.ID,
			Email:    user.Email,
			Username: user.Username,
		},
	})
}

// OrderConfirmed requests the confirmation message for a confirmed order.
func (n *Notifier) OrderConfirmed(ctx context.Context, tx *gorm.DB, user *models.User, orderID int64, total decimal.Decimal) error {
	if user == nil {
		return errors.New("user required")
	}
	return n.emitter.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateUser,
		AggregateID:   user.ID,
		Actor:         &outbox.ActorRef{UserID: user.ID, ContactType: string(enums.ContactTypeBuyer)},
		Data: payloads.NotificationRequestedEvent{
			Kind:     enums.NotificationKindOrderConfirmed,
			UserID:   user.ID,
			Email:    user.Email,
			Username: user.Username,
			OrderID:  &orderID,
			Total:    &total,
		},
	})
}
