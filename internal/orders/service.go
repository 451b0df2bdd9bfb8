package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Service exposes the buyer order lifecycle and the admin override path.
type Service interface {
	Checkout(ctx context.Context, userID int64) (*OrderDTO, error)
	Confirm(ctx context.Context, userID, orderID int64) (*OrderDTO, error)
	List(ctx context.Context, userID int64, params pagination.Params) (pagination.Page[OrderDTO], error)
	Get(ctx context.Context, userID, orderID int64) (*OrderDTO, error)
	OverrideStatus(ctx context.Context, adminID, orderID int64, status string) (*OrderDTO, error)
	Delete(ctx context.Context, orderID int64) error
}

type ServiceParams struct {
	Repo     Repository
	DB       txRunner
	Outbox   outbox.Emitter
	Notifier confirmationNotifier
	Metrics  orderMetrics
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outbox.Emitter
	notifier confirmationNotifier
	metrics  orderMetrics
	logg     *logger.Logger
}

// NewService builds the order service with the required dependencies.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if p.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:     p.Repo,
		tx:       p.DB,
		outbox:   p.Outbox,
		notifier: p.Notifier,
		metrics:  p.Metrics,
		logg:     p.Logger,
	}, nil
}

func (s *service) Checkout(ctx context.Context, userID int64) (*OrderDTO, error) {
	var out OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		basket, err := repo.FindBasket(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no basket")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}
		if !basket.Status.CanTransitionTo(enums.OrderStatusNew) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "basket cannot be checked out")
		}
		moved, err := repo.TransitionStatus(ctx, basket.ID, enums.OrderStatusBasket, enums.OrderStatusNew)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no basket")
		}
		basket.Status = enums.OrderStatusNew

		count, err := repo.CountItems(ctx, basket.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count items")
		}
		total, err := orderTotal(ctx, repo, basket.ID)
		if err != nil {
			return err
		}
		out = FromModel(basket, total)

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   basket.ID,
			Actor:         &outbox.ActorRef{UserID: userID, ContactType: string(enums.ContactTypeBuyer)},
			Data: payloads.OrderPlacedEvent{
				OrderID:   basket.ID,
				UserID:    userID,
				ItemCount: int(count),
				Total:     total,
				PlacedAt:  time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return nil, asDependency(err, "checkout")
	}
	if s.metrics != nil {
		s.metrics.IncOrderPlaced()
	}
	s.logTransition(ctx, out.ID, enums.OrderStatusBasket, enums.OrderStatusNew)
	return &out, nil
}

func (s *service) Confirm(ctx context.Context, userID, orderID int64) (*OrderDTO, error) {
	var out OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUser(ctx, orderID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !order.Status.CanTransitionTo(enums.OrderStatusConfirmed) {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order in status %s cannot be confirmed", order.Status)
		}
		moved, err := repo.TransitionStatus(ctx, order.ID, order.Status, enums.OrderStatusConfirmed)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}
		order.Status = enums.OrderStatusConfirmed

		total, err := orderTotal(ctx, repo, order.ID)
		if err != nil {
			return err
		}
		out = FromModel(order, total)
		return s.notifier.OrderConfirmed(ctx, tx, order.User, order.ID, total)
	})
	if err != nil {
		return nil, asDependency(err, "confirm order")
	}
	if s.metrics != nil {
		s.metrics.IncOrderConfirmed()
	}
	s.logTransition(ctx, out.ID, enums.OrderStatusNew, enums.OrderStatusConfirmed)
	return &out, nil
}

func (s *service) List(ctx context.Context, userID int64, params pagination.Params) (pagination.Page[OrderDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var dtos []OrderDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.ListForUser(ctx, userID, cursor, pagination.LimitWithBuffer(params.Limit))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
		}
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		totals, err := repo.Totals(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum orders")
		}
		dtos = make([]OrderDTO, 0, len(rows))
		for i := range rows {
			dtos = append(dtos, FromModel(&rows[i], totalOf(totals, rows[i].ID)))
		}
		return nil
	})
	if err != nil {
		return pagination.Page[OrderDTO]{}, err
	}
	return pagination.Trim(dtos, params.Limit, func(o OrderDTO) pagination.Cursor {
		return pagination.TimeCursor(o.CreatedAt, o.ID)
	}), nil
}

func (s *service) Get(ctx context.Context, userID, orderID int64) (*OrderDTO, error) {
	var out OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUser(ctx, orderID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == enums.OrderStatusBasket {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		out, err = Detail(ctx, repo, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// OverrideStatus sets any status except basket on a placed order.
func (s *service) OverrideStatus(ctx context.Context, adminID, orderID int64, raw string) (*OrderDTO, error) {
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	if !status.IsAdminSettable() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "status %s cannot be set directly", status)
	}

	var (
		out  OrderDTO
		from enums.OrderStatus
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == enums.OrderStatusBasket {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "basket has not been placed")
		}
		from = order.Status
		if from != status {
			if err := repo.SetStatus(ctx, order.ID, status); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
			order.Status = status
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderStatusOverridden,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         &outbox.ActorRef{UserID: adminID},
				Data: payloads.OrderStatusOverriddenEvent{
					OrderID:     order.ID,
					UserID:      order.UserID,
					From:        from,
					To:          status,
					AdminUserID: adminID,
				},
			}); err != nil {
				return err
			}
		}
		out, err = Detail(ctx, repo, order)
		return err
	})
	if err != nil {
		return nil, asDependency(err, "override order status")
	}
	if from != status {
		s.logTransition(ctx, orderID, from, status)
	}
	return &out, nil
}

func (s *service) Delete(ctx context.Context, orderID int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).Delete(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil
	})
}

// Detail loads the order's lines and total.
func Detail(ctx context.Context, repo Repository, order *models.Order) (OrderDTO, error) {
	items, err := repo.LoadItems(ctx, order.ID)
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	total, err := orderTotal(ctx, repo, order.ID)
	if err != nil {
		return OrderDTO{}, err
	}
	return WithItems(order, items, total), nil
}

func orderTotal(ctx context.Context, repo Repository, orderID int64) (decimal.Decimal, error) {
	totals, err := repo.Totals(ctx, []int64{orderID})
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum order")
	}
	return totalOf(totals, orderID), nil
}

func totalOf(totals map[int64]decimal.Decimal, orderID int64) decimal.Decimal {
	if total, ok := totals[orderID]; ok {
		return total
	}
	return decimal.Zero
}

// asDependency keeps typed errors and wraps outbox or driver failures.
func asDependency(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func (s *service) logTransition(ctx context.Context, orderID int64, from, to enums.OrderStatus) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": orderID,
		"from":     from,
		"to":       to,
	}), "order status changed")
}
