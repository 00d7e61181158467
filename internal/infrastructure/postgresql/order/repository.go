package order

import (
	"context"
	stdErrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/postgresql"
)

var orderColumns = []string{
	"id",
	"user_id",
	"symbol",
	"side",
	"type",
	"quantity::text",
	"status",
	"filled_price::text",
	"reason",
	"created_at",
	"updated_at",
}

// Repository is the repository for the order.
type repository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

// NewRepository creates a new repository.
func NewRepository(db postgresql.PostgreSQLClient, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new order command.
func (r *repository) Create(ctx context.Context, order *Order) error {
	query := `INSERT INTO order_commands (id, user_id, symbol, side, type, quantity, status, reason, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $9)`

	cmd, err := r.db.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.Symbol,
		order.Side,
		order.Type,
		order.Quantity.String(),
		order.Status,
		order.Reason,
		order.CreatedAt,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	r.logger.InfoContext(ctx, "Inserted order", logger.Field{
		Key:   "commandTag",
		Value: cmd.String(),
	})

	return nil
}

// GetByID gets an order by ID. It returns nil without error when no order exists.
func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	query, args := postgresql.NewQueryBuilder().
		Select(orderColumns...).
		From("order_commands").
		Where("id = ?", id).
		Build()

	order, err := scanOrder(r.db.QueryRow(ctx, query, args...))
	if stdErrors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	return order, nil
}

// List lists a user's orders, newest first.
func (r *repository) List(ctx context.Context, filter Filter) ([]*Order, error) {
	qb := postgresql.NewQueryBuilder().
		Select(orderColumns...).
		From("order_commands").
		Where("user_id = ?", filter.UserID)

	if filter.Symbol != "" {
		qb = qb.Where("symbol = ?", filter.Symbol)
	}

	if filter.Status != "" {
		qb = qb.Where("status = ?", filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	qb = qb.OrderBy("created_at", true).Limit(limit)

	if filter.Offset > 0 {
		qb = qb.Offset(filter.Offset)
	}

	query, args := qb.Build()
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return orders, nil
}

// MarkTerminal moves a PENDING order to its terminal outcome. It reports
// false when the order was not PENDING, leaving the stored outcome untouched.
func (r *repository) MarkTerminal(ctx context.Context, id string, outcome Outcome) (bool, error) {
	query := `UPDATE order_commands SET status = $2, filled_price = $3::numeric, reason = $4, updated_at = NOW() WHERE id = $1 AND status = 'PENDING'`

	cmd, err := r.db.Exec(ctx, query,
		id,
		outcome.Status,
		decimalArg(outcome.FilledPrice),
		outcome.Reason,
	)
	if err != nil {
		return false, errors.TracerFromError(err)
	}

	r.logger.InfoContext(ctx, "Updated order", logger.Field{
		Key:   "commandTag",
		Value: cmd.String(),
	})

	return cmd.RowsAffected() == 1, nil
}

// StoreEvent appends an execution event.
func (r *repository) StoreEvent(ctx context.Context, event *Event) error {
	query := `INSERT INTO order_events (id, order_id, status, price, quantity, exchange_status, exchange_order_id, reason, created_at) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8, $9)`

	cmd, err := r.db.Exec(ctx, query,
		event.ID,
		event.OrderID,
		event.Status,
		event.Price.String(),
		event.Quantity.String(),
		event.ExchangeStatus,
		event.ExchangeOrderID,
		event.Reason,
		event.CreatedAt,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	r.logger.InfoContext(ctx, "Inserted order event", logger.Field{
		Key:   "commandTag",
		Value: cmd.String(),
	})

	return nil
}

// ListEvents lists an order's execution events, oldest first.
func (r *repository) ListEvents(ctx context.Context, orderID string) ([]*Event, error) {
	query, args := postgresql.NewQueryBuilder().
		Select(
			"id",
			"order_id",
			"status",
			"price::text",
			"quantity::text",
			"exchange_status",
			"exchange_order_id",
			"reason",
			"created_at",
		).
		From("order_events").
		Where("order_id = ?", orderID).
		OrderBy("created_at").
		Build()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		var price, quantity string
		event := &Event{}
		err := rows.Scan(
			&event.ID,
			&event.OrderID,
			&event.Status,
			&price,
			&quantity,
			&event.ExchangeStatus,
			&event.ExchangeOrderID,
			&event.Reason,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}

		if event.Price, err = decimal.NewFromString(price); err != nil {
			return nil, errors.TracerFromError(err)
		}
		if event.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, errors.TracerFromError(err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*Order, error) {
	var (
		quantity    string
		filledPrice *string
	)

	order := &Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Symbol,
		&order.Side,
		&order.Type,
		&quantity,
		&order.Status,
		&filledPrice,
		&order.Reason,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if order.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, err
	}

	if filledPrice != nil {
		price, err := decimal.NewFromString(*filledPrice)
		if err != nil {
			return nil, err
		}
		order.FilledPrice = &price
	}

	return order, nil
}

func decimalArg(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
