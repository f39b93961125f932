package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
)

type orderRow struct {
	bun.BaseModel `bun:"table:orders"`

	ID         string    `bun:"id,pk"`
	CallerID   string    `bun:"caller_id,notnull"`
	Product    string    `bun:"product,notnull"`
	Quantity   int       `bun:"quantity,notnull"`
	TotalPrice float64   `bun:"total_price,notnull"`
	Address    string    `bun:"address,notnull"`
	Status     string    `bun:"status,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

func (r *orderRow) toOrder() contractx.Order {
	return contractx.Order{
		ID:         r.ID,
		CallerID:   r.CallerID,
		Product:    r.Product,
		Quantity:   r.Quantity,
		TotalPrice: r.TotalPrice,
		Address:    r.Address,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
	}
}

// OrderStore is the Postgres implementation of contract.OrderStore. Every
// accessor filters by caller id, so a foreign order id behaves exactly like a
// missing one.
type OrderStore struct {
	db *bun.DB
}

func NewOrderStore(db *bun.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) Create(ctx context.Context, o *contractx.Order) error {
	row := &orderRow{
		ID:         o.ID,
		CallerID:   o.CallerID,
		Product:    o.Product,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice,
		Address:    o.Address,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *OrderStore) Last(ctx context.Context, callerID string) (*contractx.Order, error) {
	row := new(orderRow)
	err := s.db.NewSelect().Model(row).
		Where("caller_id = ?", callerID).
		OrderExpr("created_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contractx.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select last order: %w", err)
	}
	o := row.toOrder()
	return &o, nil
}

func (s *OrderStore) List(ctx context.Context, callerID string) ([]contractx.Order, error) {
	var rows []orderRow
	err := s.db.NewSelect().Model(&rows).
		Where("caller_id = ?", callerID).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]contractx.Order, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toOrder())
	}
	return out, nil
}

func (s *OrderStore) Get(ctx context.Context, callerID, orderID string) (*contractx.Order, error) {
	row := new(orderRow)
	err := s.db.NewSelect().Model(row).
		Where("id = ?", orderID).
		Where("caller_id = ?", callerID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contractx.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	o := row.toOrder()
	return &o, nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, callerID, orderID, status string) error {
	res, err := s.db.NewUpdate().Model((*orderRow)(nil)).
		Set("status = ?", status).
		Where("id = ?", orderID).
		Where("caller_id = ?", callerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n == 0 {
		return contractx.ErrOrderNotFound
	}
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, callerID, orderID string) error {
	res, err := s.db.NewDelete().Model((*orderRow)(nil)).
		Where("id = ?", orderID).
		Where("caller_id = ?", callerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n == 0 {
		return contractx.ErrOrderNotFound
	}
	return nil
}
