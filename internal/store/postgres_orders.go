package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"delivery-dispatch/internal/domain"
)

const selectOrder = `
    SELECT id, origin, destination, price,
           sender_phone, recipient_phone, description,
           worker_id, worker_name, status,
           created_at, accepted_at, delivered_at, cancelled_at
    FROM orders`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.Origin, &o.Destination, &o.Price,
		&o.SenderPhone, &o.RecipientPhone, &o.Description,
		&o.WorkerID, &o.WorkerName, &status,
		&o.CreatedAt, &o.AcceptedAt, &o.DeliveredAt, &o.CancelledAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// ListOrders returns every order, newest first.
func (p *Postgres) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := p.db.Query(ctx, selectOrder+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// GetOrder returns the order or (nil, nil) when absent.
func (p *Postgres) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(p.db.QueryRow(ctx, selectOrder+` WHERE id = $1`, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %q: %w", id, err)
	}
	return o, nil
}

// SaveOrder upserts the order row, which keeps the call idempotent.
func (p *Postgres) SaveOrder(ctx context.Context, o *domain.Order) error {
	_, err := p.db.Exec(ctx, `
        INSERT INTO orders (id, origin, destination, price,
                            sender_phone, recipient_phone, description,
                            worker_id, worker_name, status,
                            created_at, accepted_at, delivered_at, cancelled_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        ON CONFLICT (id) DO UPDATE SET
            origin = EXCLUDED.origin, destination = EXCLUDED.destination,
            price = EXCLUDED.price, sender_phone = EXCLUDED.sender_phone,
            recipient_phone = EXCLUDED.recipient_phone, description = EXCLUDED.description,
            worker_id = EXCLUDED.worker_id, worker_name = EXCLUDED.worker_name,
            status = EXCLUDED.status, accepted_at = EXCLUDED.accepted_at,
            delivered_at = EXCLUDED.delivered_at, cancelled_at = EXCLUDED.cancelled_at
    `, o.ID, o.Origin, o.Destination, o.Price,
		o.SenderPhone, o.RecipientPhone, o.Description,
		o.WorkerID, o.WorkerName, string(o.Status),
		o.CreatedAt, o.AcceptedAt, o.DeliveredAt, o.CancelledAt)
	if err != nil {
		return fmt.Errorf("save order %q: %w", o.ID, err)
	}
	return nil
}

// UpdateOrder applies only the supplied patch fields and returns true
// if a row was affected.
func (p *Postgres) UpdateOrder(ctx context.Context, id string, patch domain.AdminPatch) (bool, error) {
	ct, err := p.db.Exec(ctx, `
        UPDATE orders
        SET origin          = COALESCE($2, origin),
            destination     = COALESCE($3, destination),
            price           = COALESCE($4, price),
            sender_phone    = COALESCE($5, sender_phone),
            recipient_phone = COALESCE($6, recipient_phone),
            description     = COALESCE($7, description),
            worker_id       = COALESCE($8, worker_id)
        WHERE id = $1
    `, id, patch.Origin, patch.Destination, patch.Price,
		patch.SenderPhone, patch.RecipientPhone, patch.Description, patch.WorkerID)
	if err != nil {
		return false, fmt.Errorf("update order %q: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// DeleteOrder removes the order row. Deleting an absent id is a no-op.
func (p *Postgres) DeleteOrder(ctx context.Context, id string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete order %q: %w", id, err)
	}
	return nil
}
