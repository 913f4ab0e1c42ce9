package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
)

// Postgres is the pgx-backed Store.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// NewPool creates and pings a new pgx connection pool.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// WithTx opens a transaction and executes fn within it.
func (p *Postgres) WithTx(ctx context.Context, fn func(tx TxStore) error) (err error) {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	wrapped := &pgTx{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// pgTx implements TxStore over an open pgx transaction.
type pgTx struct {
	tx pgx.Tx
}

// GetOrderForUpdate locks and returns the order row, or (nil, nil).
func (t *pgTx) GetOrderForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	row := t.tx.QueryRow(ctx, selectOrder+` WHERE id = $1 FOR UPDATE`, id)
	o, err := scanOrder(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %q for update: %w", id, err)
	}
	return o, nil
}

// PutOrder writes the full order row back.
func (t *pgTx) PutOrder(ctx context.Context, o *domain.Order) error {
	ct, err := t.tx.Exec(ctx, `
        UPDATE orders
        SET origin = $2, destination = $3, price = $4,
            sender_phone = $5, recipient_phone = $6, description = $7,
            worker_id = $8, worker_name = $9, status = $10,
            accepted_at = $11, delivered_at = $12, cancelled_at = $13
        WHERE id = $1
    `, o.ID, o.Origin, o.Destination, o.Price,
		o.SenderPhone, o.RecipientPhone, o.Description,
		o.WorkerID, o.WorkerName, string(o.Status),
		o.AcceptedAt, o.DeliveredAt, o.CancelledAt)
	if err != nil {
		return fmt.Errorf("put order %q: %w", o.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("put order %q: %w", o.ID, apperr.ErrNotFound)
	}
	return nil
}

// GetWorker reads a worker through the open transaction so name
// denormalization stays consistent with the rows locked in it.
func (t *pgTx) GetWorker(ctx context.Context, id string) (*domain.Worker, error) {
	w, err := scanWorker(t.tx.QueryRow(ctx, selectWorker+` WHERE id = $1`, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get worker %q: %w", id, err)
	}
	return w, nil
}

// CreditWorkerDelivery bumps the worker's counters inside the
// transaction, atomically with the status rotation.
func (t *pgTx) CreditWorkerDelivery(ctx context.Context, workerID string, price int64) error {
	ct, err := t.tx.Exec(ctx, `
        UPDATE workers
        SET orders_completed = orders_completed + 1,
            total_earnings   = total_earnings + $2
        WHERE id = $1
    `, workerID, price)
	if err != nil {
		return fmt.Errorf("credit worker %q: %w", workerID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("credit worker %q: %w", workerID, apperr.ErrNotFound)
	}
	return nil
}

// GetChangeRequestForUpdate locks and returns a pending request, or (nil, nil).
func (t *pgTx) GetChangeRequestForUpdate(ctx context.Context, id string) (*domain.ChangeRequest, error) {
	row := t.tx.QueryRow(ctx, `
        SELECT id, order_id, worker_id, worker_name, patch, submitted_at
        FROM change_requests
        WHERE id = $1
        FOR UPDATE
    `, id)
	cr, err := scanChangeRequest(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get change request %q for update: %w", id, err)
	}
	return cr, nil
}

// DeleteChangeRequest removes the request from the pending set.
func (t *pgTx) DeleteChangeRequest(ctx context.Context, id string) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM change_requests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete change request %q: %w", id, err)
	}
	return nil
}

var _ Store = (*Postgres)(nil)
