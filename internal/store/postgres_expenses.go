package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"delivery-dispatch/internal/domain"
)

// ListExpenses returns every expense, newest first.
func (p *Postgres) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	rows, err := p.db.Query(ctx, `
        SELECT id, worker_id, title, amount, at
        FROM expenses ORDER BY at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []domain.Expense
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.WorkerID, &e.Title, &e.Amount, &e.At); err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveExpense upserts the expense row.
func (p *Postgres) SaveExpense(ctx context.Context, e *domain.Expense) error {
	_, err := p.db.Exec(ctx, `
        INSERT INTO expenses (id, worker_id, title, amount, at)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (id) DO UPDATE SET
            worker_id = EXCLUDED.worker_id, title = EXCLUDED.title,
            amount = EXCLUDED.amount, at = EXCLUDED.at
    `, e.ID, e.WorkerID, e.Title, e.Amount, e.At)
	if err != nil {
		return fmt.Errorf("save expense %q: %w", e.ID, err)
	}
	return nil
}

// DeleteExpense removes the expense row.
func (p *Postgres) DeleteExpense(ctx context.Context, id string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete expense %q: %w", id, err)
	}
	return nil
}

func scanChangeRequest(row pgx.Row) (*domain.ChangeRequest, error) {
	var cr domain.ChangeRequest
	var patch []byte
	if err := row.Scan(&cr.ID, &cr.OrderID, &cr.WorkerID, &cr.WorkerName, &patch, &cr.SubmittedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(patch, &cr.Patch); err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}
	return &cr, nil
}

// ListChangeRequests returns the pending set, oldest first.
func (p *Postgres) ListChangeRequests(ctx context.Context) ([]domain.ChangeRequest, error) {
	rows, err := p.db.Query(ctx, `
        SELECT id, order_id, worker_id, worker_name, patch, submitted_at
        FROM change_requests ORDER BY submitted_at
    `)
	if err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	defer rows.Close()

	var out []domain.ChangeRequest
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("list change requests: %w", err)
		}
		out = append(out, *cr)
	}
	return out, rows.Err()
}

// SaveChangeRequest upserts the request; the patch is stored as jsonb.
func (p *Postgres) SaveChangeRequest(ctx context.Context, cr *domain.ChangeRequest) error {
	patch, err := json.Marshal(cr.Patch)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	_, err = p.db.Exec(ctx, `
        INSERT INTO change_requests (id, order_id, worker_id, worker_name, patch, submitted_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (id) DO UPDATE SET
            order_id = EXCLUDED.order_id, worker_id = EXCLUDED.worker_id,
            worker_name = EXCLUDED.worker_name, patch = EXCLUDED.patch,
            submitted_at = EXCLUDED.submitted_at
    `, cr.ID, cr.OrderID, cr.WorkerID, cr.WorkerName, patch, cr.SubmittedAt)
	if err != nil {
		return fmt.Errorf("save change request %q: %w", cr.ID, err)
	}
	return nil
}

func insertChangeRequestTx(ctx context.Context, tx pgx.Tx, cr *domain.ChangeRequest) error {
	patch, err := json.Marshal(cr.Patch)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO change_requests (id, order_id, worker_id, worker_name, patch, submitted_at)
        VALUES ($1,$2,$3,$4,$5,$6)
    `, cr.ID, cr.OrderID, cr.WorkerID, cr.WorkerName, patch, cr.SubmittedAt)
	return err
}

// DeleteChangeRequest removes the request from the pending set.
func (p *Postgres) DeleteChangeRequest(ctx context.Context, id string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM change_requests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete change request %q: %w", id, err)
	}
	return nil
}

// NextDailySequence performs the conditional increment on the day row.
// The upsert makes concurrent allocations within one day serialize on
// the row, so no two callers see the same value.
func (p *Postgres) NextDailySequence(ctx context.Context, day string) (int64, error) {
	var n int64
	err := p.db.QueryRow(ctx, `
        INSERT INTO daily_sequences (day, n)
        VALUES ($1, 1)
        ON CONFLICT (day) DO UPDATE SET n = daily_sequences.n + 1
        RETURNING n
    `, day).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence for %q: %w", day, err)
	}
	return n, nil
}
