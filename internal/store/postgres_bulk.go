package store

import (
	"context"
	"fmt"

	"delivery-dispatch/internal/apperr"
)

// BackupAll dumps every collection plus the sequence counters.
func (p *Postgres) BackupAll(ctx context.Context) (*Snapshot, error) {
	s := &Snapshot{Sequences: make(map[string]int64)}

	var err error
	if s.Orders, err = p.ListOrders(ctx); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}
	if s.Workers, err = p.ListWorkers(ctx); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}
	if s.Expenses, err = p.ListExpenses(ctx); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}
	if s.ChangeRequests, err = p.ListChangeRequests(ctx); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}

	rows, err := p.db.Query(ctx, `SELECT day, n FROM daily_sequences`)
	if err != nil {
		return nil, fmt.Errorf("backup sequences: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var day string
		var n int64
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("backup sequences: %w", err)
		}
		s.Sequences[day] = n
	}
	return s, rows.Err()
}

// RestoreAll replaces every collection with the snapshot contents in a
// single transaction.
func (p *Postgres) RestoreAll(ctx context.Context, s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("restore: %w", apperr.ErrInvalid)
	}
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("restore: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `TRUNCATE orders, workers, expenses, change_requests, daily_sequences`); err != nil {
		return fmt.Errorf("restore: truncate: %w", err)
	}

	for i := range s.Workers {
		w := &s.Workers[i]
		lat, lng, at := geoColumns(w.Location)
		if _, err := tx.Exec(ctx, `
            INSERT INTO workers (id, name, phone, status,
                                 orders_completed, total_earnings, opening_balance,
                                 loc_lat, loc_lng, loc_at, tone)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        `, w.ID, w.Name, w.Phone, string(w.Status),
			w.OrdersCompleted, w.TotalEarnings, w.OpeningBalance, lat, lng, at, w.Tone); err != nil {
			return fmt.Errorf("restore worker %q: %w", w.ID, err)
		}
	}
	for i := range s.Orders {
		o := &s.Orders[i]
		if _, err := tx.Exec(ctx, `
            INSERT INTO orders (id, origin, destination, price,
                                sender_phone, recipient_phone, description,
                                worker_id, worker_name, status,
                                created_at, accepted_at, delivered_at, cancelled_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        `, o.ID, o.Origin, o.Destination, o.Price,
			o.SenderPhone, o.RecipientPhone, o.Description,
			o.WorkerID, o.WorkerName, string(o.Status),
			o.CreatedAt, o.AcceptedAt, o.DeliveredAt, o.CancelledAt); err != nil {
			return fmt.Errorf("restore order %q: %w", o.ID, err)
		}
	}
	for i := range s.Expenses {
		e := &s.Expenses[i]
		if _, err := tx.Exec(ctx, `
            INSERT INTO expenses (id, worker_id, title, amount, at)
            VALUES ($1,$2,$3,$4,$5)
        `, e.ID, e.WorkerID, e.Title, e.Amount, e.At); err != nil {
			return fmt.Errorf("restore expense %q: %w", e.ID, err)
		}
	}
	for i := range s.ChangeRequests {
		cr := &s.ChangeRequests[i]
		if err := insertChangeRequestTx(ctx, tx, cr); err != nil {
			return fmt.Errorf("restore change request %q: %w", cr.ID, err)
		}
	}
	for day, n := range s.Sequences {
		if _, err := tx.Exec(ctx, `INSERT INTO daily_sequences (day, n) VALUES ($1, $2)`, day, n); err != nil {
			return fmt.Errorf("restore sequence %q: %w", day, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("restore: commit: %w", err)
	}
	return nil
}

// FullReset truncates every table, sequence counters included.
func (p *Postgres) FullReset(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, `TRUNCATE orders, workers, expenses, change_requests, daily_sequences`); err != nil {
		return fmt.Errorf("full reset: %w", err)
	}
	return nil
}
