package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
)

const selectWorker = `
    SELECT id, name, phone, status,
           orders_completed, total_earnings, opening_balance,
           loc_lat, loc_lng, loc_at, tone
    FROM workers`

func scanWorker(row pgx.Row) (*domain.Worker, error) {
	var w domain.Worker
	var status string
	var lat, lng *float64
	var at *time.Time
	err := row.Scan(&w.ID, &w.Name, &w.Phone, &status,
		&w.OrdersCompleted, &w.TotalEarnings, &w.OpeningBalance,
		&lat, &lng, &at, &w.Tone)
	if err != nil {
		return nil, err
	}
	w.Status = domain.WorkerStatus(status)
	if lat != nil && lng != nil && at != nil {
		w.Location = &domain.Geo{Lat: *lat, Lng: *lng, At: *at}
	}
	return &w, nil
}

func geoColumns(g *domain.Geo) (lat, lng *float64, at *time.Time) {
	if g == nil {
		return nil, nil, nil
	}
	return &g.Lat, &g.Lng, &g.At
}

// ListWorkers returns every worker ordered by name.
func (p *Postgres) ListWorkers(ctx context.Context) ([]domain.Worker, error) {
	rows, err := p.db.Query(ctx, selectWorker+` ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	var out []domain.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("list workers: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// GetWorker returns the worker or (nil, nil) when absent.
func (p *Postgres) GetWorker(ctx context.Context, id string) (*domain.Worker, error) {
	w, err := scanWorker(p.db.QueryRow(ctx, selectWorker+` WHERE id = $1`, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get worker %q: %w", id, err)
	}
	return w, nil
}

// SaveWorker upserts the worker. A duplicate phone maps to ErrConflict.
func (p *Postgres) SaveWorker(ctx context.Context, w *domain.Worker) error {
	lat, lng, at := geoColumns(w.Location)
	_, err := p.db.Exec(ctx, `
        INSERT INTO workers (id, name, phone, status,
                             orders_completed, total_earnings, opening_balance,
                             loc_lat, loc_lng, loc_at, tone)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name, phone = EXCLUDED.phone, status = EXCLUDED.status,
            orders_completed = EXCLUDED.orders_completed,
            total_earnings = EXCLUDED.total_earnings,
            opening_balance = EXCLUDED.opening_balance,
            loc_lat = EXCLUDED.loc_lat, loc_lng = EXCLUDED.loc_lng,
            loc_at = EXCLUDED.loc_at, tone = EXCLUDED.tone
    `, w.ID, w.Name, w.Phone, string(w.Status),
		w.OrdersCompleted, w.TotalEarnings, w.OpeningBalance,
		lat, lng, at, w.Tone)
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("save worker: phone %s: %w", w.Phone, apperr.ErrConflict)
		}
		return fmt.Errorf("save worker %q: %w", w.ID, err)
	}
	return nil
}

// UpdateWorker applies a partial update and returns true if a row was
// affected. Counters are not updatable here.
func (p *Postgres) UpdateWorker(ctx context.Context, u domain.PartialWorkerUpdate) (bool, error) {
	lat, lng, at := geoColumns(u.Location)
	ct, err := p.db.Exec(ctx, `
        UPDATE workers
        SET name            = COALESCE($2, name),
            phone           = COALESCE($3, phone),
            status          = COALESCE($4, status),
            opening_balance = COALESCE($5, opening_balance),
            loc_lat         = COALESCE($6, loc_lat),
            loc_lng         = COALESCE($7, loc_lng),
            loc_at          = COALESCE($8, loc_at),
            tone            = COALESCE($9, tone)
        WHERE id = $1
    `, u.ID, u.Name, u.Phone, (*string)(u.Status), u.OpeningBalance, lat, lng, at, u.Tone)
	if err != nil {
		if IsDuplicate(err) {
			return false, fmt.Errorf("update worker %q: %w", u.ID, apperr.ErrConflict)
		}
		return false, fmt.Errorf("update worker %q: %w", u.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// DeleteWorker removes the worker row. Historical orders keep their
// denormalized worker_name snapshot, so nothing cascades.
func (p *Postgres) DeleteWorker(ctx context.Context, id string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM workers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete worker %q: %w", id, err)
	}
	return nil
}
