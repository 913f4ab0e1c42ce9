package store

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS orders (
        id              text PRIMARY KEY,
        origin          text NOT NULL,
        destination     text NOT NULL,
        price           bigint NOT NULL,
        sender_phone    text NOT NULL,
        recipient_phone text NOT NULL DEFAULT '',
        description     text NOT NULL DEFAULT '',
        worker_id       text NOT NULL DEFAULT '',
        worker_name     text NOT NULL DEFAULT '',
        status          text NOT NULL,
        created_at      timestamptz NOT NULL,
        accepted_at     timestamptz,
        delivered_at    timestamptz,
        cancelled_at    timestamptz
    )`,
	`CREATE TABLE IF NOT EXISTS workers (
        id               text PRIMARY KEY,
        name             text NOT NULL,
        phone            text NOT NULL UNIQUE,
        status           text NOT NULL,
        orders_completed bigint NOT NULL DEFAULT 0,
        total_earnings   bigint NOT NULL DEFAULT 0,
        opening_balance  bigint NOT NULL DEFAULT 0,
        loc_lat          double precision,
        loc_lng          double precision,
        loc_at           timestamptz,
        tone             text NOT NULL DEFAULT ''
    )`,
	`CREATE TABLE IF NOT EXISTS expenses (
        id        text PRIMARY KEY,
        worker_id text NOT NULL,
        title     text NOT NULL,
        amount    bigint NOT NULL,
        at        timestamptz NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS change_requests (
        id           text PRIMARY KEY,
        order_id     text NOT NULL,
        worker_id    text NOT NULL,
        worker_name  text NOT NULL,
        patch        jsonb NOT NULL,
        submitted_at timestamptz NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS daily_sequences (
        day text PRIMARY KEY,
        n   bigint NOT NULL
    )`,
}

// EnsureSchema creates the tables when they do not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
