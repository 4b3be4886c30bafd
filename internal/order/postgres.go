package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Store on top of the storefront's orders schema.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps a pgx pool as an order store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := p.pool.QueryRow(ctx,
		`SELECT id, total_cents, currency, billing_name, billing_email, billing_phone, status
		 FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.TotalCents, &o.Currency, &o.Billing.Name, &o.Billing.Email, &o.Billing.Phone, &o.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// UpdateStatus implements Store. The WHERE clause enforces the non-demotion
// rule in the database so concurrent webhook deliveries cannot race a paid
// order back to failed.
func (p *Postgres) UpdateStatus(ctx context.Context, id int64, status Status, note string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now()
		 WHERE id = $1
		   AND status <> $2
		   AND NOT (status IN ('processing', 'completed')
		            AND $2 IN ('failed', 'cancelled', 'on-hold', 'pending', 'pending-payment'))`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the order is missing or the transition was refused.
		if _, err := p.Get(ctx, id); err != nil {
			return err
		}
		return nil
	}
	if note != "" {
		return p.AppendNote(ctx, id, note)
	}
	return nil
}

// MarkPaymentComplete implements Store.
func (p *Postgres) MarkPaymentComplete(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE orders SET status = 'processing', updated_at = now()
		 WHERE id = $1 AND status NOT IN ('processing', 'completed')`, id,
	)
	if err != nil {
		return fmt.Errorf("mark order %d paid: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := p.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AppendNote implements Store.
func (p *Postgres) AppendNote(ctx context.Context, id int64, text string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO order_notes (order_id, note) VALUES ($1, $2)`, id, text,
	)
	if err != nil {
		return fmt.Errorf("append note to order %d: %w", id, err)
	}
	return nil
}
