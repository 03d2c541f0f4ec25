package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

const uniqueViolation = "23505"

type Credentials struct {
	DSN               string
	MigrationsDirPath string
}

// Postgres implements RemoteCart over the cart_items table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(cred *Credentials) (*Postgres, error) {
	db, err := sql.Open("postgres", cred.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

const recordColumns = `id, user_id, product_id, quantity, selected_color, selected_handle,
	custom_name, product_name, price, original_price, image_url, created_at, updated_at`

func (p *Postgres) FetchAll(ctx context.Context, userID string) ([]domain.CartRecord, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM cart_items WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart items: %w", err)
	}
	defer rows.Close()

	var out []domain.CartRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}
	return out, nil
}

func (p *Postgres) Insert(ctx context.Context, rec domain.CartRecord) (*domain.CartRecord, error) {
	row := p.db.QueryRowContext(ctx,
		`INSERT INTO cart_items
			(id, user_id, product_id, quantity, selected_color, selected_handle,
			 custom_name, product_name, price, original_price, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+recordColumns,
		rec.ID, rec.UserID, rec.ProductID, rec.Quantity, rec.Color, rec.Handle,
		rec.CustomLabel, rec.ProductName, rec.Price.String(), rec.OriginalPrice.String(), rec.ImageURL)

	inserted, err := scanRecord(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateItem
		}
		return nil, fmt.Errorf("failed to insert cart item: %w", err)
	}
	return &inserted, nil
}

func (p *Postgres) Update(ctx context.Context, itemID string, quantity int) (*domain.CartRecord, error) {
	row := p.db.QueryRowContext(ctx,
		`UPDATE cart_items SET quantity = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+recordColumns, itemID, quantity)

	updated, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return &updated, nil
}

func (p *Postgres) Remove(ctx context.Context, itemID string) (*domain.CartRecord, error) {
	row := p.db.QueryRowContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 RETURNING `+recordColumns, itemID)

	removed, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return &removed, nil
}

func (p *Postgres) RemoveAll(ctx context.Context, userID string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.CartRecord, error) {
	var (
		rec                  domain.CartRecord
		price, originalPrice string
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.ProductID, &rec.Quantity,
		&rec.Color, &rec.Handle, &rec.CustomLabel, &rec.ProductName,
		&price, &originalPrice, &rec.ImageURL, &createdAt, &updatedAt)
	if err != nil {
		return domain.CartRecord{}, err
	}

	if rec.Price, err = decimal.NewFromString(price); err != nil {
		return domain.CartRecord{}, fmt.Errorf("bad price value %q: %w", price, err)
	}
	if rec.OriginalPrice, err = decimal.NewFromString(originalPrice); err != nil {
		return domain.CartRecord{}, fmt.Errorf("bad original_price value %q: %w", originalPrice, err)
	}
	rec.CreatedAt = createdAt
	rec.UpdatedAt = updatedAt
	return rec, nil
}
