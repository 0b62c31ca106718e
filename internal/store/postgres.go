package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink-go/internal/shortlink"
)

// PostgresStore is a PostgreSQL implementation of shortlink.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed short link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Insert claims the code in a single atomic statement. A conflicting row is
// overwritten only when it has already expired; when a live holder exists
// the statement affects zero rows and ErrCodeTaken is returned. Uniqueness
// under concurrent inserts therefore rests on the primary key, not on any
// application-level check.
func (p *PostgresStore) Insert(ctx context.Context, link *shortlink.ShortLink) error {
	query := `
		INSERT INTO short_links (code, target_url, owner_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE
		SET target_url = EXCLUDED.target_url,
		    owner_id   = EXCLUDED.owner_id,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
		WHERE short_links.expires_at <= EXCLUDED.created_at
	`

	tag, err := p.pool.Exec(ctx, query,
		string(link.Code),
		link.TargetURL,
		link.OwnerID,
		link.CreatedAt,
		link.ExpiresAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortlink.ErrCodeTaken
	}

	return nil
}

func (p *PostgresStore) FindByCode(ctx context.Context, code shortlink.Code) (*shortlink.ShortLink, error) {
	query := `
		SELECT code, target_url, owner_id, created_at, expires_at
		FROM short_links
		WHERE code = $1
	`

	var link shortlink.ShortLink

	var ownerID *uuid.UUID

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(
		&link.Code,
		&link.TargetURL,
		&ownerID,
		&link.CreatedAt,
		&link.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortlink.ErrNotFound
		}

		return nil, err
	}

	link.OwnerID = ownerID

	return &link, nil
}

// Shutdown closes the underlying connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

// Compile-time check.
var _ shortlink.Repository = (*PostgresStore)(nil)
