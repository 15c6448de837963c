package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCompanyNotFound indica que la empresa no existe en el catálogo.
// Es una falla de precondición: el documento completo falla sin reintento.
var ErrCompanyNotFound = errors.New("company not found")

type CompanyRepository interface {
	ResolveIDByName(ctx context.Context, name string) (int64, error)
}

type PgCompanyRepository struct {
	pool *pgxpool.Pool
}

func NewPgCompanyRepository(pool *pgxpool.Pool) *PgCompanyRepository {
	return &PgCompanyRepository{pool: pool}
}

func (r *PgCompanyRepository) ResolveIDByName(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("resolve company: %w", ErrCompanyNotFound)
	}

	const query = `
		SELECT id FROM companies WHERE lower(name) = lower($1)
	`
	var id int64
	err := r.pool.QueryRow(ctx, query, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("resolve company %q: %w", name, ErrCompanyNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve company %q: %w", name, err)
	}
	return id, nil
}
