package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"esg-brsr/internal/domain"
)

// IndicatorRepository carga el catálogo de definiciones BRSR.
// El catálogo es inmutable durante la vida del worker: se carga una vez en main.
type IndicatorRepository interface {
	LoadCatalog(ctx context.Context) ([]domain.IndicatorDefinition, error)
}

type PgIndicatorRepository struct {
	pool *pgxpool.Pool
}

func NewPgIndicatorRepository(pool *pgxpool.Pool) *PgIndicatorRepository {
	return &PgIndicatorRepository{pool: pool}
}

func (r *PgIndicatorRepository) LoadCatalog(ctx context.Context) ([]domain.IndicatorDefinition, error) {
	const query = `
		SELECT code, attribute_group, name, description, expected_unit, pillar, weight, COALESCE(brsr_reference, '')
		FROM indicator_definitions
		ORDER BY attribute_group, code
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load indicator catalog: %w", err)
	}
	defer rows.Close()

	var defs []domain.IndicatorDefinition
	for rows.Next() {
		var d domain.IndicatorDefinition
		if err := rows.Scan(
			&d.Code,
			&d.AttributeGroup,
			&d.Name,
			&d.Description,
			&d.ExpectedUnit,
			&d.Pillar,
			&d.Weight,
			&d.BRSRReference,
		); err != nil {
			return nil, fmt.Errorf("scan indicator definition: %w", err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return defs, nil
}
