package dataset

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/greencell/hydrozone/internal/domain"
)

// PostgresSource reads training rows from the candidate_sites table.
type PostgresSource struct {
	db *sqlx.DB
}

// NewPostgresSource connects to Postgres and verifies the connection.
func NewPostgresSource(dsn string) (*PostgresSource, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &PostgresSource{db: db}, nil
}

// Rows selects every candidate site with its attributes and targets.
func (s *PostgresSource) Rows(ctx context.Context) ([]domain.TrainingRow, error) {
	const query = `
		SELECT
			renewable_proximity,
			demand_proximity,
			transport_score,
			subsidy_score,
			land_cost,
			energy_cost,
			efficiency_score,
			cost_per_kg
		FROM candidate_sites`

	var rows []domain.TrainingRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query candidate sites: %w", err)
	}
	return rows, nil
}

func (s *PostgresSource) Close() error {
	return s.db.Close()
}
