package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

// WeightRepository stores the single grading-weight row.
type WeightRepository struct {
	db *sqlx.DB
}

// NewWeightRepository constructs the repository.
func NewWeightRepository(db *sqlx.DB) *WeightRepository {
	return &WeightRepository{db: db}
}

// Get returns the stored weights. sql.ErrNoRows is returned unwrapped when none are stored.
func (r *WeightRepository) Get(ctx context.Context) (*models.WeightConfig, error) {
	var weights models.WeightConfig
	const query = `SELECT formative, mid_term, final_term, attendance, updated_at FROM grade_weights WHERE id = 1`
	if err := r.db.GetContext(ctx, &weights, query); err != nil {
		return nil, err
	}
	return &weights, nil
}

// Upsert replaces the stored weights.
func (r *WeightRepository) Upsert(ctx context.Context, weights *models.WeightConfig) error {
	now := time.Now().UTC()
	weights.UpdatedAt = &now
	const query = `INSERT INTO grade_weights (id, formative, mid_term, final_term, attendance, updated_at)
VALUES (1, :formative, :mid_term, :final_term, :attendance, :updated_at)
ON CONFLICT (id)
DO UPDATE SET formative = EXCLUDED.formative, mid_term = EXCLUDED.mid_term, final_term = EXCLUDED.final_term,
    attendance = EXCLUDED.attendance, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, weights); err != nil {
		return fmt.Errorf("upsert grade weights: %w", err)
	}
	return nil
}
