package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

const materialColumns = `m.id, m.title, m.class_id, m.class_name, m.category, m.description, m.basic_competency,
        m.difficulty, m.estimated_hours, m.created_at, m.updated_at`

// MaterialRepository manages persistence for teaching materials.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository constructs a material repository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// List returns materials matching filter, newest first.
func (r *MaterialRepository) List(ctx context.Context, filter models.MaterialFilter) ([]models.Material, int, error) {
	base := "FROM materials m WHERE 1=1"
	var args []interface{}

	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		base += fmt.Sprintf(" AND m.class_id = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		base += fmt.Sprintf(" AND m.category = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		base += fmt.Sprintf(" AND (LOWER(m.title) LIKE $%d OR LOWER(m.basic_competency) LIKE $%d)", len(args), len(args))
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY m.created_at DESC LIMIT %d OFFSET %d", materialColumns, base, limit, offset)
	materials := make([]models.Material, 0)
	if err := r.db.SelectContext(ctx, &materials, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count materials: %w", err)
	}
	return materials, total, nil
}

// FindByID returns a material by ID.
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*models.Material, error) {
	query := fmt.Sprintf("SELECT %s FROM materials m WHERE m.id = $1", materialColumns)
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// Create persists a material.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	material.CreatedAt = now
	material.UpdatedAt = now

	const query = `INSERT INTO materials (id, title, class_id, class_name, category, description, basic_competency, difficulty,
estimated_hours, created_at, updated_at)
VALUES (:id, :title, :class_id, :class_name, :category, :description, :basic_competency, :difficulty,
:estimated_hours, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// Update modifies a material.
func (r *MaterialRepository) Update(ctx context.Context, material *models.Material) error {
	material.UpdatedAt = time.Now().UTC()
	const query = `UPDATE materials SET title = :title, class_id = :class_id, class_name = :class_name, category = :category,
description = :description, basic_competency = :basic_competency, difficulty = :difficulty,
estimated_hours = :estimated_hours, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	return nil
}

// Delete removes a material. Journals referencing it keep their copied title.
func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return nil
}

// Count returns the total number of materials.
func (r *MaterialRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM materials`); err != nil {
		return 0, fmt.Errorf("count materials: %w", err)
	}
	return count, nil
}
