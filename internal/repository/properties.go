package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"terravista/internal/model"
)

// PropertiesRepository persists real-estate listings
type PropertiesRepository struct {
	db *bun.DB
}

// NewPropertiesRepository creates a properties repository
func NewPropertiesRepository(db *bun.DB) *PropertiesRepository {
	return &PropertiesRepository{db: db}
}

var propertySortable = map[string]string{
	"name":       "name",
	"location":   "location",
	"year":       "year",
	"created_at": "created_at",
}

// Create inserts a listing
func (r *PropertiesRepository) Create(ctx context.Context, property *model.Property) (*model.Property, error) {
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(property).Exec(ctx); err != nil {
		return nil, err
	}
	return property, nil
}

// GetByID fetches a single listing
func (r *PropertiesRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	property := &model.Property{}
	err := r.db.NewSelect().
		Model(property).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("property", err)
		}
		return nil, err
	}
	return property, nil
}

// List returns a page of listings
func (r *PropertiesRepository) List(ctx context.Context, opts QueryOptions) ([]*model.Property, error) {
	var properties []*model.Property
	q := r.db.NewSelect().Model(&properties)
	if err := applyOptions(q, opts, propertySortable).Scan(ctx); err != nil {
		return nil, err
	}
	return properties, nil
}

// All returns every listing, used to feed the search index
func (r *PropertiesRepository) All(ctx context.Context) ([]*model.Property, error) {
	var properties []*model.Property
	if err := r.db.NewSelect().Model(&properties).Scan(ctx); err != nil {
		return nil, err
	}
	return properties, nil
}

// PropertyPatch carries the fields of a partial update. Nil means
// "leave alone", so zero values like `bedroom: 0` or an empty
// description are storable.
type PropertyPatch struct {
	Name         *string
	Location     *string
	Description  *string
	Images       []string
	Bedroom      *int
	Bathroom     *int
	BuildingArea *float64
	LandArea     *float64
	Floor        *int
	Year         *int
}

// Update applies a partial update to a listing
func (r *PropertiesRepository) Update(ctx context.Context, id uuid.UUID, patch *PropertyPatch) (*model.Property, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.Location != nil {
		existing.Location = *patch.Location
	}
	if patch.Description != nil {
		existing.Description = *patch.Description
	}
	if patch.Images != nil {
		existing.Images = patch.Images
	}
	if patch.Bedroom != nil {
		existing.Bedroom = *patch.Bedroom
	}
	if patch.Bathroom != nil {
		existing.Bathroom = *patch.Bathroom
	}
	if patch.BuildingArea != nil {
		existing.BuildingArea = *patch.BuildingArea
	}
	if patch.LandArea != nil {
		existing.LandArea = *patch.LandArea
	}
	if patch.Floor != nil {
		existing.Floor = *patch.Floor
	}
	if patch.Year != nil {
		existing.Year = *patch.Year
	}

	now := time.Now()
	existing.UpdatedAt = &now

	if _, err := r.db.NewUpdate().Model(existing).WherePK().Exec(ctx); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete soft-deletes a listing
func (r *PropertiesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*model.Property)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, "property")
}
