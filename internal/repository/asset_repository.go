package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oszuidwest/zwfm-mixdown/internal/models"
)

// AssetRepository provides read access to the mixing asset catalogue and seeding.
type AssetRepository interface {
	GetByID(ctx context.Context, id int64) (*models.MixingAsset, error)
	// List returns assets of category, or all assets when category is empty.
	List(ctx context.Context, category models.AssetCategory, query *ListQuery) (*ListResult[models.MixingAsset], error)
	// Upsert inserts the asset or updates the existing one with the same name.
	Upsert(ctx context.Context, asset *models.MixingAsset) error
}

type assetRepository struct {
	*GormRepository[models.MixingAsset]
}

// NewAssetRepository creates a new asset repository.
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{GormRepository: NewGormRepository[models.MixingAsset](db)}
}

var assetFieldMapping = FieldMapping{
	"id":         "id",
	"name":       "name",
	"category":   "category",
	"created_at": "created_at",
}

func (r *assetRepository) List(ctx context.Context, category models.AssetCategory, query *ListQuery) (*ListResult[models.MixingAsset], error) {
	db := r.conn(ctx).Model(&models.MixingAsset{})
	if category != "" {
		db = db.Where("category = ?", category)
	}
	return ApplyListQuery[models.MixingAsset](db, query, assetFieldMapping, []string{"name"}, "name ASC")
}

func (r *assetRepository) Upsert(ctx context.Context, asset *models.MixingAsset) error {
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "url", "file_name", "duration_seconds", "updated_at"}),
	}).Create(asset).Error
	return ParseDBError(err)
}
