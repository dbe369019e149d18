package repository

import (
	"context"

	"gorm.io/gorm"
)

// GormRepository provides common GORM operations for any model type.
type GormRepository[T any] struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM repository instance.
func NewGormRepository[T any](db *gorm.DB) *GormRepository[T] {
	return &GormRepository[T]{db: db}
}

// conn returns the transaction stored in ctx, or the repository connection.
func (r *GormRepository[T]) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// GetByID retrieves a record by its primary key.
func (r *GormRepository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	var result T
	if err := r.conn(ctx).First(&result, id).Error; err != nil {
		return nil, ParseDBError(err)
	}
	return &result, nil
}

// Create inserts a new record.
func (r *GormRepository[T]) Create(ctx context.Context, entity *T) error {
	return ParseDBError(r.conn(ctx).Create(entity).Error)
}

// Save updates an existing record or creates it if it doesn't exist.
func (r *GormRepository[T]) Save(ctx context.Context, entity *T) error {
	return ParseDBError(r.conn(ctx).Save(entity).Error)
}

// UpdateFields applies a partial update to the record with the given ID.
func (r *GormRepository[T]) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	var model T
	result := r.conn(ctx).Model(&model).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return ParseDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record by its primary key.
func (r *GormRepository[T]) Delete(ctx context.Context, id int64) error {
	var model T
	result := r.conn(ctx).Delete(&model, id)
	if result.Error != nil {
		return ParseDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of records.
func (r *GormRepository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var model T
	err := r.conn(ctx).Model(&model).Count(&count).Error
	return count, ParseDBError(err)
}
